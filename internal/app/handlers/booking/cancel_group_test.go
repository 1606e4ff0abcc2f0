package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbooking "spacehub/internal/app/handlers/booking"
	appoutbox "spacehub/internal/app/outbox"
	"spacehub/internal/app/uow"
	domainbooking "spacehub/internal/domain/booking"
)

func newGroupFixture(t *testing.T) (*fixture, *appbooking.CancelGroupHandler) {
	t.Helper()
	f := newFixture(t)
	handler := &appbooking.CancelGroupHandler{
		Escrow:   f.escrow,
		Wallet:   f.wallet,
		Notifier: f.notifier,
		Outbox:   f.outbox,
		Encoder:  appoutbox.JSONEventEncoder{},
		Now:      func() time.Time { return testNow },
	}
	return f, handler
}

func dispatchGroup(t *testing.T, f *fixture, handler *appbooking.CancelGroupHandler, cmd appbooking.CancelGroupCommand) (*appbooking.CancelGroupResult, error) {
	t.Helper()
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	return handler.Handle(uow.ContextWithUnitOfWork(ctx, unit), cmd)
}

func groupMember(id string, startAt time.Time) *domainbooking.Booking {
	b := paidBooking(id, startAt, 10000, 1000)
	b.GroupID = "grp-1"
	return b
}

func TestCancelGroupRefundsOnceForWholeSeries(t *testing.T) {
	f, handler := newGroupFixture(t)
	f.seed(t,
		groupMember("bk-1", testNow.Add(48*time.Hour)),
		groupMember("bk-2", testNow.Add(7*24*time.Hour)),
		groupMember("bk-3", testNow.Add(14*24*time.Hour)),
	)

	result, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.CancelledCount)
	// Earliest member is 48h out under flexible: full refund of the group total.
	assert.Equal(t, int64(30000), result.Refund.Amount)
	assert.Equal(t, int64(30000), result.Total.Amount)

	for _, id := range []string{"bk-1", "bk-2", "bk-3"} {
		stored, err := f.factory.BookingRepo.ByID(context.Background(), domainbooking.BookingID(id))
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusCancelled, stored.Status, id)
		assert.True(t, stored.RefundProcessed, id)
		assert.True(t, stored.RefundAmount.IsZero(), id)
	}

	// One escrow record, one wallet credit, one balance update for the series.
	require.Len(t, f.escrow.recorded, 1)
	assert.Equal(t, int64(30000), f.escrow.recorded[0].Amount)
	require.Len(t, f.wallet.credits, 1)

	guest, err := f.factory.UserRepo.ByID(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), guest.WalletBalance.Amount)

	notes := f.notifier.forUser("guest-1")
	require.Len(t, notes, 1)
	assert.Equal(t, "Series Booking Cancelled", notes[0].Title)
	assert.Contains(t, notes[0].Message, "3 bookings cancelled")
}

func TestCancelGroupNotifiesHost(t *testing.T) {
	f, handler := newGroupFixture(t)
	f.seed(t,
		groupMember("bk-1", testNow.Add(48*time.Hour)),
		groupMember("bk-2", testNow.Add(72*time.Hour)),
	)

	result, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	hostNotes := f.notifier.forUser("host-1")
	require.Len(t, hostNotes, 1)
	assert.Equal(t, "Series Booking Cancelled", hostNotes[0].Title)
	assert.Contains(t, hostNotes[0].Message, "Ada Fischer")
	assert.Contains(t, hostNotes[0].Message, "2 bookings")
	// References the primary booking alongside the group.
	assert.Equal(t, "bk-1", hostNotes[0].Metadata["booking_id"])
	assert.Equal(t, "grp-1", hostNotes[0].Metadata["group_id"])
}

func TestCancelGroupSkipsTerminalAndPastMembers(t *testing.T) {
	f, handler := newGroupFixture(t)

	past := groupMember("bk-past", testNow.Add(-24*time.Hour))
	done := groupMember("bk-done", testNow.Add(72*time.Hour))
	done.Status = domainbooking.StatusCancelled
	live := groupMember("bk-live", testNow.Add(48*time.Hour))

	f.seed(t, past, done, live)

	result, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.CancelledCount)
	assert.Equal(t, int64(10000), result.Refund.Amount)

	stored, err := f.factory.BookingRepo.ByID(context.Background(), "bk-past")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
}

func TestCancelGroupAllMembersIneligible(t *testing.T) {
	f, handler := newGroupFixture(t)
	f.seed(t, groupMember("bk-past", testNow.Add(-24*time.Hour)))

	result, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.CancelledCount)
	assert.Empty(t, f.escrow.recorded)
}

func TestCancelGroupUnknownGroup(t *testing.T) {
	f, handler := newGroupFixture(t)
	f.seed(t)

	_, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-missing",
		ActingUserID: "guest-1",
	})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCancelGroupEscrowFailureKeepsCancellations(t *testing.T) {
	f, handler := newGroupFixture(t)
	f.seed(t,
		groupMember("bk-1", testNow.Add(48*time.Hour)),
		groupMember("bk-2", testNow.Add(72*time.Hour)),
	)
	f.escrow.err = errors.New("escrow unavailable")

	result, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "refund processing failed")

	for _, id := range []string{"bk-1", "bk-2"} {
		stored, err := f.factory.BookingRepo.ByID(context.Background(), domainbooking.BookingID(id))
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusCancelled, stored.Status, id)
	}
	assert.Empty(t, f.wallet.credits)
}

func TestCancelGroupEmitsSeriesEvent(t *testing.T) {
	f, handler := newGroupFixture(t)
	f.seed(t,
		groupMember("bk-1", testNow.Add(48*time.Hour)),
		groupMember("bk-2", testNow.Add(72*time.Hour)),
	)

	_, err := dispatchGroup(t, f, handler, appbooking.CancelGroupCommand{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	require.NoError(t, f.outbox.Flush(context.Background()))
	var names []string
	for _, rec := range f.outbox.Published() {
		names = append(names, rec.Name)
	}
	assert.Contains(t, names, "booking.series_cancelled")
	assert.Len(t, names, 3) // two member cancellations plus the series event
}
