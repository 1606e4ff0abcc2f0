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
	"spacehub/internal/app/policies"
	"spacehub/internal/app/uow"
	domainbooking "spacehub/internal/domain/booking"
	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/shared/money"
	"spacehub/internal/domain/user"
	"spacehub/internal/infra/storage/memory"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

type escrowStub struct {
	err      error
	recorded []money.Money
}

func (s *escrowStub) RecordRefund(_ context.Context, _ *domainbooking.Booking, _ string, amount money.Money) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, amount)
	return nil
}

type walletStub struct {
	err     error
	credits []money.Money
}

func (s *walletStub) Refund(_ context.Context, _ string, amount money.Money, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.credits = append(s.credits, amount)
	return nil
}

type notifierStub struct {
	sent []policies.Notification
}

func (s *notifierStub) Notify(_ context.Context, n policies.Notification) {
	s.sent = append(s.sent, n)
}

func (s *notifierStub) forUser(userID string) []policies.Notification {
	var out []policies.Notification
	for _, n := range s.sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	factory  *memory.Factory
	escrow   *escrowStub
	wallet   *walletStub
	notifier *notifierStub
	outbox   *memory.Outbox
	handler  *appbooking.CancelBookingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		factory:  memory.NewFactory(),
		escrow:   &escrowStub{},
		wallet:   &walletStub{},
		notifier: &notifierStub{},
		outbox:   memory.NewOutbox(),
	}
	f.handler = &appbooking.CancelBookingHandler{
		Escrow:   f.escrow,
		Wallet:   f.wallet,
		Notifier: f.notifier,
		Outbox:   f.outbox,
		Encoder:  appoutbox.JSONEventEncoder{},
		Now:      func() time.Time { return testNow },
	}
	return f
}

func (f *fixture) seed(t *testing.T, bookings ...*domainbooking.Booking) {
	t.Helper()
	ctx := context.Background()

	listing, err := listings.NewListing(listings.CreateParams{
		ID:    "listing-1",
		Host:  "host-1",
		Title: "Daylight Loft Studio",
		Address: listings.Address{
			Line1: "12 Mercer St", City: "Brooklyn", Country: "US",
		},
		HourlyRateCents:    4500,
		CancellationPolicy: "flexible",
		Now:                testNow,
	})
	require.NoError(t, err)
	require.NoError(t, listing.Activate(testNow))
	require.NoError(t, f.factory.ListingRepo.Save(ctx, listing))

	for _, params := range []user.CreateParams{
		{ID: "guest-1", Email: "ada@example.com", Name: "Ada Fischer", Now: testNow},
		{ID: "host-1", Email: "mira@example.com", Name: "Mira Castellanos", Now: testNow},
	} {
		u, err := user.New(params)
		require.NoError(t, err)
		require.NoError(t, f.factory.UserRepo.Save(ctx, u))
	}

	for _, b := range bookings {
		require.NoError(t, f.factory.BookingRepo.Save(ctx, b))
	}
}

func (f *fixture) dispatch(t *testing.T, cmd appbooking.CancelBookingCommand) (*appbooking.CancelBookingResult, error) {
	t.Helper()
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	return f.handler.Handle(uow.ContextWithUnitOfWork(ctx, unit), cmd)
}

func paidBooking(id string, startAt time.Time, totalCents, feeCents int64) *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:            domainbooking.BookingID(id),
		ListingID:     "listing-1",
		GuestID:       "guest-1",
		StartAt:       startAt,
		Hours:         []int{10, 11},
		TotalPrice:    money.Must(totalCents, "USD"),
		ServiceFee:    money.Must(feeCents, "USD"),
		Status:        domainbooking.StatusConfirmed,
		PaymentStatus: domainbooking.PaymentPaid,
		CreatedAt:     testNow.Add(-72 * time.Hour),
		UpdatedAt:     testNow.Add(-72 * time.Hour),
	}
}

func TestCancelBookingRefundsToWallet(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(18*time.Hour), 10000, 1000))

	result, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Booking cancelled. $55.00 has been refunded to your wallet.", result.Message)
	assert.Equal(t, int64(5500), result.Refund.Amount)

	stored, err := f.factory.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)
	assert.Equal(t, domainbooking.PaymentRefunded, stored.PaymentStatus)
	assert.True(t, stored.RefundProcessed)
	assert.Equal(t, int64(5500), stored.RefundAmount.Amount)
	assert.Equal(t, "guest-1", stored.CancelledBy)

	require.Len(t, f.escrow.recorded, 1)
	require.Len(t, f.wallet.credits, 1)
	assert.Equal(t, int64(5500), f.wallet.credits[0].Amount)

	guest, err := f.factory.UserRepo.ByID(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5500), guest.WalletBalance.Amount)

	guestNotes := f.notifier.forUser("guest-1")
	require.Len(t, guestNotes, 1)
	assert.Equal(t, "Booking Cancelled", guestNotes[0].Title)
	assert.Contains(t, guestNotes[0].Message, "55.00")

	hostNotes := f.notifier.forUser("host-1")
	require.Len(t, hostNotes, 1)
	assert.Contains(t, hostNotes[0].Message, "Ada Fischer")
}

func TestCancelBookingNoRefundPath(t *testing.T) {
	f := newFixture(t)
	// 5h out, no service fee: flexible policy yields a zero refund.
	f.seed(t, paidBooking("bk-1", testNow.Add(5*time.Hour), 10000, 0))

	result, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Booking cancelled. No refund was issued.", result.Message)

	stored, err := f.factory.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)
	assert.Equal(t, domainbooking.PaymentPaid, stored.PaymentStatus)
	assert.False(t, stored.RefundProcessed)

	assert.Empty(t, f.escrow.recorded)
	assert.Empty(t, f.wallet.credits)
}

func TestCancelBookingIneligibleLeavesBookingAlone(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(-2*time.Hour), 10000, 1000))

	result, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Cannot cancel past bookings", result.Message)

	stored, err := f.factory.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestCancelBookingEscrowFailureKeepsCancellation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(30*time.Hour), 10000, 1000))
	f.escrow.err = errors.New("escrow unavailable")

	result, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "refund processing failed")

	// Booking mutation stays; only the money movement is stranded.
	stored, err := f.factory.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, stored.Status)
	assert.True(t, stored.RefundProcessed)

	assert.Empty(t, f.wallet.credits)
	guest, err := f.factory.UserRepo.ByID(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.True(t, guest.WalletBalance.IsZero())
}

func TestCancelBookingWalletFailureAfterEscrow(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(30*time.Hour), 10000, 1000))
	f.wallet.err = errors.New("wallet timeout")

	result, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	require.Len(t, f.escrow.recorded, 1)
	assert.Empty(t, f.wallet.credits)
}

func TestCancelBookingRejectsStranger(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(30*time.Hour), 10000, 1000))

	_, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-2",
	})
	assert.ErrorIs(t, err, appbooking.ErrNotBookingOwner)
}

func TestCancelBookingUnknownBooking(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "missing",
		ActingUserID: "guest-1",
	})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCancelBookingEmitsCancelledEvent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(30*time.Hour), 10000, 1000))

	_, err := f.dispatch(t, appbooking.CancelBookingCommand{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	require.NoError(t, f.outbox.Flush(context.Background()))
	published := f.outbox.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "booking.cancelled", published[0].Name)
	assert.Equal(t, "bk-1", published[0].Aggregate)
}
