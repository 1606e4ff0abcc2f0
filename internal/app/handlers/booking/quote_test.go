package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbooking "spacehub/internal/app/handlers/booking"
)

func TestGetCancellationQuote(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(18*time.Hour), 10000, 1000))

	handler := &appbooking.GetCancellationQuoteHandler{
		UoW: f.factory,
		Now: func() time.Time { return testNow },
	}

	quote, err := handler.Handle(context.Background(), appbooking.GetCancellationQuoteQuery{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.True(t, quote.CanCancel)
	assert.Equal(t, 50, quote.RefundPercentage)
	assert.Equal(t, int64(5500), quote.RefundAmount.Amount)
	assert.Equal(t, "55.00", quote.RefundAmount.Display)
	assert.InDelta(t, 18.0, quote.HoursUntilStart, 0.001)
}

func TestGetCancellationQuoteHonorsRequestedInstant(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(18*time.Hour), 10000, 1000))

	handler := &appbooking.GetCancellationQuoteHandler{
		UoW: f.factory,
		Now: func() time.Time { return testNow },
	}

	// Requoted 10 hours later the same booking drops to the zero tier.
	quote, err := handler.Handle(context.Background(), appbooking.GetCancellationQuoteQuery{
		BookingID:    "bk-1",
		ActingUserID: "guest-1",
		At:           testNow.Add(10 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, quote.RefundPercentage)
}

func TestGetCancellationQuoteRejectsStranger(t *testing.T) {
	f := newFixture(t)
	f.seed(t, paidBooking("bk-1", testNow.Add(18*time.Hour), 10000, 1000))

	handler := &appbooking.GetCancellationQuoteHandler{UoW: f.factory}
	_, err := handler.Handle(context.Background(), appbooking.GetCancellationQuoteQuery{
		BookingID:    "bk-1",
		ActingUserID: "guest-9",
	})
	assert.ErrorIs(t, err, appbooking.ErrNotBookingOwner)
}

func TestGetGroupCancellationQuote(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		groupMember("bk-1", testNow.Add(18*time.Hour)),
		groupMember("bk-2", testNow.Add(400*time.Hour)),
	)

	handler := &appbooking.GetGroupCancellationQuoteHandler{
		UoW: f.factory,
		Now: func() time.Time { return testNow },
	}

	quote, err := handler.Handle(context.Background(), appbooking.GetGroupCancellationQuoteQuery{
		GroupID:      "grp-1",
		ActingUserID: "guest-1",
	})
	require.NoError(t, err)

	assert.True(t, quote.CanCancel)
	assert.Equal(t, 2, quote.BookingCount)
	assert.Equal(t, 50, quote.RefundPercentage)
	assert.Equal(t, int64(20000), quote.TotalOriginalAmount.Amount)
	assert.Equal(t, int64(10000), quote.RefundAmount.Amount)
}
