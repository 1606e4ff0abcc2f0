package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/shared/money"
)

func TestNewBookingStartsConfirmedAndPaid(t *testing.T) {
	b, err := booking.NewBooking(booking.CreateParams{
		ID:         "bk-1",
		ListingID:  "listing-1",
		GuestID:    "guest-1",
		StartAt:    quoteNow.Add(48 * time.Hour),
		Hours:      []int{10, 11},
		TotalPrice: money.Must(10000, "USD"),
		ServiceFee: money.Must(1000, "USD"),
		CreatedAt:  quoteNow,
	})
	require.NoError(t, err)

	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.requested", events[0].EventName())
}

func TestNewBookingValidation(t *testing.T) {
	_, err := booking.NewBooking(booking.CreateParams{
		ID:         "bk-1",
		ListingID:  "listing-1",
		StartAt:    quoteNow,
		TotalPrice: money.Must(10000, "USD"),
	})
	assert.ErrorIs(t, err, booking.ErrGuestRequired)

	_, err = booking.NewBooking(booking.CreateParams{
		ID:         "bk-1",
		ListingID:  "listing-1",
		GuestID:    "guest-1",
		StartAt:    quoteNow,
		TotalPrice: money.Must(1000, "USD"),
		ServiceFee: money.Must(2000, "USD"),
	})
	assert.ErrorIs(t, err, booking.ErrServiceFee)

	_, err = booking.NewBooking(booking.CreateParams{
		ID:         "bk-1",
		ListingID:  "listing-1",
		GuestID:    "guest-1",
		StartAt:    quoteNow,
		TotalPrice: money.Must(10000, "USD"),
		ServiceFee: money.Must(1000, "EUR"),
	})
	assert.ErrorIs(t, err, booking.ErrFeeCurrency)
}

func TestApplyCancellationWithRefund(t *testing.T) {
	b := upcomingBooking(30)
	refund := money.Must(5500, "USD")

	b.ApplyCancellation("50% refund applied (cancelled 12-24h before)", "guest-1", refund, quoteNow)

	assert.Equal(t, booking.StatusCancelled, b.Status)
	assert.Equal(t, booking.PaymentRefunded, b.PaymentStatus)
	assert.Equal(t, refund, b.RefundAmount)
	assert.True(t, b.RefundProcessed)
	assert.Equal(t, "guest-1", b.CancelledBy)
	assert.Equal(t, quoteNow, b.CancelledAt)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.cancelled", events[0].EventName())
}

func TestApplyCancellationWithoutRefund(t *testing.T) {
	b := upcomingBooking(5)

	b.ApplyCancellation("No refund (cancelled less than 12h before)", "guest-1", money.Zero("USD"), quoteNow)

	assert.Equal(t, booking.StatusCancelled, b.Status)
	// Payment status stays PAID when nothing was refunded.
	assert.Equal(t, booking.PaymentPaid, b.PaymentStatus)
	assert.False(t, b.RefundProcessed)
}

func TestApplySeriesCancellationTracksNoPerMemberAmount(t *testing.T) {
	b := upcomingBooking(100)

	b.ApplySeriesCancellation("", "guest-1", true, quoteNow)

	assert.Equal(t, booking.StatusCancelled, b.Status)
	assert.True(t, b.RefundAmount.IsZero())
	assert.True(t, b.RefundProcessed)
	assert.Equal(t, booking.PaymentRefunded, b.PaymentStatus)
}
