package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/shared/money"
)

var quoteNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func upcomingBooking(hoursUntilStart float64) *booking.Booking {
	return &booking.Booking{
		ID:            "bk-1",
		GuestID:       "guest-1",
		StartAt:       quoteNow.Add(time.Duration(hoursUntilStart * float64(time.Hour))),
		TotalPrice:    money.Must(10000, "USD"),
		ServiceFee:    money.Must(1000, "USD"),
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentPaid,
	}
}

func TestCalculateRefundFlexibleFullRefund(t *testing.T) {
	res := booking.CalculateRefund(upcomingBooking(30), booking.PolicyFlexible, quoteNow)

	assert.True(t, res.CanCancel)
	assert.Equal(t, 100, res.RefundPercentage)
	assert.Equal(t, int64(10000), res.RefundAmount.Amount)
	assert.Equal(t, int64(0), res.CancellationFee.Amount)
	assert.Empty(t, res.Reason)
}

func TestCalculateRefundFlexibleHalfRefundKeepsServiceFee(t *testing.T) {
	res := booking.CalculateRefund(upcomingBooking(18), booking.PolicyFlexible, quoteNow)

	assert.True(t, res.CanCancel)
	assert.Equal(t, 50, res.RefundPercentage)
	// (100.00 - 10.00) * 50% + 10.00 = 55.00
	assert.Equal(t, int64(5500), res.RefundAmount.Amount)
	assert.Equal(t, int64(4500), res.CancellationFee.Amount)
	assert.Equal(t, "50% refund applied (cancelled 12-24h before)", res.Reason)
}

func TestCalculateRefundFlexibleNoRefundStillReturnsServiceFee(t *testing.T) {
	res := booking.CalculateRefund(upcomingBooking(5), booking.PolicyFlexible, quoteNow)

	assert.True(t, res.CanCancel)
	assert.Equal(t, 0, res.RefundPercentage)
	assert.Equal(t, int64(1000), res.RefundAmount.Amount)
	assert.Equal(t, int64(9000), res.CancellationFee.Amount)
	assert.Equal(t, "No refund (cancelled less than 12h before)", res.Reason)
}

func TestCalculateRefundFlexibleBoundaries(t *testing.T) {
	exactDay := booking.CalculateRefund(upcomingBooking(24), booking.PolicyFlexible, quoteNow)
	assert.Equal(t, 100, exactDay.RefundPercentage)

	exactHalf := booking.CalculateRefund(upcomingBooking(12), booking.PolicyFlexible, quoteNow)
	assert.Equal(t, 50, exactHalf.RefundPercentage)

	justUnder := booking.CalculateRefund(upcomingBooking(11.99), booking.PolicyFlexible, quoteNow)
	assert.Equal(t, 0, justUnder.RefundPercentage)
}

func TestCalculateRefundModerate(t *testing.T) {
	week := booking.CalculateRefund(upcomingBooking(168), booking.PolicyModerate, quoteNow)
	assert.Equal(t, 100, week.RefundPercentage)

	mid := booking.CalculateRefund(upcomingBooking(72), booking.PolicyModerate, quoteNow)
	assert.Equal(t, 50, mid.RefundPercentage)
	assert.Equal(t, "50% refund applied (cancelled 2-7 days before)", mid.Reason)

	late := booking.CalculateRefund(upcomingBooking(47), booking.PolicyModerate, quoteNow)
	assert.Equal(t, 0, late.RefundPercentage)
	assert.Equal(t, "No refund (cancelled less than 48h before)", late.Reason)
}

func TestCalculateRefundStrictIsBinary(t *testing.T) {
	early := booking.CalculateRefund(upcomingBooking(400), booking.PolicyStrict, quoteNow)
	assert.Equal(t, 50, early.RefundPercentage)
	assert.Equal(t, "50% refund applied (Strict policy)", early.Reason)

	late := booking.CalculateRefund(upcomingBooking(200), booking.PolicyStrict, quoteNow)
	assert.Equal(t, 0, late.RefundPercentage)
	assert.Equal(t, "No refund (cancelled less than 14 days before)", late.Reason)

	// There is no 100% outcome under Strict, however far out.
	farOut := booking.CalculateRefund(upcomingBooking(10000), booking.PolicyStrict, quoteNow)
	assert.Equal(t, 50, farOut.RefundPercentage)
}

func TestCalculateRefundNonRefundable(t *testing.T) {
	res := booking.CalculateRefund(upcomingBooking(500), booking.PolicyNonRefundable, quoteNow)

	assert.True(t, res.CanCancel)
	assert.Equal(t, 0, res.RefundPercentage)
	// The service fee portion is still returned.
	assert.Equal(t, int64(1000), res.RefundAmount.Amount)
	assert.Equal(t, "Non-refundable booking", res.Reason)
}

func TestCalculateRefundUnknownPolicyFallsBack(t *testing.T) {
	res := booking.CalculateRefund(upcomingBooking(500), booking.ParsePolicy("whatever"), quoteNow)

	assert.Equal(t, 0, res.RefundPercentage)
	assert.Equal(t, "Cancellation policy not specified", res.Reason)
}

func TestCalculateRefundPastBooking(t *testing.T) {
	res := booking.CalculateRefund(upcomingBooking(-2), booking.PolicyFlexible, quoteNow)

	assert.False(t, res.CanCancel)
	assert.Equal(t, "Cannot cancel past bookings", res.Reason)
	assert.Equal(t, int64(0), res.RefundAmount.Amount)
	assert.Equal(t, int64(10000), res.CancellationFee.Amount)
	assert.Less(t, res.HoursUntilStart, 0.0)
}

func TestCalculateRefundPastGuardBeatsTerminalGuard(t *testing.T) {
	b := upcomingBooking(-2)
	b.Status = booking.StatusCancelled

	res := booking.CalculateRefund(b, booking.PolicyFlexible, quoteNow)
	assert.False(t, res.CanCancel)
	assert.Equal(t, "Cannot cancel past bookings", res.Reason)
}

func TestCalculateRefundTerminalStates(t *testing.T) {
	cancelled := upcomingBooking(30)
	cancelled.Status = booking.StatusCancelled
	res := booking.CalculateRefund(cancelled, booking.PolicyFlexible, quoteNow)
	assert.False(t, res.CanCancel)
	assert.Equal(t, "Booking is already cancelled", res.Reason)

	completed := upcomingBooking(30)
	completed.Status = booking.StatusCompleted
	res = booking.CalculateRefund(completed, booking.PolicyFlexible, quoteNow)
	assert.False(t, res.CanCancel)
	assert.Equal(t, "Booking is already completed", res.Reason)
}

func TestCalculateRefundMonotoneInLeadTime(t *testing.T) {
	policies := []booking.CancellationPolicy{
		booking.PolicyFlexible,
		booking.PolicyModerate,
		booking.PolicyStrict,
		booking.PolicyNonRefundable,
	}
	leads := []float64{0.5, 6, 13, 30, 60, 150, 180, 340, 400}

	for _, policy := range policies {
		prev := int64(-1)
		for _, lead := range leads {
			res := booking.CalculateRefund(upcomingBooking(lead), policy, quoteNow)
			if prev >= 0 {
				assert.GreaterOrEqual(t, res.RefundAmount.Amount, prev,
					"policy %s lead %.1fh", policy, lead)
			}
			prev = res.RefundAmount.Amount
		}
	}
}

func TestCalculateRefundFeeFloorAndIdentity(t *testing.T) {
	for _, lead := range []float64{1, 20, 100, 400} {
		res := booking.CalculateRefund(upcomingBooking(lead), booking.PolicyModerate, quoteNow)
		assert.GreaterOrEqual(t, res.RefundAmount.Amount, int64(1000))
		sum, err := res.RefundAmount.Add(res.CancellationFee)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), sum.Amount)
	}
}
