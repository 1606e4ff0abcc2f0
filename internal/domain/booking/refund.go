package booking

import (
	"fmt"
	"strings"
	"time"

	"spacehub/internal/domain/shared/money"
)

// CancellationPolicy is the refund tier attached to a listing. Unknown tags
// fall through to the zero-refund default arm.
type CancellationPolicy string

const (
	PolicyFlexible      CancellationPolicy = "flexible"
	PolicyModerate      CancellationPolicy = "moderate"
	PolicyStrict        CancellationPolicy = "strict"
	PolicyNonRefundable CancellationPolicy = "non-refundable"
)

// ParsePolicy normalizes a raw listing policy tag. Unrecognized values are
// returned as-is so the calculator can apply its unspecified-policy fallback.
func ParsePolicy(raw string) CancellationPolicy {
	return CancellationPolicy(strings.ToLower(strings.TrimSpace(raw)))
}

// CancellationResult is the ephemeral refund quote for one booking. It is
// recomputed on demand and never persisted.
type CancellationResult struct {
	RefundPercentage int
	RefundAmount     money.Money
	CancellationFee  money.Money
	CanCancel        bool
	Reason           string
	HoursUntilStart  float64
}

// GroupCancellationResult extends CancellationResult over a recurring series.
type GroupCancellationResult struct {
	CancellationResult
	TotalOriginalAmount money.Money
}

// CalculateRefund produces a refund quote for a single booking under the given
// policy at the given instant. Pure and deterministic; now is an explicit
// input so callers can requote while a cancellation dialog stays open.
//
// The service fee portion of the total is refunded in full whatever the
// percentage outcome:
//
//	refund = (total - serviceFee) * pct/100 + serviceFee
func CalculateRefund(b *Booking, policy CancellationPolicy, now time.Time) CancellationResult {
	hoursUntil := b.StartAt.Sub(now).Hours()

	if hoursUntil < 0 {
		return ineligible(b, "Cannot cancel past bookings", hoursUntil)
	}
	if b.Status.IsTerminal() {
		reason := fmt.Sprintf("Booking is already %s", strings.ToLower(string(b.Status)))
		return ineligible(b, reason, hoursUntil)
	}

	percent, reason := policyOutcome(policy, hoursUntil)

	serviceFee := b.ServiceFee
	if serviceFee.Currency == "" {
		serviceFee = money.Zero(b.TotalPrice.Currency)
	}
	priceExFee, _ := b.TotalPrice.Sub(serviceFee)
	refund, _ := priceExFee.Percent(percent).Add(serviceFee)
	fee, _ := b.TotalPrice.Sub(refund)

	if percent == 100 {
		reason = ""
	} else if reason == "" && percent == 0 {
		reason = "No refund available for this cancellation"
	}

	return CancellationResult{
		RefundPercentage: percent,
		RefundAmount:     refund,
		CancellationFee:  fee,
		CanCancel:        true,
		Reason:           reason,
		HoursUntilStart:  hoursUntil,
	}
}

// policyOutcome applies the tier threshold table. Thresholds are inclusive on
// the >= side and evaluated over real-valued hours. Strict deliberately has no
// middle band: the outcome is 50% or nothing.
func policyOutcome(policy CancellationPolicy, hoursUntil float64) (int, string) {
	switch policy {
	case PolicyFlexible:
		switch {
		case hoursUntil >= 24:
			return 100, ""
		case hoursUntil >= 12:
			return 50, "50% refund applied (cancelled 12-24h before)"
		default:
			return 0, "No refund (cancelled less than 12h before)"
		}
	case PolicyModerate:
		switch {
		case hoursUntil >= 168:
			return 100, ""
		case hoursUntil >= 48:
			return 50, "50% refund applied (cancelled 2-7 days before)"
		default:
			return 0, "No refund (cancelled less than 48h before)"
		}
	case PolicyStrict:
		if hoursUntil >= 336 {
			return 50, "50% refund applied (Strict policy)"
		}
		return 0, "No refund (cancelled less than 14 days before)"
	case PolicyNonRefundable:
		return 0, "Non-refundable booking"
	default:
		return 0, "Cancellation policy not specified"
	}
}

func ineligible(b *Booking, reason string, hoursUntil float64) CancellationResult {
	return CancellationResult{
		RefundPercentage: 0,
		RefundAmount:     money.Zero(b.TotalPrice.Currency),
		CancellationFee:  b.TotalPrice,
		CanCancel:        false,
		Reason:           reason,
		HoursUntilStart:  hoursUntil,
	}
}
