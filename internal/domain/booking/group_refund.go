package booking

import (
	"sort"
	"time"

	"spacehub/internal/domain/shared/money"
)

// CalculateGroupRefund quotes the cancellation of a recurring series as one
// aggregated operation. The timing decision is made once from the earliest
// booking; later members do not shift the policy tier.
//
// Unlike the single-booking calculator, the aggregate formula applies the flat
// percentage to the full group total without carving out per-booking service
// fees. The asymmetry is kept on purpose; callers that want per-booking fee
// treatment should quote members individually.
func CalculateGroupRefund(bookings []*Booking, policy CancellationPolicy, now time.Time) (GroupCancellationResult, error) {
	if len(bookings) == 0 {
		return GroupCancellationResult{
			CancellationResult: CancellationResult{
				Reason: "No bookings to cancel",
			},
		}, nil
	}

	ordered := append([]*Booking(nil), bookings...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartAt.Before(ordered[j].StartAt)
	})
	reference := ordered[0]

	quote := CalculateRefund(reference, policy, now)

	total := money.Zero(reference.TotalPrice.Currency)
	for _, b := range ordered {
		sum, err := total.Add(b.TotalPrice)
		if err != nil {
			return GroupCancellationResult{}, err
		}
		total = sum
	}

	refund := total.Percent(quote.RefundPercentage)
	fee, err := total.Sub(refund)
	if err != nil {
		return GroupCancellationResult{}, err
	}

	quote.RefundAmount = refund
	quote.CancellationFee = fee
	return GroupCancellationResult{
		CancellationResult:  quote,
		TotalOriginalAmount: total,
	}, nil
}

// CancellableMembers filters a series down to the bookings that can still be
// cancelled alongside the primary one: same guest and listing, not already
// terminal, and not in the past.
func CancellableMembers(primary *Booking, group []*Booking, now time.Time) []*Booking {
	members := make([]*Booking, 0, len(group))
	for _, b := range group {
		if b.GuestID != primary.GuestID || b.ListingID != primary.ListingID {
			continue
		}
		if b.Status.IsTerminal() {
			continue
		}
		if b.StartAt.Before(now) {
			continue
		}
		members = append(members, b)
	}
	return members
}
