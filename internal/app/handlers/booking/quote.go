package booking

import (
	"context"
	"time"

	"spacehub/internal/app/dto"
	"spacehub/internal/app/handlers/support"
	"spacehub/internal/app/uow"
	domainbooking "spacehub/internal/domain/booking"
)

type GetCancellationQuoteQuery struct {
	BookingID    string
	ActingUserID string
	At           time.Time
}

func (GetCancellationQuoteQuery) Key() string { return "booking.cancellation_quote" }

func (q GetCancellationQuoteQuery) Validate() error {
	if q.BookingID == "" {
		return ErrBookingIDEmpty
	}
	if q.ActingUserID == "" {
		return ErrActorRequired
	}
	return nil
}

// GetCancellationQuoteHandler computes the refund preview a guest sees before
// confirming a cancellation. The quote is never persisted; clients requote if
// the dialog stays open across a policy threshold.
type GetCancellationQuoteHandler struct {
	UoW uow.UoWFactory
	Now func() time.Time
}

func (h *GetCancellationQuoteHandler) Handle(ctx context.Context, q GetCancellationQuoteQuery) (dto.CancellationQuote, error) {
	unit, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return dto.CancellationQuote{}, err
	}
	defer cleanup()

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.CancellationQuote{}, err
	}
	if b.GuestID != q.ActingUserID {
		return dto.CancellationQuote{}, ErrNotBookingOwner
	}
	policy, err := listingPolicy(ctx, unit.Listings(), b.ListingID)
	if err != nil {
		return dto.CancellationQuote{}, err
	}

	result := domainbooking.CalculateRefund(b, policy, h.at(q.At))
	return dto.QuoteFromResult(q.BookingID, result), nil
}

func (h *GetCancellationQuoteHandler) at(requested time.Time) time.Time {
	if !requested.IsZero() {
		return requested.UTC()
	}
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type GetGroupCancellationQuoteQuery struct {
	GroupID      string
	ActingUserID string
	At           time.Time
}

func (GetGroupCancellationQuoteQuery) Key() string { return "booking.group_cancellation_quote" }

func (q GetGroupCancellationQuoteQuery) Validate() error {
	if q.GroupID == "" {
		return ErrGroupIDEmpty
	}
	if q.ActingUserID == "" {
		return ErrActorRequired
	}
	return nil
}

// GetGroupCancellationQuoteHandler previews the aggregate refund for cancelling
// a whole recurring series.
type GetGroupCancellationQuoteHandler struct {
	UoW uow.UoWFactory
	Now func() time.Time
}

func (h *GetGroupCancellationQuoteHandler) Handle(ctx context.Context, q GetGroupCancellationQuoteQuery) (dto.GroupCancellationQuote, error) {
	unit, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return dto.GroupCancellationQuote{}, err
	}
	defer cleanup()

	group, err := unit.Bookings().ListByGroup(ctx, q.GroupID)
	if err != nil {
		return dto.GroupCancellationQuote{}, err
	}
	now := h.at(q.At)
	primary := earliestOwnedBy(group, q.ActingUserID)
	if primary == nil {
		return dto.GroupCancellationQuote{}, domainbooking.ErrBookingNotFound
	}
	policy, err := listingPolicy(ctx, unit.Listings(), primary.ListingID)
	if err != nil {
		return dto.GroupCancellationQuote{}, err
	}

	members := domainbooking.CancellableMembers(primary, group, now)
	result, err := domainbooking.CalculateGroupRefund(members, policy, now)
	if err != nil {
		return dto.GroupCancellationQuote{}, err
	}
	return dto.GroupQuoteFromResult(q.GroupID, len(members), result), nil
}

func (h *GetGroupCancellationQuoteHandler) at(requested time.Time) time.Time {
	if !requested.IsZero() {
		return requested.UTC()
	}
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
