package me

import (
	"context"
	"sort"

	"spacehub/internal/app/dto"
	"spacehub/internal/app/handlers/support"
	"spacehub/internal/app/uow"
)

type ListMyBookingsQuery struct {
	GuestID string
}

func (ListMyBookingsQuery) Key() string { return "me.bookings" }

// ListMyBookingsHandler returns the guest's bookings newest start first, the
// shape the dashboard renders with per-booking cancel affordances.
type ListMyBookingsHandler struct {
	UoW uow.UoWFactory
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) ([]dto.BookingSummary, error) {
	unit, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoW)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	bookings, err := unit.Bookings().ListByGuest(ctx, q.GuestID)
	if err != nil {
		return nil, err
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartAt.After(bookings[j].StartAt)
	})
	out := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, dto.BookingFromDomain(b))
	}
	return out, nil
}
