package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"spacehub/internal/app/dto"
	"spacehub/internal/app/handlers/support"
	"spacehub/internal/app/outbox"
	"spacehub/internal/app/policies"
	"spacehub/internal/app/uow"
	domainbooking "spacehub/internal/domain/booking"
	domainuser "spacehub/internal/domain/user"
)

var ErrGroupIDEmpty = errors.New("booking: group id required")

type CancelGroupCommand struct {
	GroupID      string
	ActingUserID string
	IdemKey      string
}

func (CancelGroupCommand) Key() string { return "booking.cancel_group" }

func (c CancelGroupCommand) Validate() error {
	if c.GroupID == "" {
		return ErrGroupIDEmpty
	}
	if c.ActingUserID == "" {
		return ErrActorRequired
	}
	return nil
}

func (c CancelGroupCommand) IdempotencyKey() string { return c.IdemKey }
func (CancelGroupCommand) ResultPrototype() any     { return &CancelGroupResult{} }

type CancelGroupResult struct {
	Success        bool         `json:"success"`
	Message        string       `json:"message"`
	CancelledCount int          `json:"cancelled_count"`
	Refund         dto.MoneyDTO `json:"refund"`
	Total          dto.MoneyDTO `json:"total_original_amount"`
}

// CancelGroupHandler cancels every still-cancellable member of a recurring
// series in one operation. The refund is quoted from the earliest member,
// applied to the group total, and moved once: a single escrow record keyed to
// the primary booking plus a single wallet credit. Members that are already
// terminal or in the past are silently skipped.
type CancelGroupHandler struct {
	Escrow   policies.EscrowPort
	Wallet   policies.WalletPort
	Notifier policies.Notifier
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Log      *slog.Logger
	Now      func() time.Time
}

func (h *CancelGroupHandler) Handle(ctx context.Context, cmd CancelGroupCommand) (*CancelGroupResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()

	group, err := unit.Bookings().ListByGroup(ctx, cmd.GroupID)
	if err != nil {
		return nil, err
	}
	primary := earliestOwnedBy(group, cmd.ActingUserID)
	if primary == nil {
		return nil, domainbooking.ErrBookingNotFound
	}

	policy, err := listingPolicy(ctx, unit.Listings(), primary.ListingID)
	if err != nil {
		return nil, err
	}

	members := domainbooking.CancellableMembers(primary, group, now)
	quote, err := domainbooking.CalculateGroupRefund(members, policy, now)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 || !quote.CanCancel {
		return &CancelGroupResult{
			Success: false,
			Message: quote.Reason,
			Refund:  dto.MoneyFromDomain(quote.RefundAmount),
			Total:   dto.MoneyFromDomain(quote.TotalOriginalAmount),
		}, nil
	}

	refunded := quote.RefundAmount.IsPositive()
	for _, member := range members {
		member.ApplySeriesCancellation(quote.Reason, cmd.ActingUserID, refunded, now)
		if err := unit.Bookings().Save(ctx, member); err != nil {
			return nil, err
		}
	}
	primary.Record(domainbooking.SeriesCancelled{
		PrimaryBookingID: primary.ID,
		GroupID:          cmd.GroupID,
		GuestID:          primary.GuestID,
		Members:          len(members),
		Refund:           quote.RefundAmount,
		Reason:           quote.Reason,
		At:               now,
	})
	for _, member := range members {
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, member.PendingEvents()); err != nil {
			return nil, err
		}
		member.ClearEvents()
	}
	// The primary may itself be outside the cancellable set; drain it too.
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, primary.PendingEvents()); err != nil {
		return nil, err
	}
	primary.ClearEvents()

	if refunded {
		description := fmt.Sprintf("Refund for %d cancelled bookings in series %s", len(members), cmd.GroupID)
		if err := h.Escrow.RecordRefund(ctx, primary, cmd.ActingUserID, quote.RefundAmount); err != nil {
			h.log().ErrorContext(ctx, "escrow series refund record failed",
				slog.String("group_id", cmd.GroupID), slog.Any("error", err))
			return h.partialFailure(len(members), quote), nil
		}
		if err := h.Wallet.Refund(ctx, primary.GuestID, quote.RefundAmount, description); err != nil {
			h.log().ErrorContext(ctx, "wallet series refund failed",
				slog.String("group_id", cmd.GroupID), slog.Any("error", err))
			return h.partialFailure(len(members), quote), nil
		}
		if err := unit.Users().CreditBalance(ctx, domainuser.ID(primary.GuestID), quote.RefundAmount); err != nil {
			h.log().ErrorContext(ctx, "wallet balance mirror update failed",
				slog.String("group_id", cmd.GroupID), slog.Any("error", err))
			return h.partialFailure(len(members), quote), nil
		}
	}

	message := seriesMessage(len(members), quote)
	h.Notifier.Notify(ctx, policies.Notification{
		UserID:   primary.GuestID,
		Type:     "booking",
		Title:    "Series Booking Cancelled",
		Message:  message,
		Severity: "info",
		Metadata: map[string]string{"group_id": cmd.GroupID},
	})
	h.notifyHost(ctx, unit, primary, len(members))

	return &CancelGroupResult{
		Success:        true,
		Message:        message,
		CancelledCount: len(members),
		Refund:         dto.MoneyFromDomain(quote.RefundAmount),
		Total:          dto.MoneyFromDomain(quote.TotalOriginalAmount),
	}, nil
}

func (h *CancelGroupHandler) notifyHost(ctx context.Context, unit uow.UnitOfWork, primary *domainbooking.Booking, count int) {
	listing, err := unit.Listings().ByID(ctx, primary.ListingID)
	if err != nil {
		return
	}
	guestName := "A guest"
	if guest, err := unit.Users().ByID(ctx, domainuser.ID(primary.GuestID)); err == nil && guest.Name != "" {
		guestName = guest.Name
	}
	h.Notifier.Notify(ctx, policies.Notification{
		UserID:   string(listing.Host),
		Type:     "booking",
		Title:    "Series Booking Cancelled",
		Message:  fmt.Sprintf("%s cancelled %d bookings for %s.", guestName, count, listing.Title),
		Severity: "info",
		Metadata: map[string]string{
			"booking_id": string(primary.ID),
			"group_id":   primary.GroupID,
		},
	})
}

func (h *CancelGroupHandler) partialFailure(count int, quote domainbooking.GroupCancellationResult) *CancelGroupResult {
	return &CancelGroupResult{
		Success:        false,
		Message:        "Bookings were cancelled but refund processing failed. Please contact support.",
		CancelledCount: count,
		Refund:         dto.MoneyFromDomain(quote.RefundAmount),
		Total:          dto.MoneyFromDomain(quote.TotalOriginalAmount),
	}
}

func (h *CancelGroupHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CancelGroupHandler) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func earliestOwnedBy(group []*domainbooking.Booking, guestID string) *domainbooking.Booking {
	owned := make([]*domainbooking.Booking, 0, len(group))
	for _, b := range group {
		if b.GuestID == guestID {
			owned = append(owned, b)
		}
	}
	if len(owned) == 0 {
		return nil
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].StartAt.Before(owned[j].StartAt) })
	return owned[0]
}

func seriesMessage(count int, quote domainbooking.GroupCancellationResult) string {
	if quote.RefundAmount.IsPositive() {
		return fmt.Sprintf("%d bookings cancelled. $%s has been refunded to your wallet.", count, quote.RefundAmount.Decimal())
	}
	return fmt.Sprintf("%d bookings cancelled. No refund was issued.", count)
}
