package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spacehub/internal/app/dto"
	"spacehub/internal/app/handlers/support"
	"spacehub/internal/app/outbox"
	"spacehub/internal/app/policies"
	"spacehub/internal/app/uow"
	domainbooking "spacehub/internal/domain/booking"
	domainlistings "spacehub/internal/domain/listings"
	domainuser "spacehub/internal/domain/user"
)

var (
	ErrNotBookingOwner = errors.New("booking: only the guest who booked can cancel")
	ErrBookingIDEmpty  = errors.New("booking: booking id required")
	ErrActorRequired   = errors.New("booking: acting user required")
)

type CancelBookingCommand struct {
	BookingID    string
	ActingUserID string
	IdemKey      string
}

func (CancelBookingCommand) Key() string { return "booking.cancel" }

func (c CancelBookingCommand) Validate() error {
	if c.BookingID == "" {
		return ErrBookingIDEmpty
	}
	if c.ActingUserID == "" {
		return ErrActorRequired
	}
	return nil
}

func (c CancelBookingCommand) IdempotencyKey() string { return c.IdemKey }
func (CancelBookingCommand) ResultPrototype() any     { return &CancelBookingResult{} }

type CancelBookingResult struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Refund  dto.MoneyDTO       `json:"refund"`
	Booking dto.BookingSummary `json:"booking"`
}

// CancelBookingHandler cancels a single booking and moves the refund.
//
// The booking mutation is persisted through the ambient unit of work before
// any money movement starts. Escrow, wallet and balance-mirror failures do not
// roll it back: the booking stays cancelled and the caller gets an
// unsuccessful result telling them to contact support. Reconciling stranded
// refunds is an offline concern.
type CancelBookingHandler struct {
	Escrow   policies.EscrowPort
	Wallet   policies.WalletPort
	Notifier policies.Notifier
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	Log      *slog.Logger
	Now      func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.GuestID != cmd.ActingUserID {
		return nil, ErrNotBookingOwner
	}

	policy, err := listingPolicy(ctx, unit.Listings(), b.ListingID)
	if err != nil {
		return nil, err
	}

	quote := domainbooking.CalculateRefund(b, policy, now)
	if !quote.CanCancel {
		return &CancelBookingResult{
			Success: false,
			Message: quote.Reason,
			Refund:  dto.MoneyFromDomain(quote.RefundAmount),
			Booking: dto.BookingFromDomain(b),
		}, nil
	}

	b.ApplyCancellation(quote.Reason, cmd.ActingUserID, quote.RefundAmount, now)
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	if quote.RefundAmount.IsPositive() {
		description := fmt.Sprintf("Refund for booking %s", b.ID)
		if err := h.Escrow.RecordRefund(ctx, b, cmd.ActingUserID, quote.RefundAmount); err != nil {
			h.log().ErrorContext(ctx, "escrow refund record failed",
				slog.String("booking_id", string(b.ID)), slog.Any("error", err))
			return h.partialFailure(b), nil
		}
		if err := h.Wallet.Refund(ctx, b.GuestID, quote.RefundAmount, description); err != nil {
			h.log().ErrorContext(ctx, "wallet refund failed",
				slog.String("booking_id", string(b.ID)), slog.Any("error", err))
			return h.partialFailure(b), nil
		}
		if err := unit.Users().CreditBalance(ctx, domainuser.ID(b.GuestID), quote.RefundAmount); err != nil {
			h.log().ErrorContext(ctx, "wallet balance mirror update failed",
				slog.String("booking_id", string(b.ID)), slog.Any("error", err))
			return h.partialFailure(b), nil
		}
	}

	h.notifyGuest(ctx, b, quote)
	h.notifyHost(ctx, unit, b)

	return &CancelBookingResult{
		Success: true,
		Message: cancellationMessage(quote),
		Refund:  dto.MoneyFromDomain(quote.RefundAmount),
		Booking: dto.BookingFromDomain(b),
	}, nil
}

// listingPolicy resolves the raw listing policy tag. Bookings pointing at a
// deleted listing quote with the unspecified-policy fallback instead of failing.
func listingPolicy(ctx context.Context, repo domainlistings.Repository, id domainlistings.ListingID) (domainbooking.CancellationPolicy, error) {
	listing, err := repo.ByID(ctx, id)
	if errors.Is(err, domainlistings.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return domainbooking.ParsePolicy(listing.CancellationPolicy), nil
}

func (h *CancelBookingHandler) partialFailure(b *domainbooking.Booking) *CancelBookingResult {
	return &CancelBookingResult{
		Success: false,
		Message: "Booking was cancelled but refund processing failed. Please contact support.",
		Refund:  dto.MoneyFromDomain(b.RefundAmount),
		Booking: dto.BookingFromDomain(b),
	}
}

func (h *CancelBookingHandler) notifyGuest(ctx context.Context, b *domainbooking.Booking, quote domainbooking.CancellationResult) {
	h.Notifier.Notify(ctx, policies.Notification{
		UserID:   b.GuestID,
		Type:     "booking",
		Title:    "Booking Cancelled",
		Message:  cancellationMessage(quote),
		Severity: "info",
		Metadata: map[string]string{"booking_id": string(b.ID)},
	})
}

func (h *CancelBookingHandler) notifyHost(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) {
	listing, err := unit.Listings().ByID(ctx, b.ListingID)
	if err != nil {
		return
	}
	guestName := "A guest"
	if guest, err := unit.Users().ByID(ctx, domainuser.ID(b.GuestID)); err == nil && guest.Name != "" {
		guestName = guest.Name
	}
	h.Notifier.Notify(ctx, policies.Notification{
		UserID:   string(listing.Host),
		Type:     "booking",
		Title:    "Booking Cancelled",
		Message:  fmt.Sprintf("%s cancelled their booking for %s.", guestName, listing.Title),
		Severity: "info",
		Metadata: map[string]string{"booking_id": string(b.ID)},
	})
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CancelBookingHandler) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func cancellationMessage(quote domainbooking.CancellationResult) string {
	if quote.RefundAmount.IsPositive() {
		return fmt.Sprintf("Booking cancelled. $%s has been refunded to your wallet.", quote.RefundAmount.Decimal())
	}
	return "Booking cancelled. No refund was issued."
}
