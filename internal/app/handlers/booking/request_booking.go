package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"spacehub/internal/app/dto"
	"spacehub/internal/app/handlers/support"
	"spacehub/internal/app/outbox"
	"spacehub/internal/app/policies"
	domainbooking "spacehub/internal/domain/booking"
	domainlistings "spacehub/internal/domain/listings"
)

var (
	ErrListingIDEmpty  = errors.New("booking: listing id required")
	ErrNoSessions      = errors.New("booking: at least one session required")
	ErrNoHours         = errors.New("booking: at least one hour slot required")
	ErrListingInactive = errors.New("booking: listing is not accepting bookings")
)

type RequestBookingCommand struct {
	ListingID    string
	ActingUserID string
	Sessions     []time.Time
	Hours        []int
	IdemKey      string
}

func (RequestBookingCommand) Key() string { return "booking.request" }

func (c RequestBookingCommand) Validate() error {
	if c.ListingID == "" {
		return ErrListingIDEmpty
	}
	if c.ActingUserID == "" {
		return ErrActorRequired
	}
	if len(c.Sessions) == 0 {
		return ErrNoSessions
	}
	if len(c.Hours) == 0 {
		return ErrNoHours
	}
	return nil
}

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdemKey }
func (RequestBookingCommand) ResultPrototype() any     { return &RequestBookingResult{} }

type RequestBookingResult struct {
	GroupID  string               `json:"group_id,omitempty"`
	Bookings []dto.BookingSummary `json:"bookings"`
}

// RequestBookingHandler creates one confirmed booking per requested session.
// Multi-session requests become a recurring series sharing a group id, which
// is what the aggregate cancellation flow later operates on. Payment is
// considered captured up front; bookings are born CONFIRMED and PAID.
type RequestBookingHandler struct {
	Pricing  policies.PricingPort
	Notifier policies.Notifier
	Outbox   outbox.Outbox
	Encoder  outbox.EventEncoder
	NewID    func() string
	Now      func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, err := support.UnitFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if listing.State != domainlistings.ListingActive {
		return nil, ErrListingInactive
	}

	quote, err := h.Pricing.Quote(ctx, listing, len(cmd.Hours))
	if err != nil {
		return nil, err
	}

	groupID := ""
	if len(cmd.Sessions) > 1 {
		groupID = h.newID()
	}

	summaries := make([]dto.BookingSummary, 0, len(cmd.Sessions))
	for _, startAt := range cmd.Sessions {
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:         domainbooking.BookingID(h.newID()),
			GroupID:    groupID,
			ListingID:  listing.ID,
			GuestID:    cmd.ActingUserID,
			StartAt:    startAt,
			Hours:      cmd.Hours,
			TotalPrice: quote.Total,
			ServiceFee: quote.ServiceFee,
			CreatedAt:  now,
		})
		if err != nil {
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return nil, err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, b.PendingEvents()); err != nil {
			return nil, err
		}
		b.ClearEvents()
		summaries = append(summaries, dto.BookingFromDomain(b))
	}

	h.Notifier.Notify(ctx, policies.Notification{
		UserID:   string(listing.Host),
		Type:     "booking",
		Title:    "New Booking",
		Message:  "Your space " + listing.Title + " has a new booking.",
		Severity: "info",
		Metadata: map[string]string{"listing_id": cmd.ListingID},
	})

	return &RequestBookingResult{GroupID: groupID, Bookings: summaries}, nil
}

func (h *RequestBookingHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}
