package booking

import (
	"context"
	"errors"
	"time"

	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/shared/events"
	"spacehub/internal/domain/shared/money"
)

var (
	ErrGuestRequired   = errors.New("booking: guest id required")
	ErrStartRequired   = errors.New("booking: start time required")
	ErrInvalidPrice    = errors.New("booking: total must be positive")
	ErrServiceFee      = errors.New("booking: service fee cannot exceed total price")
	ErrFeeCurrency     = errors.New("booking: service fee currency must match total price")
	ErrBookingNotFound = errors.New("booking: not found")
)

type BookingID string

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusStarted   BookingStatus = "STARTED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusReserved  BookingStatus = "RESERVED"
)

// IsTerminal reports whether the status admits no further cancellation.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Booking is a reservation of a space for a start instant and a set of
// hour-of-day slots. TotalPrice includes the guest service fee; ServiceFee is
// the sub-amount that stays fully refundable regardless of policy outcome.
type Booking struct {
	ID         BookingID
	GroupID    string
	ListingID  listings.ListingID
	GuestID    string
	StartAt    time.Time
	Hours      []int
	TotalPrice money.Money
	ServiceFee money.Money
	Status     BookingStatus

	PaymentStatus      PaymentStatus
	CancellationReason string
	CancelledAt        time.Time
	CancelledBy        string
	RefundAmount       money.Money
	RefundProcessed    bool

	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByGroup(ctx context.Context, groupID string) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	GroupID    string
	ListingID  listings.ListingID
	GuestID    string
	StartAt    time.Time
	Hours      []int
	TotalPrice money.Money
	ServiceFee money.Money
	CreatedAt  time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if params.StartAt.IsZero() {
		return nil, ErrStartRequired
	}
	if params.TotalPrice.Amount <= 0 {
		return nil, ErrInvalidPrice
	}
	if params.ServiceFee.Amount > params.TotalPrice.Amount {
		return nil, ErrServiceFee
	}
	if params.ServiceFee.Currency != "" && params.ServiceFee.Currency != params.TotalPrice.Currency {
		return nil, ErrFeeCurrency
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		GroupID:       params.GroupID,
		ListingID:     params.ListingID,
		GuestID:       params.GuestID,
		StartAt:       params.StartAt.UTC(),
		Hours:         append([]int(nil), params.Hours...),
		TotalPrice:    params.TotalPrice,
		ServiceFee:    params.ServiceFee,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		GroupID:    b.GroupID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		StartAt:    b.StartAt,
		TotalPrice: b.TotalPrice,
		At:         now,
	})
	return b, nil
}

// ApplyCancellation marks the booking cancelled and records the refund
// bookkeeping. Eligibility is decided upfront by CalculateRefund; this method
// does not re-validate and the RefundProcessed flag is derived from the refund
// amount, not from the outcome of downstream money movement.
func (b *Booking) ApplyCancellation(reason, cancelledBy string, refund money.Money, now time.Time) {
	now = now.UTC()
	b.Status = StatusCancelled
	b.CancellationReason = reason
	b.CancelledAt = now
	b.CancelledBy = cancelledBy
	b.RefundAmount = refund
	b.RefundProcessed = refund.IsPositive()
	if refund.IsPositive() {
		b.PaymentStatus = PaymentRefunded
	}
	b.UpdatedAt = now
	b.Record(BookingCancelled{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Refund:    refund,
		Reason:    reason,
		At:        now,
	})
}

// ApplySeriesCancellation cancels one member of a recurring series. Per-member
// refund amounts are not tracked; the aggregate refund is recorded once against
// the primary booking by the caller.
func (b *Booking) ApplySeriesCancellation(reason, cancelledBy string, refunded bool, now time.Time) {
	now = now.UTC()
	b.Status = StatusCancelled
	b.CancellationReason = reason
	b.CancelledAt = now
	b.CancelledBy = cancelledBy
	b.RefundAmount = money.Zero(b.TotalPrice.Currency)
	b.RefundProcessed = refunded
	if refunded {
		b.PaymentStatus = PaymentRefunded
	}
	b.UpdatedAt = now
	b.Record(BookingCancelled{
		BookingID: b.ID,
		GuestID:   b.GuestID,
		Refund:    b.RefundAmount,
		Reason:    reason,
		At:        now,
	})
}

func (b *Booking) Start(now time.Time) error {
	if b.Status != StatusConfirmed && b.Status != StatusReserved {
		return errors.New("booking: invalid state transition")
	}
	b.Status = StatusStarted
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusStarted {
		return errors.New("booking: invalid state transition")
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	return nil
}
