package escrow

import (
	"context"
	"errors"
	"time"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/shared/money"
)

var (
	ErrAmountRequired  = errors.New("escrow: amount must be positive")
	ErrBookingRequired = errors.New("escrow: booking id required")
	ErrNotFound        = errors.New("escrow: transaction not found")
)

type TransactionKind string

const (
	KindPayment TransactionKind = "PAYMENT"
	KindRefund  TransactionKind = "REFUND"
)

type TransactionStatus string

const (
	StatusRecorded TransactionStatus = "RECORDED"
	StatusSettled  TransactionStatus = "SETTLED"
)

// Transaction is the auditable record the escrow service keeps for every money
// movement against a booking.
type Transaction struct {
	ID          string
	BookingID   booking.BookingID
	UserID      string
	Kind        TransactionKind
	Status      TransactionStatus
	Amount      money.Money
	Description string
	CreatedAt   time.Time
	SettledAt   time.Time
}

type Repository interface {
	Append(ctx context.Context, tx *Transaction) error
	ListByBooking(ctx context.Context, id booking.BookingID) ([]*Transaction, error)
	// MarkSettled records external settlement confirmation for a transaction.
	MarkSettled(ctx context.Context, id string, at time.Time) error
}

func NewRefund(id string, bookingID booking.BookingID, userID string, amount money.Money, description string, now time.Time) (*Transaction, error) {
	if bookingID == "" {
		return nil, ErrBookingRequired
	}
	if !amount.IsPositive() {
		return nil, ErrAmountRequired
	}
	return &Transaction{
		ID:          id,
		BookingID:   bookingID,
		UserID:      userID,
		Kind:        KindRefund,
		Status:      StatusRecorded,
		Amount:      amount,
		Description: description,
		CreatedAt:   now.UTC(),
	}, nil
}
