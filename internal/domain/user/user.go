package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"spacehub/internal/domain/shared/money"
)

var (
	ErrIDRequired    = errors.New("user: id is required")
	ErrEmailRequired = errors.New("user: email is required")
	ErrNameRequired  = errors.New("user: name is required")
	ErrNotFound      = errors.New("user: not found")
)

type ID string

// User carries profile data plus the stored wallet balance mirror that the
// cancellation flow keeps in sync with the wallet ledger.
type User struct {
	ID            ID
	Email         string
	Name          string
	WalletBalance money.Money
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	Save(ctx context.Context, user *User) error
	// CreditBalance atomically adds amount to the user's wallet balance mirror.
	CreditBalance(ctx context.Context, id ID, amount money.Money) error
}

type CreateParams struct {
	ID       ID
	Email    string
	Name     string
	Currency string
	Now      time.Time
}

func New(params CreateParams) (*User, error) {
	if params.ID == "" {
		return nil, ErrIDRequired
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	now := params.Now.UTC()
	return &User{
		ID:            params.ID,
		Email:         email,
		Name:          params.Name,
		WalletBalance: money.Zero(currency),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
