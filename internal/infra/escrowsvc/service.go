package escrowsvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"spacehub/internal/app/policies"
	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/escrow"
	"spacehub/internal/domain/shared/money"
)

// Service adapts the escrow transaction repository to the refund port. Refund
// records are written as RECORDED; the external processor confirms settlement
// asynchronously over the broker.
type Service struct {
	Repo  escrow.Repository
	NewID func() string
	Now   func() time.Time
}

func New(repo escrow.Repository) *Service {
	return &Service{Repo: repo}
}

var _ policies.EscrowPort = (*Service)(nil)

func (s *Service) RecordRefund(ctx context.Context, b *booking.Booking, actingUserID string, amount money.Money) error {
	tx, err := escrow.NewRefund(s.newID(), b.ID, actingUserID, amount, "Cancellation refund", s.now())
	if err != nil {
		return err
	}
	return s.Repo.Append(ctx, tx)
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
