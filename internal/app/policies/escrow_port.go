package policies

import (
	"context"

	domainbooking "spacehub/internal/domain/booking"
	"spacehub/internal/domain/shared/money"
)

// EscrowPort records auditable money-movement transactions with the escrow
// service that holds booking funds.
type EscrowPort interface {
	RecordRefund(ctx context.Context, b *domainbooking.Booking, actingUserID string, amount money.Money) error
}
