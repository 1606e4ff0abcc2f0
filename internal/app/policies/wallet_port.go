package policies

import (
	"context"

	"spacehub/internal/domain/shared/money"
)

// WalletPort credits refunds to a user's in-app wallet ledger.
type WalletPort interface {
	Refund(ctx context.Context, userID string, amount money.Money, description string) error
}
