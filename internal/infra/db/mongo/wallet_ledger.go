package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"spacehub/internal/app/policies"
	"spacehub/internal/domain/shared/money"
)

type walletEntryDocument struct {
	ID          string `bson:"_id"`
	UserID      string `bson:"user_id"`
	Kind        string `bson:"kind"`
	AmountCents int64  `bson:"amount_cents"`
	Currency    string `bson:"currency"`
	Description string `bson:"description,omitempty"`
	CreatedAt   int64  `bson:"created_at"`
}

// WalletLedger is an append-only credit ledger backing the wallet port.
type WalletLedger struct {
	coll *mongo.Collection
}

func NewWalletLedger(db *mongo.Database) *WalletLedger {
	return &WalletLedger{coll: db.Collection("wallet_ledger")}
}

var _ policies.WalletPort = (*WalletLedger)(nil)

func (w *WalletLedger) Refund(ctx context.Context, userID string, amount money.Money, description string) error {
	_, err := w.coll.InsertOne(ctx, walletEntryDocument{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        "REFUND",
		AmountCents: amount.Amount,
		Currency:    amount.Currency,
		Description: description,
		CreatedAt:   time.Now().UnixMilli(),
	})
	return err
}
