package memory

import (
	"context"
	"sync"
	"time"

	"spacehub/internal/app/policies"
	"spacehub/internal/domain/shared/money"
)

// WalletEntry is one line of the in-memory wallet ledger.
type WalletEntry struct {
	UserID      string
	Amount      money.Money
	Description string
	At          time.Time
}

// Wallet is an in-memory wallet ledger used in development and tests.
type Wallet struct {
	mu      sync.RWMutex
	entries []WalletEntry
	Now     func() time.Time
}

func NewWallet() *Wallet {
	return &Wallet{}
}

var _ policies.WalletPort = (*Wallet)(nil)

func (w *Wallet) Refund(_ context.Context, userID string, amount money.Money, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now().UTC()
	if w.Now != nil {
		now = w.Now().UTC()
	}
	w.entries = append(w.entries, WalletEntry{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		At:          now,
	})
	return nil
}

// Balance sums ledger entries for a user.
func (w *Wallet) Balance(userID, currency string) money.Money {
	w.mu.RLock()
	defer w.mu.RUnlock()
	total := money.Zero(currency)
	for _, e := range w.entries {
		if e.UserID != userID {
			continue
		}
		if sum, err := total.Add(e.Amount); err == nil {
			total = sum
		}
	}
	return total
}

// Entries returns a copy of the ledger for a user.
func (w *Wallet) Entries(userID string) []WalletEntry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []WalletEntry
	for _, e := range w.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
