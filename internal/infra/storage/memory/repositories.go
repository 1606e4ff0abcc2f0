package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/escrow"
	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/shared/money"
	"spacehub/internal/domain/user"
)

var ErrConcurrentUpdate = errors.New("memory: concurrent update")

// BookingRepository is an in-memory booking store with optimistic locking,
// used for local development and tests.
type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[booking.BookingID]*booking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[booking.BookingID]*booking.Booking)}
}

func (r *BookingRepository) ByID(_ context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, exists := r.bookings[b.ID]
	if exists && current.Version != b.Version {
		return ErrConcurrentUpdate
	}
	stored := cloneBooking(b)
	stored.Version++
	r.bookings[b.ID] = stored
	b.Version = stored.Version
	return nil
}

func (r *BookingRepository) ListByGuest(_ context.Context, guestID string) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByGroup(_ context.Context, groupID string) ([]*booking.Booking, error) {
	if groupID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.GroupID == groupID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	clone := *b
	clone.Hours = append([]int(nil), b.Hours...)
	clone.EventRecorder = b.EventRecorder
	return &clone
}

type ListingRepository struct {
	mu       sync.RWMutex
	listings map[listings.ListingID]*listings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{listings: make(map[listings.ListingID]*listings.Listing)}
}

func (r *ListingRepository) ByID(_ context.Context, id listings.ListingID) (*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, listings.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *ListingRepository) Save(_ context.Context, l *listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, exists := r.listings[l.ID]
	if exists && current.Version != l.Version {
		return ErrConcurrentUpdate
	}
	clone := *l
	clone.Version++
	r.listings[l.ID] = &clone
	l.Version = clone.Version
	return nil
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[user.ID]*user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[user.ID]*user.User)}
}

func (r *UserRepository) ByID(_ context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) Save(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *UserRepository) CreditBalance(_ context.Context, id user.ID, amount money.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	updated, err := u.WalletBalance.Add(amount)
	if err != nil {
		return err
	}
	u.WalletBalance = updated
	u.UpdatedAt = time.Now().UTC()
	return nil
}

type EscrowRepository struct {
	mu  sync.RWMutex
	txs []*escrow.Transaction
}

func NewEscrowRepository() *EscrowRepository {
	return &EscrowRepository{}
}

func (r *EscrowRepository) Append(_ context.Context, tx *escrow.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *tx
	r.txs = append(r.txs, &clone)
	return nil
}

func (r *EscrowRepository) ListByBooking(_ context.Context, id booking.BookingID) ([]*escrow.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*escrow.Transaction
	for _, tx := range r.txs {
		if tx.BookingID == id {
			clone := *tx
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *EscrowRepository) MarkSettled(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ID == id {
			tx.Status = escrow.StatusSettled
			tx.SettledAt = at.UTC()
			return nil
		}
	}
	return escrow.ErrNotFound
}
