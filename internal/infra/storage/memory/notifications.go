package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"spacehub/internal/infra/notify"
)

var ErrNotificationNotFound = errors.New("memory: notification not found")

// NotificationStore keeps in-app notifications per user.
type NotificationStore struct {
	mu      sync.RWMutex
	records []notify.Record
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

func (s *NotificationStore) Append(_ context.Context, rec notify.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *NotificationStore) ListByUser(_ context.Context, userID string, limit int) ([]notify.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []notify.Record
	for _, rec := range s.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}
