package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spacehub/internal/app/policies"
)

// Record is a stored in-app notification.
type Record struct {
	ID             string
	UserID         string
	Type           string
	Title          string
	Message        string
	Severity       string
	ActionRequired bool
	Metadata       map[string]string
	Read           bool
	CreatedAt      time.Time
}

type Store interface {
	Append(ctx context.Context, rec Record) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	MarkRead(ctx context.Context, id string) error
}

// InApp persists notifications to the store. Delivery is fire-and-forget;
// store failures are logged and swallowed so they never fail the business
// operation that triggered them.
type InApp struct {
	Store Store
	Log   *slog.Logger
	NewID func() string
	Now   func() time.Time
}

func NewInApp(store Store, log *slog.Logger) *InApp {
	return &InApp{Store: store, Log: log}
}

var _ policies.Notifier = (*InApp)(nil)

func (n *InApp) Notify(ctx context.Context, notification policies.Notification) {
	rec := Record{
		ID:             n.newID(),
		UserID:         notification.UserID,
		Type:           notification.Type,
		Title:          notification.Title,
		Message:        notification.Message,
		Severity:       notification.Severity,
		ActionRequired: notification.ActionRequired,
		Metadata:       notification.Metadata,
		CreatedAt:      n.now(),
	}
	if err := n.Store.Append(ctx, rec); err != nil {
		n.log().WarnContext(ctx, "notification delivery failed",
			slog.String("user_id", notification.UserID),
			slog.String("title", notification.Title),
			slog.Any("error", err))
	}
}

func (n *InApp) newID() string {
	if n.NewID != nil {
		return n.NewID()
	}
	return uuid.NewString()
}

func (n *InApp) now() time.Time {
	if n.Now != nil {
		return n.Now().UTC()
	}
	return time.Now().UTC()
}

func (n *InApp) log() *slog.Logger {
	if n.Log != nil {
		return n.Log
	}
	return slog.Default()
}
