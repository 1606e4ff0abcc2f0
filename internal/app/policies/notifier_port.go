package policies

import "context"

// Notification is a user-facing in-app message.
type Notification struct {
	UserID         string
	Type           string
	Title          string
	Message        string
	Severity       string
	ActionRequired bool
	Metadata       map[string]string
}

// Notifier delivers notifications fire-and-forget; implementations absorb and
// log delivery failures rather than surfacing them to callers.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
