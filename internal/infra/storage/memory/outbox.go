package memory

import (
	"context"
	"sync"

	"spacehub/internal/app/outbox"
)

// Outbox buffers event records until Flush copies them to the published log.
// Tests read Published to assert on emitted events.
type Outbox struct {
	mu        sync.Mutex
	pending   []outbox.EventRecord
	published []outbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(_ context.Context, record outbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published = append(o.published, o.pending...)
	o.pending = nil
	return nil
}

func (o *Outbox) Published() []outbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]outbox.EventRecord(nil), o.published...)
}
