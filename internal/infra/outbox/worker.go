package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	appoutbox "spacehub/internal/app/outbox"
)

const eventSource = "app://spacehub"

// Publisher sends one envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// ClaimStore is the worker's view of the outbox table.
type ClaimStore interface {
	Claim(ctx context.Context, limit int) ([]appoutbox.EventRecord, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, cause error) error
}

// envelope is a CloudEvents-shaped wrapper around the domain event payload.
type envelope struct {
	SpecVersion string          `json:"specversion"`
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	Type        string          `json:"type"`
	Subject     string          `json:"subject,omitempty"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

// Worker drains the outbox to the broker. One claim batch per tick; publish
// failures are marked FAILED and retried after the backoff via re-claim.
type Worker struct {
	Store        ClaimStore
	Publisher    Publisher
	TopicPrefix  string
	PollInterval time.Duration
	BatchSize    int
	Log          *slog.Logger
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	batch := w.BatchSize
	if batch <= 0 {
		batch = 50
	}
	records, err := w.Store.Claim(ctx, batch)
	if err != nil {
		w.log().ErrorContext(ctx, "outbox claim failed", slog.Any("error", err))
		return
	}
	for _, rec := range records {
		if err := w.publish(ctx, rec); err != nil {
			w.log().ErrorContext(ctx, "outbox publish failed",
				slog.String("event_id", rec.ID),
				slog.String("event", rec.Name),
				slog.Any("error", err))
			if markErr := w.Store.MarkFailed(ctx, rec.ID, err); markErr != nil {
				w.log().ErrorContext(ctx, "outbox mark failed errored", slog.Any("error", markErr))
			}
			continue
		}
		if err := w.Store.MarkSent(ctx, rec.ID); err != nil {
			w.log().ErrorContext(ctx, "outbox mark sent errored", slog.Any("error", err))
		}
	}
}

func (w *Worker) publish(ctx context.Context, rec appoutbox.EventRecord) error {
	env := envelope{
		SpecVersion: "1.0",
		ID:          rec.ID,
		Source:      eventSource,
		Type:        rec.Name,
		Subject:     rec.Aggregate,
		Time:        rec.OccurredAt,
		Data:        rec.Payload,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return w.Publisher.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, payload)
}

// topicFor maps "booking.cancelled" to "<prefix>.booking".
func (w *Worker) topicFor(eventName string) string {
	domain := eventName
	if i := strings.Index(eventName, "."); i > 0 {
		domain = eventName[:i]
	}
	if w.TopicPrefix == "" {
		return domain
	}
	return w.TopicPrefix + "." + domain
}

func (w *Worker) log() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return slog.Default()
}
