package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"spacehub/internal/domain/escrow"
)

// InboxStore deduplicates consumed events across restarts and rebalances.
type InboxStore interface {
	// MarkProcessed returns false when the event id was already recorded.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

type settlementEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		TransactionID string    `json:"transaction_id"`
		SettledAt     time.Time `json:"settled_at"`
	} `json:"data"`
}

// SettlementConsumer listens for settlement confirmations from the external
// escrow processor and marks the matching refund transactions settled.
type SettlementConsumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler *settlementHandler
	log     *slog.Logger
}

func NewSettlementConsumer(brokers []string, groupID string, topics []string, repo escrow.Repository, inbox InboxStore, log *slog.Logger) (*SettlementConsumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &SettlementConsumer{
		group:  group,
		topics: topics,
		handler: &settlementHandler{
			repo:  repo,
			inbox: inbox,
			log:   log,
		},
		log: log,
	}, nil
}

func (c *SettlementConsumer) Run(ctx context.Context) {
	for {
		if err := c.group.Consume(ctx, c.topics, c.handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			c.log.ErrorContext(ctx, "settlement consume failed", slog.Any("error", err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *SettlementConsumer) Close() error {
	return c.group.Close()
}

type settlementHandler struct {
	repo  escrow.Repository
	inbox InboxStore
	log   *slog.Logger
}

func (h *settlementHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *settlementHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *settlementHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		h.handle(session.Context(), msg)
		session.MarkMessage(msg, "")
	}
	return nil
}

func (h *settlementHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) {
	var env settlementEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		h.log.WarnContext(ctx, "unparseable settlement event",
			slog.String("topic", msg.Topic), slog.Any("error", err))
		return
	}
	if env.Type != "escrow.settled" {
		return
	}
	first, err := h.inbox.MarkProcessed(ctx, env.ID)
	if err != nil {
		h.log.ErrorContext(ctx, "settlement inbox check failed", slog.Any("error", err))
		return
	}
	if !first {
		return
	}
	settledAt := env.Data.SettledAt
	if settledAt.IsZero() {
		settledAt = msg.Timestamp
	}
	if err := h.repo.MarkSettled(ctx, env.Data.TransactionID, settledAt); err != nil {
		if errors.Is(err, escrow.ErrNotFound) {
			h.log.WarnContext(ctx, "settlement for unknown transaction",
				slog.String("transaction_id", env.Data.TransactionID))
			return
		}
		h.log.ErrorContext(ctx, "settlement update failed",
			slog.String("transaction_id", env.Data.TransactionID), slog.Any("error", err))
	}
}
