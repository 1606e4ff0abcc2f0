package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// InboxStore records processed event ids so redelivered broker messages are
// applied once.
type InboxStore struct {
	coll *mongo.Collection
}

func NewInboxStore(db *mongo.Database) *InboxStore {
	return &InboxStore{coll: db.Collection(collInbox)}
}

func (s *InboxStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	_, err := s.coll.InsertOne(ctx, map[string]any{
		"_id":          eventID,
		"processed_at": time.Now().UnixMilli(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
