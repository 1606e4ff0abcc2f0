package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacehub/internal/infra/notify"
)

type notificationDocument struct {
	ID             string            `bson:"_id"`
	UserID         string            `bson:"user_id"`
	Type           string            `bson:"type"`
	Title          string            `bson:"title"`
	Message        string            `bson:"message"`
	Severity       string            `bson:"severity,omitempty"`
	ActionRequired bool              `bson:"action_required"`
	Metadata       map[string]string `bson:"metadata,omitempty"`
	Read           bool              `bson:"read"`
	CreatedAt      int64             `bson:"created_at"`
}

type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(collNotifications)}
}

func (s *NotificationStore) Append(ctx context.Context, rec notify.Record) error {
	doc := notificationDocument{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Type:           rec.Type,
		Title:          rec.Title,
		Message:        rec.Message,
		Severity:       rec.Severity,
		ActionRequired: rec.ActionRequired,
		Metadata:       rec.Metadata,
		Read:           rec.Read,
		CreatedAt:      rec.CreatedAt.UnixMilli(),
	}
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, limit int) ([]notify.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []notify.Record
	for cursor.Next(ctx) {
		var doc notificationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, notify.Record{
			ID:             doc.ID,
			UserID:         doc.UserID,
			Type:           doc.Type,
			Title:          doc.Title,
			Message:        doc.Message,
			Severity:       doc.Severity,
			ActionRequired: doc.ActionRequired,
			Metadata:       doc.Metadata,
			Read:           doc.Read,
			CreatedAt:      time.UnixMilli(doc.CreatedAt).UTC(),
		})
	}
	return out, cursor.Err()
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	return err
}
