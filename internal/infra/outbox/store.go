package outbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "spacehub/internal/app/outbox"
)

const (
	statusNew     = "NEW"
	statusClaimed = "CLAIMED"
	statusSent    = "SENT"
	statusFailed  = "FAILED"
)

type record struct {
	ID         string            `bson:"_id"`
	Name       string            `bson:"name"`
	Payload    []byte            `bson:"payload"`
	Aggregate  string            `bson:"aggregate,omitempty"`
	Headers    map[string]string `bson:"headers,omitempty"`
	Status     string            `bson:"status"`
	Attempts   int               `bson:"attempts"`
	OccurredAt int64             `bson:"occurred_at"`
	ClaimedAt  int64             `bson:"claimed_at,omitempty"`
	SentAt     int64             `bson:"sent_at,omitempty"`
	LastError  string            `bson:"last_error,omitempty"`
}

// MongoStore is a transactional outbox table in mongo. Add inserts records as
// NEW; the worker claims and publishes them out of band, so Flush has nothing
// left to do.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("outbox")}
}

var _ appoutbox.Outbox = (*MongoStore)(nil)

func (s *MongoStore) Add(ctx context.Context, rec appoutbox.EventRecord) error {
	doc := record{
		ID:         rec.ID,
		Name:       rec.Name,
		Payload:    rec.Payload,
		Aggregate:  rec.Aggregate,
		Headers:    rec.Headers,
		Status:     statusNew,
		OccurredAt: rec.OccurredAt.UnixMilli(),
	}
	_, err := s.coll.InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) Flush(context.Context) error { return nil }

// Claim atomically marks up to limit NEW (or stale FAILED) records CLAIMED and
// returns them for publishing.
func (s *MongoStore) Claim(ctx context.Context, limit int) ([]appoutbox.EventRecord, error) {
	out := make([]appoutbox.EventRecord, 0, limit)
	for len(out) < limit {
		var doc record
		err := s.coll.FindOneAndUpdate(ctx,
			bson.M{"status": bson.M{"$in": bson.A{statusNew, statusFailed}}},
			bson.M{"$set": bson.M{
				"status":     statusClaimed,
				"claimed_at": time.Now().UnixMilli(),
			}},
			options.FindOneAndUpdate().
				SetSort(bson.D{{Key: "occurred_at", Value: 1}}).
				SetReturnDocument(options.After),
		).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, appoutbox.EventRecord{
			ID:         doc.ID,
			Name:       doc.Name,
			Payload:    doc.Payload,
			Aggregate:  doc.Aggregate,
			Headers:    doc.Headers,
			OccurredAt: time.UnixMilli(doc.OccurredAt).UTC(),
		})
	}
	return out, nil
}

func (s *MongoStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": statusSent, "sent_at": time.Now().UnixMilli()}})
	return err
}

func (s *MongoStore) MarkFailed(ctx context.Context, id string, cause error) error {
	set := bson.M{"status": statusFailed}
	if cause != nil {
		set["last_error"] = cause.Error()
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set, "$inc": bson.M{"attempts": 1}})
	return err
}
