package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/escrow"
	"spacehub/internal/domain/shared/money"
)

type escrowDocument struct {
	ID          string `bson:"_id"`
	BookingID   string `bson:"booking_id"`
	UserID      string `bson:"user_id"`
	Kind        string `bson:"kind"`
	Status      string `bson:"status"`
	AmountCents int64  `bson:"amount_cents"`
	Currency    string `bson:"currency"`
	Description string `bson:"description,omitempty"`
	CreatedAt   int64  `bson:"created_at"`
	SettledAt   int64  `bson:"settled_at,omitempty"`
}

type EscrowRepository struct {
	coll *mongo.Collection
}

func NewEscrowRepository(db *mongo.Database) *EscrowRepository {
	return &EscrowRepository{coll: db.Collection(collEscrow)}
}

func (r *EscrowRepository) Append(ctx context.Context, tx *escrow.Transaction) error {
	doc := escrowDocument{
		ID:          tx.ID,
		BookingID:   string(tx.BookingID),
		UserID:      tx.UserID,
		Kind:        string(tx.Kind),
		Status:      string(tx.Status),
		AmountCents: tx.Amount.Amount,
		Currency:    tx.Amount.Currency,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.UnixMilli(),
	}
	if !tx.SettledAt.IsZero() {
		doc.SettledAt = tx.SettledAt.UnixMilli()
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *EscrowRepository) ListByBooking(ctx context.Context, id booking.BookingID) ([]*escrow.Transaction, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": string(id)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*escrow.Transaction
	for cursor.Next(ctx) {
		var doc escrowDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		tx := &escrow.Transaction{
			ID:          doc.ID,
			BookingID:   booking.BookingID(doc.BookingID),
			UserID:      doc.UserID,
			Kind:        escrow.TransactionKind(doc.Kind),
			Status:      escrow.TransactionStatus(doc.Status),
			Amount:      money.Money{Amount: doc.AmountCents, Currency: doc.Currency},
			Description: doc.Description,
			CreatedAt:   time.UnixMilli(doc.CreatedAt).UTC(),
		}
		if doc.SettledAt != 0 {
			tx.SettledAt = time.UnixMilli(doc.SettledAt).UTC()
		}
		out = append(out, tx)
	}
	return out, cursor.Err()
}

func (r *EscrowRepository) MarkSettled(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     string(escrow.StatusSettled),
			"settled_at": at.UTC().UnixMilli(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return escrow.ErrNotFound
	}
	return nil
}
