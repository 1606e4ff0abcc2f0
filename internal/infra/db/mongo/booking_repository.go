package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/shared/money"
)

type bookingDocument struct {
	ID                 string  `bson:"_id"`
	GroupID            string  `bson:"group_id,omitempty"`
	ListingID          string  `bson:"listing_id"`
	GuestID            string  `bson:"guest_id"`
	StartAt            int64   `bson:"start_at"`
	Hours              []int   `bson:"hours"`
	TotalPriceCents    int64   `bson:"total_price_cents"`
	ServiceFeeCents    int64   `bson:"service_fee_cents"`
	Currency           string  `bson:"currency"`
	Status             string  `bson:"status"`
	PaymentStatus      string  `bson:"payment_status"`
	CancellationReason string  `bson:"cancellation_reason,omitempty"`
	CancelledAt        int64   `bson:"cancelled_at,omitempty"`
	CancelledBy        string  `bson:"cancelled_by,omitempty"`
	RefundAmountCents  int64   `bson:"refund_amount_cents"`
	RefundProcessed    bool    `bson:"refund_processed"`
	CreatedAt          int64   `bson:"created_at"`
	UpdatedAt          int64   `bson:"updated_at"`
	Version            int64   `bson:"version"`
}

func toBookingDocument(b *booking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:                 string(b.ID),
		GroupID:            b.GroupID,
		ListingID:          string(b.ListingID),
		GuestID:            b.GuestID,
		StartAt:            b.StartAt.UnixMilli(),
		Hours:              b.Hours,
		TotalPriceCents:    b.TotalPrice.Amount,
		ServiceFeeCents:    b.ServiceFee.Amount,
		Currency:           b.TotalPrice.Currency,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		CancellationReason: b.CancellationReason,
		CancelledBy:        b.CancelledBy,
		RefundAmountCents:  b.RefundAmount.Amount,
		RefundProcessed:    b.RefundProcessed,
		CreatedAt:          b.CreatedAt.UnixMilli(),
		UpdatedAt:          b.UpdatedAt.UnixMilli(),
		Version:            b.Version,
	}
	if !b.CancelledAt.IsZero() {
		doc.CancelledAt = b.CancelledAt.UnixMilli()
	}
	return doc
}

func (d bookingDocument) toDomain() *booking.Booking {
	b := &booking.Booking{
		ID:                 booking.BookingID(d.ID),
		GroupID:            d.GroupID,
		ListingID:          listings.ListingID(d.ListingID),
		GuestID:            d.GuestID,
		StartAt:            time.UnixMilli(d.StartAt).UTC(),
		Hours:              d.Hours,
		TotalPrice:         money.Money{Amount: d.TotalPriceCents, Currency: d.Currency},
		ServiceFee:         money.Money{Amount: d.ServiceFeeCents, Currency: d.Currency},
		Status:             booking.BookingStatus(d.Status),
		PaymentStatus:      booking.PaymentStatus(d.PaymentStatus),
		CancellationReason: d.CancellationReason,
		CancelledBy:        d.CancelledBy,
		RefundAmount:       money.Money{Amount: d.RefundAmountCents, Currency: d.Currency},
		RefundProcessed:    d.RefundProcessed,
		CreatedAt:          time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:          time.UnixMilli(d.UpdatedAt).UTC(),
		Version:            d.Version,
	}
	if d.CancelledAt != 0 {
		b.CancelledAt = time.UnixMilli(d.CancelledAt).UTC()
	}
	return b
}

type BookingRepository struct {
	coll *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{coll: db.Collection(collBookings)}
}

func (r *BookingRepository) ByID(ctx context.Context, id booking.BookingID) (*booking.Booking, error) {
	var doc bookingDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// Save upserts with a version compare-and-swap so concurrent cancellations of
// the same booking cannot both win.
func (r *BookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	doc := toBookingDocument(b)
	doc.Version = b.Version + 1

	if b.Version == 0 {
		_, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": doc.ID, "version": bson.M{"$exists": false}},
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true))
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		if err != nil {
			return err
		}
		b.Version = doc.Version
		return nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": b.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*booking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByGroup(ctx context.Context, groupID string) ([]*booking.Booking, error) {
	if groupID == "" {
		return nil, nil
	}
	return r.list(ctx, bson.M{"group_id": groupID})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*booking.Booking, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*booking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toDomain())
	}
	return out, cursor.Err()
}
