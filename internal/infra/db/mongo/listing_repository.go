package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacehub/internal/domain/listings"
)

type listingDocument struct {
	ID                 string `bson:"_id"`
	Host               string `bson:"host_id"`
	Title              string `bson:"title"`
	Description        string `bson:"description,omitempty"`
	AddressLine1       string `bson:"address_line1,omitempty"`
	AddressCity        string `bson:"address_city,omitempty"`
	AddressCountry     string `bson:"address_country,omitempty"`
	HourlyRateCents    int64  `bson:"hourly_rate_cents"`
	CancellationPolicy string `bson:"cancellation_policy,omitempty"`
	State              string `bson:"state"`
	CreatedAt          int64  `bson:"created_at"`
	UpdatedAt          int64  `bson:"updated_at"`
	Version            int64  `bson:"version"`
}

func toListingDocument(l *listings.Listing) listingDocument {
	return listingDocument{
		ID:                 string(l.ID),
		Host:               string(l.Host),
		Title:              l.Title,
		Description:        l.Description,
		AddressLine1:       l.Address.Line1,
		AddressCity:        l.Address.City,
		AddressCountry:     l.Address.Country,
		HourlyRateCents:    l.HourlyRateCents,
		CancellationPolicy: l.CancellationPolicy,
		State:              string(l.State),
		CreatedAt:          l.CreatedAt.UnixMilli(),
		UpdatedAt:          l.UpdatedAt.UnixMilli(),
		Version:            l.Version,
	}
}

func (d listingDocument) toDomain() *listings.Listing {
	return &listings.Listing{
		ID:          listings.ListingID(d.ID),
		Host:        listings.HostID(d.Host),
		Title:       d.Title,
		Description: d.Description,
		Address: listings.Address{
			Line1:   d.AddressLine1,
			City:    d.AddressCity,
			Country: d.AddressCountry,
		},
		HourlyRateCents:    d.HourlyRateCents,
		CancellationPolicy: d.CancellationPolicy,
		State:              listings.ListingState(d.State),
		CreatedAt:          time.UnixMilli(d.CreatedAt).UTC(),
		UpdatedAt:          time.UnixMilli(d.UpdatedAt).UTC(),
		Version:            d.Version,
	}
}

type ListingRepository struct {
	coll *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{coll: db.Collection(collListings)}
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	var doc listingDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, listings.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listings.Listing) error {
	doc := toListingDocument(l)
	doc.Version = l.Version + 1

	if l.Version == 0 {
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
		l.Version = doc.Version
		return nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": l.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}
