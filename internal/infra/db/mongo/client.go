package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update")

const (
	collBookings      = "bookings"
	collListings      = "listings"
	collUsers         = "users"
	collEscrow        = "escrow_transactions"
	collOutbox        = "outbox"
	collIdempotency   = "idempotency"
	collNotifications = "notifications"
	collInbox         = "inbox"
)

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client.Database(database), client.Disconnect, nil
}
