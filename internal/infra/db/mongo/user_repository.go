package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"spacehub/internal/domain/shared/money"
	"spacehub/internal/domain/user"
)

type userDocument struct {
	ID                 string `bson:"_id"`
	Email              string `bson:"email"`
	Name               string `bson:"name"`
	WalletBalanceCents int64  `bson:"wallet_balance_cents"`
	Currency           string `bson:"currency"`
	CreatedAt          int64  `bson:"created_at"`
	UpdatedAt          int64  `bson:"updated_at"`
}

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collUsers)}
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user.User{
		ID:            user.ID(doc.ID),
		Email:         doc.Email,
		Name:          doc.Name,
		WalletBalance: money.Money{Amount: doc.WalletBalanceCents, Currency: doc.Currency},
		CreatedAt:     time.UnixMilli(doc.CreatedAt).UTC(),
		UpdatedAt:     time.UnixMilli(doc.UpdatedAt).UTC(),
	}, nil
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	doc := userDocument{
		ID:                 string(u.ID),
		Email:              u.Email,
		Name:               u.Name,
		WalletBalanceCents: u.WalletBalance.Amount,
		Currency:           u.WalletBalance.Currency,
		CreatedAt:          u.CreatedAt.UnixMilli(),
		UpdatedAt:          u.UpdatedAt.UnixMilli(),
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// CreditBalance adds to the stored balance mirror with a single $inc, avoiding
// read-modify-write races between concurrent refunds.
func (r *UserRepository) CreditBalance(ctx context.Context, id user.ID, amount money.Money) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": string(id)},
		bson.M{
			"$inc": bson.M{"wallet_balance_cents": amount.Amount},
			"$set": bson.M{"updated_at": time.Now().UnixMilli()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
