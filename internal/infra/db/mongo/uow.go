package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"spacehub/internal/app/uow"
	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/user"
)

// Factory produces units of work backed by mongo sessions. When the server
// does not support transactions (standalone deployments) sessions still give
// causal consistency; writes remain individually atomic, which is all the
// cancellation flow assumes.
type Factory struct {
	db *mongo.Database

	bookings *BookingRepository
	listings *ListingRepository
	users    *UserRepository
}

func NewFactory(db *mongo.Database) *Factory {
	return &Factory{
		db:       db,
		bookings: NewBookingRepository(db),
		listings: NewListingRepository(db),
		users:    NewUserRepository(db),
	}
}

func (f *Factory) Begin(ctx context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	session, err := f.db.Client().StartSession()
	if err != nil {
		return nil, err
	}
	return &unitOfWork{factory: f, session: session}, nil
}

type unitOfWork struct {
	factory *Factory
	session mongo.Session
}

func (u *unitOfWork) Bookings() booking.Repository  { return u.factory.bookings }
func (u *unitOfWork) Listings() listings.Repository { return u.factory.listings }
func (u *unitOfWork) Users() user.Repository        { return u.factory.users }

// InjectContext binds the session to the context so repository calls share it.
func (u *unitOfWork) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	u.session.EndSession(ctx)
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	u.session.EndSession(ctx)
	return nil
}
