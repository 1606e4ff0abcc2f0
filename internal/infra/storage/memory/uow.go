package memory

import (
	"context"

	"spacehub/internal/app/uow"
	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/user"
)

// Factory hands out units of work over shared in-memory repositories. There is
// no real transaction: writes apply immediately and Commit/Rollback are no-ops,
// which matches the best-effort semantics the cancellation flow relies on.
type Factory struct {
	BookingRepo *BookingRepository
	ListingRepo *ListingRepository
	UserRepo    *UserRepository
}

func NewFactory() *Factory {
	return &Factory{
		BookingRepo: NewBookingRepository(),
		ListingRepo: NewListingRepository(),
		UserRepo:    NewUserRepository(),
	}
}

func (f *Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	return &unit{factory: f}, nil
}

type unit struct {
	factory *Factory
}

func (u *unit) Bookings() booking.Repository  { return u.factory.BookingRepo }
func (u *unit) Listings() listings.Repository { return u.factory.ListingRepo }
func (u *unit) Users() user.Repository        { return u.factory.UserRepo }

func (u *unit) Commit(context.Context) error   { return nil }
func (u *unit) Rollback(context.Context) error { return nil }
