package booking

import (
	"time"

	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID
	GroupID    string
	ListingID  listings.ListingID
	GuestID    string
	StartAt    time.Time
	TotalPrice money.Money
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	GuestID   string
	Refund    money.Money
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type SeriesCancelled struct {
	PrimaryBookingID BookingID
	GroupID          string
	GuestID          string
	Members          int
	Refund           money.Money
	Reason           string
	At               time.Time
}

func (e SeriesCancelled) EventName() string     { return "booking.series_cancelled" }
func (e SeriesCancelled) AggregateID() string   { return string(e.PrimaryBookingID) }
func (e SeriesCancelled) OccurredAt() time.Time { return e.At }
