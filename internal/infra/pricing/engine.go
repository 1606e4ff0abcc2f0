package pricing

import (
	"context"

	"spacehub/internal/app/policies"
	"spacehub/internal/domain/listings"
	domainpricing "spacehub/internal/domain/pricing"
)

// Engine quotes bookings from the listing hourly rate plus a flat percentage
// service fee.
type Engine struct {
	ServiceFeePercent int
	Currency          string
}

func NewEngine(serviceFeePercent int, currency string) *Engine {
	return &Engine{ServiceFeePercent: serviceFeePercent, Currency: currency}
}

var _ policies.PricingPort = (*Engine)(nil)

func (e *Engine) Quote(_ context.Context, listing *listings.Listing, hours int) (domainpricing.Quote, error) {
	return domainpricing.HourlyQuote(listing.HourlyRateCents, e.Currency, hours, e.ServiceFeePercent)
}
