package policies

import (
	"context"

	domainlistings "spacehub/internal/domain/listings"
	domainpricing "spacehub/internal/domain/pricing"
)

// PricingPort quotes the price of a stay before a booking is created.
type PricingPort interface {
	Quote(ctx context.Context, listing *domainlistings.Listing, hours int) (domainpricing.Quote, error)
}
