package pricing

import (
	"errors"

	"spacehub/internal/domain/shared/money"
)

var (
	ErrHoursRequired = errors.New("pricing: hours must be positive")
	ErrFeePercent    = errors.New("pricing: service fee percent must be between 0 and 100")
)

// Quote breaks a booking price into the base charge and the guest service fee.
// The fee stays fully refundable on cancellation whatever the policy outcome.
type Quote struct {
	Hours      int
	Base       money.Money
	ServiceFee money.Money
	Total      money.Money
}

// HourlyQuote prices a stay of the given number of hour slots at an hourly
// rate, adding a percentage service fee on top of the base.
func HourlyQuote(hourlyRateCents int64, currency string, hours, serviceFeePercent int) (Quote, error) {
	if hours <= 0 {
		return Quote{}, ErrHoursRequired
	}
	if serviceFeePercent < 0 || serviceFeePercent > 100 {
		return Quote{}, ErrFeePercent
	}
	base, err := money.New(hourlyRateCents*int64(hours), currency)
	if err != nil {
		return Quote{}, err
	}
	fee := base.Percent(serviceFeePercent)
	total, err := base.Add(fee)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Hours: hours, Base: base, ServiceFee: fee, Total: total}, nil
}
