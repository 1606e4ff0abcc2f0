package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/internal/domain/shared/money"
)

func TestNewValidatesCurrency(t *testing.T) {
	_, err := money.New(100, "US")
	assert.ErrorIs(t, err, money.ErrInvalidCurrency)

	m, err := money.New(100, "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	usd := money.Must(100, "USD")
	eur := money.Must(100, "EUR")

	_, err := usd.Add(eur)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestPercent(t *testing.T) {
	m := money.Must(10000, "USD")

	assert.Equal(t, int64(5000), m.Percent(50).Amount)
	assert.Equal(t, int64(10000), m.Percent(100).Amount)
	assert.Equal(t, int64(0), m.Percent(0).Amount)
	assert.Equal(t, int64(0), m.Percent(-5).Amount)

	// Truncates to whole cents.
	odd := money.Must(333, "USD")
	assert.Equal(t, int64(166), odd.Percent(50).Amount)
}

func TestDecimal(t *testing.T) {
	assert.Equal(t, "55.00", money.Must(5500, "USD").Decimal())
	assert.Equal(t, "0.05", money.Must(5, "USD").Decimal())
	assert.Equal(t, "-12.34", money.Must(-1234, "USD").Decimal())
}
