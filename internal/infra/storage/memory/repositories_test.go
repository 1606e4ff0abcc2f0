package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/internal/domain/booking"
	"spacehub/internal/domain/shared/money"
	"spacehub/internal/domain/user"
	"spacehub/internal/infra/storage/memory"
)

func TestBookingRepositoryOptimisticLocking(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	b := &booking.Booking{
		ID:         "bk-1",
		GuestID:    "guest-1",
		StartAt:    time.Now().Add(24 * time.Hour),
		TotalPrice: money.Must(10000, "USD"),
		Status:     booking.StatusConfirmed,
	}
	require.NoError(t, repo.Save(ctx, b))
	assert.Equal(t, int64(1), b.Version)

	first, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	second, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), memory.ErrConcurrentUpdate)
}

func TestBookingRepositoryReturnsClones(t *testing.T) {
	repo := memory.NewBookingRepository()
	ctx := context.Background()

	b := &booking.Booking{
		ID:         "bk-1",
		GuestID:    "guest-1",
		TotalPrice: money.Must(10000, "USD"),
		StartAt:    time.Now().Add(time.Hour),
		Status:     booking.StatusConfirmed,
	}
	require.NoError(t, repo.Save(ctx, b))

	loaded, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	loaded.Status = booking.StatusCancelled

	fresh, err := repo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, fresh.Status)
}

func TestUserRepositoryCreditBalance(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	u, err := user.New(user.CreateParams{
		ID: "u-1", Email: "a@example.com", Name: "A", Now: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	require.NoError(t, repo.CreditBalance(ctx, "u-1", money.Must(5500, "USD")))
	require.NoError(t, repo.CreditBalance(ctx, "u-1", money.Must(450, "USD")))

	loaded, err := repo.ByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5950), loaded.WalletBalance.Amount)

	assert.ErrorIs(t, repo.CreditBalance(ctx, "missing", money.Must(1, "USD")), user.ErrNotFound)
}
