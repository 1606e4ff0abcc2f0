package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"spacehub/internal/app/uow"
	"spacehub/internal/domain/listings"
	"spacehub/internal/domain/user"
)

type listingFixture struct {
	ID                 string `json:"id"`
	HostID             string `json:"host_id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	AddressLine1       string `json:"address_line1"`
	AddressCity        string `json:"address_city"`
	AddressCountry     string `json:"address_country"`
	HourlyRateCents    int64  `json:"hourly_rate_cents"`
	CancellationPolicy string `json:"cancellation_policy"`
}

type userFixture struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type fixtureFile struct {
	Listings []listingFixture `json:"listings"`
	Users    []userFixture    `json:"users"`
}

// Load seeds listings and users from a JSON file. Missing files are not an
// error so production deployments can simply omit the fixture.
func Load(ctx context.Context, path, currency string, factory uow.UoWFactory, log *slog.Logger) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var file fixtureFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return err
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	now := time.Now().UTC()

	for _, f := range file.Users {
		u, err := user.New(user.CreateParams{
			ID:       user.ID(f.ID),
			Email:    f.Email,
			Name:     f.Name,
			Currency: currency,
			Now:      now,
		})
		if err != nil {
			return err
		}
		if err := unit.Users().Save(ctx, u); err != nil {
			return err
		}
	}

	for _, f := range file.Listings {
		l, err := listings.NewListing(listings.CreateParams{
			ID:    listings.ListingID(f.ID),
			Host:  listings.HostID(f.HostID),
			Title: f.Title,
			Description: f.Description,
			Address: listings.Address{
				Line1:   f.AddressLine1,
				City:    f.AddressCity,
				Country: f.AddressCountry,
			},
			HourlyRateCents:    f.HourlyRateCents,
			CancellationPolicy: f.CancellationPolicy,
			Now:                now,
		})
		if err != nil {
			return err
		}
		if err := l.Activate(now); err != nil {
			return err
		}
		if err := unit.Listings().Save(ctx, l); err != nil {
			return err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}

	log.Info("fixtures loaded",
		slog.Int("listings", len(file.Listings)),
		slog.Int("users", len(file.Users)))
	return nil
}
