package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"spacehub/internal/domain/shared/events"
)

var (
	ErrTitleRequired   = errors.New("listings: title is required")
	ErrHostRequired    = errors.New("listings: host is required")
	ErrHourlyRate      = errors.New("listings: hourly rate must be non-negative")
	ErrAddressRequired = errors.New("listings: address must be provided when activating")
	ErrInvalidState    = errors.New("listings: invalid state transition")
	ErrNotFound        = errors.New("listings: not found")
)

type ListingID string
type HostID string

type ListingState string

const (
	ListingDraft     ListingState = "DRAFT"
	ListingActive    ListingState = "ACTIVE"
	ListingSuspended ListingState = "SUSPENDED"
)

type Address struct {
	Line1   string
	City    string
	Country string
}

func (a Address) Valid() bool {
	return strings.TrimSpace(a.Line1) != "" && strings.TrimSpace(a.City) != "" && strings.TrimSpace(a.Country) != ""
}

// Listing is a rentable space. The cancellation policy tag is stored raw; the
// booking domain interprets it, treating unknown tags as unspecified.
type Listing struct {
	ID                 ListingID
	Host               HostID
	Title              string
	Description        string
	Address            Address
	HourlyRateCents    int64
	CancellationPolicy string
	State              ListingState
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
}

type CreateParams struct {
	ID                 ListingID
	Host               HostID
	Title              string
	Description        string
	Address            Address
	HourlyRateCents    int64
	CancellationPolicy string
	Now                time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Host == "" {
		return nil, ErrHostRequired
	}
	if params.HourlyRateCents < 0 {
		return nil, ErrHourlyRate
	}
	now := params.Now.UTC()
	return &Listing{
		ID:                 params.ID,
		Host:               params.Host,
		Title:              params.Title,
		Description:        params.Description,
		Address:            params.Address,
		HourlyRateCents:    params.HourlyRateCents,
		CancellationPolicy: params.CancellationPolicy,
		State:              ListingDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

func (l *Listing) Activate(now time.Time) error {
	if l.State != ListingDraft && l.State != ListingSuspended {
		return ErrInvalidState
	}
	if !l.Address.Valid() {
		return ErrAddressRequired
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) Suspend(now time.Time) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	return nil
}
