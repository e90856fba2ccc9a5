// Package store persists scraped carrier data and register snapshots.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("not found")

// CarrierRecord is everything known about one carrier, keyed by MC number.
type CarrierRecord struct {
	Profile   domain.CarrierProfile    `json:"profile"`
	Safety    *domain.SafetyProfile    `json:"safety,omitempty"`
	Insurance []domain.InsurancePolicy `json:"insurance,omitempty"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Snapshot is one parsed register page.
type Snapshot struct {
	FetchedAt time.Time              `json:"fetchedAt"`
	Entries   []domain.RegisterEntry `json:"entries"`
}

// Repository is the persistence port used by the scrape service and the API.
type Repository interface {
	// UpsertCarrier stores p under p.MCNumber, replacing the profile but
	// keeping any safety and insurance already attached.
	UpsertCarrier(ctx context.Context, p domain.CarrierProfile) error
	GetCarrier(ctx context.Context, mcNumber string) (CarrierRecord, error)
	// UpdateSafety and UpdateInsurance attach data to every carrier with the
	// given DOT number and return ErrNotFound when there is none.
	UpdateSafety(ctx context.Context, dotNumber string, s domain.SafetyProfile) error
	UpdateInsurance(ctx context.Context, dotNumber string, policies []domain.InsurancePolicy) error
	SaveRegister(ctx context.Context, s Snapshot) error
	LatestRegister(ctx context.Context) (Snapshot, error)
}
