package repository

import (
	"context"

	"care-compass/internal/domain/model"
)

// -----------------------------
// Clinics
// -----------------------------

type ClinicRepository interface {
	Save(ctx context.Context, c *model.Clinic) error
	FindByID(ctx context.Context, id string) (*model.Clinic, error)
	ListAll(ctx context.Context, limit int) ([]*model.Clinic, error)

	// SearchNearby returns clinics within radiusMeters of the point, matching
	// the filter, sorted by distance ascending.
	SearchNearby(ctx context.Context, lat, lng, radiusMeters float64, filter model.ClinicFilter, limit int) ([]*model.Clinic, error)
}
