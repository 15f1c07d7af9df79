// File: internal/usecase/clinic_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
	"care-compass/internal/domain/ports/repository"
	"care-compass/internal/infra/metrics"
)

// Compile-time check
var _ ClinicUseCase = (*clinicUC)(nil)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
	defaultRadiusMiles = 10
	metersPerMile      = 1609.34
)

// ClinicSearchResult pairs matched clinics with the effective search radius.
type ClinicSearchResult struct {
	Clinics     []*model.Clinic `json:"clinics"`
	TotalFound  int             `json:"total_found"`
	RadiusMiles float64         `json:"search_radius_miles"`
}

type ClinicUseCase interface {
	List(ctx context.Context, limit int) ([]*model.Clinic, error)
	Get(ctx context.Context, id string) (*model.Clinic, error)
	Create(ctx context.Context, c *model.Clinic) (*model.Clinic, error)
	Search(ctx context.Context, lat, lng, radiusMiles float64, filter model.ClinicFilter, limit int) (*ClinicSearchResult, error)
}

type clinicUC struct {
	clinics repository.ClinicRepository
	log     *zerolog.Logger
}

func NewClinicUseCase(clinics repository.ClinicRepository, logger *zerolog.Logger) *clinicUC {
	l := logger.With().Str("component", "ClinicUC").Logger()
	return &clinicUC{clinics: clinics, log: &l}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

func (u *clinicUC) List(ctx context.Context, limit int) ([]*model.Clinic, error) {
	return u.clinics.ListAll(ctx, clampLimit(limit))
}

func (u *clinicUC) Get(ctx context.Context, id string) (*model.Clinic, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.clinics.FindByID(ctx, id)
}

func (u *clinicUC) Create(ctx context.Context, c *model.Clinic) (*model.Clinic, error) {
	nc, err := model.NewClinic(c.Name, c.Address, c.Lat, c.Lng)
	if err != nil {
		return nil, err
	}
	nc.Phone = c.Phone
	nc.Website = c.Website
	nc.Services = c.Services
	if len(c.Languages) > 0 {
		nc.Languages = c.Languages
	}
	nc.PricingInfo = c.PricingInfo
	nc.Hours = c.Hours
	nc.Notes = c.Notes
	nc.WalkInAccepted = c.WalkInAccepted
	nc.LGBTQFriendly = c.LGBTQFriendly
	nc.ImmigrantSafe = c.ImmigrantSafe
	if err := u.clinics.Save(ctx, nc); err != nil {
		return nil, err
	}
	u.log.Info().Str("clinic_id", nc.ID).Str("name", nc.Name).Msg("clinic created")
	return nc, nil
}

func (u *clinicUC) Search(ctx context.Context, lat, lng, radiusMiles float64, filter model.ClinicFilter, limit int) (*ClinicSearchResult, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, domain.ErrInvalidArgument
	}
	if radiusMiles <= 0 {
		radiusMiles = defaultRadiusMiles
	}
	clinics, err := u.clinics.SearchNearby(ctx, lat, lng, radiusMiles*metersPerMile, filter, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	metrics.IncClinicSearches()
	return &ClinicSearchResult{
		Clinics:     clinics,
		TotalFound:  len(clinics),
		RadiusMiles: radiusMiles,
	}, nil
}
