// File: internal/infra/db/postgres/clinic_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
	"care-compass/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ClinicRepository = (*ClinicRepo)(nil)

const uniqueViolation = "23505"

type ClinicRepo struct {
	pool *pgxpool.Pool
}

func NewClinicRepo(pool *pgxpool.Pool) *ClinicRepo {
	return &ClinicRepo{pool: pool}
}

// EnsureSchema creates the clinics table when it does not exist yet; the
// seeder calls this so a demo database needs no manual migration step.
func (r *ClinicRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS clinics (
  id               TEXT PRIMARY KEY,
  name             TEXT NOT NULL,
  address          TEXT NOT NULL,
  phone            TEXT NOT NULL DEFAULT '',
  website          TEXT NOT NULL DEFAULT '',
  services         TEXT[] NOT NULL DEFAULT '{}',
  languages        TEXT[] NOT NULL DEFAULT '{}',
  pricing_info     TEXT NOT NULL DEFAULT '',
  hours            TEXT NOT NULL DEFAULT '',
  notes            TEXT NOT NULL DEFAULT '',
  walk_in_accepted BOOLEAN NOT NULL DEFAULT FALSE,
  lgbtq_friendly   BOOLEAN NOT NULL DEFAULT FALSE,
  immigrant_safe   BOOLEAN NOT NULL DEFAULT FALSE,
  lat              DOUBLE PRECISION NOT NULL,
  lng              DOUBLE PRECISION NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (name, address)
);`
	_, err := r.pool.Exec(ctx, q)
	return err
}

const clinicColumns = `id, name, address, phone, website, services, languages,
pricing_info, hours, notes, walk_in_accepted, lgbtq_friendly, immigrant_safe,
lat, lng, created_at`

func (r *ClinicRepo) Save(ctx context.Context, c *model.Clinic) error {
	const q = `
INSERT INTO clinics (id, name, address, phone, website, services, languages,
  pricing_info, hours, notes, walk_in_accepted, lgbtq_friendly, immigrant_safe,
  lat, lng, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  address = EXCLUDED.address,
  phone = EXCLUDED.phone,
  website = EXCLUDED.website,
  services = EXCLUDED.services,
  languages = EXCLUDED.languages,
  pricing_info = EXCLUDED.pricing_info,
  hours = EXCLUDED.hours,
  notes = EXCLUDED.notes,
  walk_in_accepted = EXCLUDED.walk_in_accepted,
  lgbtq_friendly = EXCLUDED.lgbtq_friendly,
  immigrant_safe = EXCLUDED.immigrant_safe,
  lat = EXCLUDED.lat,
  lng = EXCLUDED.lng;`
	_, err := r.pool.Exec(ctx, q,
		c.ID, c.Name, c.Address, c.Phone, c.Website, c.Services, c.Languages,
		c.PricingInfo, c.Hours, c.Notes, c.WalkInAccepted, c.LGBTQFriendly,
		c.ImmigrantSafe, c.Lat, c.Lng, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save clinic: %w", err)
	}
	return nil
}

func (r *ClinicRepo) FindByID(ctx context.Context, id string) (*model.Clinic, error) {
	q := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1;`
	c, err := scanClinic(r.pool.QueryRow(ctx, q, id), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find clinic: %w", err)
	}
	return c, nil
}

func (r *ClinicRepo) ListAll(ctx context.Context, limit int) ([]*model.Clinic, error) {
	q := `SELECT ` + clinicColumns + ` FROM clinics ORDER BY name ASC LIMIT $1;`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()
	return collectClinics(rows, false)
}

func (r *ClinicRepo) SearchNearby(ctx context.Context, lat, lng, radiusMeters float64, filter model.ClinicFilter, limit int) ([]*model.Clinic, error) {
	q, args := buildSearchQuery(lat, lng, radiusMeters, filter, limit)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search clinics: %w", err)
	}
	defer rows.Close()
	return collectClinics(rows, true)
}

// buildSearchQuery assembles the haversine radius query with optional filter
// predicates. Geospatial indexing proper is out of scope; a sequential
// haversine scan is fine at demo-dataset scale.
func buildSearchQuery(lat, lng, radiusMeters float64, filter model.ClinicFilter, limit int) (string, []any) {
	args := []any{lat, lng, radiusMeters}
	var conds []string

	if filter.ServiceType != "" {
		args = append(args, filter.ServiceType)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(services) sv WHERE sv ILIKE '%%' || $%d || '%%')", len(args)))
	}
	if len(filter.Languages) > 0 {
		args = append(args, filter.Languages)
		conds = append(conds, fmt.Sprintf("languages && $%d", len(args)))
	}
	if filter.WalkInOnly {
		conds = append(conds, "walk_in_accepted = TRUE")
	}
	if filter.LGBTQFriendly != nil {
		args = append(args, *filter.LGBTQFriendly)
		conds = append(conds, fmt.Sprintf("lgbtq_friendly = $%d", len(args)))
	}
	if filter.ImmigrantSafe != nil {
		args = append(args, *filter.ImmigrantSafe)
		conds = append(conds, fmt.Sprintf("immigrant_safe = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit)
	q := fmt.Sprintf(`
SELECT * FROM (
  SELECT `+clinicColumns+`,
    2 * 6371000 * asin(sqrt(
      pow(sin(radians(lat - $1) / 2), 2) +
      cos(radians($1)) * cos(radians(lat)) *
      pow(sin(radians(lng - $2) / 2), 2)
    )) AS distance_meters
  FROM clinics%s
) nearby
WHERE distance_meters <= $3
ORDER BY distance_meters ASC
LIMIT $%d;`, where, len(args))
	return q, args
}

func scanClinic(row pgx.Row, withDistance bool) (*model.Clinic, error) {
	var c model.Clinic
	dest := []any{
		&c.ID, &c.Name, &c.Address, &c.Phone, &c.Website, &c.Services,
		&c.Languages, &c.PricingInfo, &c.Hours, &c.Notes, &c.WalkInAccepted,
		&c.LGBTQFriendly, &c.ImmigrantSafe, &c.Lat, &c.Lng, &c.CreatedAt,
	}
	if withDistance {
		dest = append(dest, &c.DistanceMeters)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

func collectClinics(rows pgx.Rows, withDistance bool) ([]*model.Clinic, error) {
	var out []*model.Clinic
	for rows.Next() {
		c, err := scanClinic(rows, withDistance)
		if err != nil {
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
