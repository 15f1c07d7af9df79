package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
)

type fakeClinicRepo struct {
	saved        []*model.Clinic
	lastRadius   float64
	lastLimit    int
	searchResult []*model.Clinic
}

func (f *fakeClinicRepo) Save(ctx context.Context, c *model.Clinic) error {
	f.saved = append(f.saved, c)
	return nil
}

func (f *fakeClinicRepo) FindByID(ctx context.Context, id string) (*model.Clinic, error) {
	for _, c := range f.saved {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeClinicRepo) ListAll(ctx context.Context, limit int) ([]*model.Clinic, error) {
	f.lastLimit = limit
	return f.saved, nil
}

func (f *fakeClinicRepo) SearchNearby(ctx context.Context, lat, lng, radiusMeters float64, filter model.ClinicFilter, limit int) ([]*model.Clinic, error) {
	f.lastRadius = radiusMeters
	f.lastLimit = limit
	return f.searchResult, nil
}

func newTestClinicUC(repo *fakeClinicRepo) *clinicUC {
	nop := zerolog.Nop()
	return NewClinicUseCase(repo, &nop)
}

func TestClinicCreateValidates(t *testing.T) {
	uc := newTestClinicUC(&fakeClinicRepo{})

	if _, err := uc.Create(context.Background(), &model.Clinic{Name: "", Address: "somewhere"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}

	created, err := uc.Create(context.Background(), &model.Clinic{
		Name:    "Hope Clinic",
		Address: "123 Main St, Houston, TX",
		Lat:     29.76,
		Lng:     -95.37,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created clinic has no id")
	}
	if len(created.Languages) == 0 {
		t.Fatal("created clinic should default languages")
	}
}

func TestClinicSearchValidatesCoordinates(t *testing.T) {
	uc := newTestClinicUC(&fakeClinicRepo{})
	cases := []struct{ lat, lng float64 }{
		{91, 0}, {-91, 0}, {0, 181}, {0, -181},
	}
	for _, tc := range cases {
		if _, err := uc.Search(context.Background(), tc.lat, tc.lng, 10, model.ClinicFilter{}, 10); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("Search(%v, %v) err = %v, want ErrInvalidArgument", tc.lat, tc.lng, err)
		}
	}
}

func TestClinicSearchDefaultsAndUnits(t *testing.T) {
	repo := &fakeClinicRepo{}
	uc := newTestClinicUC(repo)

	result, err := uc.Search(context.Background(), 29.76, -95.37, 0, model.ClinicFilter{}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.RadiusMiles != defaultRadiusMiles {
		t.Fatalf("radius = %v, want default %v", result.RadiusMiles, defaultRadiusMiles)
	}
	wantMeters := defaultRadiusMiles * metersPerMile
	if repo.lastRadius != wantMeters {
		t.Fatalf("radius meters = %v, want %v", repo.lastRadius, wantMeters)
	}
	if repo.lastLimit != defaultSearchLimit {
		t.Fatalf("limit = %d, want %d", repo.lastLimit, defaultSearchLimit)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, defaultSearchLimit},
		{-5, defaultSearchLimit},
		{50, 50},
		{maxSearchLimit + 1, maxSearchLimit},
	}
	for _, tc := range cases {
		if got := clampLimit(tc.in); got != tc.want {
			t.Fatalf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
