package postgres

import (
	"strings"
	"testing"

	"care-compass/internal/domain/model"
)

func TestBuildSearchQueryNoFilter(t *testing.T) {
	q, args := buildSearchQuery(29.76, -95.37, 16093.4, model.ClinicFilter{}, 20)

	if len(args) != 4 {
		t.Fatalf("args = %d, want 4 (lat, lng, radius, limit)", len(args))
	}
	if !strings.Contains(q, "distance_meters <= $3") {
		t.Fatalf("missing radius predicate:\n%s", q)
	}
	if !strings.Contains(q, "ORDER BY distance_meters ASC") {
		t.Fatalf("missing distance ordering:\n%s", q)
	}
	if !strings.Contains(q, "LIMIT $4") {
		t.Fatalf("limit placeholder misnumbered:\n%s", q)
	}
	if strings.Count(q, "WHERE") != 1 {
		t.Fatalf("unexpected filter clause without filters:\n%s", q)
	}
}

func TestBuildSearchQueryAllFilters(t *testing.T) {
	yes := true
	no := false
	filter := model.ClinicFilter{
		ServiceType:   "dental",
		Languages:     []string{"Spanish"},
		WalkInOnly:    true,
		LGBTQFriendly: &yes,
		ImmigrantSafe: &no,
	}
	q, args := buildSearchQuery(29.76, -95.37, 16093.4, filter, 20)

	// lat, lng, radius, service, languages, lgbtq, immigrant, limit
	if len(args) != 8 {
		t.Fatalf("args = %d, want 8", len(args))
	}
	for _, want := range []string{
		"sv ILIKE '%' || $4 || '%'",
		"languages && $5",
		"walk_in_accepted = TRUE",
		"lgbtq_friendly = $6",
		"immigrant_safe = $7",
		"LIMIT $8",
	} {
		if !strings.Contains(q, want) {
			t.Fatalf("query missing %q:\n%s", want, q)
		}
	}
	if args[3] != "dental" {
		t.Fatalf("service arg = %v", args[3])
	}
	if args[7] != 20 {
		t.Fatalf("limit arg = %v", args[7])
	}
}

func TestBuildSearchQueryPartialFilter(t *testing.T) {
	filter := model.ClinicFilter{Languages: []string{"Vietnamese", "Spanish"}}
	q, args := buildSearchQuery(29.76, -95.37, 8046.7, filter, 10)

	if len(args) != 5 {
		t.Fatalf("args = %d, want 5", len(args))
	}
	if !strings.Contains(q, "languages && $4") {
		t.Fatalf("languages predicate misnumbered:\n%s", q)
	}
	if !strings.Contains(q, "LIMIT $5") {
		t.Fatalf("limit placeholder misnumbered:\n%s", q)
	}
	if strings.Contains(q, "walk_in_accepted") {
		t.Fatalf("unexpected walk-in predicate:\n%s", q)
	}
}
