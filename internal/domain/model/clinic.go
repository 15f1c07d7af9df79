package model

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"care-compass/internal/domain"
)

// Clinic is a free or low-cost healthcare facility.
type Clinic struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone,omitempty"`
	Website        string    `json:"website,omitempty"`
	Services       []string  `json:"services"`
	Languages      []string  `json:"languages"`
	PricingInfo    string    `json:"pricing_info,omitempty"`
	Hours          string    `json:"hours,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	WalkInAccepted bool      `json:"walk_in_accepted"`
	LGBTQFriendly  bool      `json:"lgbtq_friendly"`
	ImmigrantSafe  bool      `json:"immigrant_safe"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	CreatedAt      time.Time `json:"created_at"`

	// DistanceMeters is populated by radius searches only.
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

func NewClinic(name, address string, lat, lng float64) (*Clinic, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(address) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Clinic{
		ID:        ulid.Make().String(),
		Name:      name,
		Address:   address,
		Languages: []string{"English"},
		Lat:       lat,
		Lng:       lng,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ClinicFilter narrows a radius search.
type ClinicFilter struct {
	ServiceType   string
	Languages     []string
	WalkInOnly    bool
	LGBTQFriendly *bool
	ImmigrantSafe *bool
}
