// File: cmd/seed/main.go
//
// Seeds the clinic directory from a JSON file. The file is an array of
// clinic records; see seed/clinics.example.json for the shape.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"care-compass/internal/config"
	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
	pg "care-compass/internal/infra/db/postgres"
)

type seedClinic struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Website        string   `json:"website"`
	Services       []string `json:"services"`
	Languages      []string `json:"languages"`
	PricingInfo    string   `json:"pricing_info"`
	Hours          string   `json:"hours"`
	Notes          string   `json:"notes"`
	WalkInAccepted bool     `json:"walk_in_accepted"`
	LGBTQFriendly  bool     `json:"lgbtq_friendly"`
	ImmigrantSafe  bool     `json:"immigrant_safe"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	dataPath := flag.String("data", "seed/clinics.json", "path to clinic JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("seed: database.url is required")
	}

	b, err := os.ReadFile(*dataPath)
	if err != nil {
		log.Fatalf("seed: read data: %v", err)
	}
	var records []seedClinic
	if err := json.Unmarshal(b, &records); err != nil {
		log.Fatalf("seed: parse data: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("seed: postgres: %v", err)
	}
	defer pool.Close()

	repo := pg.NewClinicRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("seed: schema: %v", err)
	}

	var saved, skipped int
	for _, rec := range records {
		c, err := model.NewClinic(rec.Name, rec.Address, rec.Lat, rec.Lng)
		if err != nil {
			log.Printf("seed: skipping %q: %v", rec.Name, err)
			skipped++
			continue
		}
		c.Phone = rec.Phone
		c.Website = rec.Website
		c.Services = rec.Services
		if len(rec.Languages) > 0 {
			c.Languages = rec.Languages
		}
		c.PricingInfo = rec.PricingInfo
		c.Hours = rec.Hours
		c.Notes = rec.Notes
		c.WalkInAccepted = rec.WalkInAccepted
		c.LGBTQFriendly = rec.LGBTQFriendly
		c.ImmigrantSafe = rec.ImmigrantSafe

		if err := repo.Save(ctx, c); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				skipped++
				continue
			}
			log.Fatalf("seed: save %q: %v", rec.Name, err)
		}
		saved++
	}
	log.Printf("seed: done, %d saved, %d skipped", saved, skipped)
}
