package repository

import (
	"time"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

// DefaultSeedProperties returns the demo catalogue used by local mode and
// the seed tool. IDs are stable so reseeding is idempotent.
func DefaultSeedProperties() []models.Property {
	created := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	return []models.Property{
		{
			ID:          "prop-riverside-lofts",
			Name:        "Riverside Lofts",
			Description: "12-unit converted warehouse with long-term tenants and river views.",
			ImageURL:    "https://images.brickvest.dev/riverside-lofts.jpg",
			GoalAmount:  850000,
			Location: models.Location{
				Address:   "402 Water St, Brooklyn, NY",
				Latitude:  40.7033,
				Longitude: -73.9881,
			},
			Type:              "residential",
			ExpectedROI:       8.2,
			MinimumInvestment: 500,
			CreatedAt:         created,
			UpdatedAt:         created,
		},
		{
			ID:          "prop-maple-court",
			Name:        "Maple Court Townhomes",
			Description: "New-build townhome cluster near the university district.",
			ImageURL:    "https://images.brickvest.dev/maple-court.jpg",
			GoalAmount:  1200000,
			Location: models.Location{
				Address:   "88 Maple Ct, Austin, TX",
				Latitude:  30.2849,
				Longitude: -97.7341,
			},
			Type:              "residential",
			ExpectedROI:       7.5,
			MinimumInvestment: 1000,
			CreatedAt:         created,
			UpdatedAt:         created,
		},
		{
			ID:          "prop-harbor-plaza",
			Name:        "Harbor Plaza Offices",
			Description: "Class-B office building, 92% occupied, anchor tenant through 2031.",
			ImageURL:    "https://images.brickvest.dev/harbor-plaza.jpg",
			GoalAmount:  2400000,
			Location: models.Location{
				Address:   "15 Harbor Blvd, San Diego, CA",
				Latitude:  32.7157,
				Longitude: -117.1734,
			},
			Type:              "commercial",
			ExpectedROI:       9.1,
			MinimumInvestment: 2500,
			CreatedAt:         created,
			UpdatedAt:         created,
		},
		{
			ID:          "prop-cedar-storage",
			Name:        "Cedar Self-Storage",
			Description: "480-unit self-storage facility with on-site management.",
			ImageURL:    "https://images.brickvest.dev/cedar-storage.jpg",
			GoalAmount:  650000,
			Location: models.Location{
				Address:   "2200 Cedar Rd, Columbus, OH",
				Latitude:  39.9829,
				Longitude: -82.9366,
			},
			Type:              "industrial",
			ExpectedROI:       6.8,
			MinimumInvestment: 250,
			CreatedAt:         created,
			UpdatedAt:         created,
		},
	}
}
