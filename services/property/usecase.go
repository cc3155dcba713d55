package property

import (
	"context"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

//go:generate mockgen -source=usecase.go -destination=mocks/mock_usecase.go -package=mocks

// InvestRequest carries a checkout request for a single property.
type InvestRequest struct {
	PropertyID        string                   `json:"property_id"`
	Amount            float64                  `json:"amount"`
	PaymentMethodID   string                   `json:"payment_method_id"`
	PaymentMethodType models.PaymentMethodType `json:"payment_method_type"`
}

// PropertyUC defines the property business logic contract.
type PropertyUC interface {
	// GetProperties returns the full listing catalogue.
	GetProperties(ctx context.Context) ([]models.Property, error)

	// GetPropertyByID returns a single listing, or ErrNotFound.
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)

	// GetNearbyProperties returns listings in the geohash cell around the
	// given coordinates and its eight neighbors.
	GetNearbyProperties(ctx context.Context, latitude, longitude float64) ([]models.Property, error)

	// GetInvestedProperties returns the distinct properties the user has
	// transactions against.
	GetInvestedProperties(ctx context.Context, userID string) ([]models.Property, error)

	// Invest runs the checkout flow: validates the request, records a
	// transaction, walks it pending -> processing -> completed, and adds
	// the amount to the property's raised total.
	Invest(ctx context.Context, userID string, req InvestRequest) (*models.Transaction, error)

	// SubscribeToProperties streams catalogue snapshots, starting with an
	// immediate one.
	SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (UnsubscribeFunc, error)
}
