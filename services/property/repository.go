package property

import (
	"context"
	"errors"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/brickvest/brickvest/services/property PropertyRepo

// ErrNotFound is returned by write paths addressing a missing property.
var ErrNotFound = errors.New("property not found")

// UnsubscribeFunc stops delivery for events occurring strictly after the
// call. It is safe to invoke more than once.
type UnsubscribeFunc func()

// PropertyRepo serves the property catalogue for one backend. Subscribe
// methods invoke the callback once immediately with the current snapshot
// (an empty slice when there are no records, never an error), then on every
// subsequent change until unsubscribed. Write failures are logged and
// returned unchanged; read failures are logged and degrade to an empty
// result.
type PropertyRepo interface {
	GetProperties(ctx context.Context) ([]models.Property, error)
	GetPropertyByID(ctx context.Context, id string) (*models.Property, error)

	SubscribeToProperties(ctx context.Context, cb func([]models.Property)) (UnsubscribeFunc, error)
	SubscribeToProperty(ctx context.Context, id string, cb func(*models.Property)) (UnsubscribeFunc, error)

	// GetUserInvestedProperties returns the properties referenced by the
	// bound user's transactions.
	GetUserInvestedProperties(ctx context.Context) ([]models.Property, error)

	// UpdatePropertyFunding increments the property's raised amount. The
	// raised amount is deliberately not clamped to the goal.
	UpdatePropertyFunding(ctx context.Context, id string, amount float64) error

	// SeedProperties upserts the given listings; used by demo mode and the
	// seed tool.
	SeedProperties(ctx context.Context, properties []models.Property) error

	// Destroy closes every live subscription held by this instance.
	Destroy()
}

// NearbyFinder is an optional repository capability: backends that can
// answer a proximity query natively implement it, and the usecase falls
// back to geohash filtering over the full catalogue when they do not.
type NearbyFinder interface {
	FindNearby(ctx context.Context, latitude, longitude float64) ([]models.Property, error)
}

// RepoProvider resolves the active property repository for a user. The
// service factory implements it.
type RepoProvider interface {
	PropertyRepository(userID string) PropertyRepo
}
