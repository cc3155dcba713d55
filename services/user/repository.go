package user

import (
	"context"
	"errors"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when an account already exists for an email.
	ErrEmailTaken = errors.New("email is already in use")
)

// UserRepo defines the user persistence contract. Every backend implements
// it so accounts behave the same regardless of where they live.
type UserRepo interface {
	// GetUserByID returns the user, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns the user, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser stores a new account. It returns ErrEmailTaken when the
	// email is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// UpdateUser overwrites the stored account.
	UpdateUser(ctx context.Context, user *models.User) error

	// Destroy releases any backend resources held by this repository.
	Destroy()
}

// RepoProvider resolves the user repository for the active backend.
type RepoProvider interface {
	UserRepository() UserRepo
}
