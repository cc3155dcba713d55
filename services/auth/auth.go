package auth

import (
	"context"
	"errors"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

//go:generate mockgen -source=auth.go -destination=mocks/mock_auth.go -package=mocks

var (
	// ErrInvalidCredentials is returned when the email/password pair does
	// not match an account.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a sign-up password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidEmail is returned when a sign-up email is malformed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidGoogleToken is returned when a Google ID token fails
	// verification.
	ErrInvalidGoogleToken = errors.New("invalid google id token")
)

// AuthProvider is the backend-facing authentication contract. Implementations
// resolve accounts from whichever user repository the factory is serving.
type AuthProvider interface {
	// SignUpWithEmail registers a password account and signs it in.
	SignUpWithEmail(ctx context.Context, email, password, displayName string) (*models.AuthResponse, error)

	// SignInWithEmail authenticates a password account.
	SignInWithEmail(ctx context.Context, email, password string) (*models.AuthResponse, error)

	// SignInWithGoogle verifies a Google ID token and signs in the matching
	// account, creating it on first sign-in.
	SignInWithGoogle(ctx context.Context, idToken string) (*models.AuthResponse, error)

	// GetUser returns the normalized profile for an account id.
	GetUser(ctx context.Context, uid string) (*models.AuthUser, error)
}

// StateObserver is notified on every auth state transition. The user is nil
// except in the authenticated state.
type StateObserver func(state models.AuthState, user *models.AuthUser)

// UnsubscribeFunc detaches a state observer.
type UnsubscribeFunc func()
