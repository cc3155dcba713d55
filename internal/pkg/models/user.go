package models

import (
	"time"
)

// Auth providers
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google.com"
)

// User is the stored account record. PasswordHash is empty for OAuth users.
// The record is storage-internal; API responses expose AuthUser, which
// carries no credential material.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"password_hash" db:"password_hash"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PhotoURL     string    `json:"photo_url" db:"photo_url"`
	Provider     string    `json:"provider" db:"provider"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AuthUser is the normalized profile shape every auth backend resolves to.
type AuthUser struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Provider    string `json:"provider"`
}

// AuthUserFromUser converts a stored user into the normalized auth shape.
func AuthUserFromUser(u *User) AuthUser {
	return AuthUser{
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Provider:    u.Provider,
	}
}

// AuthResponse is returned by sign-in/sign-up operations.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      AuthUser `json:"user"`
}

// AuthState is the per-session authentication state.
type AuthState string

const (
	StateUnauthenticated AuthState = "unauthenticated"
	StateAuthenticating  AuthState = "authenticating"
	StateAuthenticated   AuthState = "authenticated"
)

// Session is the user+token pair mirrored to local storage so the current
// user can be answered without a network round trip.
type Session struct {
	User      AuthUser  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt int64     `json:"expires_at"`
	SavedAt   time.Time `json:"saved_at"`
}
