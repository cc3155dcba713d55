package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/user"
)

// scriptedProvider returns canned responses and records the states a
// transition passes through via the service's observers.
type scriptedProvider struct {
	resp *models.AuthResponse
	err  error
}

func (p *scriptedProvider) SignUpWithEmail(context.Context, string, string, string) (*models.AuthResponse, error) {
	return p.resp, p.err
}

func (p *scriptedProvider) SignInWithEmail(context.Context, string, string) (*models.AuthResponse, error) {
	return p.resp, p.err
}

func (p *scriptedProvider) SignInWithGoogle(context.Context, string) (*models.AuthResponse, error) {
	return p.resp, p.err
}

func (p *scriptedProvider) GetUser(context.Context, string) (*models.AuthUser, error) {
	if p.resp == nil {
		return nil, user.ErrNotFound
	}
	u := p.resp.User
	return &u, nil
}

func okResponse() *models.AuthResponse {
	return &models.AuthResponse{
		Token:     "token-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		User:      models.AuthUser{UID: "u1", Email: "ada@example.com", Provider: models.ProviderPassword},
	}
}

func newTestService(t *testing.T, provider AuthProvider) (*Service, *localstore.Store) {
	t.Helper()
	store := localstore.New(t.TempDir())
	return NewService(provider, store, logger.NewNop()), store
}

func TestService_SignInDrivesStateMachine(t *testing.T) {
	svc, _ := newTestService(t, &scriptedProvider{resp: okResponse()})

	var states []models.AuthState
	unsubscribe := svc.OnAuthStateChange(func(state models.AuthState, _ *models.AuthUser) {
		states = append(states, state)
	})
	defer unsubscribe()

	resp, err := svc.SignInWithEmail(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, []models.AuthState{
		models.StateUnauthenticated, // immediate replay on subscribe
		models.StateAuthenticating,
		models.StateAuthenticated,
	}, states)

	current := svc.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.UID)
}

func TestService_FailedSignInReturnsToUnauthenticated(t *testing.T) {
	svc, _ := newTestService(t, &scriptedProvider{err: ErrInvalidCredentials})

	_, err := svc.SignInWithEmail(context.Background(), "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, models.StateUnauthenticated, svc.State())
	assert.Nil(t, svc.CurrentUser())
}

func TestService_UnsubscribeStopsObserver(t *testing.T) {
	svc, _ := newTestService(t, &scriptedProvider{resp: okResponse()})

	calls := 0
	unsubscribe := svc.OnAuthStateChange(func(models.AuthState, *models.AuthUser) {
		calls++
	})
	unsubscribe()
	unsubscribe() // no-op

	after := calls
	_, err := svc.SignInWithEmail(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, after, calls)
}

func TestService_SessionMirrorSurvivesRestart(t *testing.T) {
	store := localstore.New(t.TempDir())
	svc := NewService(&scriptedProvider{resp: okResponse()}, store, logger.NewNop())

	_, err := svc.SignInWithEmail(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)

	// A new service over the same store restores the session.
	restored := NewService(&scriptedProvider{}, store, logger.NewNop())
	assert.Equal(t, models.StateAuthenticated, restored.State())

	current := restored.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.UID)
}

func TestService_ExpiredSessionIsDiscarded(t *testing.T) {
	store := localstore.New(t.TempDir())
	require.NoError(t, store.Write("session", models.Session{
		User:      models.AuthUser{UID: "u1"},
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		SavedAt:   time.Now().Add(-2 * time.Hour),
	}))

	svc := NewService(&scriptedProvider{}, store, logger.NewNop())
	assert.Equal(t, models.StateUnauthenticated, svc.State())
	assert.Nil(t, svc.CurrentUser())
}

func TestService_SignOutClearsSession(t *testing.T) {
	store := localstore.New(t.TempDir())
	svc := NewService(&scriptedProvider{resp: okResponse()}, store, logger.NewNop())

	_, err := svc.SignInWithEmail(context.Background(), "ada@example.com", "password123")
	require.NoError(t, err)

	svc.SignOut(context.Background())
	assert.Equal(t, models.StateUnauthenticated, svc.State())
	assert.Nil(t, svc.CurrentUser())

	var session models.Session
	assert.ErrorIs(t, store.Read("session", &session), localstore.ErrNotFound)
}

func TestClassifyAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid credentials", ErrInvalidCredentials, "The email or password is incorrect."},
		{"email taken", user.ErrEmailTaken, "An account already exists for this email."},
		{"weak password", ErrWeakPassword, "The password must be at least 8 characters."},
		{"google token", ErrInvalidGoogleToken, "Google sign-in failed. Please try again."},
		{"unknown error falls back", errors.New("connection refused"), genericAuthMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAuthError(tt.err))
		})
	}
}
