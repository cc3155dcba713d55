package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
)

const sessionKey = "session"

// Service is the authentication façade. It drives the session state machine
// (unauthenticated -> authenticating -> authenticated), notifies observers on
// every transition, and mirrors the active session to local storage so the
// current user can be answered without touching a backend.
type Service struct {
	provider AuthProvider
	sessions *localstore.Store
	log      *logger.ZapLogger

	mu        sync.Mutex
	state     models.AuthState
	current   *models.AuthUser
	token     string
	expiresAt int64

	nextObserver int
	observers    map[int]StateObserver
}

// NewService creates the auth façade and restores any mirrored session.
func NewService(provider AuthProvider, sessions *localstore.Store, log *logger.ZapLogger) *Service {
	s := &Service{
		provider:  provider,
		sessions:  sessions,
		log:       log,
		state:     models.StateUnauthenticated,
		observers: make(map[int]StateObserver),
	}
	s.restoreSession()
	return s
}

// restoreSession loads the mirrored session, discarding it when expired.
func (s *Service) restoreSession() {
	var session models.Session
	if err := s.sessions.Read(sessionKey, &session); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			s.log.Error("failed to restore session", logger.Err(err))
		}
		return
	}
	if session.ExpiresAt <= time.Now().Unix() {
		_ = s.sessions.Delete(sessionKey)
		return
	}

	user := session.User
	s.state = models.StateAuthenticated
	s.current = &user
	s.token = session.Token
	s.expiresAt = session.ExpiresAt
	s.log.Info("session restored", logger.String("user_id", user.UID))
}

// SignUpWithEmail registers and signs in a password account.
func (s *Service) SignUpWithEmail(ctx context.Context, email, password, displayName string) (*models.AuthResponse, error) {
	return s.run(func() (*models.AuthResponse, error) {
		return s.provider.SignUpWithEmail(ctx, email, password, displayName)
	})
}

// SignInWithEmail authenticates a password account.
func (s *Service) SignInWithEmail(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return s.run(func() (*models.AuthResponse, error) {
		return s.provider.SignInWithEmail(ctx, email, password)
	})
}

// SignInWithGoogle verifies a Google ID token and signs in.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	return s.run(func() (*models.AuthResponse, error) {
		return s.provider.SignInWithGoogle(ctx, idToken)
	})
}

// run drives one sign-in attempt through the state machine. A failure always
// lands back in unauthenticated, never in a stuck authenticating state.
func (s *Service) run(attempt func() (*models.AuthResponse, error)) (*models.AuthResponse, error) {
	s.transition(models.StateAuthenticating, nil)

	resp, err := attempt()
	if err != nil {
		s.transition(models.StateUnauthenticated, nil)
		return nil, err
	}

	user := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.expiresAt = resp.ExpiresAt
	s.mu.Unlock()

	s.mirrorSession(resp)
	s.transition(models.StateAuthenticated, &user)
	return resp, nil
}

// SignOut clears the session and returns to the unauthenticated state. It
// never fails; a stale mirror is only logged.
func (s *Service) SignOut(ctx context.Context) {
	if err := s.sessions.Delete(sessionKey); err != nil {
		s.log.Error("failed to clear session mirror", logger.Err(err))
	}

	s.mu.Lock()
	s.token = ""
	s.expiresAt = 0
	s.mu.Unlock()

	s.transition(models.StateUnauthenticated, nil)
}

// CurrentUser answers synchronously from the in-memory session.
func (s *Service) CurrentUser() *models.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateAuthenticated || s.current == nil {
		return nil
	}
	user := *s.current
	return &user
}

// State returns the current auth state.
func (s *Service) State() models.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetUser resolves a profile by account id through the active backend.
func (s *Service) GetUser(ctx context.Context, uid string) (*models.AuthUser, error) {
	return s.provider.GetUser(ctx, uid)
}

// OnAuthStateChange registers an observer. It fires immediately with the
// current state, then on every transition until the returned function is
// called.
func (s *Service) OnAuthStateChange(observer StateObserver) UnsubscribeFunc {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = observer
	state := s.state
	current := s.current
	s.mu.Unlock()

	observer(state, current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) transition(state models.AuthState, user *models.AuthUser) {
	s.mu.Lock()
	s.state = state
	s.current = user
	observers := make([]StateObserver, 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(state, user)
	}
}

func (s *Service) mirrorSession(resp *models.AuthResponse) {
	session := models.Session{
		User:      resp.User,
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		SavedAt:   time.Now().UTC(),
	}
	if err := s.sessions.Write(sessionKey, session); err != nil {
		s.log.Error("failed to mirror session", logger.Err(err))
	}
}
