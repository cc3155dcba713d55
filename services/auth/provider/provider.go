package provider

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/brickvest/brickvest/internal/pkg/jwt"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/auth"
	"github.com/brickvest/brickvest/services/user"
)

const minPasswordLength = 8

// Provider implements auth.AuthProvider over whichever user repository the
// factory is currently serving, so switching backends also switches where
// accounts live.
type Provider struct {
	users    user.RepoProvider
	verifier auth.GoogleVerifier
	jwtCfg   models.JWTConfig
	log      *logger.ZapLogger
}

// NewProvider creates the authentication provider.
func NewProvider(users user.RepoProvider, verifier auth.GoogleVerifier, jwtCfg models.JWTConfig, log *logger.ZapLogger) *Provider {
	return &Provider{
		users:    users,
		verifier: verifier,
		jwtCfg:   jwtCfg,
		log:      log,
	}
}

func (p *Provider) SignUpWithEmail(ctx context.Context, email, password, displayName string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !validEmail(email) {
		return nil, auth.ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, auth.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Provider:     models.ProviderPassword,
	}
	if err := p.users.UserRepository().CreateUser(ctx, u); err != nil {
		return nil, err
	}

	p.log.Info("user signed up", logger.String("user_id", u.ID))
	return p.issueToken(u)
}

func (p *Provider) SignInWithEmail(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := p.users.UserRepository().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		// OAuth-only account; there is no password to match.
		return nil, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	p.log.Info("user signed in", logger.String("user_id", u.ID))
	return p.issueToken(u)
}

func (p *Provider) SignInWithGoogle(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	profile, err := p.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	repo := p.users.UserRepository()
	u, err := repo.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Returning account. Refresh the profile fields Google owns.
		if u.DisplayName != profile.Name || u.PhotoURL != profile.Picture {
			u.DisplayName = profile.Name
			u.PhotoURL = profile.Picture
			if err := repo.UpdateUser(ctx, u); err != nil {
				p.log.Error("failed to refresh google profile", logger.String("user_id", u.ID), logger.Err(err))
			}
		}
	case errors.Is(err, user.ErrNotFound):
		u = &models.User{
			Email:       profile.Email,
			DisplayName: profile.Name,
			PhotoURL:    profile.Picture,
			Provider:    models.ProviderGoogle,
		}
		if err := repo.CreateUser(ctx, u); err != nil {
			return nil, err
		}
		p.log.Info("google account created", logger.String("user_id", u.ID))
	default:
		return nil, err
	}

	return p.issueToken(u)
}

func (p *Provider) GetUser(ctx context.Context, uid string) (*models.AuthUser, error) {
	u, err := p.users.UserRepository().GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	authUser := models.AuthUserFromUser(u)
	return &authUser, nil
}

func (p *Provider) issueToken(u *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := jwt.GenerateToken(u.ID, u.Email, u.Provider, p.jwtCfg)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      models.AuthUserFromUser(u),
	}, nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.Contains(domain, "@")
}
