package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest/internal/pkg/jwt"
	"github.com/brickvest/brickvest/internal/pkg/localstore"
	"github.com/brickvest/brickvest/internal/pkg/logger"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/services/auth"
	"github.com/brickvest/brickvest/services/user"
	userrepo "github.com/brickvest/brickvest/services/user/repository"
)

type staticRepoProvider struct{ repo user.UserRepo }

func (p staticRepoProvider) UserRepository() user.UserRepo { return p.repo }

func testJWTConfig() models.JWTConfig {
	return models.JWTConfig{Secret: "test-secret", Expiration: 60, Issuer: "brickvest-test"}
}

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	repo := userrepo.NewLocalUserRepo(localstore.New(t.TempDir()), logger.NewNop())
	return NewProvider(staticRepoProvider{repo: repo}, auth.NewSimulatedVerifier(), testJWTConfig(), logger.NewNop())
}

func TestProvider_SignUpThenSignIn(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	signedUp, err := p.SignUpWithEmail(ctx, "Ada@Example.com", "correct horse", "Ada")
	require.NoError(t, err)
	require.NotNil(t, signedUp)
	assert.Equal(t, "ada@example.com", signedUp.User.Email)
	assert.Equal(t, models.ProviderPassword, signedUp.User.Provider)
	assert.NotEmpty(t, signedUp.Token)

	claims, err := jwt.ValidateToken(signedUp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.UID, (*claims)["user_id"])

	signedIn, err := p.SignInWithEmail(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.UID, signedIn.User.UID)
}

func TestProvider_SignUpRejectsWeakPassword(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.SignUpWithEmail(context.Background(), "ada@example.com", "short", "Ada")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestProvider_SignUpRejectsBadEmail(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.SignUpWithEmail(context.Background(), "not-an-email", "long enough password", "Ada")
	assert.ErrorIs(t, err, auth.ErrInvalidEmail)
}

func TestProvider_SignUpRejectsDuplicateEmail(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUpWithEmail(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	_, err = p.SignUpWithEmail(ctx, "ada@example.com", "different pass", "Other")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestProvider_SignInWrongPassword(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUpWithEmail(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)

	_, err = p.SignInWithEmail(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestProvider_SignInUnknownEmail(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.SignInWithEmail(context.Background(), "nobody@example.com", "whatever pass")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestProvider_GoogleSignInCreatesAccountOnce(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	first, err := p.SignInWithGoogle(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, first.User.Provider)

	second, err := p.SignInWithGoogle(ctx, "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, first.User.UID, second.User.UID)
}

func TestProvider_GoogleSignInRejectsEmptyToken(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.SignInWithGoogle(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrInvalidGoogleToken)
}

func TestProvider_PasswordSignInAgainstGoogleAccount(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	resp, err := p.SignInWithGoogle(ctx, "google-id-token")
	require.NoError(t, err)

	_, err = p.SignInWithEmail(ctx, resp.User.Email, "any password at all")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
