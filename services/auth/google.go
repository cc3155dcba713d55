package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/brickvest/brickvest/internal/pkg/models"
)

// GoogleProfile is the subset of the tokeninfo response the sign-in flow
// needs.
type GoogleProfile struct {
	Subject     string `json:"sub"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Picture     string `json:"picture"`
	Audience    string `json:"aud"`
	ExpiresUnix string `json:"exp"`
}

// GoogleVerifier validates a Google ID token and resolves its profile.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// tokenInfoVerifier checks ID tokens against Google's tokeninfo endpoint.
type tokenInfoVerifier struct {
	endpoint string
	clientID string
	client   *http.Client
}

// NewTokenInfoVerifier creates a verifier backed by the tokeninfo endpoint.
func NewTokenInfoVerifier(cfg models.GoogleConfig) GoogleVerifier {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &tokenInfoVerifier{
		endpoint: cfg.TokenInfoURL,
		clientID: cfg.ClientID,
		client:   &http.Client{Timeout: timeout},
	}
}

func (v *tokenInfoVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	if idToken == "" {
		return nil, ErrInvalidGoogleToken
	}

	endpoint := fmt.Sprintf("%s?id_token=%s", v.endpoint, url.QueryEscape(idToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidGoogleToken
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, ErrInvalidGoogleToken
	}
	if profile.Subject == "" || profile.Email == "" {
		return nil, ErrInvalidGoogleToken
	}
	if v.clientID != "" && profile.Audience != v.clientID {
		return nil, ErrInvalidGoogleToken
	}
	if exp, err := strconv.ParseInt(profile.ExpiresUnix, 10, 64); err == nil {
		if time.Now().Unix() >= exp {
			return nil, ErrInvalidGoogleToken
		}
	}
	return &profile, nil
}

// simulatedVerifier accepts any non-empty token and derives a stable demo
// profile from it. The local backend uses it so Google sign-in works without
// network access.
type simulatedVerifier struct{}

// NewSimulatedVerifier creates the offline Google verifier.
func NewSimulatedVerifier() GoogleVerifier {
	return simulatedVerifier{}
}

func (simulatedVerifier) Verify(_ context.Context, idToken string) (*GoogleProfile, error) {
	if idToken == "" {
		return nil, ErrInvalidGoogleToken
	}
	sum := sha256.Sum256([]byte(idToken))
	tag := hex.EncodeToString(sum[:4])
	return &GoogleProfile{
		Subject: "sim-" + tag,
		Email:   fmt.Sprintf("demo-%s@example.com", tag),
		Name:    "Demo Investor",
	}, nil
}
