package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"ridelab/internal/logger"
	"ridelab/internal/store"
)

// refreshBuffer refreshes tokens this long before Strava would reject them
const refreshBuffer = 60 * time.Second

// TokenSource wraps oauth2.TokenSource with persistence.
// It refreshes tokens as needed and calls onRefresh when a new token is obtained.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a TokenSource that refreshes tokens as needed
// and calls onRefresh to persist new tokens
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// NewStoreTokenSource creates a TokenSource backed by the tokens in db.
// Refreshed tokens are written back so the next run starts from them.
func NewStoreTokenSource(cfg Config, db *store.DB) (*TokenSource, error) {
	stored, err := db.GetAuth()
	if err != nil {
		return nil, err
	}
	if stored.ExpiresWithin(time.Now(), refreshBuffer) {
		logger.Debug("oauth: stored token for athlete %d expired %s, refreshing on first use",
			stored.AthleteID, stored.ExpiresAt.Format(time.RFC3339))
	}
	return NewTokenSource(NewOAuthConfig(cfg), TokenFromStore(stored), func(t *oauth2.Token) error {
		return db.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	}), nil
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	// a copy without an expiry forces the underlying source to refresh
	stale := *ts.token
	stale.Expiry = time.Unix(1, 0)
	src := ts.config.TokenSource(context.Background(), &stale)
	newToken, err := src.Token()
	if err != nil {
		return nil, err
	}
	logger.Debug("oauth: refreshed access token, expires %s", newToken.Expiry.Format(time.RFC3339))

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return time.Until(ts.token.Expiry) <= refreshBuffer
}

