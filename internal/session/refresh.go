package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SchoolPulse/SP-Gateway/internal/authapi"
	"github.com/SchoolPulse/SP-Gateway/internal/credstore"
)

// Refresher renews an expiring access token with the stored refresh token.
// It is orthogonal to the rest of the session lifecycle: it only ever
// rewrites the token pair, and a failed run leaves the stored tokens and the
// session exactly as they were. Whether repeated failure should end the
// session is the caller's policy, not this procedure's.
type Refresher struct {
	store credstore.Store
	svc   *Service
	api   authapi.Authenticator

	mu       sync.Mutex
	failures int
}

func NewRefresher(store credstore.Store, svc *Service, api authapi.Authenticator) *Refresher {
	return &Refresher{store: store, svc: svc, api: api}
}

// Run performs one refresh. With no stored refresh token it fails fast
// without a network call, so no malformed request ever goes out.
func (r *Refresher) Run(ctx context.Context) RefreshResult {
	refreshToken, err := r.store.Get(credstore.KeyRefreshToken)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			return r.fail("no refresh token stored; log in again")
		}
		return r.fail("credential store unavailable: " + err.Error())
	}
	if refreshToken == "" {
		return r.fail("no refresh token stored; log in again")
	}

	resp, err := r.api.Refresh(ctx, refreshToken)
	if err != nil {
		return r.fail(err.Error())
	}
	if resp.AccessToken == "" {
		return r.fail("refresh response carried no access token")
	}

	if err := r.svc.updateTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		return r.fail("failed to store refreshed tokens: " + err.Error())
	}

	r.mu.Lock()
	r.failures = 0
	r.mu.Unlock()
	log.Printf("[session] access token refreshed")
	return RefreshResult{Success: true}
}

func (r *Refresher) fail(message string) RefreshResult {
	r.mu.Lock()
	r.failures++
	count := r.failures
	r.mu.Unlock()
	log.Printf("[session] token refresh failed (%d consecutive): %s", count, message)
	return RefreshResult{Success: false, Message: message, Failures: count}
}

// NeedsRefresh reports whether the stored access token expires within the
// leeway. The token's exp claim is read without any signature check: this
// gateway never validates tokens, it only schedules renewal. A token that
// cannot be read at all counts as expiring now.
func (r *Refresher) NeedsRefresh(leeway time.Duration) bool {
	accessToken, err := r.store.Get(credstore.KeyAccessToken)
	if err != nil || accessToken == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Until(exp.Time) <= leeway
}
