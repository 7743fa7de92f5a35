// Package credstore is the durable key-value store backing the session
// layer. It survives process restarts and holds exactly three logical keys:
// the access token, the refresh token, and the serialized session record.
// Tokens live under their own keys so that token rotation never rewrites
// the session record.
package credstore

import "errors"

// Logical keys. All backends share this layout.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeySession      = "session"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("credstore: key not found")

// Store is the minimal key-value surface the session layer needs. It is
// injected into the session service so tests can run on Memory and
// deployments can pick SQLite or Redis without touching session logic.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
