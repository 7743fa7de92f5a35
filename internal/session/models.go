package session

import "github.com/SchoolPulse/SP-Gateway/internal/roles"

// Session is the in-memory record of the authenticated identity. It is
// created whole by a successful login, replaced whole by the next login, and
// destroyed by logout. Only the profile-update flow touches individual
// fields, and only the display ones.
type Session struct {
	UserID       string     `json:"user_id"`
	DisplayName  string     `json:"display_name"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	Role         roles.Role `json:"role"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
}

// storedSession is the durable projection of a Session written under the
// session key. Tokens are deliberately not part of it: they live under their
// own keys so rotation never rewrites this record.
type storedSession struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Credentials is the login form input: who claims to be logging in, and
// under which role they expect to work.
type Credentials struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	IntendedRole string `json:"intended_role"`
}

// LoginResult is what the login protocol hands back to the UI. On success
// RedirectTo carries the role's dashboard route.
type LoginResult struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message,omitempty"`
	RedirectTo string   `json:"redirect_to,omitempty"`
	Session    *Session `json:"session,omitempty"`
}

// RefreshResult is the outcome of one token refresh run. Failures carries
// the number of consecutive failed runs; forcing a logout on repeated
// failure is the caller's decision, never this layer's.
type RefreshResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Failures int    `json:"failures,omitempty"`
}
