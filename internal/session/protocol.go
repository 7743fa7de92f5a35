package session

import (
	"context"
	"fmt"
	"log"

	"github.com/SchoolPulse/SP-Gateway/internal/authapi"
	"github.com/SchoolPulse/SP-Gateway/internal/roles"
)

// Protocol turns credentials plus the user's intended role into a session,
// or a rejection. A session is only ever established when the role the user
// picked on the login form matches the role the auth service actually
// granted; anything else would leave route guards and the post-login
// redirect disagreeing about who this is.
type Protocol struct {
	svc *Service
	api authapi.Authenticator
}

func NewProtocol(svc *Service, api authapi.Authenticator) *Protocol {
	return &Protocol{svc: svc, api: api}
}

// Attempt runs one login. The session is untouched on every failure path,
// and a result that resolves after a newer attempt or a logout has started
// is discarded rather than committed.
func (p *Protocol) Attempt(ctx context.Context, creds Credentials) LoginResult {
	ticket := p.svc.beginAttempt()

	resp, err := p.api.Authenticate(ctx, creds.Username, creds.Password)
	if err != nil {
		return LoginResult{Success: false, Message: err.Error()}
	}
	if !resp.Success {
		// Upstream rejection: forward the message verbatim.
		return LoginResult{Success: false, Message: resp.Message}
	}

	grantedRole, err := roles.Parse(resp.Role)
	if err != nil {
		return LoginResult{
			Success: false,
			Message: fmt.Sprintf("server granted unrecognized role %q", resp.Role),
		}
	}
	if !roles.Equal(creds.IntendedRole, resp.Role) {
		return LoginResult{
			Success: false,
			Message: fmt.Sprintf("no access under role %s", creds.IntendedRole),
		}
	}

	sess := Session{
		UserID:       resp.UserID,
		DisplayName:  resp.FullName,
		Email:        resp.Email,
		Username:     resp.Username,
		Role:         grantedRole,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}

	committed, err := p.svc.commitAttempt(ticket, sess)
	if err != nil {
		return LoginResult{Success: false, Message: "failed to persist session: " + err.Error()}
	}
	if !committed {
		log.Printf("[session] discarding stale login result for %s", creds.Username)
		return LoginResult{Success: false, Message: "login superseded by a newer attempt"}
	}

	result := LoginResult{
		Success:    true,
		RedirectTo: roles.DashboardRoute(grantedRole),
	}
	sanitized := sess
	sanitized.AccessToken = ""
	sanitized.RefreshToken = ""
	result.Session = &sanitized
	return result
}
