package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/SchoolPulse/SP-Gateway/internal/roles"
	"github.com/SchoolPulse/SP-Gateway/internal/utils"
)

// SessionChecker is the slice of the session service the guards need. Guards
// only read; they never mutate session state.
type SessionChecker interface {
	HasRole(r roles.Role) bool
	CurrentRole() (roles.Role, bool)
}

// Unauthorized is the denial payload. ReturnTo points the user back at their
// own dashboard, or the public landing route when nobody is logged in.
type Unauthorized struct {
	Message     string `json:"message"`
	CurrentRole string `json:"current_role,omitempty"`
	ReturnTo    string `json:"return_to"`
}

// RequireRole gates a subtree behind exactly one role. The decision is
// recomputed from the current session on every request; there is no
// hierarchy and no admin bypass — an admin hitting a staff subtree is
// denied like anyone else.
func RequireRole(sessions SessionChecker, required roles.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.HasRole(required) {
				next.ServeHTTP(w, r.WithContext(utils.WithRole(r.Context(), required)))
				return
			}

			payload := Unauthorized{
				Message:  "Forbidden: " + string(required) + " access required",
				ReturnTo: roles.LandingRoute,
			}
			if current, ok := sessions.CurrentRole(); ok {
				payload.CurrentRole = string(current)
				payload.ReturnTo = roles.DashboardRoute(current)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(payload)
		})
	}
}

// One guard per role. Each checks its own role and nothing else.

func RequireAdmin(s SessionChecker) func(http.Handler) http.Handler {
	return RequireRole(s, roles.Admin)
}

func RequireManager(s SessionChecker) func(http.Handler) http.Handler {
	return RequireRole(s, roles.Manager)
}

func RequireStaff(s SessionChecker) func(http.Handler) http.Handler {
	return RequireRole(s, roles.Staff)
}

func RequireParent(s SessionChecker) func(http.Handler) http.Handler {
	return RequireRole(s, roles.Parent)
}

func RequireStudent(s SessionChecker) func(http.Handler) http.Handler {
	return RequireRole(s, roles.Student)
}
