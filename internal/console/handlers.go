// Package console is the UI-facing HTTP surface of the gateway: the session
// endpoints the login form talks to, the role-gated subtrees behind the
// route guards, and the authenticated proxy to the school-health REST API.
package console

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/SchoolPulse/SP-Gateway/internal/authapi"
	"github.com/SchoolPulse/SP-Gateway/internal/roles"
	"github.com/SchoolPulse/SP-Gateway/internal/session"
	"github.com/SchoolPulse/SP-Gateway/internal/utils"
)

// refreshLeeway is how close to expiry the access token may get before the
// password flow insists on a refresh first.
const refreshLeeway = time.Minute

type Handler struct {
	Sessions  *session.Service
	Protocol  *session.Protocol
	Refresher *session.Refresher
	API       authapi.Authenticator

	// PasswordChangeURL is the upstream endpoint the password flow relays to.
	PasswordChangeURL string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[console] encode response: %v", err)
	}
}

// LoginHandler runs the login protocol. A rejection (bad credentials, role
// mismatch, unreachable auth service) is a 401 carrying the failure message
// for the login form; the user stays where they are and retries.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}
	if creds.IntendedRole == "" {
		http.Error(w, "Select a role to log in under", http.StatusBadRequest)
		return
	}

	result := h.Protocol.Attempt(r.Context(), creds)
	if !result.Success {
		writeJSON(w, http.StatusUnauthorized, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LogoutHandler tears the session down. Server-side invalidation is best
// effort; local teardown happens regardless of its outcome.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.Sessions.Current(); ok && sess.AccessToken != "" {
		if err := h.API.Logout(r.Context(), sess.AccessToken); err != nil {
			log.Printf("[console] remote logout failed, continuing local teardown: %v", err)
		}
	}
	if err := h.Sessions.Logout(); err != nil {
		http.Error(w, "Failed to clear credentials", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "redirect_to": roles.LandingRoute})
}

// SessionHandler reports who is logged in. Tokens never leave the gateway.
func (h *Handler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.Sessions.Current()
	if !ok {
		http.Error(w, "Not logged in", http.StatusUnauthorized)
		return
	}
	sess.AccessToken = ""
	sess.RefreshToken = ""
	writeJSON(w, http.StatusOK, map[string]any{
		"session":   sess,
		"dashboard": roles.DashboardRoute(sess.Role),
	})
}

// RefreshHandler runs one token refresh. Failure never clears the session
// here; the result carries the consecutive-failure count and the UI decides.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	result := h.Refresher.Run(r.Context())
	if !result.Success {
		writeJSON(w, http.StatusBadGateway, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ProfileHandler updates display fields only.
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	var update struct {
		DisplayName string `json:"display_name"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid Request Format", http.StatusBadRequest)
		return
	}
	if err := h.Sessions.UpdateProfile(update.DisplayName, update.AvatarURL); err != nil {
		http.Error(w, "Not logged in", http.StatusUnauthorized)
		return
	}

	sess, _ := h.Sessions.Current()
	sess.AccessToken = ""
	sess.RefreshToken = ""
	writeJSON(w, http.StatusOK, map[string]any{"session": sess})
}

// PasswordHandler forwards a password change upstream. This is the one place
// the refresh-failure policy is applied: a password change with a dead
// refresh token ends the session and sends the user back to the login form.
func (h *Handler) PasswordHandler(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.IsAuthenticated() {
		http.Error(w, "Not logged in", http.StatusUnauthorized)
		return
	}

	if h.Refresher.NeedsRefresh(refreshLeeway) {
		if result := h.Refresher.Run(r.Context()); !result.Success {
			log.Printf("[console] refresh before password change failed, forcing logout: %s", result.Message)
			if err := h.Sessions.Logout(); err != nil {
				log.Printf("[console] logout during forced teardown: %v", err)
			}
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success":     false,
				"message":     "Session expired, log in again",
				"redirect_to": roles.LandingRoute,
			})
			return
		}
	}

	sess, _ := h.Sessions.Current()
	status, err := h.forwardPasswordChange(r, sess.AccessToken)
	if err != nil {
		http.Error(w, "Password change failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if status != http.StatusOK {
		http.Error(w, "Password change rejected", status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// MenuHandler serves the guarded subtrees. The guard injected the matched
// role; the menu table decides what that role sees.
func (h *Handler) MenuHandler(w http.ResponseWriter, r *http.Request) {
	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok {
		http.Error(w, "No role in context", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":       role,
		"categories": roles.MenuCategories(role),
		"dashboard":  roles.DashboardRoute(role),
	})
}
