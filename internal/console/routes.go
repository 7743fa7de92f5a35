package console

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SchoolPulse/SP-Gateway/internal/middleware"
	"github.com/SchoolPulse/SP-Gateway/internal/roles"
)

// RouteConfig carries the knobs SetupRoutes needs beyond the handler itself.
type RouteConfig struct {
	APIBaseURL     string
	LoginPerMinute int
	LoginBurst     int
}

// SetupRoutes mounts the session endpoints, one guarded subtree per role,
// and the authenticated API proxy.
func SetupRoutes(h *Handler, cfg RouteConfig) http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "Gateway is up!")
	})

	r.Route("/session", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.LoginRateLimit(cfg.LoginPerMinute, cfg.LoginBurst))
			r.Post("/login", h.LoginHandler)
		})
		r.Post("/logout", h.LogoutHandler)
		r.Get("/", h.SessionHandler)
		r.Post("/refresh", h.RefreshHandler)
		r.Patch("/profile", h.ProfileHandler)
		r.Post("/password", h.PasswordHandler)
	})

	// One subtree per role, each behind its own guard.
	guards := map[roles.Role]func(middleware.SessionChecker) func(http.Handler) http.Handler{
		roles.Admin:   middleware.RequireAdmin,
		roles.Manager: middleware.RequireManager,
		roles.Staff:   middleware.RequireStaff,
		roles.Parent:  middleware.RequireParent,
		roles.Student: middleware.RequireStudent,
	}
	for _, role := range roles.All {
		guard := guards[role]
		r.Route("/"+string(role), func(r chi.Router) {
			r.Use(guard(h.Sessions))
			r.Get("/menu", h.MenuHandler)
		})
	}

	if cfg.APIBaseURL != "" {
		proxy, err := APIProxy(cfg.APIBaseURL, h.Sessions)
		if err != nil {
			log.Fatal("Failed to set up API proxy: ", err)
		}
		r.Handle("/api/*", proxy)
	}

	return r
}
