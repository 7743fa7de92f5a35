package devauth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/authenticate", AuthenticateHandler)
	r.Post("/refresh", RefreshHandler)
	r.Post("/logout", LogoutHandler)

	return r
}
