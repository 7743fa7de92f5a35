package console

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/SchoolPulse/SP-Gateway/internal/session"
)

// APIProxy forwards /api/* to the school-health REST API with the current
// access token attached. The gateway stores and forwards tokens; the REST
// API itself stays an external collaborator.
func APIProxy(apiBaseURL string, sessions *session.Service) (http.Handler, error) {
	target, err := url.Parse(apiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		// Strip the gateway prefix before the default director joins the
		// target path, so a base URL like https://host/v1 still works.
		req.URL.Path = strings.TrimPrefix(req.URL.Path, "/api")
		if req.URL.Path == "" {
			req.URL.Path = "/"
		}
		director(req)
		req.Host = target.Host
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessions.Current()
		if !ok {
			http.Error(w, "Not logged in", http.StatusUnauthorized)
			return
		}
		r.Header.Set("Authorization", "Bearer "+sess.AccessToken)
		proxy.ServeHTTP(w, r)
	}), nil
}

// forwardPasswordChange relays the password-change body upstream with the
// (just refreshed) access token.
func (h *Handler) forwardPasswordChange(r *http.Request, accessToken string) (int, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost,
		h.PasswordChangeURL, io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
