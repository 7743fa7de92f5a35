package console_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SchoolPulse/SP-Gateway/internal/authapi"
	"github.com/SchoolPulse/SP-Gateway/internal/console"
	"github.com/SchoolPulse/SP-Gateway/internal/credstore"
	"github.com/SchoolPulse/SP-Gateway/internal/roles"
	"github.com/SchoolPulse/SP-Gateway/internal/session"
)

// authStub is a fake upstream auth service. It grants grantRole to any
// credentials unless reject is set.
type authStub struct {
	grantRole string
	reject    bool

	refreshPair *authapi.RefreshResponse
	logoutCalls int
}

func (a *authStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		if a.reject {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(authapi.AuthResponse{Success: false, Message: "Invalid Credentials"})
			return
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		json.NewEncoder(w).Encode(authapi.AuthResponse{
			Success:      true,
			Role:         a.grantRole,
			UserID:       "u-1",
			FullName:     "Riley Chen",
			Email:        "riley@school.example",
			Username:     creds["username"],
			AccessToken:  "acc-1",
			RefreshToken: "ref-1",
		})
	})
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if a.refreshPair == nil {
			http.Error(w, "refresh token revoked", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(a.refreshPair)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		a.logoutCalls++
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

type fixture struct {
	server *httptest.Server
	store  *credstore.Memory
	stub   *authStub
}

// newFixture wires the full console surface against a stubbed auth service,
// matching the production setup in main.go.
func newFixture(t *testing.T, stub *authStub) *fixture {
	t.Helper()

	authServer := httptest.NewServer(stub.handler())
	t.Cleanup(authServer.Close)

	api, err := authapi.NewClient(authapi.Config{BaseURL: authServer.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	store := credstore.NewMemory()
	svc := session.NewService(store)
	svc.Hydrate()

	h := &console.Handler{
		Sessions:  svc,
		Protocol:  session.NewProtocol(svc, api),
		Refresher: session.NewRefresher(store, svc, api),
		API:       api,
	}
	router := console.SetupRoutes(h, console.RouteConfig{LoginPerMinute: 100, LoginBurst: 100})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &fixture{server: server, store: store, stub: stub}
}

func (f *fixture) login(t *testing.T, intendedRole string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username":      "riley",
		"password":      "pw",
		"intended_role": intendedRole,
	})
	resp, err := http.Post(f.server.URL+"/session/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /session/login: %v", err)
	}
	return resp
}

// TestLoginRoundTrip verifies a matching-role login establishes the session,
// opens that role's subtree, and keeps every other subtree shut.
func TestLoginRoundTrip(t *testing.T) {
	f := newFixture(t, &authStub{grantRole: "manager"})

	resp := f.login(t, "Manager")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var result session.LoginResult
	json.NewDecoder(resp.Body).Decode(&result)
	if !result.Success || result.RedirectTo != "/manager/dashboard" {
		t.Errorf("login result = %+v", result)
	}

	// The manager subtree opens.
	menuResp, err := http.Get(f.server.URL + "/manager/menu")
	if err != nil {
		t.Fatalf("GET /manager/menu: %v", err)
	}
	defer menuResp.Body.Close()
	if menuResp.StatusCode != http.StatusOK {
		t.Errorf("/manager/menu status = %d", menuResp.StatusCode)
	}

	// The admin subtree stays shut, bouncing back to the manager dashboard.
	adminResp, err := http.Get(f.server.URL + "/admin/menu")
	if err != nil {
		t.Fatalf("GET /admin/menu: %v", err)
	}
	defer adminResp.Body.Close()
	if adminResp.StatusCode != http.StatusForbidden {
		t.Fatalf("/admin/menu status = %d, want 403", adminResp.StatusCode)
	}
	var denial struct {
		CurrentRole string `json:"current_role"`
		ReturnTo    string `json:"return_to"`
	}
	json.NewDecoder(adminResp.Body).Decode(&denial)
	if denial.CurrentRole != "manager" || denial.ReturnTo != "/manager/dashboard" {
		t.Errorf("denial = %+v", denial)
	}

	// Tokens landed in the store but never in the session payload.
	if access, _ := f.store.Get(credstore.KeyAccessToken); access != "acc-1" {
		t.Errorf("stored access token = %q", access)
	}
	sessResp, err := http.Get(f.server.URL + "/session/")
	if err != nil {
		t.Fatal(err)
	}
	defer sessResp.Body.Close()
	raw := new(bytes.Buffer)
	raw.ReadFrom(sessResp.Body)
	if strings.Contains(raw.String(), "acc-1") || strings.Contains(raw.String(), "ref-1") {
		t.Error("session payload leaked tokens")
	}
}

// TestLoginRoleMismatch verifies the intended role must match what the auth
// service grants.
func TestLoginRoleMismatch(t *testing.T) {
	f := newFixture(t, &authStub{grantRole: "STAFF"})

	resp := f.login(t, "parent")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", resp.StatusCode)
	}

	var result session.LoginResult
	json.NewDecoder(resp.Body).Decode(&result)
	if result.Success || !strings.Contains(result.Message, "parent") {
		t.Errorf("result = %+v, want rejection naming the attempted role", result)
	}

	if sessResp, _ := http.Get(f.server.URL + "/session/"); sessResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("/session after mismatch = %d, want 401", sessResp.StatusCode)
	}
}

// TestLogout verifies teardown hits the upstream once, clears the store, and
// shuts every subtree.
func TestLogout(t *testing.T) {
	stub := &authStub{grantRole: "staff"}
	f := newFixture(t, stub)
	f.login(t, "staff").Body.Close()

	resp, err := http.Post(f.server.URL+"/session/logout", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /session/logout: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	if stub.logoutCalls != 1 {
		t.Errorf("upstream logout called %d times, want 1", stub.logoutCalls)
	}

	if _, err := f.store.Get(credstore.KeySession); err == nil {
		t.Error("session record survived logout")
	}
	menuResp, err := http.Get(f.server.URL + "/staff/menu")
	if err != nil {
		t.Fatal(err)
	}
	defer menuResp.Body.Close()
	if menuResp.StatusCode != http.StatusForbidden {
		t.Errorf("/staff/menu after logout = %d, want 403", menuResp.StatusCode)
	}
}

// TestRefreshEndpoint verifies a refresh rotates the stored pair and a
// failed refresh leaves it alone.
func TestRefreshEndpoint(t *testing.T) {
	stub := &authStub{
		grantRole:   "admin",
		refreshPair: &authapi.RefreshResponse{AccessToken: "acc-2", RefreshToken: "ref-2"},
	}
	f := newFixture(t, stub)
	f.login(t, "admin").Body.Close()

	resp, err := http.Post(f.server.URL+"/session/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /session/refresh: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
	if access, _ := f.store.Get(credstore.KeyAccessToken); access != "acc-2" {
		t.Errorf("stored access token = %q, want acc-2", access)
	}

	// Upstream starts rejecting: stored pair must survive.
	stub.refreshPair = nil
	resp, err = http.Post(f.server.URL+"/session/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /session/refresh: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatal("rejected refresh reported success")
	}
	if access, _ := f.store.Get(credstore.KeyAccessToken); access != "acc-2" {
		t.Errorf("stored access token = %q after failed refresh, want acc-2", access)
	}
}

// TestAnonymousSessionEndpoints verifies the session surface before any
// login.
func TestAnonymousSessionEndpoints(t *testing.T) {
	f := newFixture(t, &authStub{grantRole: "staff"})

	if resp, _ := http.Get(f.server.URL + "/session/"); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /session = %d, want 401", resp.StatusCode)
	}

	menuResp, err := http.Get(f.server.URL + "/parent/menu")
	if err != nil {
		t.Fatal(err)
	}
	defer menuResp.Body.Close()
	if menuResp.StatusCode != http.StatusForbidden {
		t.Fatalf("/parent/menu anonymous = %d, want 403", menuResp.StatusCode)
	}
	var denial struct {
		CurrentRole string `json:"current_role"`
		ReturnTo    string `json:"return_to"`
	}
	json.NewDecoder(menuResp.Body).Decode(&denial)
	if denial.CurrentRole != "" || denial.ReturnTo != "/" {
		t.Errorf("anonymous denial = %+v, want landing route and no role", denial)
	}
}

// TestAPIProxy verifies /api/* forwards with the stored access token
// attached and refuses anonymous calls.
func TestAPIProxy(t *testing.T) {
	var gotAuth, gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	stub := &authStub{grantRole: "staff"}
	authServer := httptest.NewServer(stub.handler())
	defer authServer.Close()

	api, err := authapi.NewClient(authapi.Config{BaseURL: authServer.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := credstore.NewMemory()
	svc := session.NewService(store)
	svc.Hydrate()
	h := &console.Handler{
		Sessions:  svc,
		Protocol:  session.NewProtocol(svc, api),
		Refresher: session.NewRefresher(store, svc, api),
		API:       api,
	}
	router := console.SetupRoutes(h, console.RouteConfig{
		APIBaseURL: upstream.URL, LoginPerMinute: 100, LoginBurst: 100,
	})
	server := httptest.NewServer(router)
	defer server.Close()

	// Anonymous: refused before anything is forwarded.
	resp, _ := http.Get(server.URL + "/api/students")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous proxy call = %d, want 401", resp.StatusCode)
	}

	body, _ := json.Marshal(map[string]string{"username": "s", "password": "p", "intended_role": "staff"})
	loginResp, err := http.Post(server.URL+"/session/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	loginResp.Body.Close()

	resp, err = http.Get(server.URL + "/api/students")
	if err != nil {
		t.Fatalf("GET /api/students: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("proxy call = %d", resp.StatusCode)
	}
	if gotAuth != "Bearer acc-1" {
		t.Errorf("forwarded Authorization = %q, want Bearer acc-1", gotAuth)
	}
	if gotPath != "/students" {
		t.Errorf("forwarded path = %q, want /students", gotPath)
	}
}

// TestAPIProxy_BasePathPrefix verifies the /api prefix strips correctly when
// the REST API lives under a path on its host, not at the root.
func TestAPIProxy_BasePathPrefix(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	store := credstore.NewMemory()
	svc := session.NewService(store)
	if err := svc.Login(session.Session{UserID: "1", Username: "s1", Role: roles.Staff, AccessToken: "acc-1", RefreshToken: "ref-1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	proxy, err := console.APIProxy(upstream.URL+"/v1", svc)
	if err != nil {
		t.Fatalf("APIProxy: %v", err)
	}
	server := httptest.NewServer(proxy)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/students")
	if err != nil {
		t.Fatalf("GET /api/students: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("proxy call = %d", resp.StatusCode)
	}
	if gotPath != "/v1/students" {
		t.Errorf("forwarded path = %q, want /v1/students", gotPath)
	}
}
