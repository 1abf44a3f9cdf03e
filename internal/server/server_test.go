package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yalasurf/yalasurf/internal/bus"
	"github.com/yalasurf/yalasurf/internal/database"
	"github.com/yalasurf/yalasurf/internal/logging"
)

// fakeBackend mimics the marketplace API for the routes the tests hit.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/user/login/", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"bad credentials"}`)
			return
		}
		role := `"surfer": {"id": 7, "firstname": "Amine"}`
		if req["email"] == "club@yalasurf.com" {
			role = `"surfclub": {"id": 3, "name": "Taghazout Surf"}`
		}
		fmt.Fprintf(w, `{"access": "tok-123", "user": {"id": 7, "email": %q}, %s}`, req["email"], role)
	})
	mux.HandleFunc("GET /api/surf-spots/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 1, "name": "Anchor Point"}]`)
	})
	mux.HandleFunc("GET /api/surf-club/statistics/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"orders": 12}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	backend := fakeBackend(t)
	srv := New(db, bus.New(), logging.Setup("error"), backend.URL)
	t.Cleanup(srv.Close)

	local := httptest.NewServer(srv.Router())
	t.Cleanup(local.Close)
	return srv, local
}

// noRedirect returns a client that surfaces 3xx responses instead of
// following them.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, local *httptest.Server, email string) {
	t.Helper()
	body := fmt.Sprintf(`{"email": %q, "password": "secret"}`, email)
	resp, err := http.Post(local.URL+"/api/auth/login", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestLoginPersistsSession(t *testing.T) {
	_, local := setupServer(t)

	login(t, local, "club@yalasurf.com")

	resp, err := http.Get(local.URL + "/api/auth/session")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer resp.Body.Close()

	var sess struct {
		Authenticated bool   `json:"authenticated"`
		Role          string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sess.Authenticated {
		t.Error("expected authenticated session after login")
	}
	if sess.Role != "surfclub" {
		t.Errorf("role = %q, want surfclub", sess.Role)
	}
}

func TestLoginRejectionLeavesSessionClear(t *testing.T) {
	_, local := setupServer(t)

	body := `{"email": "surfer@yalasurf.com", "password": "wrong"}`
	resp, err := http.Post(local.URL+"/api/auth/login", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	resp, err = http.Get(local.URL + "/api/auth/session")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer resp.Body.Close()
	var sess struct {
		Authenticated bool `json:"authenticated"`
	}
	json.NewDecoder(resp.Body).Decode(&sess)
	if sess.Authenticated {
		t.Error("failed login must not create a session")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	_, local := setupServer(t)

	login(t, local, "surfer@yalasurf.com")

	resp, err := http.Post(local.URL+"/api/auth/logout", "application/json", nil)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(local.URL + "/api/auth/session")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	defer resp.Body.Close()
	var sess struct {
		Authenticated bool `json:"authenticated"`
	}
	json.NewDecoder(resp.Body).Decode(&sess)
	if sess.Authenticated {
		t.Error("expected cleared session after logout")
	}
}

func TestDashboardGatedByRole(t *testing.T) {
	_, local := setupServer(t)

	// Logged out
	resp, err := http.Get(local.URL + "/api/dashboard/statistics")
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("logged out status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	// Surfer
	login(t, local, "surfer@yalasurf.com")
	resp, err = http.Get(local.URL + "/api/dashboard/statistics")
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("surfer status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	// Surf club
	login(t, local, "club@yalasurf.com")
	resp, err = http.Get(local.URL + "/api/dashboard/statistics")
	if err != nil {
		t.Fatalf("get statistics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("surfclub status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestForecastOmittedWhenLoggedOut(t *testing.T) {
	_, local := setupServer(t)

	resp, err := http.Get(local.URL + "/api/dashboard/forecast")
	if err != nil {
		t.Fatalf("get forecast: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestPageFallbackRedirectsGatedPath(t *testing.T) {
	_, local := setupServer(t)
	client := noRedirect()

	resp, err := client.Get(local.URL + "/dashboard/orders")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestPageFallbackResolvesRoleRoute(t *testing.T) {
	_, local := setupServer(t)

	login(t, local, "surfer@yalasurf.com")

	resp, err := http.Get(local.URL + "/surf-spots/5")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var page struct {
		View   string            `json:"view"`
		Params map[string]string `json:"params"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Params["id"] != "5" {
		t.Errorf("params[id] = %q, want 5", page.Params["id"])
	}
}

func TestBrowseProxiesBackend(t *testing.T) {
	_, local := setupServer(t)

	resp, err := http.Get(local.URL + "/api/surf-spots")
	if err != nil {
		t.Fatalf("get spots: %v", err)
	}
	defer resp.Body.Close()
	var spots []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&spots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(spots) != 1 || spots[0].Name != "Anchor Point" {
		t.Errorf("unexpected spots payload: %+v", spots)
	}
}

func TestCartOverLocalSurface(t *testing.T) {
	_, local := setupServer(t)

	item := `{"equipment": {"id": 9, "name": "Longboard", "sale_price": 120, "quantity": 3, "surf_club": 10}, "quantity": 2}`
	resp, err := http.Post(local.URL+"/api/cart/items", "application/json", bytes.NewBufferString(item))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	resp, err = http.Get(local.URL + "/api/cart")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	defer resp.Body.Close()
	var cart struct {
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cart.Count != 2 {
		t.Errorf("count = %d, want 2", cart.Count)
	}
	if cart.Total != 240 {
		t.Errorf("total = %v, want 240", cart.Total)
	}
}
