package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yalasurf/yalasurf/internal/bus"
	"github.com/yalasurf/yalasurf/internal/database"
	"github.com/yalasurf/yalasurf/internal/model"
	"github.com/yalasurf/yalasurf/internal/session"
	"github.com/yalasurf/yalasurf/internal/store"
)

func setupSessions(t *testing.T) *session.Service {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return session.NewService(store.NewSessionStore(db), bus.New(), slog.Default())
}

func TestRequireAuthLoggedOut(t *testing.T) {
	sessions := setupSessions(t)

	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthLoggedIn(t *testing.T) {
	sessions := setupSessions(t)
	if err := sessions.Set(model.RoleSurfer, "tok", nil, nil); err != nil {
		t.Fatalf("set session: %v", err)
	}

	handler := RequireAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRoleLoggedOut(t *testing.T) {
	sessions := setupSessions(t)

	handler := RequireRole(sessions, model.RoleSurfClub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRoleWrongRole(t *testing.T) {
	sessions := setupSessions(t)
	if err := sessions.Set(model.RoleSurfer, "tok", nil, nil); err != nil {
		t.Fatalf("set session: %v", err)
	}

	handler := RequireRole(sessions, model.RoleSurfClub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireRoleMatch(t *testing.T) {
	sessions := setupSessions(t)
	if err := sessions.Set(model.RoleSurfClub, "tok", nil, nil); err != nil {
		t.Fatalf("set session: %v", err)
	}

	handler := RequireRole(sessions, model.RoleSurfClub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireRoleAfterLogout(t *testing.T) {
	sessions := setupSessions(t)
	if err := sessions.Set(model.RoleSurfClub, "tok", nil, nil); err != nil {
		t.Fatalf("set session: %v", err)
	}
	if err := sessions.Clear(); err != nil {
		t.Fatalf("clear session: %v", err)
	}

	handler := RequireRole(sessions, model.RoleSurfClub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
