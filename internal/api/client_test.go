package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	src := func() string { return token }
	return New(srv.URL, src, slog.Default())
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}), "tok-abc")

	if _, err := c.SurfSpots(context.Background()); err != nil {
		t.Fatalf("surf spots: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-abc")
	}
}

func TestNoAuthHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}), "")

	if _, err := c.SurfSpots(context.Background()); err != nil {
		t.Fatalf("surf spots: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), "expired")

	_, err := c.Statistics(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestServerErrorCarriesStatus(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}), "")

	_, err := c.SurfClubs(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.Status)
	}
}

func TestLoginRoleFromProfile(t *testing.T) {
	tests := []struct {
		name string
		body string
		role string
	}{
		{"surfer", `{"access":"a","user":{},"surfer":{"id":1}}`, "surfer"},
		{"surfclub", `{"access":"a","user":{},"surfclub":{"id":2}}`, "surfclub"},
		{"null surfclub falls back to surfer", `{"access":"a","user":{},"surfclub":null,"surfer":{"id":1}}`, "surfer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/user/login/" {
					t.Errorf("path = %q", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}), "")

			resp, err := c.Login(context.Background(), "a@b.c", "secret")
			if err != nil {
				t.Fatalf("login: %v", err)
			}
			if got := resp.Role(); got != tt.role {
				t.Errorf("role = %q, want %q", got, tt.role)
			}
		})
	}
}

func TestForumMessagesQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"messages": []any{}})
	}), "tok")

	msgs, err := c.ForumMessages(context.Background(), 5, 42)
	if err != nil {
		t.Fatalf("forum messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
	if gotQuery != "last_message_id=42" {
		t.Errorf("query = %q, want last_message_id=42", gotQuery)
	}
}

func TestDemandForecastToleratesPartialBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"club":"Anchor Point Surf"}`))
	}), "tok")

	f, err := c.DemandForecast(context.Background())
	if err != nil {
		t.Fatalf("demand forecast: %v", err)
	}
	if f.Club != "Anchor Point Surf" {
		t.Errorf("club = %q", f.Club)
	}
	if got := f.HistoryOrEmpty(); len(got) != 0 {
		t.Errorf("history = %v, want empty", got)
	}
}
