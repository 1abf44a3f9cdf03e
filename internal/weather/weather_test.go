package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/yalasurf/yalasurf/internal/api"
)

type forecastFake struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *forecastFake) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls++
		n := f.calls
		fail := f.fail
		f.mu.Unlock()

		if fail {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{"wave_height":%d}`, n)
	})
}

func setupService(t *testing.T) (*Service, *forecastFake) {
	t.Helper()
	fake := &forecastFake{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, nil, slog.Default())
	return NewService(client, slog.Default()), fake
}

func TestPrevisionCachedPerSpot(t *testing.T) {
	svc, fake := setupService(t)
	ctx := context.Background()

	first, err := svc.Prevision(ctx, 1)
	if err != nil {
		t.Fatalf("prevision: %v", err)
	}
	second, err := svc.Prevision(ctx, 1)
	if err != nil {
		t.Fatalf("cached prevision: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("cached response differs: %s vs %s", first, second)
	}

	fake.mu.Lock()
	calls := fake.calls
	fake.mu.Unlock()
	if calls != 1 {
		t.Errorf("backend calls = %d, want 1 (cache hit)", calls)
	}

	// A different spot is its own cache entry.
	if _, err := svc.Prevision(ctx, 2); err != nil {
		t.Fatalf("second spot: %v", err)
	}
	fake.mu.Lock()
	calls = fake.calls
	fake.mu.Unlock()
	if calls != 2 {
		t.Errorf("backend calls = %d, want 2", calls)
	}
}

func TestPrevisionServesStaleOnFailure(t *testing.T) {
	svc, fake := setupService(t)
	ctx := context.Background()

	fresh, err := svc.Prevision(ctx, 1)
	if err != nil {
		t.Fatalf("prevision: %v", err)
	}

	// Force the next refresh to fail, then expire the cache entry.
	fake.mu.Lock()
	fake.fail = true
	fake.mu.Unlock()
	svc.mu.Lock()
	entry := svc.previsions[1]
	entry.fetchedAt = entry.fetchedAt.Add(-2 * cacheTTL)
	svc.previsions[1] = entry
	svc.mu.Unlock()

	stale, err := svc.Prevision(ctx, 1)
	if err != nil {
		t.Fatalf("expected stale data, got error: %v", err)
	}
	if string(stale) != string(fresh) {
		t.Errorf("stale = %s, want %s", stale, fresh)
	}
}

func TestPrevisionErrorWithoutCache(t *testing.T) {
	svc, fake := setupService(t)

	fake.mu.Lock()
	fake.fail = true
	fake.mu.Unlock()

	if _, err := svc.Prevision(context.Background(), 9); err == nil {
		t.Fatal("expected error when no cache entry exists")
	}
}

func TestWindyDefaultsDays(t *testing.T) {
	svc, fake := setupService(t)

	if _, err := svc.Windy(context.Background(), 1, 0); err != nil {
		t.Fatalf("windy: %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.calls != 1 {
		t.Errorf("backend calls = %d, want 1", fake.calls)
	}
}
