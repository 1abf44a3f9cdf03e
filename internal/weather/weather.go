// Package weather serves the forecast panels: per-spot previsions and
// the Windy-backed detailed forecast, both aggregated by the backend.
// Responses are cached briefly and stale data is preferred over an
// empty panel when a refresh fails.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yalasurf/yalasurf/internal/api"
)

const cacheTTL = 10 * time.Minute

type cached struct {
	data      json.RawMessage
	fetchedAt time.Time
}

// Service fetches and caches forecast data per surf spot.
type Service struct {
	api    *api.Client
	logger *slog.Logger

	mu         sync.Mutex
	previsions map[int64]cached
}

func NewService(client *api.Client, logger *slog.Logger) *Service {
	return &Service{
		api:        client,
		logger:     logger,
		previsions: make(map[int64]cached),
	}
}

// Prevision returns the spot's forecast summary, consulting the cache
// first. A failed refresh returns the stale entry when one exists.
func (s *Service) Prevision(ctx context.Context, spotID int64) (json.RawMessage, error) {
	s.mu.Lock()
	entry, ok := s.previsions[spotID]
	s.mu.Unlock()

	if ok && time.Since(entry.fetchedAt) < cacheTTL {
		return entry.data, nil
	}

	data, err := s.api.Prevision(ctx, spotID)
	if err != nil {
		if ok {
			s.logger.Warn("prevision refresh failed, serving stale", "spot_id", spotID, "error", err)
			return entry.data, nil
		}
		return nil, fmt.Errorf("fetch prevision: %w", err)
	}

	s.mu.Lock()
	s.previsions[spotID] = cached{data: data, fetchedAt: time.Now()}
	s.mu.Unlock()
	return data, nil
}

// Windy proxies the detailed Windy forecast. It is not cached: the view
// requests it with explicit spot/days parameters and renders whatever
// sub-fields are present.
func (s *Service) Windy(ctx context.Context, spotID int64, days int) (json.RawMessage, error) {
	if days < 1 {
		days = 3
	}
	return s.api.WindyForecast(ctx, spotID, days)
}
