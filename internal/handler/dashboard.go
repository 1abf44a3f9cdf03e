package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/session"
)

// DashboardHandler serves the surf-club management surface: the demand
// forecast panel, sales statistics, and the generic resource proxy the
// dashboard tables are built on.
type DashboardHandler struct {
	client   *api.Client
	sessions *session.Service
	logger   *slog.Logger
}

func NewDashboardHandler(client *api.Client, sessions *session.Service, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{client: client, sessions: sessions, logger: logger}
}

// Forecast returns the AI demand forecast. Without a stored token the
// panel is simply omitted, so this answers 204 rather than an error.
func (h *DashboardHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Token() == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	forecast, err := h.client.DemandForecast(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}

	// History is rendered unconditionally; never hand the UI a null.
	if forecast.Demand != nil {
		forecast.Demand.History = forecast.HistoryOrEmpty()
	}
	writeJSON(w, http.StatusOK, forecast)
}

// Statistics returns the club's sales statistics. A 401 passes through
// so the dashboard can bounce to login.
func (h *DashboardHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.Statistics(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// Resource proxies a management call to the club API. The trailing
// path after /api/dashboard/resources/ maps onto /api/surf-club/.
func (h *DashboardHandler) Resource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/dashboard/resources/")
	if path == "" || strings.Contains(path, "..") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid resource path"})
		return
	}

	var body any
	if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
		data, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(data) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		body = json.RawMessage(data)
	}

	raw, err := h.client.ClubResource(r.Context(), r.Method, path, body)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			h.logger.Warn("dashboard resource rejected", "path", path)
		}
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}
