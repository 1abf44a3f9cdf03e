package handler

import (
	"net/http"
	"strconv"

	"github.com/yalasurf/yalasurf/internal/weather"
)

// ForecastHandler serves the surf-spot weather widgets through the
// cached weather service.
type ForecastHandler struct {
	weather *weather.Service
}

func NewForecastHandler(svc *weather.Service) *ForecastHandler {
	return &ForecastHandler{weather: svc}
}

func (h *ForecastHandler) Prevision(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	raw, err := h.weather.Prevision(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (h *ForecastHandler) Windy(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	raw, err := h.weather.Windy(r.Context(), id, days)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}
