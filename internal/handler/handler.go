package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yalasurf/yalasurf/internal/api"
)

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRaw relays a backend JSON payload without re-encoding it.
func writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(raw) == 0 {
		raw = json.RawMessage(`null`)
	}
	w.Write(raw)
}

// writeAPIError maps a marketplace call failure onto the local response.
// Backend rejections keep their status and body so the UI sees exactly
// what the marketplace said; transport failures become 502.
func writeAPIError(w http.ResponseWriter, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "session expired"})
		return
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		writeRaw(w, apiErr.Status, json.RawMessage(apiErr.Body))
		return
	}
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "marketplace unreachable"})
}
