package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/yalasurf/yalasurf/internal/api"
)

// CatalogHandler relays the browse surface: surf spots, surf clubs, and
// club equipment. Responses pass through unmodified so the pages render
// exactly what the marketplace returns.
type CatalogHandler struct {
	client *api.Client
}

func NewCatalogHandler(client *api.Client) *CatalogHandler {
	return &CatalogHandler{client: client}
}

func (h *CatalogHandler) SurfSpots(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.SurfSpots(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (h *CatalogHandler) SurfSpot(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	raw, err := h.client.SurfSpot(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (h *CatalogHandler) SurfClubs(w http.ResponseWriter, r *http.Request) {
	raw, err := h.client.SurfClubs(r.Context())
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (h *CatalogHandler) SurfClub(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	raw, err := h.client.SurfClub(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (h *CatalogHandler) ClubEquipments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	raw, err := h.client.ClubEquipments(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

func (h *CatalogHandler) EquipmentDetail(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	raw, err := h.client.EquipmentDetail(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, raw)
}

// ReserveSession forwards a surf session booking as-is.
func (h *CatalogHandler) ReserveSession(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	raw, err := h.client.ReserveSession(r.Context(), json.RawMessage(body))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, raw)
}
