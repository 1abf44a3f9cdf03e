package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yalasurf/yalasurf/internal/cart"
	"github.com/yalasurf/yalasurf/internal/model"
	"github.com/yalasurf/yalasurf/internal/websocket"
)

type CartHandler struct {
	cart   *cart.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCartHandler(cs *cart.Service, hub *websocket.Hub, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cs, hub: hub, logger: logger}
}

// broadcastCount tells the header badge the cart changed.
func (h *CartHandler) broadcastCount() {
	count, err := h.cart.Count()
	if err != nil {
		h.logger.Error("cart count", "error", err)
		return
	}
	h.hub.Broadcast(websocket.Message{
		Type:  websocket.TypeCartUpdated,
		Extra: map[string]any{"count": count},
	})
}

// Get returns the cart lines with the derived total and item count.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Items()
	if err != nil {
		h.logger.Error("list cart", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read cart"})
		return
	}
	total, err := h.cart.Total()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read cart"})
		return
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"count": count,
	})
}

type addItemRequest struct {
	Equipment model.Equipment `json:"equipment"`
	Quantity  int             `json:"quantity"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cart.Add(req.Equipment, req.Quantity)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrOutOfStock):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, cart.ErrMixedClubs):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("add cart item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}

	h.broadcastCount()
	writeJSON(w, http.StatusCreated, item)
}

// RemoveItem drops the line at the given position. An index past the
// end is a no-op, matching remove buttons racing a re-render.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return
	}

	if err := h.cart.Remove(index); err != nil {
		h.logger.Error("remove cart item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove item"})
		return
	}

	h.broadcastCount()
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type quantityRequest struct {
	Equipment int64 `json:"equipment"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.cart.SetQuantity(req.Equipment, req.Quantity); err != nil {
		h.logger.Error("set cart quantity", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update quantity"})
		return
	}

	h.broadcastCount()
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Checkout submits the cart as one order and clears it on success.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	raw, err := h.cart.Checkout(r.Context())
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "cart is empty"})
		return
	case err != nil:
		writeAPIError(w, err)
		return
	}

	h.broadcastCount()
	writeRaw(w, http.StatusOK, raw)
}
