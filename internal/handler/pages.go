package handler

import (
	"net/http"

	"github.com/yalasurf/yalasurf/internal/router"
	"github.com/yalasurf/yalasurf/internal/session"
)

// PageHandler resolves browser paths against the role-gated route
// table on behalf of the UI shell.
type PageHandler struct {
	table    *router.Table
	sessions *session.Service
}

func NewPageHandler(table *router.Table, sessions *session.Service) *PageHandler {
	return &PageHandler{table: table, sessions: sessions}
}

// Resolve answers which view a path renders under the current session
// role. Unknown paths and role violations both come back as a redirect
// home, indistinguishably.
func (h *PageHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path is required"})
		return
	}

	m := h.table.Resolve(path, h.sessions.Role())
	if m == nil {
		writeJSON(w, http.StatusOK, map[string]any{"redirect": router.HomePath})
		return
	}
	params := m.Params
	if params == nil {
		params = map[string]string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   m.View,
		"params": params,
	})
}
