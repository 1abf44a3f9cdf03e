package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/session"
)

const maxUploadSize = 8 << 20 // registration photos

type AuthHandler struct {
	client   *api.Client
	sessions *session.Service
	logger   *slog.Logger
}

func NewAuthHandler(client *api.Client, sessions *session.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{client: client, sessions: sessions, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the marketplace and persists the session.
// The role is derived from which profile the backend attached, never
// from anything the browser sent.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	resp, err := h.client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	role := resp.Role()
	if err := h.sessions.Set(role, resp.Access, resp.User, resp.Profile()); err != nil {
		h.logger.Error("persist session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save session"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"role":    role,
		"user":    resp.User,
		"profile": resp.Profile(),
	})
}

// Register forwards the multipart registration form. The role field
// decides which profile the backend creates; file parts (photos, club
// logos) pass through untouched.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	fields := make(map[string]string)
	for k, vs := range r.MultipartForm.Value {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}

	files := make(map[string][]byte)
	for k, fhs := range r.MultipartForm.File {
		if len(fhs) == 0 {
			continue
		}
		f, err := fhs[0].Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
			return
		}
		files[k] = data
	}

	raw, err := h.client.Register(r.Context(), fields, files)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeRaw(w, http.StatusCreated, raw)
}

// Logout clears the stored session. Every subscriber on the logout
// event (chatbot, widgets) resets through the bus, so this handler only
// has to clear.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(); err != nil {
		h.logger.Error("clear session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Session reports the stored session so the UI can restore state on
// reload, the same way it would read back its local storage.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get()
	if err != nil {
		h.logger.Error("read session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read session"})
		return
	}

	body := map[string]any{
		"authenticated": sess.Authenticated(),
		"role":          sess.Role,
		"user":          sess.User,
		"profile":       sess.Profile,
	}
	if sess.Authenticated() {
		claims := h.sessions.Claims()
		body["claims"] = claims
		body["expired"] = h.sessions.Expired()
	}
	writeJSON(w, http.StatusOK, body)
}
