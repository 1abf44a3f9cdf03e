// Package session owns the authenticated identity and cached profile.
// The service is injected wherever the session is read or written; reads
// always hit the durable store so no component sees a stale in-memory
// copy, and clearing the session is what triggers the logout broadcast.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yalasurf/yalasurf/internal/bus"
	"github.com/yalasurf/yalasurf/internal/model"
	"github.com/yalasurf/yalasurf/internal/store"
)

// ErrInvalidSession rejects writes that would break the role/token
// invariant: role is set exactly when a token is.
var ErrInvalidSession = errors.New("session role and access token must be set together")

// Service reads and writes the durable session and broadcasts logout.
type Service struct {
	store  *store.SessionStore
	bus    *bus.Bus
	logger *slog.Logger
}

func NewService(st *store.SessionStore, b *bus.Bus, logger *slog.Logger) *Service {
	return &Service{store: st, bus: b, logger: logger}
}

// Set persists role, token, user record and profile as one write.
func (s *Service) Set(role, accessToken string, user, profile json.RawMessage) error {
	if (role == "") != (accessToken == "") {
		return ErrInvalidSession
	}
	if role != model.RoleSurfer && role != model.RoleSurfClub {
		return fmt.Errorf("unknown role %q: %w", role, ErrInvalidSession)
	}
	return s.store.Set(role, accessToken, user, profile)
}

// Get returns the latest persisted session.
func (s *Service) Get() (model.Session, error) {
	return s.store.Get()
}

// Role returns the current role, or "" when logged out. Store errors are
// logged and read as logged-out rather than failing the caller.
func (s *Service) Role() string {
	sess, err := s.store.Get()
	if err != nil {
		s.logger.Error("read session", "error", err)
		return ""
	}
	return sess.Role
}

// Token returns the current access token, or "" when logged out.
func (s *Service) Token() string {
	sess, err := s.store.Get()
	if err != nil {
		s.logger.Error("read session", "error", err)
		return ""
	}
	return sess.AccessToken
}

// Clear removes the session and then broadcasts logout, exactly once per
// successful call.
func (s *Service) Clear() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.bus.Publish(bus.EventLogout)
	return nil
}

// Claims decodes the stored access token without verifying it — the
// backend owns verification; the client only displays expiry and
// subject. A missing or malformed token yields zero claims.
func (s *Service) Claims() model.TokenClaims {
	sess, err := s.store.Get()
	if err != nil || sess.AccessToken == "" {
		return model.TokenClaims{}
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(sess.AccessToken, claims); err != nil {
		s.logger.Debug("decode access token", "error", err)
		return model.TokenClaims{}
	}

	var out model.TokenClaims
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if id, ok := claims["user_id"].(float64); ok {
		out.UserID = int64(id)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out
}

// Expired reports whether the stored token carries an exp claim in the
// past. Tokens without a readable exp claim are treated as live; the
// backend rejects them anyway if they are not.
func (s *Service) Expired() bool {
	claims := s.Claims()
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
