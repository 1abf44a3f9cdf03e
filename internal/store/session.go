package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yalasurf/yalasurf/internal/model"
)

// SessionStore persists the single session snapshot. Every read goes to
// the database so all components observe the latest persisted write.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get returns the current session, or a zero session when none is stored.
// A corrupt user or profile record degrades to an empty JSON object.
func (s *SessionStore) Get() (model.Session, error) {
	var (
		sess    model.Session
		userRaw string
		profRaw string
	)
	err := s.db.QueryRow(
		`SELECT role, access_token, user_json, profile_json, updated_at FROM session WHERE id = 1`,
	).Scan(&sess.Role, &sess.AccessToken, &userRaw, &profRaw, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Session{}, nil
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("get session: %w", err)
	}

	sess.User = sanitizeJSON(userRaw)
	sess.Profile = sanitizeJSON(profRaw)
	return sess, nil
}

// Set replaces the stored session in a single statement.
func (s *SessionStore) Set(role, accessToken string, user, profile json.RawMessage) error {
	if len(user) == 0 {
		user = json.RawMessage(`{}`)
	}
	if len(profile) == 0 {
		profile = json.RawMessage(`{}`)
	}

	_, err := s.db.Exec(
		`INSERT INTO session (id, role, access_token, user_json, profile_json, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 role = excluded.role,
		 access_token = excluded.access_token,
		 user_json = excluded.user_json,
		 profile_json = excluded.profile_json,
		 updated_at = excluded.updated_at`,
		role, accessToken, string(user), string(profile), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *SessionStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// sanitizeJSON guards reads against corrupt records: anything that is not
// valid JSON comes back as an empty object instead of an error.
func sanitizeJSON(raw string) json.RawMessage {
	if raw == "" || !json.Valid([]byte(raw)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(raw)
}
