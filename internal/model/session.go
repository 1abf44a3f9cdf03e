package model

import (
	"encoding/json"
	"time"
)

// Roles the backend issues at login. The role decides which route set and
// profile shape apply.
const (
	RoleSurfer   = "surfer"
	RoleSurfClub = "surfclub"
)

// Session is the authenticated identity plus cached profile held in the
// durable local store. Role is non-empty exactly when AccessToken is.
type Session struct {
	Role        string          `json:"role,omitempty"`
	AccessToken string          `json:"access_token,omitempty"`
	User        json.RawMessage `json:"user,omitempty"`
	Profile     json.RawMessage `json:"profile,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}

// Authenticated reports whether the session carries an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// TokenClaims is the subset of access-token claims the client displays.
// The backend owns token verification; these are decoded unverified.
type TokenClaims struct {
	Subject   string     `json:"sub,omitempty"`
	UserID    int64      `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
