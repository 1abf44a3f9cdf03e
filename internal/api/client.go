// Package api is the HTTP client for the remote YalaSurf backend. The
// backend owns all business logic (auth, scheduling, pricing, forecast
// aggregation, chatbot NLP); this client only moves requests and
// responses across the boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yalasurf/yalasurf/internal/model"
)

// ErrUnauthorized is returned for 401 responses so callers can redirect
// to login instead of showing a generic failure.
var ErrUnauthorized = errors.New("unauthorized")

// Error carries a non-2xx backend response.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// TokenSource supplies the current bearer token, or "" when logged out.
type TokenSource func() string

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
}

// New creates a Client. token may be nil for unauthenticated use.
func New(baseURL string, token TokenSource, logger *slog.Logger) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		token:  token,
		logger: logger,
	}
}

// --- Auth ---

// LoginResponse mirrors POST /api/user/login/: the access token, the user
// record, and exactly one of the role profiles.
type LoginResponse struct {
	Access   string          `json:"access"`
	User     json.RawMessage `json:"user"`
	Surfer   json.RawMessage `json:"surfer,omitempty"`
	SurfClub json.RawMessage `json:"surfclub,omitempty"`
}

// Role derives the session role from which profile the backend attached.
func (r *LoginResponse) Role() string {
	if len(r.SurfClub) > 0 && string(r.SurfClub) != "null" {
		return model.RoleSurfClub
	}
	return model.RoleSurfer
}

// Profile returns the role profile that came with the login response.
func (r *LoginResponse) Profile() json.RawMessage {
	if r.Role() == model.RoleSurfClub {
		return r.SurfClub
	}
	return r.Surfer
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.postJSON(ctx, "/api/user/login/", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register forwards a role-tagged multipart registration. files maps
// field names to upload contents.
func (c *Client) Register(ctx context.Context, fields map[string]string, files map[string][]byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name)
		if err != nil {
			return nil, fmt.Errorf("create form file %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return nil, fmt.Errorf("write form file %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/user/register/", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

// --- Catalog / booking ---

func (c *Client) SurfSpots(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/surf-spots/")
}

func (c *Client) SurfSpot(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/surf-spots/%d/", id))
}

func (c *Client) SurfClubs(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/surf-club/")
}

func (c *Client) SurfClub(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/surf-club/%d/", id))
}

func (c *Client) ClubEquipments(ctx context.Context, clubID int64) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/surf-club/%d/equipments/", clubID))
}

func (c *Client) EquipmentDetail(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/surf-club/equipment/%d/", id))
}

func (c *Client) ReserveSession(ctx context.Context, body any) (json.RawMessage, error) {
	raw, err := c.marshalBody(body)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, "/api/surfers/book-surf-session/", raw)
}

// OrderItem is one line of an order request.
type OrderItem struct {
	Equipment int64 `json:"equipment"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the checkout payload. SurfClub constrains the order to
// a single club.
type OrderRequest struct {
	SurfClub int64       `json:"surf_club"`
	Items    []OrderItem `json:"items"`
}

func (c *Client) AddOrder(ctx context.Context, order OrderRequest) (json.RawMessage, error) {
	raw, err := c.marshalBody(order)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, http.MethodPost, "/api/surfers/add-order/", raw)
}

// --- Forum ---

// ForumResponse mirrors GET /api/forums/{spotID}/.
type ForumResponse struct {
	Forum    model.Forum          `json:"forum"`
	Messages []model.ForumMessage `json:"messages"`
}

func (c *Client) Forum(ctx context.Context, spotID int64) (*ForumResponse, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/api/forums/%d/", spotID))
	if err != nil {
		return nil, err
	}
	var resp ForumResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode forum: %w", err)
	}
	return &resp, nil
}

// ForumMessages fetches messages newer than lastMessageID.
func (c *Client) ForumMessages(ctx context.Context, spotID, lastMessageID int64) ([]model.ForumMessage, error) {
	q := url.Values{}
	if lastMessageID > 0 {
		q.Set("last_message_id", strconv.FormatInt(lastMessageID, 10))
	}
	path := fmt.Sprintf("/api/forums/%d/messages/", spotID)
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	raw, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Messages []model.ForumMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode forum messages: %w", err)
	}
	return resp.Messages, nil
}

func (c *Client) CreateForumMessage(ctx context.Context, forumID int64, content string) (*model.ForumMessage, error) {
	raw, err := c.marshalBody(map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	data, err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/forums/%d/messages/create/", forumID), raw)
	if err != nil {
		return nil, err
	}
	var msg model.ForumMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode created message: %w", err)
	}
	return &msg, nil
}

// --- Forecast ---

func (c *Client) Prevision(ctx context.Context, spotID int64) (json.RawMessage, error) {
	return c.get(ctx, fmt.Sprintf("/api/surf-spots/prevision/%d/", spotID))
}

func (c *Client) WindyForecast(ctx context.Context, spotID int64, days int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("spot", strconv.FormatInt(spotID, 10))
	q.Set("days", strconv.Itoa(days))
	return c.get(ctx, "/api/windy/forecast/?"+q.Encode())
}

// DemandForecast fetches the dashboard's AI demand forecast. Missing
// sub-fields in the response decode to zero values.
func (c *Client) DemandForecast(ctx context.Context) (*model.DemandForecast, error) {
	raw, err := c.get(ctx, "/api/ai/demand-forecast/")
	if err != nil {
		return nil, err
	}
	var f model.DemandForecast
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode demand forecast: %w", err)
	}
	return &f, nil
}

// --- Chatbot ---

// ChatReply mirrors POST /api/chatbot/.
type ChatReply struct {
	Response           string   `json:"response"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

func (c *Client) Chat(ctx context.Context, message, sessionID string) (*ChatReply, error) {
	var reply ChatReply
	err := c.postJSON(ctx, "/api/chatbot/", map[string]string{
		"message":    message,
		"session_id": sessionID,
	}, &reply)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// --- Club dashboard management ---

// ClubResource performs a management call under /api/surf-club/. The
// dashboard proxies these verbatim; path is relative, e.g. "monitors/".
func (c *Client) ClubResource(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = c.marshalBody(body)
		if err != nil {
			return nil, err
		}
	}
	return c.send(ctx, method, "/api/surf-club/"+strings.TrimLeft(path, "/"), raw)
}

func (c *Client) Statistics(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/api/surf-club/statistics/")
}

// --- plumbing ---

func (c *Client) marshalBody(body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := c.marshalBody(body)
	if err != nil {
		return err
	}
	data, err := c.send(ctx, http.MethodPost, path, raw)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Warn("backend error", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return nil, &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return json.RawMessage(data), nil
}
