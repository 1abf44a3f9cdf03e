package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/forum"
	"github.com/yalasurf/yalasurf/internal/model"
	"github.com/yalasurf/yalasurf/internal/session"
)

// ForumHandler serves the per-spot discussion. Each websocket
// connection owns its own poller against the marketplace, so closing
// the forum page stops its polling immediately.
type ForumHandler struct {
	client   *api.Client
	sessions *session.Service
	logger   *slog.Logger
}

func NewForumHandler(client *api.Client, sessions *session.Service, logger *slog.Logger) *ForumHandler {
	return &ForumHandler{client: client, sessions: sessions, logger: logger}
}

// Snapshot returns the forum record and full message history in one
// response, for rendering the page before the stream is up.
func (h *ForumHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	resp, err := h.client.Forum(r.Context(), id)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	if resp.Messages == nil {
		resp.Messages = []model.ForumMessage{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// forumFrame is one websocket frame in either direction. The server
// sends history once, then message frames as they arrive; the browser
// sends frames carrying only content.
type forumFrame struct {
	Type     string               `json:"type,omitempty"`
	Forum    *model.Forum         `json:"forum,omitempty"`
	Messages []model.ForumMessage `json:"messages,omitempty"`
	Message  *model.ForumMessage  `json:"message,omitempty"`
	Content  string               `json:"content,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// Stream upgrades to a websocket and relays the spot's forum: history
// on connect, fresh messages as the poller finds them, and posts sent
// by the browser.
func (h *ForumHandler) Stream(w http.ResponseWriter, r *http.Request) {
	spotID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		InsecureSkipVerify: true, // same-host browser UI, origin is ourselves
	})
	if err != nil {
		h.logger.Error("forum websocket accept", "error", err)
		return
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	fresh := make(chan model.ForumMessage, 32)
	poller := forum.New(h.client, spotID, func(m model.ForumMessage) {
		select {
		case fresh <- m:
		default:
			// a stalled connection misses messages rather than
			// blocking the poll loop
		}
	}, h.logger)

	poller.Start(ctx)
	defer poller.Stop()

	history := forumFrame{
		Type:     "history",
		Forum:    poller.Forum(),
		Messages: poller.Messages(),
	}
	if history.Messages == nil {
		history.Messages = []model.ForumMessage{}
	}
	if err := writeFrame(ctx, conn, history); err != nil {
		return
	}

	// The read loop owns inbound posts; the main loop drains fresh
	// messages out to the browser.
	go h.readLoop(ctx, cancel, conn, poller)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-fresh:
			if err := writeFrame(ctx, conn, forumFrame{Type: "message", Message: &msg}); err != nil {
				return
			}
		}
	}
}

func (h *ForumHandler) readLoop(ctx context.Context, cancel context.CancelFunc, conn *ws.Conn, poller *forum.Poller) {
	defer cancel()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var frame forumFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Content == "" {
			continue
		}

		if _, err := poller.Send(ctx, frame.Content, h.sender()); err != nil {
			h.logger.Error("forum send", "error", err)
			writeFrame(ctx, conn, forumFrame{Type: "error", Error: "message not sent"})
		}
	}
}

// sender builds the local identity attached to optimistic posts from
// the stored surfer profile.
func (h *ForumHandler) sender() model.ForumSender {
	var sender model.ForumSender
	sess, err := h.sessions.Get()
	if err != nil {
		return sender
	}
	if len(sess.Profile) > 0 {
		json.Unmarshal(sess.Profile, &sender)
	}
	return sender
}

func writeFrame(ctx context.Context, conn *ws.Conn, frame forumFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.Write(ctx, ws.MessageText, data)
}
