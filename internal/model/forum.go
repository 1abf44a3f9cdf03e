package model

import "time"

// Forum is the per-surf-spot message channel.
type Forum struct {
	ID       int64    `json:"id"`
	SurfSpot SurfSpot `json:"surf_spot"`
}

// SurfSpot is the subset of spot data the forum view needs.
type SurfSpot struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ForumSender identifies the author of a forum message.
type ForumSender struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Photo     string `json:"photo,omitempty"`
}

// ForumMessage is one entry in a forum's append-only log. The server is
// the source of truth; the client keys its log by message id.
type ForumMessage struct {
	ID        int64        `json:"id"`
	Sender    *ForumSender `json:"sender,omitempty"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
}
