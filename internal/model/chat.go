package model

import "time"

// Chat message kinds.
const (
	ChatUser = "user"
	ChatBot  = "bot"
)

// ChatMessage is one turn in an ephemeral chatbot conversation.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
