// Package chatbot manages ephemeral support-bot conversations. Every
// widget open starts a fresh backend session; a logout resets open
// conversations in place. Conversations never touch durable storage.
package chatbot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/bus"
	"github.com/yalasurf/yalasurf/internal/model"
)

var (
	// ErrBusy rejects input while a reply is in flight: one request per
	// conversation at a time.
	ErrBusy = errors.New("a reply is already in flight")

	// ErrNotFound means the conversation handle is unknown or closed.
	ErrNotFound = errors.New("conversation not found")
)

const welcomeMessage = "Bonjour ! Je suis YalaBot, votre assistant surf IA. Comment puis-je vous aider aujourd'hui ? 🏄‍♂️"

const errorMessage = "Désolé, je rencontre un problème technique. Veuillez réessayer dans quelques instants."

// Conversation is one open chatbot widget.
type Conversation struct {
	Handle    string              `json:"handle"`
	SessionID string              `json:"session_id"`
	Messages  []model.ChatMessage `json:"messages"`
	Suggested []string            `json:"suggested_questions,omitempty"`

	busy   bool
	nextID int64
}

// Manager owns all open conversations and listens for logout.
type Manager struct {
	api    *api.Client
	logger *slog.Logger

	mu            sync.Mutex
	conversations map[string]*Conversation

	unsubscribe func()
}

// NewManager creates a Manager wired to the event bus: a logout resets
// every open conversation to a new session seeded with the welcome
// message only.
func NewManager(client *api.Client, b *bus.Bus, logger *slog.Logger) *Manager {
	m := &Manager{
		api:           client,
		logger:        logger,
		conversations: make(map[string]*Conversation),
	}
	m.unsubscribe = b.Subscribe(func(e bus.Event) {
		if e == bus.EventLogout {
			m.resetAll()
		}
	})
	return m
}

// Close detaches the manager from the event bus.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Open starts a conversation and returns its snapshot.
func (m *Manager) Open() Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &Conversation{
		Handle:    newSessionID(),
		SessionID: newSessionID(),
	}
	seed(c)
	m.conversations[c.Handle] = c
	return snapshot(c)
}

// Get returns a conversation snapshot.
func (m *Manager) Get(handle string) (Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[handle]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return snapshot(c), nil
}

// Discard closes a conversation, dropping all its messages.
func (m *Manager) Discard(handle string) {
	m.mu.Lock()
	delete(m.conversations, handle)
	m.mu.Unlock()
}

// Send submits one user message and waits for the bot reply. While the
// reply is in flight further input on the same conversation is rejected
// with ErrBusy. A transport failure appends a single synthetic bot
// message and leaves the conversation usable.
func (m *Manager) Send(ctx context.Context, handle, text string) (Conversation, error) {
	m.mu.Lock()
	c, ok := m.conversations[handle]
	if !ok {
		m.mu.Unlock()
		return Conversation{}, ErrNotFound
	}
	if c.busy {
		m.mu.Unlock()
		return Conversation{}, ErrBusy
	}
	c.busy = true
	sessionID := c.SessionID
	appendMessage(c, model.ChatUser, text)
	m.mu.Unlock()

	reply, err := m.api.Chat(ctx, text, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	c.busy = false

	// The conversation may have been reset by a logout while the
	// request was in flight; apply the reply only to the same session.
	if c.SessionID != sessionID {
		return snapshot(c), nil
	}

	if err != nil {
		m.logger.Warn("chatbot request", "error", err)
		appendMessage(c, model.ChatBot, errorMessage)
		return snapshot(c), nil
	}

	appendMessage(c, model.ChatBot, reply.Response)
	c.Suggested = reply.SuggestedQuestions
	return snapshot(c), nil
}

func (m *Manager) resetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.conversations {
		c.SessionID = newSessionID()
		c.Messages = nil
		c.Suggested = nil
		c.nextID = 0
		seed(c)
	}
}

func seed(c *Conversation) {
	appendMessage(c, model.ChatBot, welcomeMessage)
}

func appendMessage(c *Conversation, kind, content string) {
	c.nextID++
	c.Messages = append(c.Messages, model.ChatMessage{
		ID:        c.nextID,
		Type:      kind,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func snapshot(c *Conversation) Conversation {
	out := *c
	out.Messages = make([]model.ChatMessage, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}

// newSessionID matches the shape the backend expects: a millisecond
// timestamp plus a short random suffix.
func newSessionID() string {
	var b [6]byte
	rand.Read(b[:])
	return fmt.Sprintf("%d%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}
