// Package forum keeps a client-side copy of a surf spot's message
// channel in near real time. One Poller exists per open forum view; it
// polls the backend on a fixed interval, deduplicates by message id and
// pushes fresh messages to the view through a callback.
package forum

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yalasurf/yalasurf/internal/api"
	"github.com/yalasurf/yalasurf/internal/model"
)

// ErrForumUnavailable means the forum record could not be loaded yet, so
// messages cannot be posted.
var ErrForumUnavailable = errors.New("forum not loaded")

const defaultInterval = 3 * time.Second

// Notify receives each message exactly once, in arrival order.
type Notify func(model.ForumMessage)

// Poller owns the append-only message log for one surf spot.
type Poller struct {
	api      *api.Client
	spotID   int64
	interval time.Duration
	notify   Notify
	logger   *slog.Logger

	mu       sync.Mutex
	forum    *model.Forum
	messages []model.ForumMessage
	seen     map[int64]struct{}
	lastID   int64
	stopped  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Poller for the given surf spot. notify may be nil.
func New(client *api.Client, spotID int64, notify Notify, logger *slog.Logger) *Poller {
	if notify == nil {
		notify = func(model.ForumMessage) {}
	}
	return &Poller{
		api:      client,
		spotID:   spotID,
		interval: defaultInterval,
		notify:   notify,
		logger:   logger,
		seen:     make(map[int64]struct{}),
	}
}

// Start loads the forum history, then polls for newer messages until
// Stop or context cancellation. A failed initial load is logged, not
// fatal: the next tick retries it.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	p.loadForum(ctx)

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
}

// Stop halts polling and releases the ticker. Responses already in
// flight are discarded rather than applied.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Forum returns the loaded forum record, or nil before the first
// successful load.
func (p *Poller) Forum() *model.Forum {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.forum
}

// Messages returns a copy of the log in arrival order.
func (p *Poller) Messages() []model.ForumMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ForumMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

// Send posts content and optimistically appends the returned message,
// merged with the locally-known sender identity, without waiting for
// the next poll cycle.
func (p *Poller) Send(ctx context.Context, content string, sender model.ForumSender) (*model.ForumMessage, error) {
	p.mu.Lock()
	forum := p.forum
	p.mu.Unlock()

	if forum == nil {
		p.loadForum(ctx)
		p.mu.Lock()
		forum = p.forum
		p.mu.Unlock()
		if forum == nil {
			return nil, ErrForumUnavailable
		}
	}

	msg, err := p.api.CreateForumMessage(ctx, forum.ID, content)
	if err != nil {
		return nil, err
	}
	if msg.Sender == nil {
		msg.Sender = &sender
	}
	p.append(ctx, []model.ForumMessage{*msg})
	return msg, nil
}

func (p *Poller) tick(ctx context.Context) {
	p.mu.Lock()
	loaded := p.forum != nil
	lastID := p.lastID
	p.mu.Unlock()

	if !loaded {
		p.loadForum(ctx)
		return
	}

	msgs, err := p.api.ForumMessages(ctx, p.spotID, lastID)
	if err != nil {
		// Next tick retries on its own; no backoff.
		p.logger.Warn("poll forum messages", "spot_id", p.spotID, "error", err)
		return
	}
	p.append(ctx, msgs)
}

func (p *Poller) loadForum(ctx context.Context) {
	resp, err := p.api.Forum(ctx, p.spotID)
	if err != nil {
		p.logger.Warn("load forum", "spot_id", p.spotID, "error", err)
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.forum = &resp.Forum
	p.mu.Unlock()

	p.append(ctx, resp.Messages)
}

// append adds unseen messages in arrival order and notifies for each.
// Results landing after Stop are dropped.
func (p *Poller) append(ctx context.Context, msgs []model.ForumMessage) {
	if len(msgs) == 0 {
		return
	}

	p.mu.Lock()
	if p.stopped || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	var fresh []model.ForumMessage
	for _, m := range msgs {
		if _, dup := p.seen[m.ID]; dup {
			continue
		}
		p.seen[m.ID] = struct{}{}
		p.messages = append(p.messages, m)
		if m.ID > p.lastID {
			p.lastID = m.ID
		}
		fresh = append(fresh, m)
	}
	p.mu.Unlock()

	for _, m := range fresh {
		p.notify(m)
	}
}
