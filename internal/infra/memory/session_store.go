package memory

import (
	"context"
	"sync"
)

// SessionTracker records which game sessions are live in this process.
type SessionTracker struct {
	mu   sync.RWMutex
	live map[string]struct{}
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{live: make(map[string]struct{})}
}

func (t *SessionTracker) Mark(_ context.Context, sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[sessionID] = struct{}{}
	return nil
}

func (t *SessionTracker) Clear(_ context.Context, sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, sessionID)
	return nil
}

// Live reports whether the session is marked.
func (t *SessionTracker) Live(sessionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.live[sessionID]
	return ok
}

// Publisher keeps published events in memory, grouped by channel.
type Publisher struct {
	mu     sync.Mutex
	events map[string][]any
}

func NewPublisher() *Publisher {
	return &Publisher{events: make(map[string][]any)}
}

func (p *Publisher) Publish(_ context.Context, channel string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[channel] = append(p.events[channel], payload)
	return nil
}

// Events returns what was published on channel.
func (p *Publisher) Events(channel string) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events[channel]...)
}
