package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTracker marks live game sessions in Redis so other instances and
// operators can see what is running. Keys expire on their own if a process dies
// without clearing them.
type SessionTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionTracker(client *redis.Client, ttl time.Duration) *SessionTracker {
	return &SessionTracker{client: client, ttl: ttl}
}

func (t *SessionTracker) Mark(ctx context.Context, sessionID string) error {
	return t.client.Set(ctx, t.key(sessionID), time.Now().UTC().Format(time.RFC3339), t.ttl).Err()
}

func (t *SessionTracker) Clear(ctx context.Context, sessionID string) error {
	return t.client.Del(ctx, t.key(sessionID)).Err()
}

func (t *SessionTracker) key(sessionID string) string {
	return "game:session:" + sessionID
}
