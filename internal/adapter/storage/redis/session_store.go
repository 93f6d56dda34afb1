package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SessionStore implements ports.SessionStore as one sorted set shared by all
// instances. Members are session ids scored by their last-seen time in
// milliseconds.
type SessionStore struct {
	client goredis.Cmdable
	key    string
	ttl    time.Duration
}

// NewSessionStore creates a session store. ttl bounds how long an idle set
// survives and should be at least the counting window.
func NewSessionStore(client goredis.Cmdable, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		key:    "sessions:active",
		ttl:    ttl,
	}
}

// Touch records that sessionID was seen at at.
func (s *SessionStore) Touch(ctx context.Context, sessionID string, at time.Time) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZAdd(ctx, s.key, goredis.Z{Score: float64(at.UnixMilli()), Member: sessionID})
		pipe.Expire(ctx, s.key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis session touch: %w", err)
	}
	return nil
}

// CountSince drops sessions last seen before since and counts the rest.
func (s *SessionStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var card *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, s.key, "-inf", "("+strconv.FormatInt(since.UnixMilli(), 10))
		card = pipe.ZCard(ctx, s.key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis session count: %w", err)
	}
	return card.Val(), nil
}
