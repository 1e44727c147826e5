package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for session histories
	sessionKeyPrefix = "hchat:session:"
	// Default TTL for session keys (24 hours)
	defaultTTL = 24 * time.Hour
	// Optimistic transaction attempts before giving up
	maxTxAttempts = 5
)

// ErrConflict is returned when concurrent writers keep invalidating an append.
var ErrConflict = errors.New("session append conflict")

// redisStore keeps each session as a Redis list of JSON-encoded turns.
// Appends run under WATCH/MULTI so append and trim are atomic per session.
type redisStore struct {
	client    *redis.Client
	ttl       time.Duration
	retention Retention
	now       func() time.Time
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(client *redis.Client, ttl time.Duration, retention Retention) (Store, error) {
	if client == nil {
		return nil, ErrInvalidConfig
	}
	if err := retention.Validate(); err != nil {
		return nil, fmt.Errorf("retention %+v: %w", retention, err)
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisStore{
		client:    client,
		ttl:       ttl,
		retention: retention,
		now:       time.Now,
	}, nil
}

// History implements Store.
func (s *redisStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	vals, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}

	turns := make([]Turn, 0, len(vals))
	for _, val := range vals {
		var turn Turn
		if err := json.Unmarshal([]byte(val), &turn); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// AppendTurn implements Store.
func (s *redisStore) AppendTurn(ctx context.Context, sessionID, user, bot string) error {
	key := s.key(sessionID)

	val, err := json.Marshal(Turn{User: user, Bot: bot, At: s.now()})
	if err != nil {
		return fmt.Errorf("failed to encode turn: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, val)
			if int(n)+1 > s.retention.MaxTurns {
				pipe.LTrim(ctx, key, int64(-s.retention.KeepTurns), -1)
			}
			pipe.Expire(ctx, key, s.ttl)
			return nil
		})
		return err
	}

	for range maxTxAttempts {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return fmt.Errorf("failed to append turn: %w", ErrConflict)
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}

// key constructs the Redis key for a session ID.
func (s *redisStore) key(id string) string {
	return sessionKeyPrefix + id
}
