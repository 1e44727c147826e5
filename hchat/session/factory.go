package session

import "fmt"

// StoreType represents the type of session store.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// NewStore creates a Store of the given type.
// Without WithRetention the store keeps a sliding window of the last 8 turns.
// The Redis store requires WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{retention: DefaultRetention()}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeMemory, "":
		return NewMemoryStore(cfg.retention)

	case StoreTypeRedis:
		return NewRedisStore(cfg.redisClient, cfg.redisTTL, cfg.retention)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}
