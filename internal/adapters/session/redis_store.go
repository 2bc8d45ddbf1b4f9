package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricetrail/internal/config"
	"pricetrail/internal/domain/shared"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// sessionKey is the single key holding the serialized session blob
const sessionKey = "pricetrail:session"

// NewRedisClient creates a new Redis client based on configuration
func NewRedisClient(cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	})

	return rdb
}

// PingRedis tests the Redis connection
func PingRedis(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.Ping(ctx).Err()
}

// RedisStore persists the session blob under a single Redis key. No TTL
// is applied; the token inside the blob carries its own expiry.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

type RedisStoreParams struct {
	Client *redis.Client
	Logger zerolog.Logger
}

// NewRedisStore creates a redis-backed session store
func NewRedisStore(params RedisStoreParams) *RedisStore {
	return &RedisStore{
		client: params.Client,
		logger: params.Logger.With().Str("component", "session_redis_store").Logger(),
	}
}

// Load returns the persisted blob, or ok=false when the key is absent
func (s *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	blob, err := s.client.Get(ctx, sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
	}
	if len(blob) == 0 {
		return nil, false, nil
	}
	return blob, true, nil
}

// Save persists the blob, overwriting any prior value
func (s *RedisStore) Save(ctx context.Context, blob []byte) error {
	if err := s.client.Set(ctx, sessionKey, blob, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
	}

	s.logger.Debug().Msg("Session persisted")
	return nil
}

// Clear removes the persisted blob; an absent key is not an error
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSessionStorage, err)
	}

	s.logger.Debug().Msg("Session cleared")
	return nil
}
