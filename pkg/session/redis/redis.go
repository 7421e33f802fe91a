// Package redis provides Redis-backed session storage for shared
// deployments.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/auditflow/auditflow/pkg/session"
)

const sessionHashKey = "auditflow:session"

// Store keeps the session in a single Redis hash, so Clear is one DEL and a
// reload observes all keys from the same snapshot.
type Store struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewStore connects to Redis at the given URL (redis://...).
func NewStore(ctx context.Context, redisURL string, logger *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis session store", "addr", opts.Addr, "db", opts.DB)

	return &Store{
		client: client,
		logger: logger.With("module", "session_redis"),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.HGet(ctx, sessionHashKey, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", session.ErrKeyNotFound
		}

		return "", fmt.Errorf("failed to read session key %s: %w", key, err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	err := s.client.HSet(ctx, sessionHashKey, key, value).Err()
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.client.HDel(ctx, sessionHashKey, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.client.Del(ctx, sessionHashKey).Err()
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (s *Store) Close(ctx context.Context) error {
	err := s.client.Close()
	if err != nil {
		s.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)

		return err
	}

	return nil
}
