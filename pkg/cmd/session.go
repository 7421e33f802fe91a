// Package cmd wires shared infrastructure for the auditflow binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/auditflow/auditflow/pkg/session"
	"github.com/auditflow/auditflow/pkg/session/file"
	"github.com/auditflow/auditflow/pkg/session/postgresql"
	"github.com/auditflow/auditflow/pkg/session/redis"
)

var supportedSessionProviders = []string{"file", "redis", "postgres", "postgresql", "memory"}

// NewSessionStore creates a session store from a URL. The scheme selects the
// backend; anything unrecognized falls back to file storage.
func NewSessionStore(ctx context.Context, sessionURL string, logger *slog.Logger) (session.Store, error) {
	switch parseSessionProvider(sessionURL) {
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		store, err := redis.NewStore(ctx, sessionURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}

		return store, nil
	case "postgres", "postgresql":
		store, err := postgresql.NewStore(ctx, logger, sessionURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres session store: %w", err)
		}

		return store, nil
	default:
		return file.NewStore(sessionURL), nil
	}
}

func parseSessionProvider(sessionURL string) string {
	provider, _, found := strings.Cut(sessionURL, "://")
	if !found {
		return "file"
	}

	for _, supported := range supportedSessionProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
