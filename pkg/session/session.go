// Package session provides the durable key/value store that lets a pipeline
// run survive a client reload. Only the workflow controller writes to it,
// and writes happen synchronously with the corresponding state mutation.
package session

import (
	"context"
	"errors"
)

// Storage keys. These keys are the persistence contract; the storage
// mechanism behind them is interchangeable.
const (
	KeyActiveJobID = "active_job_id"
	KeySourceType  = "source_type"
	KeySourceURL   = "source_url"
	KeySourcePath  = "source_path"
	KeyUpdatedAt   = "updated_at"
)

// ErrKeyNotFound indicates the key has no stored value.
var ErrKeyNotFound = errors.New("session key not found")

// Store is a small key/value persistence interface so the orchestration
// engine stays storage-agnostic.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
