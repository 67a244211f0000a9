// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The lifecycle manager and the search service depend only
// on these interfaces, so they can be exercised with fakes while the SQLite store,
// the HTTP image fetcher and the Discord gateway live at the edges.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., RecordStore, ImageFetcher)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/bnrubin/discord-logbot/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read ./logbot.yaml plus secrets from .env.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// RecordStore is the document collection holding interaction records.
// Uniqueness of CorrelationKey among non-deleted records is enforced at write time.
type RecordStore interface {
	// InsertIfAbsent stores the record and returns its new id, or domain.ErrConflict
	// when a non-deleted record with the same correlation key exists.
	InsertIfAbsent(ctx context.Context, record domain.InteractionRecord) (string, error)
	// SoftDeleteByCorrelationKey flags the matching non-deleted record as deleted.
	// It reports whether a record was updated and never fails on "not found".
	SoftDeleteByCorrelationKey(ctx context.Context, key string, now time.Time) (bool, error)
	// Search returns one window of non-deleted records in scope plus the total count.
	Search(ctx context.Context, query domain.SearchQuery) (domain.SearchPage, error)
}

// RecordRepository extends RecordStore with the audit and maintenance operations
// used by the CLI and diagnostics.
type RecordRepository interface {
	RecordStore
	FindByCorrelationKey(ctx context.Context, key string) (domain.InteractionRecord, error)
	Recent(ctx context.Context, limit int) ([]domain.InteractionRecord, error)
	ExportJSON(ctx context.Context, dest string) error
	Ping(ctx context.Context) error
	Path() string
	Close() error
}

// ImageFetcher downloads an image and returns the bare stored filename.
// Failures are *domain.FetchError values.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ImageDiscarder is implemented by fetchers that can remove a file they produced,
// used when the record for a fresh download could not be written.
type ImageDiscarder interface {
	Discard(filename string) error
}

// Clock abstracts wall time so record timestamps can be controlled in tests.
type Clock interface {
	Now() time.Time
}

// Metrics receives counters from the application layer.
type Metrics interface {
	RecordEvent(classification domain.Classification, status string)
	RecordFetch(status string, duration time.Duration)
	RecordStoreOperation(operation, status string, duration time.Duration)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
