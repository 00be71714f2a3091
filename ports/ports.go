// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/domain/module"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Catalog Ports
// -----------------------------------------------------------------------------

// Catalog supplies module kinds. Kinds are immutable once published.
type Catalog interface {
	// Kind returns the kind with the id.
	Kind(id string) (module.Kind, bool)

	// All returns every kind in palette order.
	All() []module.Kind
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// ExportArchive persists export artifacts.
type ExportArchive interface {
	// Save stores a new export record.
	Save(ctx context.Context, rec export.Record) error

	// Get retrieves an export by ID.
	Get(ctx context.Context, id string) (export.Record, error)

	// ListByDocument returns a document's exports, newest first.
	// A limit <= 0 returns all of them.
	ListByDocument(ctx context.Context, documentID string, limit int) ([]export.Record, error)

	// Latest returns the newest export of a document.
	Latest(ctx context.Context, documentID string) (export.Record, error)

	// Count returns the number of exports archived for a document.
	Count(ctx context.Context, documentID string) (int, error)
}

// -----------------------------------------------------------------------------
// Observability Ports
// -----------------------------------------------------------------------------

// BuilderMetrics records builder and export activity.
type BuilderMetrics interface {
	// Operation counts one builder operation by name and result ("ok" or an error class).
	Operation(op, result string)

	// Export records one compilation.
	Export(result string, bytes int, colorFallbacks int)

	// SetDocumentsOpen sets the number of open documents.
	SetDocumentsOpen(n int)
}
