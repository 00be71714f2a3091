package app

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/ports"
)

// ExportResult is the outcome of one export.
type ExportResult struct {
	Record export.Record

	// Archived is false when no archive is configured or when the markup
	// matched the document's latest archived export.
	Archived bool
}

// ExportService compiles documents and archives the artifacts.
type ExportService struct {
	mu       sync.RWMutex
	compiler *export.Compiler

	catalog ports.Catalog
	archive ports.ExportArchive
	clock   ports.Clock
	ids     ports.IDGenerator
	metrics ports.BuilderMetrics
	logger  zerolog.Logger
}

// NewExportService creates an export service. archive may be nil.
func NewExportService(opts export.Options, catalog ports.Catalog, archive ports.ExportArchive,
	clock ports.Clock, ids ports.IDGenerator, logger zerolog.Logger) *ExportService {
	return &ExportService{
		compiler: export.NewCompiler(opts),
		catalog:  catalog,
		archive:  archive,
		clock:    clock,
		ids:      ids,
		metrics:  nopMetrics{},
		logger:   logger,
	}
}

// WithMetrics sets the metrics recorder.
func (s *ExportService) WithMetrics(m ports.BuilderMetrics) *ExportService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Options returns the effective compiler options.
func (s *ExportService) Options() export.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compiler.Options()
}

// UpdateOptions swaps the compiler options for subsequent exports.
func (s *ExportService) UpdateOptions(opts export.Options) {
	s.mu.Lock()
	s.compiler = export.NewCompiler(opts)
	s.mu.Unlock()

	s.logger.Info().Str("else_policy", string(opts.ElsePolicy)).Msg("export options updated")
}

// Compile renders a builder without archiving.
func (s *ExportService) Compile(b *Builder) export.Result {
	s.mu.RLock()
	c := s.compiler
	s.mu.RUnlock()
	return c.Compile(b.Snapshot(), s.catalog)
}

// Export compiles the builder and archives the artifact under documentID.
// An export identical to the document's latest archived one is not stored again.
func (s *ExportService) Export(ctx context.Context, documentID string, b *Builder) (ExportResult, error) {
	s.mu.RLock()
	c := s.compiler
	s.mu.RUnlock()

	snap := b.Snapshot()
	res := c.Compile(snap, s.catalog)

	rec := export.Record{
		ID:              s.ids.New(),
		DocumentID:      documentID,
		HTML:            res.HTML,
		Fingerprint:     Fingerprint(res.HTML),
		Bytes:           len(res.HTML),
		Roots:           len(snap.RootModules()),
		Modules:         snap.Len(),
		ElsePolicy:      c.Options().ElsePolicy,
		MalformedColors: res.MalformedColors,
		Skipped:         res.Skipped,
		CreatedAt:       s.clock.Now(),
	}

	log := s.logger.With().Str("document", documentID).Str("fingerprint", rec.Fingerprint[:12]).Logger()
	if len(res.MalformedColors) > 0 {
		log.Warn().Strs("modules", res.MalformedColors).Msg("background colors replaced by fallback")
	}
	if len(res.Skipped) > 0 {
		log.Warn().Strs("modules", res.Skipped).Msg("modules skipped during export")
	}

	if s.archive == nil || documentID == "" {
		s.metrics.Export(ResultOK, rec.Bytes, len(rec.MalformedColors))
		return ExportResult{Record: rec}, nil
	}

	latest, found, err := s.latest(ctx, documentID)
	if err != nil {
		s.metrics.Export(ResultError, rec.Bytes, 0)
		return ExportResult{}, err
	}
	if found && latest.Fingerprint == rec.Fingerprint {
		s.metrics.Export(ResultUnchanged, rec.Bytes, len(rec.MalformedColors))
		log.Debug().Str("export", latest.ID).Msg("export unchanged")
		return ExportResult{Record: latest}, nil
	}

	if err := s.archive.Save(ctx, rec); err != nil {
		s.metrics.Export(ResultError, rec.Bytes, 0)
		return ExportResult{}, fmt.Errorf("archive export: %w", err)
	}

	s.metrics.Export(ResultOK, rec.Bytes, len(rec.MalformedColors))
	log.Info().Str("export", rec.ID).Int("bytes", rec.Bytes).Int("modules", rec.Modules).Msg("export archived")
	return ExportResult{Record: rec, Archived: true}, nil
}

// History lists a document's archived exports, newest first.
func (s *ExportService) History(ctx context.Context, documentID string, limit int) ([]export.Record, error) {
	if s.archive == nil {
		return nil, nil
	}
	return s.archive.ListByDocument(ctx, documentID, limit)
}

// Get returns one archived export.
func (s *ExportService) Get(ctx context.Context, id string) (export.Record, error) {
	if s.archive == nil {
		return export.Record{}, fmt.Errorf("export %q: %w", id, ports.ErrNotFound)
	}
	rec, err := s.archive.Get(ctx, id)
	if err != nil {
		return export.Record{}, fmt.Errorf("export %q: %w", id, err)
	}
	return rec, nil
}

func (s *ExportService) latest(ctx context.Context, documentID string) (export.Record, bool, error) {
	n, err := s.archive.Count(ctx, documentID)
	if err != nil {
		return export.Record{}, false, fmt.Errorf("count exports: %w", err)
	}
	if n == 0 {
		return export.Record{}, false, nil
	}
	rec, err := s.archive.Latest(ctx, documentID)
	if err != nil {
		return export.Record{}, false, fmt.Errorf("latest export: %w", err)
	}
	return rec, true, nil
}

// Fingerprint returns the hex blake2b-256 digest of markup.
func Fingerprint(html string) string {
	sum := blake2b.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}
