package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/mailcraft/ports"
)

// ErrDocumentNotFound is returned for an unknown document id.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentInfo describes a document without exposing its builder.
type DocumentInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Modules   int
	Selected  string
}

type document struct {
	id        string
	name      string
	createdAt time.Time
	builder   *Builder
}

func (d *document) info() DocumentInfo {
	sel, _ := d.builder.Selected()
	return DocumentInfo{
		ID:        d.id,
		Name:      d.name,
		CreatedAt: d.createdAt,
		Modules:   d.builder.Len(),
		Selected:  sel,
	}
}

// WorkspaceConfig holds the collaborators a workspace hands to its documents.
type WorkspaceConfig struct {
	Catalog ports.Catalog
	Clock   ports.Clock

	// DocumentIDs generates document ids.
	DocumentIDs ports.IDGenerator

	// ModuleIDs returns a fresh module id generator for each new document.
	ModuleIDs func() ports.IDGenerator

	Metrics ports.BuilderMetrics
	Logger  zerolog.Logger
}

// Workspace holds open documents. All access to a document's builder goes
// through the workspace lock.
type Workspace struct {
	mu   sync.Mutex
	docs map[string]*document
	cfg  WorkspaceConfig
}

// NewWorkspace creates an empty workspace.
func NewWorkspace(cfg WorkspaceConfig) *Workspace {
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &Workspace{docs: make(map[string]*document), cfg: cfg}
}

// Create opens a new empty document.
func (w *Workspace) Create(name string) (DocumentInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.cfg.DocumentIDs.New()
	if _, exists := w.docs[id]; exists {
		return DocumentInfo{}, fmt.Errorf("document id %q already in use", id)
	}

	logger := w.cfg.Logger.With().Str("document", id).Logger()
	d := &document{
		id:        id,
		name:      name,
		createdAt: w.cfg.Clock.Now(),
		builder:   NewBuilder(w.cfg.Catalog, w.cfg.ModuleIDs(), logger).WithMetrics(w.cfg.Metrics),
	}
	w.docs[id] = d
	w.cfg.Metrics.SetDocumentsOpen(len(w.docs))

	w.cfg.Logger.Info().Str("document", id).Str("name", name).Msg("document created")
	return d.info(), nil
}

// Get describes a document.
func (w *Workspace) Get(id string) (DocumentInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, ok := w.docs[id]
	if !ok {
		return DocumentInfo{}, fmt.Errorf("%w: %q", ErrDocumentNotFound, id)
	}
	return d.info(), nil
}

// Delete closes a document.
func (w *Workspace) Delete(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.docs[id]; !ok {
		return fmt.Errorf("%w: %q", ErrDocumentNotFound, id)
	}
	delete(w.docs, id)
	w.cfg.Metrics.SetDocumentsOpen(len(w.docs))

	w.cfg.Logger.Info().Str("document", id).Msg("document deleted")
	return nil
}

// List returns all documents, oldest first.
func (w *Workspace) List() []DocumentInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]DocumentInfo, 0, len(w.docs))
	for _, d := range w.docs {
		out = append(out, d.info())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// With runs fn against a document's builder under the workspace lock.
func (w *Workspace) With(id string, fn func(b *Builder) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	d, ok := w.docs[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDocumentNotFound, id)
	}
	return fn(d.builder)
}
