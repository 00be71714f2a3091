package app

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/artpar/mailcraft/domain/alias"
	"github.com/artpar/mailcraft/domain/forest"
	"github.com/artpar/mailcraft/domain/module"
	"github.com/artpar/mailcraft/ports"
)

// Builder is the placement store of one email document: the module forest,
// the selection and the id source. It is single-owner and not safe for
// concurrent use; Workspace serializes access.
type Builder struct {
	forest   *forest.Forest
	catalog  ports.Catalog
	ids      ports.IDGenerator
	metrics  ports.BuilderMetrics
	logger   zerolog.Logger
	selected string
}

// NewBuilder creates an empty builder.
func NewBuilder(catalog ports.Catalog, ids ports.IDGenerator, logger zerolog.Logger) *Builder {
	return &Builder{
		forest:  forest.New(),
		catalog: catalog,
		ids:     ids,
		metrics: nopMetrics{},
		logger:  logger,
	}
}

// WithMetrics sets the metrics recorder.
func (b *Builder) WithMetrics(m ports.BuilderMetrics) *Builder {
	if m != nil {
		b.metrics = m
	}
	return b
}

// InsertRoot places a new root module at position at among the roots.
// A nil at appends. The new module becomes the selection.
func (b *Builder) InsertRoot(kindID string, at *int) (string, error) {
	kind, err := b.kind(kindID)
	if err != nil {
		return "", b.done("insert_root", "", err)
	}
	if kind.Role() != module.RoleRoot {
		return "", b.done("insert_root", "", fmt.Errorf("%w: %q is not a root kind", module.ErrInvalidKindPlacement, kindID))
	}

	pos := len(b.forest.RootModules())
	if at != nil {
		pos = *at
	}

	m := module.Placed{ID: b.ids.New(), KindID: kindID, Values: kind.EmptyValues()}
	if err := b.forest.InsertRoot(m, pos); err != nil {
		return "", b.done("insert_root", m.ID, err)
	}
	b.selected = m.ID
	return m.ID, b.done("insert_root", m.ID, nil)
}

// InsertNested appends a new module to the (parentID, bucket) sequence.
// The new module becomes the selection.
func (b *Builder) InsertNested(kindID, parentID string, bucket module.Bucket) (string, error) {
	kind, err := b.kind(kindID)
	if err != nil {
		return "", b.done("insert_nested", "", err)
	}

	m := module.Placed{
		KindID:   kindID,
		Values:   kind.EmptyValues(),
		ParentID: parentID,
		Bucket:   bucket,
	}
	// Validate before drawing an id so rejected inserts do not consume one.
	if err := b.forest.CheckPlacement(kindID, parentID, bucket); err != nil {
		return "", b.done("insert_nested", "", err)
	}

	m.ID = b.ids.New()
	if err := b.forest.AppendNested(m); err != nil {
		return "", b.done("insert_nested", m.ID, err)
	}
	b.selected = m.ID
	return m.ID, b.done("insert_nested", m.ID, nil)
}

// MoveRoot reorders a root module among the roots.
func (b *Builder) MoveRoot(id string, target int) error {
	return b.done("move_root", id, b.forest.MoveRoot(id, target))
}

// MoveNested re-parents a module into (parentID, bucket) at position target.
func (b *Builder) MoveNested(id, parentID string, bucket module.Bucket, target int) error {
	return b.done("move_nested", id, b.forest.MoveNested(id, parentID, bucket, target))
}

// Remove deletes a module with all its descendants. The selection is cleared
// when it pointed into the removed subtree.
func (b *Builder) Remove(id string) error {
	removed, err := b.forest.Remove(id)
	if err != nil {
		return b.done("remove", id, err)
	}
	for _, r := range removed {
		if r == b.selected {
			b.selected = ""
			break
		}
	}
	b.logger.Debug().Str("id", id).Int("removed", len(removed)).Msg("subtree removed")
	return b.done("remove", id, nil)
}

// Duplicate copies a module's subtree next to its last sibling and returns
// the id of the copy. The selection does not change.
func (b *Builder) Duplicate(id string) (string, error) {
	newID, err := b.forest.Duplicate(id, b.ids.New)
	if err != nil {
		return "", b.done("duplicate", id, err)
	}
	b.logger.Debug().Str("id", id).Str("copy", newID).Msg("subtree duplicated")
	return newID, b.done("duplicate", id, nil)
}

// UpdateValue sets one field and derives alias fields from it in the same step.
func (b *Builder) UpdateValue(id, fieldID, value string) error {
	return b.UpdateValues(id, map[string]string{fieldID: value})
}

// UpdateValues sets several fields at once. Every field is checked before
// any is written, so a rejected field leaves the module unchanged. Fields are
// applied in name order, each followed by its alias derivation.
func (b *Builder) UpdateValues(id string, updates map[string]string) error {
	m, ok := b.forest.Get(id)
	if !ok {
		return b.done("update_value", id, fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id))
	}
	kind, err := b.kind(m.KindID)
	if err != nil {
		return b.done("update_value", id, err)
	}

	fields := make([]string, 0, len(updates))
	for f := range updates {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if !kind.HasField(f) {
			return b.done("update_value", id, fmt.Errorf("%w: %q on %s", module.ErrUnknownField, f, m.KindID))
		}
	}

	values := m.Values
	if values == nil {
		values = make(map[string]string, len(updates))
	}
	derivedCount := 0
	for _, f := range fields {
		values[f] = updates[f]
		derived := alias.Derive(kind.Aliases, f, updates[f], values)
		for field, v := range derived {
			values[field] = v
		}
		derivedCount += len(derived)
	}

	if err := b.forest.SetValues(id, values); err != nil {
		return b.done("update_value", id, err)
	}
	if derivedCount > 0 {
		b.logger.Debug().Str("id", id).Strs("fields", fields).Int("aliases", derivedCount).Msg("aliases derived")
	}
	return b.done("update_value", id, nil)
}

// Selected returns the selected module id.
func (b *Builder) Selected() (string, bool) {
	return b.selected, b.selected != ""
}

// Select marks a module as selected.
func (b *Builder) Select(id string) error {
	if !b.forest.Contains(id) {
		return fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id)
	}
	b.selected = id
	return nil
}

// ClearSelection removes the selection.
func (b *Builder) ClearSelection() {
	b.selected = ""
}

// Modules returns a deep copy of all modules in forest order.
func (b *Builder) Modules() []module.Placed {
	return b.forest.Modules()
}

// Get returns a copy of one module.
func (b *Builder) Get(id string) (module.Placed, bool) {
	return b.forest.Get(id)
}

// Len returns the number of modules.
func (b *Builder) Len() int {
	return b.forest.Len()
}

// Snapshot returns an independent copy of the forest for read-only use.
func (b *Builder) Snapshot() *forest.Forest {
	return b.forest.Clone()
}

func (b *Builder) kind(kindID string) (module.Kind, error) {
	kind, ok := b.catalog.Kind(kindID)
	if !ok {
		return module.Kind{}, fmt.Errorf("%w: %q", module.ErrUnknownKind, kindID)
	}
	return kind, nil
}

// done logs and counts an operation outcome and passes err through.
func (b *Builder) done(op, id string, err error) error {
	result := ErrorClass(err)
	b.metrics.Operation(op, result)
	if err != nil {
		b.logger.Debug().Str("op", op).Str("id", id).Err(err).Msg("operation rejected")
		return err
	}
	b.logger.Debug().Str("op", op).Str("id", id).Msg("operation applied")
	return nil
}

// ErrorClass returns a short label for an error from the builder taxonomy.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, module.ErrCyclicMove):
		return "cyclic_move"
	case errors.Is(err, module.ErrReferenceNotFound):
		return "not_found"
	case errors.Is(err, module.ErrInvalidKindPlacement):
		return "invalid_placement"
	case errors.Is(err, module.ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, module.ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, module.ErrInvalidBucket):
		return "invalid_bucket"
	case errors.Is(err, ErrDocumentNotFound):
		return "document_not_found"
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	}
	return ResultError
}

// Result labels for operation and export metrics.
const (
	ResultOK        = "ok"
	ResultUnchanged = "unchanged"
	ResultError     = "error"
)

type nopMetrics struct{}

func (nopMetrics) Operation(string, string) {}
func (nopMetrics) Export(string, int, int) {}
func (nopMetrics) SetDocumentsOpen(int) {}
