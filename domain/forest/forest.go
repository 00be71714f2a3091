// Package forest provides the ordered arena of placed modules and its pure
// mutation primitives. This package has NO dependencies on I/O or external packages.
//
// All modules live in one backing slice. Display order among siblings sharing a
// (parent, bucket) pair is their relative order in that slice; there is no
// separate index field. Every mutation validates first and then swaps in the new
// slice, so a failed call leaves the forest unchanged.
package forest

import (
	"fmt"
	"slices"

	"github.com/artpar/mailcraft/domain/module"
)

// Forest is an ordered collection of placed modules forming one tree per root.
type Forest struct {
	modules []module.Placed
}

// New creates an empty forest.
func New() *Forest {
	return &Forest{}
}

// FromModules builds a forest from modules in the given order.
// Returns an error if the modules violate a forest invariant.
func FromModules(mods []module.Placed) (*Forest, error) {
	f := &Forest{modules: make([]module.Placed, 0, len(mods))}
	for _, m := range mods {
		f.modules = append(f.modules, m.Clone())
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Len returns the number of placed modules.
func (f *Forest) Len() int {
	return len(f.modules)
}

// Modules returns a deep copy of all modules in forest order.
func (f *Forest) Modules() []module.Placed {
	out := make([]module.Placed, len(f.modules))
	for i, m := range f.modules {
		out[i] = m.Clone()
	}
	return out
}

// Clone returns an independent copy of the forest.
func (f *Forest) Clone() *Forest {
	return &Forest{modules: f.Modules()}
}

// Contains returns true if a module with the id exists.
func (f *Forest) Contains(id string) bool {
	return f.indexOf(id) >= 0
}

// Get returns a copy of the module with the id.
func (f *Forest) Get(id string) (module.Placed, bool) {
	i := f.indexOf(id)
	if i < 0 {
		return module.Placed{}, false
	}
	return f.modules[i].Clone(), true
}

// InsertRoot inserts a root-kind module among the roots at position at,
// clamped to [0, root count].
func (f *Forest) InsertRoot(m module.Placed, at int) error {
	if m.Role() != module.RoleRoot {
		return fmt.Errorf("%w: %q cannot be placed at root level", module.ErrInvalidKindPlacement, m.KindID)
	}
	if err := f.checkNewID(m.ID); err != nil {
		return err
	}

	m = m.WithParent("", module.BucketNone)
	next := slices.Clone(f.modules)
	pos := insertPosition(next, siblingIndexes(next, "", module.BucketNone), at)
	f.modules = slices.Insert(next, pos, m)
	return nil
}

// AppendNested appends a non-root module to the end of its (parent, bucket)
// sibling sequence. The module's ParentID and Bucket address the sequence.
func (f *Forest) AppendNested(m module.Placed) error {
	if err := f.CheckPlacement(m.KindID, m.ParentID, m.Bucket); err != nil {
		return err
	}
	if err := f.checkNewID(m.ID); err != nil {
		return err
	}

	next := slices.Clone(f.modules)
	sibs := siblingIndexes(next, m.ParentID, m.Bucket)
	pos := insertPosition(next, sibs, len(sibs))
	f.modules = slices.Insert(next, pos, m)
	return nil
}

// MoveRoot reorders a root module to position at among the roots, clamped to
// the root count after removal. Roots never change parent.
func (f *Forest) MoveRoot(id string, at int) error {
	i := f.indexOf(id)
	if i < 0 || !f.modules[i].IsRoot() {
		return fmt.Errorf("%w: no root module %q", module.ErrReferenceNotFound, id)
	}

	item := f.modules[i]
	next := slices.Delete(slices.Clone(f.modules), i, i+1)
	pos := insertPosition(next, siblingIndexes(next, "", module.BucketNone), at)
	f.modules = slices.Insert(next, pos, item)
	return nil
}

// MoveNested re-parents a non-root module into the (parentID, bucket) sequence
// at position at, clamped to that sequence's length after removal.
func (f *Forest) MoveNested(id, parentID string, bucket module.Bucket, at int) error {
	i := f.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id)
	}
	item := f.modules[i]
	if item.Role() == module.RoleRoot {
		return fmt.Errorf("%w: root module %q cannot be nested", module.ErrInvalidKindPlacement, id)
	}
	if parentID == id || f.IsDescendant(id, parentID) {
		return fmt.Errorf("%w: %q into %q", module.ErrCyclicMove, id, parentID)
	}
	if err := f.CheckPlacement(item.KindID, parentID, bucket); err != nil {
		return err
	}

	item = item.WithParent(parentID, bucket)
	next := slices.Delete(slices.Clone(f.modules), i, i+1)
	pos := insertPosition(next, siblingIndexes(next, parentID, bucket), at)
	f.modules = slices.Insert(next, pos, item)
	return nil
}

// Remove deletes the module and its whole descendant subtree in one step.
// Returns the removed ids, the target first.
func (f *Forest) Remove(id string) ([]string, error) {
	if !f.Contains(id) {
		return nil, fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id)
	}

	removed := []string{id}
	for _, d := range f.DescendantsOf(id) {
		removed = append(removed, d.ID)
	}

	drop := make(map[string]bool, len(removed))
	for _, r := range removed {
		drop[r] = true
	}
	next := make([]module.Placed, 0, len(f.modules)-len(removed))
	for _, m := range f.modules {
		if !drop[m.ID] {
			next = append(next, m)
		}
	}
	f.modules = next
	return removed, nil
}

// Duplicate copies the module's subtree with fresh ids from newID. The copy
// keeps the original's parent and bucket and is inserted right after the last
// sibling of the original. Returns the id of the copied root.
func (f *Forest) Duplicate(id string, newID func() string) (string, error) {
	orig, ok := f.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id)
	}

	inSubtree := map[string]bool{id: true}
	order := []string{id}
	for _, m := range f.modules {
		if m.ID != id && f.IsDescendant(id, m.ID) {
			inSubtree[m.ID] = true
			order = append(order, m.ID)
		}
	}

	// Ids are drawn root first, then in forest order.
	remap := make(map[string]string, len(order))
	taken := make(map[string]bool, len(order))
	for _, old := range order {
		fresh := newID()
		if fresh == "" || f.Contains(fresh) || taken[fresh] {
			return "", fmt.Errorf("duplicate %q: generated id %q is not unique", id, fresh)
		}
		taken[fresh] = true
		remap[old] = fresh
	}

	// Copied root first, then descendants in forest order.
	copies := []module.Placed{orig.WithID(remap[id])}
	for _, m := range f.modules {
		if m.ID == id || !inSubtree[m.ID] {
			continue
		}
		c := m.Clone().WithID(remap[m.ID])
		c.ParentID = remap[m.ParentID]
		copies = append(copies, c)
	}

	next := slices.Clone(f.modules)
	sibs := siblingIndexes(next, orig.ParentID, orig.Bucket)
	pos := sibs[len(sibs)-1] + 1
	f.modules = slices.Insert(next, pos, copies...)
	return remap[id], nil
}

// SetValues replaces the values map of a module.
func (f *Forest) SetValues(id string, values map[string]string) error {
	i := f.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", module.ErrReferenceNotFound, id)
	}
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	f.modules[i].Values = cp
	return nil
}

// CheckPlacement validates nesting a kind under parentID in bucket.
func (f *Forest) CheckPlacement(kindID, parentID string, bucket module.Bucket) error {
	if module.RoleOf(kindID) == module.RoleRoot {
		return fmt.Errorf("%w: %q cannot be nested", module.ErrInvalidKindPlacement, kindID)
	}
	if parentID == "" {
		return fmt.Errorf("%w: %q requires a parent", module.ErrInvalidKindPlacement, kindID)
	}
	parent, ok := f.Get(parentID)
	if !ok {
		return fmt.Errorf("%w: parent %q", module.ErrReferenceNotFound, parentID)
	}

	switch parent.Role() {
	case module.RoleSwitch:
		if !bucket.IsValid() {
			return fmt.Errorf("%w: children of %q need a bucket, got %q", module.ErrInvalidKindPlacement, parentID, bucket)
		}
	case module.RoleRoot:
		if bucket != module.BucketNone {
			return fmt.Errorf("%w: bucket %q under non-switch parent %q", module.ErrInvalidKindPlacement, bucket, parentID)
		}
	default:
		return fmt.Errorf("%w: %q (%s) is not a container", module.ErrInvalidKindPlacement, parentID, parent.KindID)
	}
	return nil
}

func (f *Forest) checkNewID(id string) error {
	if id == "" {
		return fmt.Errorf("module id must not be empty")
	}
	if f.Contains(id) {
		return fmt.Errorf("module id %q already in use", id)
	}
	return nil
}

func (f *Forest) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, m := range f.modules {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// siblingIndexes returns the slice positions of the (parentID, bucket) sequence.
func siblingIndexes(mods []module.Placed, parentID string, bucket module.Bucket) []int {
	var idx []int
	for i, m := range mods {
		if m.ParentID == parentID && m.Bucket == bucket {
			idx = append(idx, i)
		}
	}
	return idx
}

// insertPosition maps a sibling position to a slice position: before the
// sibling currently at at, or after the last sibling, or at the end when the
// sequence is empty.
func insertPosition(mods []module.Placed, sibs []int, at int) int {
	at = clamp(at, 0, len(sibs))
	switch {
	case at < len(sibs):
		return sibs[at]
	case len(sibs) > 0:
		return sibs[len(sibs)-1] + 1
	default:
		return len(mods)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
