package forest

import (
	"errors"
	"fmt"

	"github.com/artpar/mailcraft/domain/module"
)

// Validate checks every forest invariant and returns all violations joined.
func (f *Forest) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(f.modules))

	for _, m := range f.modules {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("module of kind %q has no id", m.KindID))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Errorf("duplicate module id %q", m.ID))
		}
		seen[m.ID] = true

		if m.IsRoot() {
			if m.Role() != module.RoleRoot {
				errs = append(errs, fmt.Errorf("%w: %q (%s) at root level", module.ErrInvalidKindPlacement, m.ID, m.KindID))
			}
			if m.Bucket != module.BucketNone {
				errs = append(errs, fmt.Errorf("%w: root %q carries bucket %q", module.ErrInvalidKindPlacement, m.ID, m.Bucket))
			}
			continue
		}

		if m.Role() == module.RoleRoot {
			errs = append(errs, fmt.Errorf("%w: root kind %q is nested", module.ErrInvalidKindPlacement, m.ID))
		}
		parent, ok := f.Get(m.ParentID)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q has dangling parent %q", module.ErrReferenceNotFound, m.ID, m.ParentID))
			continue
		}
		switch parent.Role() {
		case module.RoleSwitch:
			if !m.Bucket.IsValid() {
				errs = append(errs, fmt.Errorf("%w: %q under switch without bucket", module.ErrInvalidKindPlacement, m.ID))
			}
		case module.RoleRoot:
			if m.Bucket != module.BucketNone {
				errs = append(errs, fmt.Errorf("%w: %q has bucket %q under non-switch", module.ErrInvalidKindPlacement, m.ID, m.Bucket))
			}
		default:
			errs = append(errs, fmt.Errorf("%w: %q nested under leaf %q", module.ErrInvalidKindPlacement, m.ID, m.ParentID))
		}
		if f.hasCycle(m.ID) {
			errs = append(errs, fmt.Errorf("%w: %q is its own ancestor", module.ErrCyclicMove, m.ID))
		}
	}

	return errors.Join(errs...)
}

// hasCycle walks parent links from id and reports whether it revisits a module.
func (f *Forest) hasCycle(id string) bool {
	seen := make(map[string]bool)
	cur := id
	for cur != "" {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		i := f.indexOf(cur)
		if i < 0 {
			return false
		}
		cur = f.modules[i].ParentID
	}
	return false
}
