package forest

import "github.com/artpar/mailcraft/domain/module"

// RootModules returns all modules without a parent, in forest order.
// It does not filter by kind.
func (f *Forest) RootModules() []module.Placed {
	return f.filter(func(m module.Placed) bool { return m.IsRoot() })
}

// ChildrenOf returns the direct children of parentID in forest order,
// regardless of bucket.
func (f *Forest) ChildrenOf(parentID string) []module.Placed {
	if parentID == "" {
		return nil
	}
	return f.filter(func(m module.Placed) bool { return m.ParentID == parentID })
}

// ChildrenOfBucket returns the children of parentID in bucket, in forest order.
// BucketNone and BucketDefault are distinct slots.
func (f *Forest) ChildrenOfBucket(parentID string, bucket module.Bucket) []module.Placed {
	if parentID == "" {
		return nil
	}
	return f.filter(func(m module.Placed) bool {
		return m.ParentID == parentID && m.Bucket == bucket
	})
}

// SiblingsOf returns the (parent, bucket) sequence the module belongs to,
// including the module itself.
func (f *Forest) SiblingsOf(id string) []module.Placed {
	m, ok := f.Get(id)
	if !ok {
		return nil
	}
	return f.filter(func(o module.Placed) bool {
		return o.ParentID == m.ParentID && o.Bucket == m.Bucket
	})
}

// DescendantsOf returns the transitive children of id, breadth-first.
// The module itself is not included.
func (f *Forest) DescendantsOf(id string) []module.Placed {
	if !f.Contains(id) {
		return nil
	}

	var out []module.Placed
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, c := range f.ChildrenOf(parent) {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
			queue = append(queue, c.ID)
		}
	}
	return out
}

// IsDescendant returns true if id lies in the subtree below ancestorID.
func (f *Forest) IsDescendant(ancestorID, id string) bool {
	if ancestorID == "" || id == "" || ancestorID == id {
		return false
	}
	seen := make(map[string]bool)
	cur, ok := f.Get(id)
	for ok && cur.ParentID != "" && !seen[cur.ID] {
		if cur.ParentID == ancestorID {
			return true
		}
		seen[cur.ID] = true
		cur, ok = f.Get(cur.ParentID)
	}
	return false
}

func (f *Forest) filter(keep func(module.Placed) bool) []module.Placed {
	var out []module.Placed
	for _, m := range f.modules {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}
