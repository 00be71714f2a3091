package forest_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/artpar/mailcraft/domain/forest"
	"github.com/artpar/mailcraft/domain/module"
)

// seqIDs returns an id generator yielding prefix1, prefix2, ...
func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func root(id string) module.Placed {
	return module.Placed{ID: id, KindID: module.RootKindID, Values: map[string]string{"bg": ""}}
}

func sw(id, parent string, b module.Bucket) module.Placed {
	return module.Placed{ID: id, KindID: module.SwitchKindID, Values: map[string]string{"note": ""}, ParentID: parent, Bucket: b}
}

func leaf(id, parent string, b module.Bucket) module.Placed {
	return module.Placed{ID: id, KindID: "cta_button", Values: map[string]string{"title": id}, ParentID: parent, Bucket: b}
}

func ids(mods []module.Placed) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.ID)
	}
	return out
}

func mustForest(t *testing.T, mods ...module.Placed) *forest.Forest {
	t.Helper()
	f, err := forest.FromModules(mods)
	if err != nil {
		t.Fatalf("FromModules failed: %v", err)
	}
	return f
}

func TestInsertRoot_Positions(t *testing.T) {
	tests := []struct {
		name string
		at   int
		want []string
	}{
		{"front", 0, []string{"new", "r1", "r2"}},
		{"middle", 1, []string{"r1", "new", "r2"}},
		{"end", 2, []string{"r1", "r2", "new"}},
		{"clamped high", 99, []string{"r1", "r2", "new"}},
		{"clamped low", -5, []string{"new", "r1", "r2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustForest(t, root("r1"), leaf("a", "r1", ""), root("r2"))
			if err := f.InsertRoot(root("new"), tt.at); err != nil {
				t.Fatalf("InsertRoot failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(f.RootModules())); diff != "" {
				t.Errorf("roots mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInsertRoot_RejectsNonRootKind(t *testing.T) {
	f := forest.New()
	err := f.InsertRoot(leaf("x", "", ""), 0)
	if !errors.Is(err, module.ErrInvalidKindPlacement) {
		t.Fatalf("InsertRoot(leaf) error = %v, want ErrInvalidKindPlacement", err)
	}
	if f.Len() != 0 {
		t.Errorf("Len = %d, want 0", f.Len())
	}
}

func TestAppendNested_Validation(t *testing.T) {
	base := []module.Placed{root("r"), sw("s", "r", ""), leaf("l", "r", "")}

	tests := []struct {
		name    string
		mod     module.Placed
		wantErr error
	}{
		{"leaf under root", leaf("x", "r", ""), nil},
		{"leaf in switch bucket", leaf("x", "s", module.BucketCA), nil},
		{"nested switch", sw("x", "s", module.BucketUS), nil},
		{"switch under root", sw("x", "r", ""), nil},
		{"missing parent", leaf("x", "ghost", ""), module.ErrReferenceNotFound},
		{"root kind nested", root("x").WithParent("r", ""), module.ErrInvalidKindPlacement},
		{"no bucket under switch", leaf("x", "s", ""), module.ErrInvalidKindPlacement},
		{"bucket under root", leaf("x", "r", module.BucketUS), module.ErrInvalidKindPlacement},
		{"leaf as parent", leaf("x", "l", ""), module.ErrInvalidKindPlacement},
		{"no parent", leaf("x", "", ""), module.ErrInvalidKindPlacement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustForest(t, base...)
			err := f.AppendNested(tt.mod)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("AppendNested failed: %v", err)
				}
				if err := f.Validate(); err != nil {
					t.Errorf("Validate after append: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AppendNested error = %v, want %v", err, tt.wantErr)
			}
			if f.Len() != len(base) {
				t.Errorf("Len = %d, want unchanged %d", f.Len(), len(base))
			}
		})
	}
}

func TestAppendNested_DuplicateID(t *testing.T) {
	f := mustForest(t, root("r"), leaf("a", "r", ""))
	if err := f.AppendNested(leaf("a", "r", "")); err == nil {
		t.Fatal("expected error for reused id")
	}
}

func TestMoveNested_PreservesOtherOrder(t *testing.T) {
	f := mustForest(t,
		root("r1"), root("r2"),
		leaf("a", "r1", ""), leaf("b", "r1", ""), leaf("c", "r1", ""),
		leaf("x", "r2", ""), leaf("y", "r2", ""),
	)

	if err := f.MoveNested("b", "r2", module.BucketNone, 1); err != nil {
		t.Fatalf("MoveNested failed: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "c"}, ids(f.ChildrenOf("r1"))); diff != "" {
		t.Errorf("r1 children (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "b", "y"}, ids(f.ChildrenOf("r2"))); diff != "" {
		t.Errorf("r2 children (-want +got):\n%s", diff)
	}
}

func TestMoveNested_WithinSameParent(t *testing.T) {
	f := mustForest(t, root("r"), leaf("a", "r", ""), leaf("b", "r", ""), leaf("c", "r", ""))

	if err := f.MoveNested("a", "r", module.BucketNone, 99); err != nil {
		t.Fatalf("MoveNested failed: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "c", "a"}, ids(f.ChildrenOf("r"))); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
}

func TestMoveNested_IntoSwitchBucket(t *testing.T) {
	f := mustForest(t,
		root("r"), sw("s", "r", ""),
		leaf("us", "s", module.BucketUS), leaf("ca", "s", module.BucketCA),
		leaf("loose", "r", ""),
	)

	if err := f.MoveNested("loose", "s", module.BucketCA, 0); err != nil {
		t.Fatalf("MoveNested failed: %v", err)
	}

	got := ids(f.ChildrenOfBucket("s", module.BucketCA))
	if diff := cmp.Diff([]string{"loose", "ca"}, got); diff != "" {
		t.Errorf("CA bucket (-want +got):\n%s", diff)
	}
	if got := ids(f.ChildrenOfBucket("s", module.BucketUS)); len(got) != 1 || got[0] != "us" {
		t.Errorf("US bucket = %v, want [us]", got)
	}
}

func TestMoveNested_RejectsCycle(t *testing.T) {
	f := mustForest(t,
		root("r"), sw("outer", "r", ""),
		sw("inner", "outer", module.BucketUS),
		leaf("l", "inner", module.BucketCA),
	)
	before := f.Modules()

	tests := []struct {
		name   string
		id     string
		parent string
	}{
		{"into itself", "outer", "outer"},
		{"into child", "outer", "inner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.MoveNested(tt.id, tt.parent, module.BucketUS, 0)
			if !errors.Is(err, module.ErrCyclicMove) {
				t.Fatalf("MoveNested error = %v, want ErrCyclicMove", err)
			}
			if diff := cmp.Diff(before, f.Modules()); diff != "" {
				t.Errorf("forest changed after rejected move:\n%s", diff)
			}
		})
	}
}

func TestMoveNested_RejectsRoot(t *testing.T) {
	f := mustForest(t, root("r1"), root("r2"))
	err := f.MoveNested("r1", "r2", module.BucketNone, 0)
	if !errors.Is(err, module.ErrInvalidKindPlacement) {
		t.Fatalf("MoveNested(root) error = %v, want ErrInvalidKindPlacement", err)
	}
}

func TestMoveRoot(t *testing.T) {
	f := mustForest(t, root("r1"), leaf("a", "r1", ""), root("r2"), root("r3"))

	if err := f.MoveRoot("r3", 0); err != nil {
		t.Fatalf("MoveRoot failed: %v", err)
	}
	if diff := cmp.Diff([]string{"r3", "r1", "r2"}, ids(f.RootModules())); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
	if got := ids(f.ChildrenOf("r1")); len(got) != 1 || got[0] != "a" {
		t.Errorf("r1 children = %v, want [a]", got)
	}

	if err := f.MoveRoot("a", 0); !errors.Is(err, module.ErrReferenceNotFound) {
		t.Errorf("MoveRoot(non-root) error = %v, want ErrReferenceNotFound", err)
	}
}

func TestRemove_Cascades(t *testing.T) {
	f := mustForest(t,
		root("r"), sw("s", "r", ""),
		leaf("us", "s", module.BucketUS),
		sw("inner", "s", module.BucketDefault),
		leaf("deep", "inner", module.BucketAU),
		leaf("keep", "r", ""),
	)

	removed, err := f.Remove("s")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if diff := cmp.Diff([]string{"s", "us", "inner", "deep"}, removed); diff != "" {
		t.Errorf("removed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"r", "keep"}, ids(f.Modules())); diff != "" {
		t.Errorf("remaining (-want +got):\n%s", diff)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	if _, err := f.Remove("s"); !errors.Is(err, module.ErrReferenceNotFound) {
		t.Errorf("second Remove error = %v, want ErrReferenceNotFound", err)
	}
}

func TestDuplicate_IsomorphicSubtree(t *testing.T) {
	f := mustForest(t,
		root("r"), sw("s", "r", ""),
		leaf("us1", "s", module.BucketUS), leaf("us2", "s", module.BucketUS),
		leaf("ca", "s", module.BucketCA),
		leaf("after", "r", ""),
	)

	newID, err := f.Duplicate("s", seqIDs("n"))
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if newID != "n1" {
		t.Errorf("newID = %q, want n1", newID)
	}

	if diff := cmp.Diff([]string{"s", "after", "n1"}, ids(f.ChildrenOf("r"))); diff != "" {
		t.Errorf("root children (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"n2", "n3"}, ids(f.ChildrenOfBucket("n1", module.BucketUS))); diff != "" {
		t.Errorf("copied US bucket (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"n4"}, ids(f.ChildrenOfBucket("n1", module.BucketCA))); diff != "" {
		t.Errorf("copied CA bucket (-want +got):\n%s", diff)
	}

	orig, _ := f.Get("us2")
	cp, _ := f.Get("n3")
	if diff := cmp.Diff(orig.Values, cp.Values); diff != "" {
		t.Errorf("copied values differ:\n%s", diff)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDuplicate_ValuesAreIndependent(t *testing.T) {
	f := mustForest(t, root("r"), leaf("a", "r", ""))

	newID, err := f.Duplicate("a", seqIDs("c"))
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if err := f.SetValues(newID, map[string]string{"title": "changed"}); err != nil {
		t.Fatalf("SetValues failed: %v", err)
	}

	a, _ := f.Get("a")
	if a.Value("title") != "a" {
		t.Errorf("original title = %q, want a", a.Value("title"))
	}
}

func TestDuplicate_RejectsCollidingIDs(t *testing.T) {
	f := mustForest(t, root("r"), leaf("a", "r", ""))
	before := f.Modules()

	if _, err := f.Duplicate("a", func() string { return "r" }); err == nil {
		t.Fatal("expected error for colliding id")
	}
	if diff := cmp.Diff(before, f.Modules()); diff != "" {
		t.Errorf("forest changed:\n%s", diff)
	}
}

func TestDuplicate_Root(t *testing.T) {
	f := mustForest(t, root("r1"), leaf("a", "r1", ""), root("r2"))

	newID, err := f.Duplicate("r1", seqIDs("d"))
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if diff := cmp.Diff([]string{"r1", "r2", newID}, ids(f.RootModules())); diff != "" {
		t.Errorf("roots (-want +got):\n%s", diff)
	}
	if got := ids(f.ChildrenOf(newID)); len(got) != 1 || got[0] != "d2" {
		t.Errorf("copied children = %v, want [d2]", got)
	}
}

// TestRandomOperations_KeepInvariants applies random operation sequences and
// checks the forest stays valid after every step.
func TestRandomOperations_KeepInvariants(t *testing.T) {
	kinds := []string{"cta_button", "image_full_width", module.SwitchKindID}
	buckets := []module.Bucket{module.BucketUS, module.BucketCA, module.BucketAU, module.BucketDefault}

	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		f := forest.New()
		next := seqIDs("m")

		pick := func() string {
			mods := f.Modules()
			if len(mods) == 0 {
				return "missing"
			}
			return mods[rng.Intn(len(mods))].ID
		}
		bucketFor := func(parent string) module.Bucket {
			p, ok := f.Get(parent)
			if ok && p.Role() == module.RoleSwitch {
				return buckets[rng.Intn(len(buckets))]
			}
			return module.BucketNone
		}

		for step := 0; step < 200; step++ {
			switch rng.Intn(6) {
			case 0:
				_ = f.InsertRoot(root(next()), rng.Intn(4))
			case 1:
				parent := pick()
				m := module.Placed{ID: next(), KindID: kinds[rng.Intn(len(kinds))], Values: map[string]string{}, ParentID: parent, Bucket: bucketFor(parent)}
				_ = f.AppendNested(m)
			case 2:
				parent := pick()
				_ = f.MoveNested(pick(), parent, bucketFor(parent), rng.Intn(4))
			case 3:
				_ = f.MoveRoot(pick(), rng.Intn(4))
			case 4:
				if rng.Intn(3) == 0 {
					_, _ = f.Remove(pick())
				}
			case 5:
				_, _ = f.Duplicate(pick(), next)
			}

			if err := f.Validate(); err != nil {
				t.Fatalf("seed %d step %d: invariant broken: %v", seed, step, err)
			}
		}
	}
}

func forestFrom(mods []module.Placed) (*forest.Forest, error) {
	return forest.FromModules(mods)
}
