package forest_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/artpar/mailcraft/domain/module"
)

func TestNavigation(t *testing.T) {
	f := mustForest(t,
		root("r1"),
		sw("s", "r1", ""),
		leaf("a", "r1", ""),
		leaf("us", "s", module.BucketUS),
		leaf("def", "s", module.BucketDefault),
		root("r2"),
		sw("inner", "s", module.BucketCA),
		leaf("deep", "inner", module.BucketAU),
	)

	tests := []struct {
		name string
		got  []module.Placed
		want []string
	}{
		{"roots", f.RootModules(), []string{"r1", "r2"}},
		{"children of r1", f.ChildrenOf("r1"), []string{"s", "a"}},
		{"children of switch", f.ChildrenOf("s"), []string{"us", "def", "inner"}},
		{"default bucket", f.ChildrenOfBucket("s", module.BucketDefault), []string{"def"}},
		{"none bucket differs from default", f.ChildrenOfBucket("s", module.BucketNone), []string{}},
		{"children of leaf", f.ChildrenOf("a"), []string{}},
		{"children of missing", f.ChildrenOf("ghost"), []string{}},
		{"descendants breadth-first", f.DescendantsOf("r1"), []string{"s", "a", "us", "def", "inner", "deep"}},
		{"siblings", f.SiblingsOf("a"), []string{"s", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(tt.got)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsDescendant(t *testing.T) {
	f := mustForest(t,
		root("r"), sw("s", "r", ""),
		leaf("l", "s", module.BucketUS),
		root("other"),
	)

	tests := []struct {
		ancestor, id string
		want         bool
	}{
		{"r", "l", true},
		{"s", "l", true},
		{"l", "s", false},
		{"other", "l", false},
		{"r", "r", false},
		{"r", "ghost", false},
	}
	for _, tt := range tests {
		if got := f.IsDescendant(tt.ancestor, tt.id); got != tt.want {
			t.Errorf("IsDescendant(%q, %q) = %v, want %v", tt.ancestor, tt.id, got, tt.want)
		}
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	f := mustForest(t, root("r"), leaf("a", "r", ""))

	m, _ := f.Get("a")
	m.Values["title"] = "mutated"

	again, _ := f.Get("a")
	if again.Value("title") != "a" {
		t.Errorf("title = %q, want a", again.Value("title"))
	}
}

func TestFromModules_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		mods []module.Placed
	}{
		{"dangling parent", []module.Placed{root("r"), leaf("a", "ghost", "")}},
		{"leaf at root", []module.Placed{leaf("a", "", "")}},
		{"duplicate ids", []module.Placed{root("r"), root("r")}},
		{"switch child without bucket", []module.Placed{root("r"), sw("s", "r", ""), leaf("a", "s", "")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := forestFrom(tt.mods); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
