package alias_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/artpar/mailcraft/domain/alias"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Summer Sale", "summer_sale_alias"},
		{"  Shop Now  ", "shop_now_alias"},
		{"Salt & Pepper", "salt_and_pepper_alias"},
		{`Mom's "Best" Deal`, "moms_best_deal_alias"},
		{"Tabs\tand\n\nnewlines", "tabs_and_newlines_alias"},
		{"50% OFF!", "50_off_alias"},
		{"already_snake", "already_snake_alias"},
		{"", "link_alias"},
		{"!!!", "link_alias"},
		{"Café", "caf_alias"},
		{"Summer\u00a0Sale", "summer_sale_alias"},
		{"Summer\vSale", "summer_sale_alias"},
		{"Summer\u2003\u2003Sale", "summer_sale_alias"},
		{"\ufeffSummer Sale", "summer_sale_alias"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := alias.Build(tt.title); got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestIsDerived(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"summer_sale_alias", true},
		{"custom_tag", false},
		{"alias_custom", false},
	}
	for _, tt := range tests {
		if got := alias.IsDerived(tt.value); got != tt.want {
			t.Errorf("IsDerived(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDerive_DoesNotClobberCustomAlias(t *testing.T) {
	rules := alias.Rules{"title": {"alias"}}
	values := map[string]string{"title": "", "alias": ""}

	got := alias.Derive(rules, "title", "Summer Sale", values)
	if diff := cmp.Diff(map[string]string{"alias": "summer_sale_alias"}, got); diff != "" {
		t.Fatalf("first derive (-want +got):\n%s", diff)
	}
	values["alias"] = got["alias"]

	// The user replaces the alias by hand.
	values["alias"] = "custom_tag"

	got = alias.Derive(rules, "title", "Winter Sale", values)
	if len(got) != 0 {
		t.Errorf("derive over custom alias = %v, want no updates", got)
	}
}

func TestDerive_MultipleTargets(t *testing.T) {
	rules := alias.Rules{
		"image1_title": {"image1_alias"},
		"image2_title": {"image2_alias"},
	}
	values := map[string]string{"image1_alias": "old_alias", "image2_alias": "keep"}

	got := alias.Derive(rules, "image1_title", "Hero", values)
	if diff := cmp.Diff(map[string]string{"image1_alias": "hero_alias"}, got); diff != "" {
		t.Errorf("derive (-want +got):\n%s", diff)
	}
	if values["image1_alias"] != "old_alias" {
		t.Error("Derive modified its input")
	}
}

func TestDerive_UnmappedField(t *testing.T) {
	rules := alias.Rules{"title": {"alias"}}
	if got := alias.Derive(rules, "url", "https://x", nil); got != nil {
		t.Errorf("Derive(unmapped) = %v, want nil", got)
	}
}
