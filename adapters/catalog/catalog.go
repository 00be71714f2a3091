// Package catalog provides the static module catalog: kinds, their fields,
// alias rules and markup renderers.
package catalog

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/artpar/mailcraft/domain/module"
	"github.com/artpar/mailcraft/ports"
)

// Kind ids.
const (
	KindTableWrapper    = module.RootKindID
	KindImageFullWidth  = "image_full_width"
	KindImageGrid       = "image_grid_1x2"
	KindImageGridCTA    = "image_grid_1x2_cta"
	KindCTAButton       = "cta_button"
	KindAMPscriptBlock  = "ampscript_block"
	KindCountrySwitcher = module.SwitchKindID
)

// Options configures the catalog.
type Options struct {
	// ImageBase is the CDN base for relative image paths.
	ImageBase string
}

// Catalog is an ordered, immutable set of module kinds.
type Catalog struct {
	kinds  []module.Kind
	byID   map[string]int
	images ImageResolver
}

// New builds the catalog.
func New(opts Options) (*Catalog, error) {
	c := &Catalog{images: NewImageResolver(opts.ImageBase)}

	funcs := template.FuncMap{"img": c.images.Resolve}
	for _, def := range definitions {
		kind := module.Kind{
			ID:      def.id,
			Label:   def.label,
			Fields:  def.fields,
			Aliases: def.aliases,
		}

		switch {
		case def.raw != "":
			field := def.raw
			kind.Render = func(v map[string]string) string { return v[field] }
		case def.markup != "":
			tmpl, err := template.New(def.id).Funcs(funcs).Option("missingkey=zero").Parse(def.markup)
			if err != nil {
				return nil, fmt.Errorf("parse %s template: %w", def.id, err)
			}
			kind.Render = renderer(tmpl)
		case kind.Role() == module.RoleSwitch:
			kind.Render = func(map[string]string) string { return "" }
		}

		c.kinds = append(c.kinds, kind)
	}

	c.byID = make(map[string]int, len(c.kinds))
	for i, k := range c.kinds {
		if _, dup := c.byID[k.ID]; dup {
			return nil, fmt.Errorf("duplicate kind %q", k.ID)
		}
		c.byID[k.ID] = i
	}
	return c, nil
}

// Kind returns the kind with the id.
func (c *Catalog) Kind(id string) (module.Kind, bool) {
	i, ok := c.byID[id]
	if !ok {
		return module.Kind{}, false
	}
	return c.kinds[i], true
}

// All returns every kind in palette order.
func (c *Catalog) All() []module.Kind {
	out := make([]module.Kind, len(c.kinds))
	copy(out, c.kinds)
	return out
}

// Images returns the image resolver used by the renderers.
func (c *Catalog) Images() ImageResolver {
	return c.images
}

func renderer(tmpl *template.Template) module.RenderFunc {
	return func(values map[string]string) string {
		if values == nil {
			values = map[string]string{}
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, values); err != nil {
			return ""
		}
		return b.String()
	}
}

// Ensure interface compliance.
var _ ports.Catalog = (*Catalog)(nil)
