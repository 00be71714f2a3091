// Package export compiles a module forest into email markup with AMPscript
// country switches. Output is a one-way projection; nothing parses it back.
// This package has NO dependencies on I/O or external packages.
package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/mailcraft/domain/module"
)

// ElsePolicy decides what the ELSE branch of a switch holds when its
// Default bucket is empty.
type ElsePolicy string

const (
	// ElseOmit emits no ELSE branch.
	ElseOmit ElsePolicy = "omit"

	// ElsePrimary reuses the US bucket's content as ELSE. A switch with no US
	// content gets no ELSE branch.
	ElsePrimary ElsePolicy = "primary"
)

// ParseElsePolicy parses a policy name. Empty parses to ElseOmit.
func ParseElsePolicy(s string) (ElsePolicy, error) {
	switch ElsePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ElseOmit:
		return ElseOmit, nil
	case ElsePrimary:
		return ElsePrimary, nil
	}
	return "", fmt.Errorf("unknown else policy %q", s)
}

// Defaults.
const (
	DefaultFallbackColor   = "#FFFFFF"
	DefaultSeparator       = "\n"
	DefaultCountryVariable = "@Country"
)

// Options configures the compiler.
type Options struct {
	ElsePolicy      ElsePolicy
	FallbackColor   string
	Separator       string
	CountryVariable string
}

// DefaultOptions returns the standard compiler options.
func DefaultOptions() Options {
	return Options{
		ElsePolicy:      ElseOmit,
		FallbackColor:   DefaultFallbackColor,
		Separator:       DefaultSeparator,
		CountryVariable: DefaultCountryVariable,
	}
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ElsePolicy == "" {
		o.ElsePolicy = d.ElsePolicy
	}
	if c, ok := NormalizeColor(o.FallbackColor); ok {
		o.FallbackColor = c
	} else {
		o.FallbackColor = d.FallbackColor
	}
	if o.Separator == "" {
		o.Separator = d.Separator
	}
	if o.CountryVariable == "" {
		o.CountryVariable = d.CountryVariable
	}
	return o
}

// Source is the read view of a forest the compiler walks.
type Source interface {
	RootModules() []module.Placed
	ChildrenOf(parentID string) []module.Placed
	ChildrenOfBucket(parentID string, bucket module.Bucket) []module.Placed
}

// Kinds resolves kind ids to catalog kinds.
type Kinds interface {
	Kind(id string) (module.Kind, bool)
}

// Result is the output of one compilation.
type Result struct {
	HTML string

	// MalformedColors lists roots whose background was replaced by the fallback.
	MalformedColors []string

	// Skipped lists modules left out of the output (unknown or misplaced kinds).
	Skipped []string
}

// Compiler turns a forest into markup.
type Compiler struct {
	opts Options
}

// NewCompiler creates a compiler. Unset options take their defaults.
func NewCompiler(opts Options) *Compiler {
	return &Compiler{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (c *Compiler) Options() Options {
	return c.opts
}

// Compile serializes every root in order. Missing kinds are skipped, never fatal.
func (c *Compiler) Compile(src Source, kinds Kinds) Result {
	run := &compilation{opts: c.opts, src: src, kinds: kinds}
	for _, root := range src.RootModules() {
		run.root(root)
	}
	return Result{
		HTML:            strings.Join(run.lines, c.opts.Separator),
		MalformedColors: run.malformed,
		Skipped:         run.skipped,
	}
}

// compilation holds the state of one Compile call.
type compilation struct {
	opts      Options
	src       Source
	kinds     Kinds
	lines     []string
	malformed []string
	skipped   []string
}

func (r *compilation) root(m module.Placed) {
	if m.Role() != module.RoleRoot {
		r.skipped = append(r.skipped, m.ID)
		return
	}

	bg, ok := NormalizeColor(m.Value("bg"))
	if !ok {
		if strings.TrimSpace(m.Value("bg")) != "" {
			r.malformed = append(r.malformed, m.ID)
		}
		bg = r.opts.FallbackColor
	}

	r.emit(tableOpen(bg))
	for _, child := range r.src.ChildrenOf(m.ID) {
		r.child(child)
	}
	r.emit(tableClose)
}

// child emits a nested module: a leaf render or a compiled switch.
func (r *compilation) child(m module.Placed) {
	switch m.Role() {
	case module.RoleSwitch:
		r.countrySwitch(m)
		return
	case module.RoleRoot:
		r.skipped = append(r.skipped, m.ID)
		return
	}

	kind, ok := r.kinds.Kind(m.KindID)
	if !ok || kind.Render == nil {
		r.skipped = append(r.skipped, m.ID)
		return
	}
	r.emit(kind.Render(m.Values))
}

type branch struct {
	bucket   module.Bucket
	children []module.Placed
}

func (r *compilation) countrySwitch(m module.Placed) {
	var countries []branch
	var fallback []module.Placed
	for _, b := range module.Buckets() {
		kids := r.src.ChildrenOfBucket(m.ID, b)
		if len(kids) == 0 {
			continue
		}
		if b == module.BucketDefault {
			fallback = kids
			continue
		}
		countries = append(countries, branch{bucket: b, children: kids})
	}

	if len(countries) == 0 {
		// Default-only content has nothing to branch on.
		for _, k := range fallback {
			r.child(k)
		}
		return
	}

	if len(fallback) == 0 && r.opts.ElsePolicy == ElsePrimary {
		for _, br := range countries {
			if br.bucket == module.BucketUS {
				fallback = br.children
			}
		}
	}

	for i, br := range countries {
		if i == 0 {
			r.emit(fmt.Sprintf(`%%%%[ IF %s == "%s" THEN ]%%%%`, r.opts.CountryVariable, br.bucket))
		} else {
			r.emit(fmt.Sprintf(`%%%%[ ELSEIF %s == "%s" THEN ]%%%%`, r.opts.CountryVariable, br.bucket))
		}
		for _, k := range br.children {
			r.child(k)
		}
	}
	if len(fallback) > 0 {
		r.emit("%%[ ELSE ]%%")
		for _, k := range fallback {
			r.child(k)
		}
	}
	r.emit("%%[ ENDIF ]%%")
}

func (r *compilation) emit(s string) {
	r.lines = append(r.lines, s)
}

const tableClose = "</table>"

func tableOpen(bg string) string {
	return `<table role="presentation" width="100%" border="0" cellpadding="0" cellspacing="0" ` +
		`style="border-collapse:collapse;border:none;background:` + bg + `;">`
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// NormalizeColor validates a 6-hex-digit color with optional leading "#" and
// returns it upper-cased with the "#". ok is false for anything else.
func NormalizeColor(s string) (string, bool) {
	m := hexColor.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return "#" + strings.ToUpper(m[1]), true
}
