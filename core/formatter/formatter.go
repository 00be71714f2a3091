// Package formatter renders CLI output (catalog listings, module trees,
// export history) as table, json or yaml.
package formatter

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// View describes the records being rendered.
type View struct {
	// Name labels the collection in structured output (e.g. "kinds").
	Name string

	// Columns is the default column order.
	Columns []string

	// Hidden lists fields that are dropped unless requested explicitly.
	Hidden []string
}

// Formatter converts structured data to a specific output format.
type Formatter interface {
	Name() string
	Description() string
	FormatList(w io.Writer, view View, records []map[string]any, opts FormatOptions) error
	FormatRecord(w io.Writer, view View, record map[string]any, opts FormatOptions) error
	FormatError(w io.Writer, err error) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// Columns overrides View.Columns when set.
	Columns []string

	// NoHeader disables header row for tabular formats.
	NoHeader bool

	// Compact minimizes whitespace (json only).
	Compact bool

	// MaxWidth truncates long values (0 = no limit).
	MaxWidth int
}

// Registry manages registered formatters.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
	defaultFmt string
}

// NewRegistry creates a registry holding the table, json and yaml formatters.
func NewRegistry() *Registry {
	r := &Registry{
		formatters: make(map[string]Formatter),
		defaultFmt: "table",
	}
	for _, f := range []Formatter{NewTableFormatter(), NewJSONFormatter(), NewYAMLFormatter()} {
		r.formatters[f.Name()] = f
	}
	return r
}

// Register adds a formatter to the registry.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}

	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// Lookup returns the named formatter, or the default when name is empty.
func (r *Registry) Lookup(name string) (Formatter, error) {
	if name == "" {
		return r.Default(), nil
	}
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, r.List())
	}
	return f, nil
}

// Default returns the default formatter.
func (r *Registry) Default() Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formatters[r.defaultFmt]
}

// SetDefault sets the default formatter.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[name]; !exists {
		return fmt.Errorf("formatter %q not registered", name)
	}

	r.defaultFmt = name
	return nil
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// Lookup resolves a formatter from the default registry.
func Lookup(name string) (Formatter, error) {
	return DefaultRegistry.Lookup(name)
}

// List returns all formatter names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}

// project keeps the requested columns, or every non-hidden field.
func project(view View, record map[string]any, columns []string) map[string]any {
	if record == nil {
		return nil
	}
	result := make(map[string]any)
	if len(columns) > 0 {
		for _, col := range columns {
			if val, ok := record[col]; ok {
				result[col] = val
			}
		}
		return result
	}

	hidden := make(map[string]bool, len(view.Hidden))
	for _, h := range view.Hidden {
		hidden[h] = true
	}
	for k, v := range record {
		if !hidden[k] {
			result[k] = v
		}
	}
	return result
}

func projectAll(view View, records []map[string]any, columns []string) []map[string]any {
	result := make([]map[string]any, len(records))
	for i, record := range records {
		result[i] = project(view, record, columns)
	}
	return result
}
