// Package module provides the placed-module value types and kind classification.
// This package has NO dependencies on I/O or external packages.
package module

// Distinguished kind identifiers.
const (
	// RootKindID is the only kind allowed at forest root level (a table section).
	RootKindID = "table_wrapper"

	// SwitchKindID is the bucketed container compiled to a country switch.
	SwitchKindID = "ampscript_country"
)

// Role classifies a kind by where it may appear in the forest.
type Role int

const (
	RoleLeaf Role = iota
	RoleRoot
	RoleSwitch
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "root"
	case RoleSwitch:
		return "switch"
	default:
		return "leaf"
	}
}

// IsContainer returns true if modules of this role may have children.
func (r Role) IsContainer() bool {
	return r == RoleRoot || r == RoleSwitch
}

// RoleOf returns the role of a kind id.
func RoleOf(kindID string) Role {
	switch kindID {
	case RootKindID:
		return RoleRoot
	case SwitchKindID:
		return RoleSwitch
	}
	return RoleLeaf
}

// InputKind is the editor input used for a field.
type InputKind string

const (
	InputText     InputKind = "text"
	InputTextarea InputKind = "textarea"
	InputCode     InputKind = "code"
	InputNote     InputKind = "note"
	InputColor    InputKind = "color"
)

// Field describes one editable value of a kind.
type Field struct {
	ID    string
	Label string
	Input InputKind
}

// RenderFunc renders a values map to a markup fragment.
type RenderFunc func(values map[string]string) string

// Kind describes a module kind (immutable, supplied by the catalog).
type Kind struct {
	ID     string
	Label  string
	Fields []Field
	Render RenderFunc

	// Aliases maps a title-like field to the alias fields derived from it.
	Aliases map[string][]string
}

// Role returns the role of the kind.
func (k Kind) Role() Role {
	return RoleOf(k.ID)
}

// HasField returns true if the kind declares the field.
func (k Kind) HasField(id string) bool {
	for _, f := range k.Fields {
		if f.ID == id {
			return true
		}
	}
	return false
}

// EmptyValues returns a values map with every declared field set to "".
func (k Kind) EmptyValues() map[string]string {
	values := make(map[string]string, len(k.Fields))
	for _, f := range k.Fields {
		values[f.ID] = ""
	}
	return values
}

// Placed is a module instance placed in the forest.
type Placed struct {
	ID       string
	KindID   string
	Values   map[string]string
	ParentID string // empty at root level
	Bucket   Bucket // set only for children of a switch
}

// IsRoot returns true if the module has no parent.
func (p Placed) IsRoot() bool {
	return p.ParentID == ""
}

// Role returns the role of the module's kind.
func (p Placed) Role() Role {
	return RoleOf(p.KindID)
}

// Value returns a field value ("" when unset).
func (p Placed) Value(field string) string {
	return p.Values[field]
}

// Clone returns a deep copy of the module.
func (p Placed) Clone() Placed {
	values := make(map[string]string, len(p.Values))
	for k, v := range p.Values {
		values[k] = v
	}
	p.Values = values
	return p
}

// WithID returns a copy of the module with the ID set.
func (p Placed) WithID(id string) Placed {
	p.ID = id
	return p
}

// WithParent returns a copy of the module attached to parent and bucket.
func (p Placed) WithParent(parentID string, bucket Bucket) Placed {
	p.ParentID = parentID
	p.Bucket = bucket
	return p
}
