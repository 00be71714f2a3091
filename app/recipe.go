package app

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/artpar/mailcraft/domain/module"
)

// Recipe operations.
const (
	OpInsertRoot   = "insert_root"
	OpInsertNested = "insert_nested"
	OpMoveRoot     = "move_root"
	OpMoveNested   = "move_nested"
	OpRemove       = "remove"
	OpDuplicate    = "duplicate"
	OpSet          = "set"
	OpSelect       = "select"
)

// Recipe is a scripted sequence of builder operations.
type Recipe struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one recipe operation. Target and Parent accept either a ref bound
// by an earlier step or a literal module id.
type Step struct {
	Op     string `yaml:"op"`
	Ref    string `yaml:"ref,omitempty"`
	Kind   string `yaml:"kind,omitempty"`
	Target string `yaml:"target,omitempty"`
	Parent string `yaml:"parent,omitempty"`
	Bucket string `yaml:"bucket,omitempty"`
	At     *int   `yaml:"at,omitempty"`
	Field  string `yaml:"field,omitempty"`
	Value  string `yaml:"value,omitempty"`
}

// StepError reports the step a recipe stopped at.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ParseRecipe decodes and checks a YAML recipe. Unknown keys are rejected.
func ParseRecipe(data []byte) (Recipe, error) {
	var r Recipe
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return Recipe{}, fmt.Errorf("parse recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// Validate checks that every step names its required arguments.
func (r Recipe) Validate() error {
	var errs []error
	for i, s := range r.Steps {
		if err := s.validate(); err != nil {
			errs = append(errs, &StepError{Index: i, Op: s.Op, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (s Step) validate() error {
	need := func(pairs ...string) error {
		for i := 0; i < len(pairs); i += 2 {
			if pairs[i+1] == "" {
				return fmt.Errorf("missing %s", pairs[i])
			}
		}
		return nil
	}

	switch s.Op {
	case OpInsertRoot:
		return need("kind", s.Kind)
	case OpInsertNested:
		return need("kind", s.Kind, "parent", s.Parent)
	case OpMoveRoot:
		if s.At == nil {
			return errors.New("missing at")
		}
		return need("target", s.Target)
	case OpMoveNested:
		if s.At == nil {
			return errors.New("missing at")
		}
		return need("target", s.Target, "parent", s.Parent)
	case OpRemove, OpDuplicate, OpSelect:
		return need("target", s.Target)
	case OpSet:
		return need("target", s.Target, "field", s.Field)
	case "":
		return errors.New("missing op")
	}
	return fmt.Errorf("unknown op %q", s.Op)
}

// Apply runs the steps against b in order and stops at the first failure.
// It returns the refs bound to generated module ids.
func (r Recipe) Apply(b *Builder) (map[string]string, error) {
	refs := make(map[string]string)
	resolve := func(name string) string {
		if id, ok := refs[name]; ok {
			return id
		}
		return name
	}

	for i, s := range r.Steps {
		id, err := s.apply(b, resolve)
		if err != nil {
			return refs, &StepError{Index: i, Op: s.Op, Err: err}
		}
		if s.Ref != "" && id != "" {
			refs[s.Ref] = id
		}
	}
	return refs, nil
}

func (s Step) apply(b *Builder, resolve func(string) string) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}

	switch s.Op {
	case OpInsertRoot:
		return b.InsertRoot(s.Kind, s.At)
	case OpInsertNested:
		bucket, err := module.ParseBucket(s.Bucket)
		if err != nil {
			return "", err
		}
		return b.InsertNested(s.Kind, resolve(s.Parent), bucket)
	case OpMoveRoot:
		return "", b.MoveRoot(resolve(s.Target), *s.At)
	case OpMoveNested:
		bucket, err := module.ParseBucket(s.Bucket)
		if err != nil {
			return "", err
		}
		return "", b.MoveNested(resolve(s.Target), resolve(s.Parent), bucket, *s.At)
	case OpRemove:
		return "", b.Remove(resolve(s.Target))
	case OpDuplicate:
		return b.Duplicate(resolve(s.Target))
	case OpSet:
		return "", b.UpdateValue(resolve(s.Target), s.Field, s.Value)
	case OpSelect:
		return "", b.Select(resolve(s.Target))
	}
	return "", fmt.Errorf("unknown op %q", s.Op)
}
