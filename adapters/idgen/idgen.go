// Package idgen provides ID generation implementations.
package idgen

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/artpar/mailcraft/ports"
	"github.com/google/uuid"
)

// Generator modes.
const (
	ModeSequential = "sequential"
	ModeUUID       = "uuid"
)

// DefaultPrefix is prepended to generated module ids.
const DefaultPrefix = "mod_"

// New returns a generator for mode. An empty mode selects sequential ids.
func New(mode, prefix string) (ports.IDGenerator, error) {
	switch mode {
	case "", ModeSequential:
		return NewSequential(prefix), nil
	case ModeUUID:
		return UUID{Prefix: prefix}, nil
	}
	return nil, fmt.Errorf("unknown id mode %q", mode)
}

// UUID generates prefixed UUIDs.
type UUID struct {
	Prefix string
}

// New generates a new prefixed UUID v4.
func (u UUID) New() string {
	return u.Prefix + uuid.New().String()
}

// Ensure interface compliance.
var _ ports.IDGenerator = UUID{}

// Sequential generates prefix1, prefix2, ... from a per-instance counter.
// Two generators never share state.
type Sequential struct {
	prefix  string
	counter uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential ID.
func (s *Sequential) New() string {
	n := atomic.AddUint64(&s.counter, 1)
	return s.prefix + strconv.FormatUint(n, 10)
}

// Reset resets the counter (for testing).
func (s *Sequential) Reset() {
	atomic.StoreUint64(&s.counter, 0)
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Sequential)(nil)
