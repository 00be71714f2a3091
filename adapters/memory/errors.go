// Package memory provides in-memory implementations of storage ports.
package memory

import "github.com/artpar/mailcraft/ports"

// ErrNotFound is returned when an entity is not found.
var ErrNotFound = ports.ErrNotFound
