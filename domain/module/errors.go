package module

import "errors"

// Placement errors. Operations returning one of these leave the forest unchanged.
var (
	ErrInvalidKindPlacement = errors.New("invalid kind placement")
	ErrReferenceNotFound    = errors.New("module not found")
	ErrCyclicMove           = errors.New("cyclic move")
	ErrUnknownKind          = errors.New("unknown module kind")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidBucket        = errors.New("invalid bucket")
)
