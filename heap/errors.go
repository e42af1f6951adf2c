package heap

import "errors"

var (
	// ErrNeedSize indicates a negative allocation size.
	ErrNeedSize = errors.New("heap: size must be non-negative")

	// ErrTooLarge indicates a request that can never fit within the
	// maximum arena size.
	ErrTooLarge = errors.New("heap: request exceeds maximum arena size")

	// ErrGrowFail indicates that the arena could not supply more memory.
	ErrGrowFail = errors.New("heap: arena grow failed")
)
