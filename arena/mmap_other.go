//go:build !unix

package arena

import (
	"context"
	"errors"
)

// ErrUnsupported indicates that file-backed arenas are not available on
// this platform.
var ErrUnsupported = errors.New("arena: file-backed arenas require a unix platform")

// MapArena is unavailable on non-unix platforms; use MemArena instead.
type MapArena struct{}

// NewMap always fails on non-unix platforms.
func NewMap(path string) (*MapArena, error) {
	return nil, ErrUnsupported
}

func (a *MapArena) Bytes() []byte              { return nil }
func (a *MapArena) Brk(delta int) (int, error) { return 0, ErrUnsupported }
func (a *MapArena) Add(off, length int)        {}
func (a *MapArena) Flush(ctx context.Context) error {
	return ErrUnsupported
}
func (a *MapArena) Close() error { return nil }
