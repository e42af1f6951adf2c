package arena

import "github.com/joshuapare/heapkit/internal/format"

// MemArena is a slice-backed Arena. It is the default backing store for
// tests and short-lived allocators.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type MemArena struct {
	data  []byte
	limit int
}

// MemOption configures a MemArena.
type MemOption func(*MemArena)

// WithLimit caps the arena at n bytes. Brk calls that would exceed the
// limit fail with ErrArenaFull without mutating the arena. Zero means no
// limit beyond MaxArenaSize.
func WithLimit(n int) MemOption {
	return func(a *MemArena) { a.limit = n }
}

// WithPreallocate reserves capacity for n bytes up front so early grows do
// not reallocate. It does not change the arena's logical size.
func WithPreallocate(n int) MemOption {
	return func(a *MemArena) {
		if n > 0 && n > cap(a.data) {
			a.data = append(make([]byte, 0, n), a.data...)
		}
	}
}

// NewMem creates an empty in-memory arena.
func NewMem(opts ...MemOption) *MemArena {
	a := &MemArena{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bytes returns the current arena contents.
func (a *MemArena) Bytes() []byte { return a.data }

// Brk extends the arena by delta bytes and returns the offset where the
// new region starts. Brk(0) returns the current end without growing.
func (a *MemArena) Brk(delta int) (int, error) {
	if delta < 0 {
		return 0, ErrNegativeDelta
	}
	end := len(a.data)
	if delta == 0 {
		return end, nil
	}
	newSize := end + delta
	if newSize > format.MaxArenaSize || newSize < 0 {
		return 0, ErrArenaFull
	}
	if a.limit > 0 && newSize > a.limit {
		return 0, ErrArenaFull
	}
	a.data = append(a.data, make([]byte, delta)...)
	return end, nil
}

// Compile-time interface check.
var _ Arena = (*MemArena)(nil)
