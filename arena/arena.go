// Package arena provides the growable byte range backing the heap
// allocator, along with dirty-range tracking for memory-mapped arenas.
//
// An Arena is a single contiguous address range that only ever grows. The
// allocator addresses it by integer offset; the backing slice may move when
// the arena grows, but offsets never do.
package arena

import "errors"

var (
	// ErrArenaFull indicates that growing the arena would exceed its
	// configured limit or the maximum arena size.
	ErrArenaFull = errors.New("arena: cannot grow further")

	// ErrNegativeDelta indicates a Brk call with a negative delta. The
	// arena is growth-only.
	ErrNegativeDelta = errors.New("arena: negative delta")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("arena: closed")
)

// Arena is the growth primitive consumed by the heap allocator.
//
// Brk with a positive delta extends the arena by delta bytes and returns
// the offset where the new region starts (the previous end). Brk(0) is a
// pure query returning the current end. The returned range is zeroed.
// Offsets handed out before a grow remain valid afterwards.
type Arena interface {
	// Bytes returns the current arena contents. The slice must be
	// re-fetched after every Brk call; growth may reallocate it.
	Bytes() []byte

	// Brk extends the arena by delta bytes (delta > 0) or queries the
	// current end (delta == 0). Negative deltas are rejected.
	Brk(delta int) (int, error)
}

// Tracker is the minimal interface for recording modified byte ranges.
// The allocator notifies a Tracker about every header it touches so a
// file-backed arena can flush only the pages that changed.
type Tracker interface {
	// Add marks a byte range as dirty. off is the offset from the start
	// of the arena, length is the number of bytes.
	Add(off, length int)
}
