//go:build unix

package arena

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
)

// MapArena is a file-backed Arena mapped into memory. Growth extends the
// file with ftruncate and remaps it at the new size; the allocator's
// offsets survive the remap unchanged.
//
// Pair it with a RangeTracker so Flush only syncs the pages the allocator
// actually touched.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type MapArena struct {
	f    *os.File
	data []byte
	size int
	tr   *RangeTracker
}

// NewMap creates (or truncates) the file at path and returns an empty
// file-backed arena. The file grows with the arena.
func NewMap(path string) (*MapArena, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("arena: open %s: %w", path, err)
	}
	return &MapArena{
		f:  f,
		tr: NewRangeTracker(),
	}, nil
}

// Bytes returns the current mapping. Empty until the first grow.
func (a *MapArena) Bytes() []byte { return a.data }

// Brk extends the file and mapping by delta bytes and returns the offset
// where the new region starts. Brk(0) returns the current end.
func (a *MapArena) Brk(delta int) (int, error) {
	if a.f == nil {
		return 0, ErrClosed
	}
	if delta < 0 {
		return 0, ErrNegativeDelta
	}
	if delta == 0 {
		return a.size, nil
	}

	newSize := a.size + delta
	if newSize > format.MaxArenaSize || newSize < 0 {
		return 0, ErrArenaFull
	}

	if err := unix.Ftruncate(int(a.f.Fd()), int64(newSize)); err != nil {
		return 0, fmt.Errorf("arena: ftruncate: %w", err)
	}

	// Remap at the new size. The old mapping must go first; offsets are
	// stable because the allocator never holds raw addresses.
	if a.data != nil {
		if err := unix.Munmap(a.data); err != nil {
			return 0, fmt.Errorf("arena: munmap: %w", err)
		}
		a.data = nil
	}
	data, err := unix.Mmap(int(a.f.Fd()), 0, newSize,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return 0, fmt.Errorf("arena: mmap: %w", err)
	}

	end := a.size
	a.data = data
	a.size = newSize
	return end, nil
}

// Add implements Tracker by recording the range for the next Flush.
func (a *MapArena) Add(off, length int) {
	a.tr.Add(off, length)
}

// Flush msyncs all dirty pages to the backing file and clears the tracked
// ranges. The context can cancel between ranges; cancelled flushes leave
// some ranges synced and others not.
func (a *MapArena) Flush(ctx context.Context) error {
	if a.f == nil {
		return ErrClosed
	}
	if len(a.data) == 0 {
		a.tr.Reset()
		return nil
	}
	for _, r := range a.tr.Coalesced() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := int(r.Off)
		end := int(r.Off + r.Len)
		if start >= len(a.data) {
			continue
		}
		if end > len(a.data) {
			end = len(a.data)
		}
		if err := unix.Msync(a.data[start:end], unix.MS_SYNC); err != nil {
			return fmt.Errorf("arena: msync: %w", err)
		}
	}
	a.tr.Reset()
	return nil
}

// Close unmaps the arena and closes the backing file. Double-close is a
// no-op.
func (a *MapArena) Close() error {
	if a.f == nil {
		return nil
	}
	var errMunmap error
	if a.data != nil {
		errMunmap = unix.Munmap(a.data)
		if errors.Is(errMunmap, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			errMunmap = nil
		}
		a.data = nil
	}
	errClose := a.f.Close()
	a.f = nil
	if errMunmap != nil {
		return errMunmap
	}
	return errClose
}

// Compile-time interface checks.
var (
	_ Arena   = (*MapArena)(nil)
	_ Tracker = (*MapArena)(nil)
)
