// Package heap implements a first-fit block allocator over a growable byte
// arena.
//
// # Overview
//
// The allocator manages a singly linked, address-ordered chain of blocks
// laid out directly inside the arena. Each block is a 16-byte header
// followed by its usable region; there are no side tables. Allocation
// walks the chain for the first free block large enough, splitting it when
// the remainder can stand on its own, and grows the arena when nothing
// fits. Freeing marks the block free and merges it with any adjacent free
// neighbors so no two adjacent free blocks ever persist.
//
// # Usage Example
//
//	h := heap.New(arena.NewMem())
//
//	ref, buf, err := h.Alloc(64)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later, return the block
//	h.Free(ref)
//
// # References
//
// Alloc returns a Ref: the arena offset of the usable region. Refs are
// stable across arena growth because the allocator never holds raw
// addresses. NilRef (zero) is the failure value.
//
// # Free Semantics
//
// Free is deliberately tolerant: nil, out-of-range, misaligned, and
// already-free refs are silently ignored. This favors robustness over
// diagnostics and therefore masks genuine double-free bugs in callers;
// the IgnoredFrees counter in Stats exists so suspicious workloads can be
// spotted.
//
// # Alignment
//
// All usable regions start on 16-byte boundaries and all block sizes are
// multiples of 16. Requests are rounded up; a zero-byte request yields one
// alignment unit.
//
// # Thread Safety
//
// Heap instances are not thread-safe. Callers must serialize access
// externally.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/arena: growth primitive and dirty tracking
//   - github.com/joshuapare/heapkit/internal/format: header layout constants
package heap
