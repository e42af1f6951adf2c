package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Debug flag - set to true to enable verbose logging (compile-time toggle).
const debugAlloc = false

// Runtime debug flag for allocation logging - controlled by HEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("HEAP_LOG_ALLOC") != ""

// noBlock is the in-memory sentinel for "no block"; format.InvalidOffset is
// its on-arena encoding.
const noBlock int32 = -1

// Heap is a first-fit allocator owning a chain of blocks inside an Arena.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Heap struct {
	a  arena.Arena
	dt arena.Tracker // optional; notified about every header write

	// head is the header offset of the first block, noBlock while the
	// chain is empty. Once non-empty the chain never empties again.
	head int32

	// start is the arena offset where this heap's region begins,
	// recorded from Brk(0) on the first allocation (lazy init). Used by
	// Free to bounds-check incoming refs.
	start int32

	stats Stats
}

// Option configures a Heap.
type Option func(*Heap)

// WithTracker attaches a dirty-range tracker. The heap reports every
// header mutation to it so file-backed arenas can flush precisely.
func WithTracker(t arena.Tracker) Option {
	return func(h *Heap) { h.dt = t }
}

// New creates an allocator on top of a. The arena may already contain
// data; the heap claims everything from the current end onwards.
func New(a arena.Arena, opts ...Option) *Heap {
	h := &Heap{
		a:     a,
		head:  noBlock,
		start: noBlock,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Alloc returns a handle to at least n usable, 16-byte-aligned bytes plus
// the payload slice, or NilRef and a non-nil error when the arena cannot
// supply more memory. n may be zero; the block then holds one alignment
// unit.
//
// The payload slice is only valid until the next Alloc; arena growth may
// move the backing memory. Re-derive it from Bytes via the Ref if needed.
func (h *Heap) Alloc(n int) (Ref, []byte, error) {
	h.stats.AllocCalls++

	if n < 0 {
		return NilRef, nil, ErrNeedSize
	}
	if n > format.MaxArenaSize-format.MinBlockSize {
		return NilRef, nil, ErrTooLarge
	}
	need := int32(format.AlignUp(n))
	if need == 0 {
		need = format.AlignUnit
	}

	// First call records where the arena currently ends; everything the
	// heap creates lives past this marker.
	if h.start == noBlock {
		end, err := h.a.Brk(0)
		if err != nil {
			return NilRef, nil, fmt.Errorf("heap: query arena end: %w", err)
		}
		h.start = int32(end)
	}

	// First-fit: the first free block large enough wins, even when a
	// tighter fit exists later in the chain.
	data := h.a.Bytes()
	last := noBlock
	for off := h.head; off != noBlock; off = h.next(data, off) {
		if !h.allocated(data, off) && h.size(data, off) >= need {
			h.split(data, off, need)
			h.stats.AllocFastPath++
			size := h.size(data, off)
			h.stats.BytesAllocated += int64(size)
			ref := Ref(off) + format.BlockHeaderSize
			return ref, data[ref : int32(ref)+size], nil
		}
		last = off
	}

	// No fit: extend the arena and append a new block at the old end.
	total := format.BlockHeaderSize + int(need)
	growStart, err := h.a.Brk(total)
	if err != nil {
		if logAlloc {
			fmt.Fprintf(os.Stderr, "[HEAP] grow %d bytes failed: %v\n", total, err)
		}
		h.dumpState(need)
		return NilRef, nil, fmt.Errorf("%w: %v", ErrGrowFail, err)
	}
	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(total)
	h.stats.AllocSlowPath++

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] grow #%d: need=%d (+header) at offset %d\n",
			h.stats.GrowCalls, need, growStart)
	}

	data = h.a.Bytes()
	off := int32(growStart)
	h.writeHeader(data, off, need, format.BlockFlagAllocated, format.InvalidOffset)

	if last == noBlock {
		h.head = off
	} else {
		h.setNext(data, last, uint32(off))
	}

	h.stats.BytesAllocated += int64(need)
	ref := Ref(off) + format.BlockHeaderSize
	return ref, data[ref : int32(ref)+need], nil
}

// Free returns the block behind ref to the allocator and merges it with
// any adjacent free blocks. Invalid refs - NilRef, outside the heap's
// region, misaligned, or pointing at an already-free block - are silently
// ignored.
func (h *Heap) Free(ref Ref) {
	h.stats.FreeCalls++

	if ref == NilRef || h.start == noBlock {
		h.stats.IgnoredFrees++
		return
	}

	// Bounds: the ref must sit past the first header and before the
	// current arena end, queried at zero growth.
	end, err := h.a.Brk(0)
	if err != nil {
		h.stats.IgnoredFrees++
		return
	}
	if int(ref) < int(h.start)+format.BlockHeaderSize || int(ref) >= end {
		h.stats.IgnoredFrees++
		return
	}
	if ref%format.AlignUnit != 0 {
		h.stats.IgnoredFrees++
		return
	}

	data := h.a.Bytes()
	off := int32(ref) - format.BlockHeaderSize
	if !buf.Has(data, int(off), format.BlockHeaderSize) {
		h.stats.IgnoredFrees++
		return
	}

	// Double-free guard: an already-free block means the caller is
	// confused, not the chain.
	if !h.allocated(data, off) {
		h.stats.IgnoredFrees++
		return
	}

	h.stats.BytesFreed += int64(h.size(data, off))
	h.setFlags(data, off, 0)
	h.coalesce(data, off)
}

// split carves a free remainder out of the block at off when the leftover
// is big enough to stand as a block of its own, then marks the (possibly
// shrunk) block allocated. Blocks too small to split are handed out whole;
// the over-allocation is the price of never creating an undersized free
// block.
func (h *Heap) split(data []byte, off, need int32) {
	size := h.size(data, off)
	if size < need+format.MinBlockSize {
		h.setFlags(data, off, format.BlockFlagAllocated)
		return
	}

	h.stats.SplitCount++
	leftover := size - need - format.BlockHeaderSize
	newOff := off + format.BlockHeaderSize + need

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] split: block=%d need=%d leftover=%d\n",
			size, need, leftover)
	}

	h.writeHeader(data, newOff, leftover, 0, h.nextRaw(data, off))
	h.writeHeader(data, off, need, format.BlockFlagAllocated, uint32(newOff))
}

// coalesce merges the free block at off with its free neighbors and
// returns the offset of the surviving block. The forward pass absorbs the
// whole run of free successors; the backward pass finds the predecessor
// by rescanning from the head (the chain has no back links) and, when it
// is free, absorbs the block into it.
func (h *Heap) coalesce(data []byte, off int32) int32 {
	for {
		next := h.next(data, off)
		if next == noBlock || h.allocated(data, next) {
			break
		}
		h.stats.CoalesceForward++
		h.setSize(data, off, h.size(data, off)+format.BlockHeaderSize+h.size(data, next))
		h.setNext(data, off, h.nextRaw(data, next))
	}

	prev := noBlock
	for cur := h.head; cur != noBlock && cur != off; cur = h.next(data, cur) {
		prev = cur
	}
	if prev != noBlock && !h.allocated(data, prev) {
		h.stats.CoalesceBackward++
		h.setSize(data, prev, h.size(data, prev)+format.BlockHeaderSize+h.size(data, off))
		h.setNext(data, prev, h.nextRaw(data, off))
		return prev
	}
	return off
}

// Aligned reports whether ref lands on an alignment-unit boundary. Every
// ref returned by Alloc satisfies it.
func Aligned(ref Ref) bool {
	return ref%format.AlignUnit == 0
}

// Bytes exposes the arena contents, re-fetched from the arena. Use it to
// re-derive a payload slice from a Ref after the heap has grown.
func (h *Heap) Bytes() []byte { return h.a.Bytes() }

// Stats returns a snapshot of the allocator counters.
func (h *Heap) Stats() Stats { return h.stats }

// ============================================================================
// Header accessors
// ============================================================================

func (h *Heap) size(data []byte, off int32) int32 {
	return format.ReadI32(data, int(off)+format.BlockSizeOffset)
}

func (h *Heap) setSize(data []byte, off, size int32) {
	format.PutI32(data, int(off)+format.BlockSizeOffset, size)
	if h.dt != nil {
		h.dt.Add(int(off)+format.BlockSizeOffset, 4)
	}
}

func (h *Heap) allocated(data []byte, off int32) bool {
	flags := format.ReadU32(data, int(off)+format.BlockFlagsOffset)
	return flags&format.BlockFlagAllocated != 0
}

func (h *Heap) setFlags(data []byte, off int32, flags uint32) {
	format.PutU32(data, int(off)+format.BlockFlagsOffset, flags)
	if h.dt != nil {
		h.dt.Add(int(off)+format.BlockFlagsOffset, 4)
	}
}

// nextRaw returns the stored Next field, format.InvalidOffset included.
func (h *Heap) nextRaw(data []byte, off int32) uint32 {
	return format.ReadU32(data, int(off)+format.BlockNextOffset)
}

// next returns the successor header offset, or noBlock at the chain end.
func (h *Heap) next(data []byte, off int32) int32 {
	raw := h.nextRaw(data, off)
	if raw == format.InvalidOffset {
		return noBlock
	}
	return int32(raw)
}

func (h *Heap) setNext(data []byte, off int32, next uint32) {
	format.PutU32(data, int(off)+format.BlockNextOffset, next)
	if h.dt != nil {
		h.dt.Add(int(off)+format.BlockNextOffset, 4)
	}
}

func (h *Heap) writeHeader(data []byte, off, size int32, flags, next uint32) {
	format.PutI32(data, int(off)+format.BlockSizeOffset, size)
	format.PutU32(data, int(off)+format.BlockFlagsOffset, flags)
	format.PutU32(data, int(off)+format.BlockNextOffset, next)
	format.PutU32(data, int(off)+format.BlockSpareOffset, 0)
	if h.dt != nil {
		h.dt.Add(int(off), format.BlockHeaderSize)
	}
}

// ============================================================================
// Debug helpers
// ============================================================================

// debugLogf prints debug messages if debugAlloc is enabled.
func debugLogf(msg string, args ...any) {
	if debugAlloc {
		fmt.Fprintf(os.Stderr, "[HEAP] "+msg+"\n", args...)
	}
}

// dumpState dumps the chain for debugging failed allocations.
func (h *Heap) dumpState(need int32) {
	if !debugAlloc {
		return
	}
	fmt.Fprintf(os.Stderr, "\n=== HEAP STATE DUMP (need=%d) ===\n", need)
	fmt.Fprintf(os.Stderr, "start=%d head=%d\n", h.start, h.head)
	data := h.a.Bytes()
	for off := h.head; off != noBlock; off = h.next(data, off) {
		debugLogf("0x%08X: size=%d allocated=%v next=0x%08X",
			off, h.size(data, off), h.allocated(data, off), h.nextRaw(data, off))
	}
}
