package heap

import "github.com/joshuapare/heapkit/internal/format"

// Ref is a handle to an allocated block: the arena offset of its usable
// region. The block's header sits immediately before it.
type Ref = uint32

// NilRef is the null/failure handle. No valid payload can sit at arena
// offset zero because a header always precedes it.
const NilRef Ref = 0

// BlockState is the allocation state of a block.
type BlockState uint8

const (
	// BlockFree marks a block available for reuse.
	BlockFree BlockState = iota

	// BlockAllocated marks a block handed out to a caller.
	BlockAllocated
)

func (s BlockState) String() string {
	switch s {
	case BlockFree:
		return "free"
	case BlockAllocated:
		return "allocated"
	default:
		return "invalid"
	}
}

// BlockInfo is a read-only snapshot of one block in chain order, as
// returned by Blocks. Next is format.InvalidOffset for the last block.
type BlockInfo struct {
	Off   uint32     // arena offset of the block header
	Size  uint32     // usable bytes (excludes the header)
	State BlockState // free or allocated
	Next  uint32     // arena offset of the next header
}

// End returns the arena offset just past the block's footprint.
func (b BlockInfo) End() uint32 {
	return b.Off + format.BlockHeaderSize + b.Size
}

// Stats holds allocator counters for instrumentation and testing.
type Stats struct {
	AllocCalls       int   // Total Alloc() calls
	AllocFastPath    int   // Allocations satisfied from the existing chain
	AllocSlowPath    int   // Allocations that grew the arena
	FreeCalls        int   // Total Free() calls
	IgnoredFrees     int   // Free() calls dropped by the validity checks
	GrowCalls        int   // Arena grow operations
	GrowBytes        int64 // Total bytes added to the arena
	BytesAllocated   int64 // Total usable bytes handed out
	BytesFreed       int64 // Total usable bytes returned
	SplitCount       int   // Block splits
	CoalesceForward  int   // Successor merges
	CoalesceBackward int   // Predecessor merges
}
