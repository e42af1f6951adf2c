// Package format houses the low-level block header layout for the heap
// arena. The goal is to keep the byte-level encoding focused and
// allocation-free so higher-level packages can orchestrate the data in a
// more ergonomic form.
package format

const (
	// AlignUnit is the required alignment of block payloads and sizes.
	// Every usable region starts on a 16-byte boundary and every block
	// size is a multiple of 16.
	AlignUnit = 16

	// AlignUnitMask is the bitmask used for aligning to 16-byte boundaries
	// (AlignUnit - 1).
	AlignUnitMask = AlignUnit - 1

	// BlockHeaderSize is the number of bytes used by the header preceding
	// every block (free or in-use) within the arena. It is exactly one
	// alignment unit so a header plus an aligned payload keeps the next
	// header aligned.
	BlockHeaderSize = 16

	// MinBlockSize is the smallest footprint a block may occupy: its
	// header plus one alignment unit of usable space. A free block below
	// this size cannot exist, which is what makes it the split threshold.
	MinBlockSize = BlockHeaderSize + AlignUnit

	// MaxArenaSize is the maximum arena size. Block offsets must stay
	// int32-safe, so the arena cannot exceed 2GB-1.
	MaxArenaSize = 1<<31 - 1

	// InvalidOffset is the placeholder value stored in a Next field when
	// the block is the last in the chain.
	InvalidOffset = 0xFFFFFFFF
)

// Block header field offsets. Layout (little-endian):
//
//	0x00  uint32  Size   usable byte count, multiple of AlignUnit
//	0x04  uint32  Flags  bit0 = allocated
//	0x08  uint32  Next   arena offset of next header, InvalidOffset = none
//	0x0C  uint32  reserved, always zero
const (
	BlockSizeOffset  = 0x00
	BlockFlagsOffset = 0x04
	BlockNextOffset  = 0x08
	BlockSpareOffset = 0x0C
)

// Block flag bits.
const (
	// BlockFlagAllocated marks a block as in use. A zero Flags word is a
	// free block.
	BlockFlagAllocated = 0x00000001
)
