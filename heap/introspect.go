package heap

import (
	"fmt"
	"io"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Blocks returns a snapshot of every block in chain order. It never
// mutates the chain and is intended for diagnostics and tests, not for
// allocation decisions.
func (h *Heap) Blocks() []BlockInfo {
	data := h.a.Bytes()
	var out []BlockInfo
	for off := h.head; off != noBlock; off = h.next(data, off) {
		state := BlockFree
		if h.allocated(data, off) {
			state = BlockAllocated
		}
		out = append(out, BlockInfo{
			Off:   uint32(off),
			Size:  uint32(h.size(data, off)),
			State: state,
			Next:  h.nextRaw(data, off),
		})
	}
	return out
}

// Dump writes a human-readable listing of the chain to w, one block per
// line in chain order.
func (h *Heap) Dump(w io.Writer) {
	fmt.Fprintln(w, "blocks:")
	for _, b := range h.Blocks() {
		next := "none"
		if b.Next != format.InvalidOffset {
			next = fmt.Sprintf("0x%08X", b.Next)
		}
		fmt.Fprintf(w, "  0x%08X: size=%d state=%s next=%s\n",
			b.Off, b.Size, b.State, next)
	}
}

// Check walks the chain and verifies the structural invariants: strictly
// increasing offsets, contiguous footprints, aligned sizes of at least one
// alignment unit, everything inside the arena, and no two adjacent free
// blocks. It returns the first violation found, or nil.
func (h *Heap) Check() error {
	data := h.a.Bytes()
	end, err := h.a.Brk(0)
	if err != nil {
		return fmt.Errorf("heap: query arena end: %w", err)
	}

	prevEnd := int32(-1)
	prevFree := false
	seen := 0
	for off := h.head; off != noBlock; off = h.next(data, off) {
		if !buf.Has(data, int(off), format.BlockHeaderSize) {
			return fmt.Errorf("heap: header at 0x%X outside arena", off)
		}
		size := h.size(data, off)
		if size < format.AlignUnit {
			return fmt.Errorf("heap: block at 0x%X has size %d < %d",
				off, size, format.AlignUnit)
		}
		if size%format.AlignUnit != 0 {
			return fmt.Errorf("heap: block at 0x%X has unaligned size %d", off, size)
		}
		footEnd, err := buf.CheckRegion(len(data), int(off), format.BlockHeaderSize+int(size))
		if err != nil {
			return fmt.Errorf("heap: block at 0x%X: %w", off, err)
		}
		if footEnd > end {
			return fmt.Errorf("heap: block at 0x%X ends at %d past arena end %d",
				off, footEnd, end)
		}
		// Contiguity implies strict address ordering: each block must
		// start exactly where its predecessor's footprint ends.
		if prevEnd >= 0 && off != prevEnd {
			return fmt.Errorf("heap: gap or overlap before 0x%X (previous block ends at %d)",
				off, prevEnd)
		}
		free := !h.allocated(data, off)
		if free && prevFree {
			return fmt.Errorf("heap: adjacent free blocks at 0x%X", off)
		}
		prevEnd = off + format.BlockHeaderSize + size
		prevFree = free

		seen++
		if seen > len(data)/format.MinBlockSize+1 {
			return fmt.Errorf("heap: chain does not terminate")
		}
	}
	return nil
}
