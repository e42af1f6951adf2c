package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
)

// newTestHeap creates a heap over a fresh in-memory arena.
func newTestHeap(t testing.TB, opts ...Option) (*Heap, *arena.MemArena) {
	t.Helper()
	a := arena.NewMem()
	return New(a, opts...), a
}

// mustAlloc allocates or fails the test.
func mustAlloc(t testing.TB, h *Heap, n int) Ref {
	t.Helper()
	ref, _, err := h.Alloc(n)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	return ref
}

// requireChainOK validates the structural invariants after a step.
func requireChainOK(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check())
}

// freeBlocks returns the free blocks in chain order.
func freeBlocks(h *Heap) []BlockInfo {
	var out []BlockInfo
	for _, b := range h.Blocks() {
		if b.State == BlockFree {
			out = append(out, b)
		}
	}
	return out
}

// totalBytes sums header plus usable size over the whole chain.
func totalBytes(h *Heap) int {
	total := 0
	for _, b := range h.Blocks() {
		total += int(b.End() - b.Off)
	}
	return total
}
