package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/format"
)

// Test_Alloc_Alignment verifies every returned ref lands on a 16-byte
// boundary, whatever the requested size.
func Test_Alloc_Alignment(t *testing.T) {
	h, _ := newTestHeap(t)

	for _, n := range []int{0, 1, 7, 15, 16, 17, 63, 64, 100, 4096} {
		ref, payload, err := h.Alloc(n)
		require.NoError(t, err, "Alloc(%d)", n)
		require.True(t, Aligned(ref), "Alloc(%d) returned misaligned ref 0x%X", n, ref)
		require.GreaterOrEqual(t, len(payload), n, "Alloc(%d) payload too small", n)
		requireChainOK(t, h)
	}
}

// Test_Alloc_ZeroYieldsMinimumBlock checks that a zero-byte request still
// produces a usable block of one alignment unit.
func Test_Alloc_ZeroYieldsMinimumBlock(t *testing.T) {
	h, _ := newTestHeap(t)

	ref, payload, err := h.Alloc(0)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	require.Len(t, payload, format.AlignUnit)
}

// Test_Alloc_NegativeSize rejects negative sizes without touching the chain.
func Test_Alloc_NegativeSize(t *testing.T) {
	h, _ := newTestHeap(t)

	ref, _, err := h.Alloc(-1)
	require.ErrorIs(t, err, ErrNeedSize)
	require.Equal(t, NilRef, ref)
	require.Empty(t, h.Blocks())
}

// Test_Alloc_Capacity writes and reads back every byte of the payload and
// checks the neighbors survive untouched.
func Test_Alloc_Capacity(t *testing.T) {
	h, _ := newTestHeap(t)

	a := mustAlloc(t, h, 64)
	b := mustAlloc(t, h, 64)
	c := mustAlloc(t, h, 64)

	data := h.Bytes()
	for i := 0; i < 64; i++ {
		data[int(b)+i] = byte(i)
	}
	// Fill neighbors with a sentinel pattern.
	for i := 0; i < 64; i++ {
		data[int(a)+i] = 0xAA
		data[int(c)+i] = 0xCC
	}
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(i), data[int(b)+i], "payload byte %d corrupted", i)
	}
	requireChainOK(t, h)
}

// Test_Alloc_FirstFit verifies the first sufficiently large free block
// wins even when a tighter fit exists later in the chain.
func Test_Alloc_FirstFit(t *testing.T) {
	h, _ := newTestHeap(t)

	big := mustAlloc(t, h, 256)
	mustAlloc(t, h, 16) // barrier so the neighbors never merge
	small := mustAlloc(t, h, 32)
	mustAlloc(t, h, 16) // barrier

	h.Free(big)
	h.Free(small)
	requireChainOK(t, h)

	// A 32-byte request fits both holes; first-fit must take the big one.
	got := mustAlloc(t, h, 32)
	require.Equal(t, big, got, "first-fit should reuse the earlier block")
	requireChainOK(t, h)
}

// Test_Alloc_ReusesFreedBlock checks the no-grow path: a freed block large
// enough for the next request is reused instead of growing the arena.
func Test_Alloc_ReusesFreedBlock(t *testing.T) {
	h, _ := newTestHeap(t)

	ref := mustAlloc(t, h, 128)
	mustAlloc(t, h, 16) // keep the chain non-trivial
	grows := h.Stats().GrowCalls

	h.Free(ref)
	got := mustAlloc(t, h, 128)
	require.Equal(t, ref, got)
	require.Equal(t, grows, h.Stats().GrowCalls, "reuse must not grow the arena")
}

// Test_Alloc_GrowFailure exercises the exhausted-arena path: Alloc must
// surface the failure and leave the chain untouched.
func Test_Alloc_GrowFailure(t *testing.T) {
	a := arena.NewMem(arena.WithLimit(256))
	h := New(a)

	mustAlloc(t, h, 128)
	before := h.Blocks()

	ref, payload, err := h.Alloc(1024)
	require.ErrorIs(t, err, ErrGrowFail)
	require.Equal(t, NilRef, ref)
	require.Nil(t, payload)
	require.Equal(t, before, h.Blocks(), "failed alloc must not mutate the chain")
	requireChainOK(t, h)
}

// Test_Alloc_TooLarge rejects requests that can never fit.
func Test_Alloc_TooLarge(t *testing.T) {
	h, _ := newTestHeap(t)

	_, _, err := h.Alloc(format.MaxArenaSize)
	require.ErrorIs(t, err, ErrTooLarge)
}

// Test_Alloc_NoOverlap allocates a batch of blocks and verifies all usable
// regions are pairwise disjoint and clear of every header.
func Test_Alloc_NoOverlap(t *testing.T) {
	h, _ := newTestHeap(t)

	refs := make([]Ref, 0, 16)
	for i := 0; i < 16; i++ {
		refs = append(refs, mustAlloc(t, h, 16+i*24))
	}

	blocks := h.Blocks()
	require.Len(t, blocks, 16)
	for i := 1; i < len(blocks); i++ {
		require.Equal(t, blocks[i-1].End(), blocks[i].Off,
			"regions must be contiguous, not overlapping")
	}
	for i, b := range blocks {
		require.Equal(t, refs[i], b.Off+format.BlockHeaderSize)
	}
	requireChainOK(t, h)
}

// Test_Alloc_Conservation: total arena bytes only grow, and only via
// allocation-triggered growth.
func Test_Alloc_Conservation(t *testing.T) {
	h, _ := newTestHeap(t)

	a := mustAlloc(t, h, 64)
	afterAllocs := totalBytes(h)
	require.Equal(t, int(h.Stats().GrowBytes), afterAllocs)

	b := mustAlloc(t, h, 32)
	require.Greater(t, totalBytes(h), afterAllocs)
	grown := totalBytes(h)

	h.Free(a)
	h.Free(b)
	require.Equal(t, grown, totalBytes(h), "free must not change total arena bytes")
	requireChainOK(t, h)
}

// Test_Heap_LazyStartMarker: a heap on a pre-populated arena claims only
// the region past the existing data.
func Test_Heap_LazyStartMarker(t *testing.T) {
	a := arena.NewMem()
	_, err := a.Brk(100) // pre-existing foreign data
	require.NoError(t, err)

	h := New(a)
	ref := mustAlloc(t, h, 16)
	require.Equal(t, Ref(100+format.BlockHeaderSize), ref)
	requireChainOK(t, h)
}

func Test_Dump(t *testing.T) {
	h, _ := newTestHeap(t)
	ref := mustAlloc(t, h, 32)
	mustAlloc(t, h, 16)
	h.Free(ref)

	var buf bytes.Buffer
	h.Dump(&buf)
	out := buf.String()
	require.Contains(t, out, "blocks:")
	require.Contains(t, out, "state=free")
	require.Contains(t, out, "state=allocated")
	require.Contains(t, out, "next=none")
}
