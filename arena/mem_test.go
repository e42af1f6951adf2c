package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_MemArena_BrkQuery(t *testing.T) {
	a := NewMem()

	end, err := a.Brk(0)
	require.NoError(t, err)
	require.Equal(t, 0, end)
	require.Empty(t, a.Bytes())
}

func Test_MemArena_Grow(t *testing.T) {
	a := NewMem()

	start, err := a.Brk(64)
	require.NoError(t, err)
	require.Equal(t, 0, start, "first region starts at the old end")
	require.Len(t, a.Bytes(), 64)

	start, err = a.Brk(32)
	require.NoError(t, err)
	require.Equal(t, 64, start)
	require.Len(t, a.Bytes(), 96)

	end, err := a.Brk(0)
	require.NoError(t, err)
	require.Equal(t, 96, end)
}

func Test_MemArena_GrowZeroed(t *testing.T) {
	a := NewMem()
	_, err := a.Brk(128)
	require.NoError(t, err)

	for i, b := range a.Bytes() {
		require.Zero(t, b, "byte %d not zeroed", i)
	}
}

func Test_MemArena_LimitRefusesGrowth(t *testing.T) {
	a := NewMem(WithLimit(100))

	_, err := a.Brk(64)
	require.NoError(t, err)

	// Would exceed the limit: must fail without mutating state.
	_, err = a.Brk(64)
	require.ErrorIs(t, err, ErrArenaFull)

	end, err := a.Brk(0)
	require.NoError(t, err)
	require.Equal(t, 64, end, "failed grow must not change the end")

	// Still room for a smaller grow.
	_, err = a.Brk(36)
	require.NoError(t, err)
}

func Test_MemArena_NegativeDelta(t *testing.T) {
	a := NewMem()
	_, err := a.Brk(-1)
	require.ErrorIs(t, err, ErrNegativeDelta)
}

func Test_MemArena_Preallocate(t *testing.T) {
	a := NewMem(WithPreallocate(4096))
	require.Empty(t, a.Bytes())

	start, err := a.Brk(256)
	require.NoError(t, err)
	require.Equal(t, 0, start)
	require.Len(t, a.Bytes(), 256)
}

func Test_MemArena_OffsetsSurviveGrowth(t *testing.T) {
	a := NewMem()
	_, err := a.Brk(16)
	require.NoError(t, err)

	a.Bytes()[4] = 0xAB

	// Grow enough to force a reallocation of the backing slice.
	_, err = a.Brk(1 << 16)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), a.Bytes()[4], "contents must survive growth")
}
