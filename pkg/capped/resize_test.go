package capped

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeGrowPreservesLiveBlocks(t *testing.T) {
	// S4: grow keeps every live id readable
	store := newTestStore(t, 2)

	a, err := store.Write(StringSource("alpha"))
	require.NoError(t, err)
	b, err := store.Write(StringSource("bravo"))
	require.NoError(t, err)
	c, err := store.Write(StringSource("charlie"))
	require.NoError(t, err)

	require.NoError(t, store.Resize(16))

	assert.Equal(t, "alpha", readBlock(t, store, a, "X"))
	assert.Equal(t, "bravo", readBlock(t, store, b, "X"))
	assert.Equal(t, "charlie", readBlock(t, store, c, "X"))
}

func TestResizeGrowAfterWrap(t *testing.T) {
	store := newTestStore(t, 1)
	rng := rand.New(rand.NewSource(17))

	payloads := make(map[int64]string)
	for i := 0; i < 30; i++ {
		p := incompressible(rng, 80)
		id, err := store.Write(StringSource(p))
		require.NoError(t, err)
		payloads[id] = p
	}
	smallestBefore := store.SmallestLiveID()
	require.Greater(t, smallestBefore, int64(0))

	require.NoError(t, store.Resize(64))

	// every id that was live at resize time reads back its bytes
	for id, p := range payloads {
		if id < smallestBefore {
			continue
		}
		assert.Equal(t, p, readBlock(t, store, id, "X"))
	}
}

func TestResizeShrinkExpiresOldest(t *testing.T) {
	// S5: shrink drops the oldest bytes; ids and currentLength survive
	store := newTestStore(t, 8)
	rng := rand.New(rand.NewSource(19))

	payloads := make(map[int64]string)
	var last int64
	for i := 0; i < 10; i++ {
		p := incompressible(rng, 700)
		id, err := store.Write(StringSource(p))
		require.NoError(t, err)
		payloads[id] = p
		last = id
	}
	smallestBefore := store.SmallestLiveID()

	require.NoError(t, store.Resize(1))

	assert.Greater(t, store.SmallestLiveID(), smallestBefore)
	assert.True(t, store.IsExpired(0))
	assert.Equal(t, "X", readBlock(t, store, 0, "X"))

	// the newest block still fits a 1 KiB window
	assert.False(t, store.IsExpired(last))
	assert.Equal(t, payloads[last], readBlock(t, store, last, "X"))
}

func TestResizeShrinkThenWriteWrapsCleanly(t *testing.T) {
	store := newTestStore(t, 8)
	rng := rand.New(rand.NewSource(23))

	for i := 0; i < 10; i++ {
		_, err := store.Write(StringSource(incompressible(rng, 700)))
		require.NoError(t, err)
	}
	require.NoError(t, store.Resize(1))

	p := incompressible(rng, 200)
	id, err := store.Write(StringSource(p))
	require.NoError(t, err)
	assert.Equal(t, p, readBlock(t, store, id, "X"))
}

func TestResizeRejectsNonPositiveSize(t *testing.T) {
	store := newTestStore(t, 1)
	require.ErrorIs(t, store.Resize(0), ErrInvalidSize)
	require.ErrorIs(t, store.Resize(-3), ErrInvalidSize)
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	store := newTestStore(t, 2)
	id, err := store.Write(StringSource("steady"))
	require.NoError(t, err)

	require.NoError(t, store.Resize(2))
	assert.Equal(t, "steady", readBlock(t, store, id, "X"))
}

func TestResizeAfterCloseIsNoop(t *testing.T) {
	store := newTestStore(t, 1)
	require.NoError(t, store.Close())
	require.NoError(t, store.Resize(16))
}

func TestOpenWithDifferentSizeResizes(t *testing.T) {
	path := t.TempDir() + "/capped.db"
	store := openTestStore(t, path, 2)

	id, err := store.Write(StringSource("resized on open"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened := openTestStore(t, path, 16)
	assert.Equal(t, "resized on open", readBlock(t, reopened, id, "X"))
}
