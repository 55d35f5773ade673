package fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndAdvance(t *testing.T) {
	b := NewTxBuffer(16)
	assert.True(t, b.Empty())
	assert.Equal(t, 16, b.Space())

	ok := b.Append([]byte("hello"))
	require.True(t, ok)
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, 11, b.Space())
	assert.Equal(t, []byte("hello"), b.Pending())

	b.Advance(2)
	assert.Equal(t, []byte("llo"), b.Pending())
	assert.Equal(t, 3, b.Len())

	b.Advance(3)
	assert.True(t, b.Empty())
}

func TestAppendRejectsOversize(t *testing.T) {
	b := NewTxBuffer(4)
	assert.False(t, b.Append([]byte("12345")))
	assert.True(t, b.Empty())
}

func TestAppendCompactsPartiallyDrainedTail(t *testing.T) {
	b := NewTxBuffer(8)
	require.True(t, b.Append([]byte("abcdefgh")))
	b.Advance(6)
	// 2 bytes left at the tail; appending 4 more would run past the
	// backing array without compaction.
	require.True(t, b.Append([]byte("wxyz")))
	assert.Equal(t, []byte("ghwxyz"), b.Pending())
}

func TestResetDropsQueuedBytes(t *testing.T) {
	b := NewTxBuffer(8)
	b.Append([]byte("abcd"))
	b.Reset()
	assert.True(t, b.Empty())
	assert.Equal(t, 8, b.Space())
}
