package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwofoldRepetition(t *testing.T) {
	b := StartBoard()
	hist := NewHashHistory(b.Hash)

	// Shuffle the knights out and back: g1f3 g8f6 f3g1 f6g8.
	for _, mvStr := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		mv, err := ParseMove(mvStr, &b)
		require.NoError(t, err)
		clone := b
		require.True(t, clone.TryPlayMove(mv))
		b = clone
		hist.Push(b.Hash)

		repetition := hist.TwofoldRepetition(b.HalfMoves)
		if mvStr == "f6g8" {
			assert.True(t, repetition, "position repeated after %s", mvStr)
		} else {
			assert.False(t, repetition, "no repetition yet after %s", mvStr)
		}
	}
}

func TestRepetitionBoundedByClock(t *testing.T) {
	hist := NewHashHistory(0xAAAA)
	hist.Push(0xBBBB)
	hist.Push(0xAAAA)

	// The repeat is two plies back; a clock of zero hides it.
	assert.True(t, hist.TwofoldRepetition(2))
	assert.False(t, hist.TwofoldRepetition(0))
}

func TestHashHistoryPushPop(t *testing.T) {
	hist := NewHashHistory(1)
	hist.Push(2)
	hist.Push(3)
	assert.Equal(t, 3, hist.Len())

	hist.Pop()
	assert.Equal(t, 2, hist.Len())

	hist.Reset(9)
	assert.Equal(t, 1, hist.Len())
}
