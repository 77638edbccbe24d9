package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spamdrew128/Galumph/internal/board"
)

func TestHistoryRewardsCutoffMove(t *testing.T) {
	b := board.StartBoard()
	var h History

	tried := []board.Move{
		board.NewMove(board.A2, board.A3, board.FlagQuiet),
		board.NewMove(board.B1, board.C3, board.FlagQuiet),
		board.NewMove(board.G1, board.F3, board.FlagQuiet), // cutoff move
	}
	h.Update(&b, tried, 5)

	assert.Positive(t, h.Score(&b, tried[2]))
	assert.Negative(t, h.Score(&b, tried[0]))
	assert.Negative(t, h.Score(&b, tried[1]))
}

func TestHistoryBonusCap(t *testing.T) {
	b := board.StartBoard()
	var h History

	mv := board.NewMove(board.G1, board.F3, board.FlagQuiet)
	h.Update(&b, []board.Move{mv}, 100)

	// The first update applies at most the bonus cap.
	assert.LessOrEqual(t, h.Score(&b, mv), int32(historyBonusMax))
}

func TestHistorySaturates(t *testing.T) {
	b := board.StartBoard()
	var h History

	mv := board.NewMove(board.G1, board.F3, board.FlagQuiet)
	for i := 0; i < 10_000; i++ {
		h.Update(&b, []board.Move{mv}, 10)
	}

	assert.LessOrEqual(t, h.Score(&b, mv), int32(historyScoreMax))
	assert.Positive(t, h.Score(&b, mv))
}

func TestKillersPerPly(t *testing.T) {
	var k Killers
	mv1 := board.NewMove(board.G1, board.F3, board.FlagQuiet)
	mv2 := board.NewMove(board.B1, board.C3, board.FlagQuiet)

	k.Update(mv1, 3)
	k.Update(mv2, 4)

	assert.Equal(t, mv1, k.Killer(3))
	assert.Equal(t, mv2, k.Killer(4))
	assert.Equal(t, board.NullMove, k.Killer(5))

	k.Reset()
	assert.Equal(t, board.NullMove, k.Killer(3))
}

func TestLMRTableShape(t *testing.T) {
	// No reduction at tiny depths or early moves, growing with both.
	assert.Equal(t, 0, LMRReduction(1, 1))
	assert.GreaterOrEqual(t, LMRReduction(20, 30), LMRReduction(3, 4))
	require.LessOrEqual(t, LMRReduction(MaxDepth, 255), MaxDepth)
}
