package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spamdrew128/Galumph/internal/board"
)

func TestProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(16)
	tt.AgeTable()

	b := board.StartBoard()
	mv, err := board.ParseMove("d2d4", &b)
	require.NoError(t, err)

	tt.Store(TTExact, 16, b.Hash, 4, 4, mv)

	entry, hit := tt.Probe(b.Hash)
	require.True(t, hit)
	assert.Equal(t, mv, entry.Move)
	assert.Equal(t, 16, entry.ScoreFromTT(4))

	other, err := board.FromFEN("r3k2r/ppp2ppp/2n1bn2/8/2P1N3/1P4P1/P3PPBP/1NBR2K1 w kq - 0 12")
	require.NoError(t, err)
	_, hit = tt.Probe(other.Hash)
	assert.False(t, hit)
}

func TestEntryPacking(t *testing.T) {
	e := TTEntry{
		Move:  board.NewMove(board.E2, board.E4, board.FlagDoublePush),
		score: -1234,
		key:   0xBEEF,
		age:   43,
		flag:  TTExact,
		depth: 17,
	}
	assert.Equal(t, e, unpackEntry(packEntry(e)))

	e.score = 32000
	e.flag = TTUpperBound
	e.age = ttAgeMax
	assert.Equal(t, e, unpackEntry(packEntry(e)))
}

// Mate scores are stored relative to the node and re-adjusted on probe, so
// the same entry yields the right mate distance at any probing ply.
func TestMateScoreAdjustment(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.AgeTable()

	mateIn5 := EvalMax - 5
	hash := uint64(0x1234567890ABCDEF)
	tt.Store(TTExact, mateIn5, hash, 3, 10, board.NullMove)

	entry, hit := tt.Probe(hash)
	require.True(t, hit)
	assert.Equal(t, mateIn5, entry.ScoreFromTT(3))
	// Probed one ply nearer the root, the mate is one ply closer.
	assert.Equal(t, mateIn5+1, entry.ScoreFromTT(2))

	matedIn4 := -EvalMax + 4
	tt.Store(TTExact, matedIn4, hash, 2, 12, board.NullMove)
	entry, hit = tt.Probe(hash)
	require.True(t, hit)
	assert.Equal(t, matedIn4, entry.ScoreFromTT(2))
}

func TestNullMoveStorePreservesMove(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.AgeTable()

	hash := uint64(0xFEEDFACECAFEBEEF)
	mv := board.NewMove(board.G1, board.F3, board.FlagQuiet)

	tt.Store(TTExact, 50, hash, 0, 5, mv)
	tt.Store(TTLowerBound, 80, hash, 0, 6, board.NullMove)

	entry, hit := tt.Probe(hash)
	require.True(t, hit)
	assert.Equal(t, mv, entry.Move, "null-move store must keep the old move")
	assert.Equal(t, 80, entry.ScoreFromTT(0))
}

func TestReplacementPrefersQuality(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.AgeTable()

	hash := uint64(0x1111222233334444)
	deep := board.NewMove(board.E2, board.E4, board.FlagDoublePush)
	shallow := board.NewMove(board.A2, board.A3, board.FlagQuiet)

	tt.Store(TTExact, 10, hash, 0, 12, deep)
	tt.Store(TTExact, 20, hash, 0, 3, shallow)

	entry, hit := tt.Probe(hash)
	require.True(t, hit)
	assert.Equal(t, deep, entry.Move, "shallower same-age entry must not replace")

	// A new search generation outweighs the depth gap.
	tt.AgeTable()
	tt.AgeTable()
	tt.AgeTable()
	tt.AgeTable()
	tt.AgeTable()
	tt.Store(TTExact, 20, hash, 0, 3, shallow)
	entry, hit = tt.Probe(hash)
	require.True(t, hit)
	assert.Equal(t, shallow, entry.Move)
}

func TestCutoffConditions(t *testing.T) {
	exact := TTEntry{score: 100, flag: TTExact, depth: 8}
	assert.True(t, exact.CutoffIsPossible(-50, 50, 8))
	assert.False(t, exact.CutoffIsPossible(-50, 50, 9), "stored depth too shallow")

	lower := TTEntry{score: 100, flag: TTLowerBound, depth: 8}
	assert.True(t, lower.CutoffIsPossible(-50, 50, 8), "score beats beta")
	assert.False(t, lower.CutoffIsPossible(-50, 200, 8))

	upper := TTEntry{score: -100, flag: TTUpperBound, depth: 8}
	assert.True(t, upper.CutoffIsPossible(-50, 50, 8), "score below alpha")
	assert.False(t, upper.CutoffIsPossible(-200, 50, 8))
}

func TestResetAndHashfull(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.AgeTable()
	assert.Equal(t, 0, tt.Hashfull())

	tt.Store(TTExact, 1, 0, 0, 1, board.NullMove)
	assert.Greater(t, tt.Hashfull(), 0)

	tt.Reset()
	assert.Equal(t, 0, tt.Hashfull())
	_, hit := tt.Probe(0)
	assert.False(t, hit)
}
