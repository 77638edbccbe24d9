package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spamdrew128/Galumph/internal/board"
	"github.com/spamdrew128/Galumph/internal/nnue"
)

func newTestSearcher() (*Searcher, *atomic.Bool) {
	var stop atomic.Bool
	s := NewSearcher(NewTranspositionTable(16), nnue.NewMaterialNetwork(), &stop)
	return s, &stop
}

// searchPosition runs a fixed-depth search and returns the best move and
// the last completed iteration's score.
func searchPosition(t *testing.T, fen string, depth int) (board.Move, int) {
	t.Helper()

	b, err := board.FromFEN(fen)
	require.NoError(t, err)

	s, _ := newTestSearcher()
	s.SetHashHistory(board.NewHashHistory(b.Hash))

	lastScore := 0
	s.Info = func(info SearchInfo) {
		lastScore = info.Score
	}

	mv := s.Search(b, SearchConfig{Depth: depth})
	return mv, lastScore
}

func TestMateInOne(t *testing.T) {
	// Back-rank mate: Ra8#.
	mv, score := searchPosition(t, "6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1", 4)

	assert.GreaterOrEqual(t, score, EvalMax-1)
	assert.Equal(t, "a1a8", mv.String())
}

func TestMateSequenceFound(t *testing.T) {
	// King and rook corner the king: 1.Kb6 Kb8 2.Rh8# is forced.
	b, err := board.FromFEN("k7/8/8/1K6/8/8/8/7R w - - 0 1")
	require.NoError(t, err)

	s, _ := newTestSearcher()
	s.SetHashHistory(board.NewHashHistory(b.Hash))

	var lastInfo SearchInfo
	s.Info = func(info SearchInfo) {
		lastInfo = info
	}

	mv := s.Search(b, SearchConfig{Depth: 6})
	require.False(t, mv.IsNull())

	mate, isMate := lastInfo.MateIn()
	require.True(t, isMate, "expected a mate score, got %d", lastInfo.Score)
	assert.Greater(t, mate, 0)
	assert.LessOrEqual(t, mate, 3)
}

func TestStalemateScoresZero(t *testing.T) {
	// Black to move has no legal moves and is not in check.
	_, score := searchPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 3)
	assert.Equal(t, 0, score)
}

func TestHalfmoveClockDraw(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 100 1")
	require.NoError(t, err)

	s, _ := newTestSearcher()
	s.SetHashHistory(board.NewHashHistory(b.Hash))

	// The clock already reads 100, so the non-root node is a draw even
	// though white is a pawn up.
	score := s.negamax(&b, 4, 1, -Inf, Inf, false)
	assert.Equal(t, 0, score)
}

func TestRepetitionScoresZero(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 10 1")
	require.NoError(t, err)

	// Seed the history so the current position already occurred.
	hist := board.NewHashHistory(b.Hash)
	hist.Push(0x1234)
	hist.Push(b.Hash)

	s, _ := newTestSearcher()
	s.SetHashHistory(hist)
	s.accs[0].FromPos(&b, nnue.NewMaterialNetwork())

	score := s.negamax(&b, 4, 1, -Inf, Inf, false)
	assert.Equal(t, 0, score)
}

func TestPawnUpEndgameIsWinning(t *testing.T) {
	// KP vs K: the evaluation must clearly favor white.
	_, score := searchPosition(t, "8/8/8/4k3/4P3/4K3/8/8 w - - 0 1", 8)
	assert.Greater(t, score, 50)
}

func TestBestMoveIsLegal(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
	}

	for _, fen := range fens {
		mv, _ := searchPosition(t, fen, 5)
		b, err := board.FromFEN(fen)
		require.NoError(t, err)
		assert.True(t, b.LegalMoves().Contains(mv), "bestmove %s illegal in %s", mv, fen)
	}
}

func TestMoveTimeRespected(t *testing.T) {
	b := board.StartBoard()

	s, _ := newTestSearcher()
	s.SetHashHistory(board.NewHashHistory(b.Hash))

	start := time.Now()
	mv := s.Search(b, SearchConfig{MoveTime: 100 * time.Millisecond})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 400*time.Millisecond)
	assert.True(t, b.LegalMoves().Contains(mv))
}

func TestStopFlagCancelsSearch(t *testing.T) {
	b := board.StartBoard()

	s, stop := newTestSearcher()
	s.SetHashHistory(board.NewHashHistory(b.Hash))

	done := make(chan board.Move, 1)
	go func() {
		done <- s.Search(b, SearchConfig{Infinite: true})
	}()

	time.Sleep(50 * time.Millisecond)
	stop.Store(true)

	select {
	case mv := <-done:
		assert.True(t, b.LegalMoves().Contains(mv))
	case <-time.After(2 * time.Second):
		t.Fatal("search did not stop")
	}
}

func TestNodeLimitStopsDeepening(t *testing.T) {
	b := board.StartBoard()

	s, _ := newTestSearcher()
	s.SetHashHistory(board.NewHashHistory(b.Hash))
	s.Search(b, SearchConfig{Nodes: 2000})

	// One iteration may overshoot, but deepening must stop promptly.
	assert.Less(t, s.Nodes(), uint64(500_000))
}

func TestDeeperSearchKeepsMaterialScore(t *testing.T) {
	// A clean rook-up position stays clearly winning at depth.
	_, score := searchPosition(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", 6)
	assert.Greater(t, score, 400)
}

func TestMateInfoFormatting(t *testing.T) {
	info := SearchInfo{Score: EvalMax - 1}
	mate, ok := info.MateIn()
	require.True(t, ok)
	assert.Equal(t, 1, mate)

	info = SearchInfo{Score: EvalMax - 4}
	mate, ok = info.MateIn()
	require.True(t, ok)
	assert.Equal(t, 2, mate, "mate in 4 plies is mate in 2 moves")

	info = SearchInfo{Score: -(EvalMax - 2)}
	mate, ok = info.MateIn()
	require.True(t, ok)
	assert.Equal(t, -1, mate)

	info = SearchInfo{Score: 123}
	_, ok = info.MateIn()
	assert.False(t, ok)
}
