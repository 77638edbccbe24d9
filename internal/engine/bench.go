package engine

import (
	"time"

	"github.com/spamdrew128/Galumph/internal/board"
)

// BenchDefaultDepth is the fixed depth of the bench command.
const BenchDefaultDepth = 7

// benchFens is a small spread of openings, middlegames, and endgames.
var benchFens = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"r2q1rk1/pP1p2pp/Q4n2/bbp1p3/Np6/1B3NBn/pPPP1PPP/R3K2R b KQ - 0 1",
	"8/8/8/4k3/4P3/4K3/8/8 w - - 0 1",
	"4k3/1P6/8/8/8/8/K7/8 w - - 0 1",
}

// Bench searches every bench position to a fixed depth and returns the
// total node count and elapsed time.
func (s *Searcher) Bench(depth int) (uint64, time.Duration) {
	var total uint64
	start := time.Now()

	for _, fen := range benchFens {
		b, err := board.FromFEN(fen)
		if err != nil {
			continue
		}

		s.NewGame()
		s.stop.Store(false)
		s.SetHashHistory(board.NewHashHistory(b.Hash))
		s.Search(b, SearchConfig{Depth: depth})
		total += s.nodes
	}

	return total, time.Since(start)
}
