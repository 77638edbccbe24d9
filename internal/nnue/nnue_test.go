package nnue

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spamdrew128/Galumph/internal/board"
)

var testFens = []string{
	board.StartFEN,
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
}

// The incremental update must be indistinguishable from a full rebuild
// after every legal move, across random game sequences covering captures,
// promotions, castles, and en passant.
func TestIncrementalMatchesFromPos(t *testing.T) {
	net := NewMaterialNetwork()
	rng := rand.New(rand.NewSource(99))

	for _, fen := range testFens {
		b, err := board.FromFEN(fen)
		require.NoError(t, err, fen)

		var acc Accumulator
		acc.FromPos(&b, net)

		for ply := 0; ply < 30; ply++ {
			moves := b.LegalMoves()
			if moves.Len() == 0 {
				break
			}
			mv := moves.Get(rng.Intn(moves.Len()))

			next := b
			require.True(t, next.TryPlayMove(mv))

			var incremental Accumulator
			incremental.ApplyMove(&acc, &b, mv, net)

			var rebuilt Accumulator
			rebuilt.FromPos(&next, net)
			require.Equal(t, rebuilt, incremental, "%s after %s", fen, mv)

			b = next
			acc = incremental
		}
	}
}

func TestEveryMoveKindUpdatesCorrectly(t *testing.T) {
	net := NewMaterialNetwork()

	cases := []struct {
		fen  string
		move string
	}{
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1g1"},                              // kingside castle
		{"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1c1"},                              // queenside castle
		{"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3", "e5d6"},      // en passant
		{"3r4/4P3/8/8/8/8/8/4K2k w - - 0 1", "e7e8q"},                                 // push promotion
		{"3r4/4P3/8/8/8/8/8/4K2k w - - 0 1", "e7d8n"},                                 // capture promotion
		{board.StartFEN, "e2e4"},                                                      // double push
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", "e5g6"}, // capture
	}

	for _, tc := range cases {
		b, err := board.FromFEN(tc.fen)
		require.NoError(t, err, tc.fen)

		mv, err := board.ParseMove(tc.move, &b)
		require.NoError(t, err, tc.move)

		var before Accumulator
		before.FromPos(&b, net)

		next := b
		require.True(t, next.TryPlayMove(mv), "%s %s", tc.fen, tc.move)

		var incremental, rebuilt Accumulator
		incremental.ApplyMove(&before, &b, mv, net)
		rebuilt.FromPos(&next, net)
		assert.Equal(t, rebuilt, incremental, "%s %s", tc.fen, tc.move)
	}
}

func TestMaterialNetworkValues(t *testing.T) {
	net := NewMaterialNetwork()

	eval := func(fen string) int {
		b, err := board.FromFEN(fen)
		require.NoError(t, err)
		var acc Accumulator
		acc.FromPos(&b, net)
		return net.Forward(&acc, b.Stm)
	}

	// Balanced positions evaluate to zero from either side.
	assert.Equal(t, 0, eval(board.StartFEN))

	// A clean extra pawn is worth roughly 100 centipawns for the side to
	// move, and the negation for the opponent.
	up := eval("8/8/8/4k3/4P3/4K3/8/8 w - - 0 1")
	assert.Greater(t, up, 90)
	assert.Less(t, up, 110)

	down := eval("8/8/8/4k3/4P3/4K3/8/8 b - - 0 1")
	assert.Equal(t, -up, down)

	// A rook is about five pawns.
	rook := eval("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	assert.Greater(t, rook, 480)
	assert.Less(t, rook, 520)
}

func TestPerspectiveSymmetry(t *testing.T) {
	net := NewMaterialNetwork()

	// The same material imbalance mirrored between the colors must give
	// the same score from the mover's point of view.
	white, err := board.FromFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	require.NoError(t, err)
	black, err := board.FromFEN("4k3/4p3/8/8/8/8/8/4K3 b - - 0 1")
	require.NoError(t, err)

	var accW, accB Accumulator
	accW.FromPos(&white, net)
	accB.FromPos(&black, net)

	assert.Equal(t, net.Forward(&accW, board.White), net.Forward(&accB, board.Black))
}

func TestFeatureIndexDerivation(t *testing.T) {
	// A white knight on b1: the white perspective reads it directly, the
	// black perspective flips the owner and mirrors the square.
	idxs := featureIndices(board.B1, board.Knight, board.White)

	whiteExpected := 0*384 + int(board.Knight)*64 + int(board.B1)
	blackExpected := 1*384 + int(board.Knight)*64 + int(board.B1.Mirror())
	assert.Equal(t, whiteExpected, idxs[board.White])
	assert.Equal(t, blackExpected, idxs[board.Black])

	assert.Equal(t, board.B8, board.B1.Mirror())
	assert.Equal(t, board.B1, board.B8.Mirror())
}
