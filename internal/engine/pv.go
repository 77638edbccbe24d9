package engine

import (
	"math"

	"github.com/spamdrew128/Galumph/internal/board"
)

// PVTable is the triangular principal variation table: pv[ply] holds the
// best line found from that ply, length[ply] its filled prefix.
type PVTable struct {
	moves  [MaxPly + 1][MaxPly + 1]board.Move
	length [MaxPly + 2]int
}

// SetLength resets the line at a ply before its node is searched.
func (pv *PVTable) SetLength(ply int) {
	pv.length[ply] = ply
}

// Update records a new best move at a ply and pulls up the child line.
func (pv *PVTable) Update(ply int, mv board.Move) {
	pv.moves[ply][ply] = mv
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = pv.length[ply+1]
}

// Line returns the root principal variation.
func (pv *PVTable) Line() []board.Move {
	return pv.moves[0][:pv.length[0]]
}

// RootMove returns the first move of the root line, or the null move if no
// line has been recorded.
func (pv *PVTable) RootMove() board.Move {
	if pv.length[0] == 0 {
		return board.NullMove
	}
	return pv.moves[0][0]
}

// lmrTable holds late-move reduction amounts by remaining depth and move
// count: floor(0.77 + ln(d) * ln(m) / 3).
var lmrTable [MaxDepth + 1][256]int

func init() {
	for d := range lmrTable {
		for m := range lmrTable[d] {
			depth := float64(max(d, 1))
			moveCount := float64(max(m, 1))
			lmrTable[d][m] = int(0.77 + math.Log(depth)*math.Log(moveCount)/3.0)
		}
	}
}

// LMRReduction returns the table-driven reduction for a quiet late move.
func LMRReduction(depth, moveCount int) int {
	return lmrTable[depth][min(moveCount, 255)]
}
