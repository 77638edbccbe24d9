package nnue

import "github.com/spamdrew128/Galumph/internal/board"

// FeatureIndices is a white-perspective and black-perspective feature index
// pair for one (square, piece, owner) triple. The white index reads the
// square as-is; the black index flips the owner color and mirrors the
// square so each side sees an equivalent feature space.
type FeatureIndices [board.ColorCount]int

// featureIndices derives the index pair for a piece of the given color on a
// square.
func featureIndices(sq board.Square, piece board.Piece, owner board.Color) FeatureIndices {
	const colorStride = board.PieceCount * board.SquareCount
	const pieceStride = board.SquareCount

	p := int(piece) * pieceStride

	return FeatureIndices{
		int(owner)*colorStride + p + int(sq),
		int(owner.Flip())*colorStride + p + int(sq.Mirror()),
	}
}

// Accumulator holds the running L1 neuron sums for both perspectives.
type Accumulator struct {
	Sums [board.ColorCount][L1Size]int16
}

// FromPos rebuilds the accumulator from scratch for a position.
func (acc *Accumulator) FromPos(b *board.Board, net *Network) {
	acc.Sums[board.White] = net.L1Biases
	acc.Sums[board.Black] = net.L1Biases

	for c := board.White; c <= board.Black; c++ {
		for p := board.Knight; p <= board.King; p++ {
			bb := b.PieceBB(p, c)
			for !bb.Empty() {
				sq := bb.PopLSB()
				acc.AddFeature(featureIndices(sq, p, c), net)
			}
		}
	}
}

// AddFeature adds a feature's weight row to both perspectives.
func (acc *Accumulator) AddFeature(idxs FeatureIndices, net *Network) {
	for c := board.White; c <= board.Black; c++ {
		weights := &net.L1Weights[idxs[c]]
		sums := &acc.Sums[c]
		for i := 0; i < L1Size; i++ {
			sums[i] += weights[i]
		}
	}
}

// RemoveFeature subtracts a feature's weight row from both perspectives.
func (acc *Accumulator) RemoveFeature(idxs FeatureIndices, net *Network) {
	for c := board.White; c <= board.Black; c++ {
		weights := &net.L1Weights[idxs[c]]
		sums := &acc.Sums[c]
		for i := 0; i < L1Size; i++ {
			sums[i] -= weights[i]
		}
	}
}

// ApplyMove writes into acc the accumulator for the position reached by
// playing mv on before, starting from prev. The result always equals a
// fresh FromPos of the post-move board.
func (acc *Accumulator) ApplyMove(prev *Accumulator, before *board.Board, mv board.Move, net *Network) {
	*acc = *prev

	us := before.Stm
	them := us.Flip()
	from := mv.From()
	to := mv.To()
	piece := before.PieceOn(from)

	acc.RemoveFeature(featureIndices(from, piece, us), net)

	placed := piece
	if mv.IsPromo() {
		placed = mv.PromoPiece()
	}
	acc.AddFeature(featureIndices(to, placed, us), net)

	switch {
	case mv.IsEP():
		capturedSq := to - 8
		if us == board.Black {
			capturedSq = to + 8
		}
		acc.RemoveFeature(featureIndices(capturedSq, board.Pawn, them), net)

	case mv.IsCapture():
		acc.RemoveFeature(featureIndices(to, before.PieceOn(to), them), net)

	case mv.Flag() == board.FlagKSCastle:
		rookFrom := board.NewSquare(7, from.Rank())
		rookTo := board.NewSquare(5, from.Rank())
		acc.RemoveFeature(featureIndices(rookFrom, board.Rook, us), net)
		acc.AddFeature(featureIndices(rookTo, board.Rook, us), net)

	case mv.Flag() == board.FlagQSCastle:
		rookFrom := board.NewSquare(0, from.Rank())
		rookTo := board.NewSquare(3, from.Rank())
		acc.RemoveFeature(featureIndices(rookFrom, board.Rook, us), net)
		acc.AddFeature(featureIndices(rookTo, board.Rook, us), net)
	}
}
