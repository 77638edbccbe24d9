package engine

import "github.com/spamdrew128/Galumph/internal/board"

// History is the butterfly history table for quiet move ordering, indexed
// by side to move, moving piece, and destination square.
type History struct {
	scores [board.ColorCount][board.PieceCount][board.SquareCount]int32
}

const (
	historyBonusMax = 1200
	historyScoreMax = 32767
)

// Score returns the history value of a quiet move on the given board.
func (h *History) Score(b *board.Board, mv board.Move) int32 {
	piece := b.PieceOn(mv.From())
	return h.scores[b.Stm][piece][mv.To()]
}

// update blends a bonus into one move's score. The blend saturates: the
// closer the score is to the maximum, the less of the bonus lands.
func (h *History) update(b *board.Board, mv board.Move, bonus int32) {
	current := h.Score(b, mv)
	absBonus := bonus
	if absBonus < 0 {
		absBonus = -absBonus
	}
	scaled := bonus - current*absBonus/historyScoreMax

	piece := b.PieceOn(mv.From())
	h.scores[b.Stm][piece][mv.To()] += scaled
}

// Update rewards the cutoff move and penalizes the quiets tried before it.
// The cutoff move is the last element of quiets.
func (h *History) Update(b *board.Board, quiets []board.Move, depth int) {
	d := int32(depth)
	bonus := 16 * d * d
	if bonus > historyBonusMax {
		bonus = historyBonusMax
	}

	cutoff := quiets[len(quiets)-1]
	h.update(b, cutoff, bonus)

	for _, mv := range quiets[:len(quiets)-1] {
		h.update(b, mv, -bonus)
	}
}

// Reset zeroes the table. Used by "ucinewgame".
func (h *History) Reset() {
	h.scores = [board.ColorCount][board.PieceCount][board.SquareCount]int32{}
}

// Killers stores one quiet cutoff move per ply.
type Killers struct {
	moves [MaxPly + 1]board.Move
}

// Update records a quiet move that caused a beta cutoff at the ply.
func (k *Killers) Update(mv board.Move, ply int) {
	k.moves[ply] = mv
}

// Killer returns the stored move for a ply.
func (k *Killers) Killer(ply int) board.Move {
	return k.moves[ply]
}

// Reset clears all slots.
func (k *Killers) Reset() {
	k.moves = [MaxPly + 1]board.Move{}
}
