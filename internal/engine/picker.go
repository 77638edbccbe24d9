package engine

import "github.com/spamdrew128/Galumph/internal/board"

// MVV-LVA piece values on a small scale, indexed by Piece with NoPiece as a
// final entry so en passant's implicit pawn victim (an empty to-square)
// scores like a pawn.
var mvvValues = [board.PieceCount + 1]int32{3, 3, 5, 9, 1, 0, 1}

// queenPromoBonus is added to queen promotions: queen value minus pawn value
// on the MVV scale. A push promotion scores 8, level with a pawn taking a
// queen and below a king taking a queen.
const queenPromoBonus = 8

// Picker stages, advanced in order. Quiescence stops after the noisy stage.
type pickerStage uint8

const (
	stageTTMove pickerStage = iota
	stageGenNoisy
	stageNoisy
	stageKiller
	stageGenQuiets
	stageQuiets
	stageDone
)

type scoredMove struct {
	mv    board.Move
	score int32
}

// MovePicker yields the moves of a node lazily, best-first within each
// stage: the TT move, then captures and queen promotions by MVV-LVA, then
// the killer, then quiets by history score. Scoring happens once per stage;
// selection-sort runs on demand so a beta cutoff abandons the unsorted tail
// for free.
type MovePicker struct {
	b       *board.Board
	history *History

	list [256]scoredMove
	len  int
	idx  int

	stage         pickerStage
	ttMove        board.Move
	killer        board.Move
	includeQuiets bool
}

// NewMovePicker creates a picker over all moves of the position.
func NewMovePicker(b *board.Board, ttMove, killer board.Move, history *History) *MovePicker {
	return &MovePicker{
		b:             b,
		history:       history,
		ttMove:        ttMove,
		killer:        killer,
		includeQuiets: true,
	}
}

// NewNoisyPicker creates a picker that yields only the noisy stages, for
// quiescence.
func NewNoisyPicker(b *board.Board) *MovePicker {
	return &MovePicker{b: b}
}

// Next returns the next move to try, or the null move when exhausted.
func (p *MovePicker) Next() board.Move {
	for {
		switch p.stage {
		case stageTTMove:
			p.stage = stageGenNoisy
			if !p.ttMove.IsNull() && p.b.IsPseudoLegal(p.ttMove) {
				return p.ttMove
			}

		case stageGenNoisy:
			p.genNoisy()
			p.stage = stageNoisy

		case stageNoisy:
			mv := p.pickBest()
			if mv.IsNull() {
				if p.includeQuiets {
					p.stage = stageKiller
				} else {
					p.stage = stageDone
				}
				continue
			}
			if mv == p.ttMove {
				continue
			}
			return mv

		case stageKiller:
			p.stage = stageGenQuiets
			if !p.killer.IsNull() && p.killer != p.ttMove && p.b.IsPseudoLegal(p.killer) {
				return p.killer
			}

		case stageGenQuiets:
			p.genQuiets()
			p.stage = stageQuiets

		case stageQuiets:
			mv := p.pickBest()
			if mv.IsNull() {
				p.stage = stageDone
				continue
			}
			if mv == p.ttMove || mv == p.killer {
				continue
			}
			return mv

		default:
			return board.NullMove
		}
	}
}

// pickBest selection-sorts the best remaining scored move to the cursor and
// consumes it.
func (p *MovePicker) pickBest() board.Move {
	if p.idx >= p.len {
		return board.NullMove
	}

	best := p.idx
	for i := p.idx + 1; i < p.len; i++ {
		if p.list[i].score > p.list[best].score {
			best = i
		}
	}
	p.list[p.idx], p.list[best] = p.list[best], p.list[p.idx]

	mv := p.list[p.idx].mv
	p.idx++
	return mv
}

// genNoisy generates and scores the noisy moves. Captures score victim
// minus attacker; queen promotions get the promotion bonus on top.
func (p *MovePicker) genNoisy() {
	var ml board.MoveList
	p.b.GenerateNoisy(&ml)

	p.len = ml.Len()
	p.idx = 0
	for i := 0; i < ml.Len(); i++ {
		mv := ml.Get(i)
		attacker := p.b.PieceOn(mv.From())
		victim := p.b.PieceOn(mv.To()) // NoPiece for en passant and push promotions

		score := mvvValues[victim] - mvvValues[attacker]
		if mv.IsPromo() {
			score += queenPromoBonus
		}
		p.list[i] = scoredMove{mv: mv, score: score}
	}
}

// genQuiets generates the quiet moves and scores them by history.
func (p *MovePicker) genQuiets() {
	var ml board.MoveList
	p.b.GenerateQuiets(&ml)

	p.len = ml.Len()
	p.idx = 0
	for i := 0; i < ml.Len(); i++ {
		mv := ml.Get(i)
		p.list[i] = scoredMove{mv: mv, score: p.history.Score(p.b, mv)}
	}
}
