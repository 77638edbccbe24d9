package engine

import (
	"sync/atomic"
	"time"

	"github.com/spamdrew128/Galumph/internal/board"
	"github.com/spamdrew128/Galumph/internal/nnue"
)

// Search tunables.
const (
	// timerCheckFreq is the node cadence of the stop flag and clock poll.
	timerCheckFreq = 1024

	rfpMaxDepth = 6
	rfpMargin   = 75

	nmpMinDepth  = 3
	nmpReduction = 3

	lmrMinDepth     = 3
	lmrMinMoveCount = 3
)

// SearchInfo is the per-iteration report handed to the Info callback.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Time     time.Duration
	Hashfull int
	PV       []board.Move
}

// MateIn converts a mate-encoded score to full moves, with the sign of the
// winner. The second return is false for ordinary centipawn scores.
func (si SearchInfo) MateIn() (int, bool) {
	if si.Score >= MateThreshold {
		return (EvalMax - si.Score + 1) / 2, true
	}
	if si.Score <= -MateThreshold {
		return -(EvalMax + si.Score + 1) / 2, true
	}
	return 0, false
}

// Searcher owns all search state for one thread: the board history, move
// ordering tables, PV, accumulator stack, and timer. The transposition
// table is shared and mutated only through its atomic cells.
type Searcher struct {
	tt      *TranspositionTable
	net     *nnue.Network
	history History
	killers Killers
	pv      PVTable

	hashHist *board.HashHistory
	accs     [MaxPly + 1]nnue.Accumulator

	timer  SearchTimer
	config SearchConfig
	stop   *atomic.Bool

	nodes    uint64
	seldepth int

	// rootHint seeds the root picker when the TT has no move, e.g. from
	// the experience store.
	rootHint board.Move

	// Info, when set, receives a report after each completed iteration.
	Info func(SearchInfo)
}

// NewSearcher creates a searcher over a shared transposition table and
// network. The stop flag is shared with the UCI thread.
func NewSearcher(tt *TranspositionTable, net *nnue.Network, stop *atomic.Bool) *Searcher {
	return &Searcher{
		tt:       tt,
		net:      net,
		stop:     stop,
		hashHist: board.NewHashHistory(board.StartBoard().Hash),
	}
}

// SetHashHistory seeds repetition detection with the game history.
func (s *Searcher) SetHashHistory(h *board.HashHistory) {
	s.hashHist = h
}

// SetRootHint suggests a root move to try first when the TT offers none.
func (s *Searcher) SetRootHint(mv board.Move) {
	s.rootHint = mv
}

// SetNetwork swaps in a different evaluation network.
func (s *Searcher) SetNetwork(net *nnue.Network) {
	s.net = net
}

// NewGame clears all state carried between searches.
func (s *Searcher) NewGame() {
	s.tt.Reset()
	s.history.Reset()
	s.killers.Reset()
	s.rootHint = board.NullMove
}

// Nodes returns the node count of the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs iterative deepening on the position until a limit triggers or
// the stop flag is raised, and returns the best move of the last completed
// iteration.
func (s *Searcher) Search(b board.Board, config SearchConfig) board.Move {
	s.config = config
	s.timer = timerFromConfig(b.Stm, &config)
	s.nodes = 0
	s.seldepth = 0
	s.tt.AgeTable()
	s.accs[0].FromPos(&b, s.net)

	stopwatch := time.Now()
	bestMove := board.NullMove

	for depth := 1; s.continueDeepening(depth); depth++ {
		score := s.negamax(&b, depth, 0, -Inf, Inf, false)

		if s.stop.Load() {
			break
		}

		bestMove = s.pv.RootMove()

		if s.Info != nil {
			s.Info(SearchInfo{
				Depth:    depth,
				SelDepth: s.seldepth,
				Score:    score,
				Nodes:    s.nodes,
				Time:     time.Since(stopwatch),
				Hashfull: s.tt.Hashfull(),
				PV:       s.pv.Line(),
			})
		}
	}

	// A stop during the first iteration can leave no completed PV. Any
	// legal move beats resigning.
	if bestMove.IsNull() {
		legal := b.LegalMoves()
		if legal.Len() > 0 {
			bestMove = legal.Get(0)
		}
	}

	s.stop.Store(true)
	return bestMove
}

// continueDeepening decides whether the next iteration may start.
func (s *Searcher) continueDeepening(nextDepth int) bool {
	if nextDepth > MaxDepth {
		return false
	}
	if s.timer.HardExpired() {
		return false
	}
	if s.config.Depth > 0 && nextDepth > s.config.Depth {
		return false
	}
	if s.config.Nodes > 0 && s.nodes >= s.config.Nodes {
		return false
	}
	return true
}

// stopped polls the stop flag, and at a fixed node cadence the clock. Once
// tripped, the flag stays set and the search unwinds returning zeros; the
// driver discards the in-flight iteration.
func (s *Searcher) stopped() bool {
	if s.stop.Load() {
		return true
	}
	if s.nodes%timerCheckFreq == 0 && s.timer.HardExpired() {
		s.stop.Store(true)
		return true
	}
	return false
}

func (s *Searcher) evaluate(b *board.Board, ply int) int {
	return s.net.Forward(&s.accs[ply], b.Stm)
}

// negamax is the principal-variation search over interior nodes.
func (s *Searcher) negamax(b *board.Board, depth, ply, alpha, beta int, wasNull bool) int {
	s.seldepth = max(s.seldepth, ply)
	s.pv.SetLength(ply)

	isPV := beta != alpha+1

	if ply > 0 {
		// Draw detection: the fifty-move rule and twofold repetition over
		// the reversible tail of the hash stack.
		if b.HalfMoves >= 100 || s.hashHist.TwofoldRepetition(b.HalfMoves) {
			return 0
		}

		// Mate-distance pruning: no line from here can beat an already
		// proven shorter mate.
		alpha = max(alpha, ply-EvalMax)
		beta = min(beta, EvalMax-ply-1)
		if alpha >= beta {
			return alpha
		}
	}

	if depth <= 0 || ply >= MaxPly {
		return s.qsearch(b, ply, alpha, beta)
	}

	ttMove := board.NullMove
	if entry, hit := s.tt.Probe(b.Hash); hit {
		ttMove = entry.Move
		if !isPV && entry.CutoffIsPossible(alpha, beta, depth) {
			return entry.ScoreFromTT(ply)
		}
	}
	if ply == 0 && ttMove.IsNull() {
		ttMove = s.rootHint
	}

	inCheck := b.InCheck()
	staticEval := s.evaluate(b, ply)

	// Reverse futility pruning: a quiet position far enough above beta at
	// shallow depth is assumed to hold.
	if !isPV && !inCheck && ply > 0 && depth <= rfpMaxDepth &&
		abs(beta) < MateThreshold && staticEval-rfpMargin*depth >= beta {
		return staticEval
	}

	// Null-move pruning, gated on non-pawn material against zugzwang.
	if !isPV && !inCheck && !wasNull && ply > 0 && depth >= nmpMinDepth && b.HasNonPawnMaterial() {
		nullBoard := *b
		nullBoard.PlayNullMove()
		s.accs[ply+1] = s.accs[ply]
		s.hashHist.Push(nullBoard.Hash)

		nullScore := -s.negamax(&nullBoard, depth-1-nmpReduction, ply+1, -beta, -beta+1, true)

		s.hashHist.Pop()
		if s.stopped() {
			return 0
		}
		if nullScore >= beta {
			return nullScore
		}
	}

	oldAlpha := alpha
	bestScore := -Inf
	bestMove := board.NullMove
	movesPlayed := 0
	var quiets []board.Move

	killer := s.killers.Killer(ply)
	picker := NewMovePicker(b, ttMove, killer, &s.history)

	for mv := picker.Next(); !mv.IsNull(); mv = picker.Next() {
		child := *b
		if !child.TryPlayMove(mv) {
			continue
		}

		s.accs[ply+1].ApplyMove(&s.accs[ply], b, mv, s.net)
		s.hashHist.Push(child.Hash)
		movesPlayed++
		s.nodes++

		isQuiet := !mv.IsNoisy()
		if isQuiet {
			quiets = append(quiets, mv)
		}

		var score int
		if movesPlayed == 1 {
			score = -s.negamax(&child, depth-1, ply+1, -beta, -alpha, false)
		} else {
			// Null-window search, reduced for late quiet moves. The
			// full-window re-search always runs at unreduced depth.
			reduction := 0
			if isQuiet && !inCheck && depth >= lmrMinDepth &&
				movesPlayed >= lmrMinMoveCount && mv != ttMove && mv != killer {
				reduction = LMRReduction(depth, movesPlayed)
			}

			score = -s.negamax(&child, depth-1-reduction, ply+1, -alpha-1, -alpha, false)
			if score > alpha && score < beta {
				score = -s.negamax(&child, depth-1, ply+1, -beta, -alpha, false)
			}
		}

		s.hashHist.Pop()

		if s.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = mv

			if score > alpha {
				alpha = score
				s.pv.Update(ply, mv)
			}

			if score >= beta {
				if isQuiet {
					s.killers.Update(mv, ply)
					s.history.Update(b, quiets, depth)
				}
				break
			}
		}
	}

	if movesPlayed == 0 {
		if inCheck {
			return -EvalMax + ply
		}
		return 0
	}

	flag := DetermineTTFlag(bestScore, oldAlpha, alpha, beta)
	s.tt.Store(flag, bestScore, b.Hash, ply, depth, bestMove)

	return bestScore
}

// qsearch extends the search through noisy moves until the position is
// quiet enough to trust the static evaluation.
func (s *Searcher) qsearch(b *board.Board, ply, alpha, beta int) int {
	s.seldepth = max(s.seldepth, ply)

	standPat := s.evaluate(b, ply)
	if ply >= MaxPly {
		return standPat
	}
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	bestScore := standPat
	picker := NewNoisyPicker(b)

	for mv := picker.Next(); !mv.IsNull(); mv = picker.Next() {
		child := *b
		if !child.TryPlayMove(mv) {
			continue
		}

		s.accs[ply+1].ApplyMove(&s.accs[ply], b, mv, s.net)
		s.nodes++

		score := -s.qsearch(&child, ply+1, -beta, -alpha)

		if s.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
			}
			if score >= beta {
				break
			}
		}
	}

	return bestScore
}
