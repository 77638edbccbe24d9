package board

import "fmt"

// MoveFlag is the 4-bit move kind stored in the top bits of a Move.
type MoveFlag uint16

// Move flags. The layout is chosen so that three predicates collapse into
// range checks: captures are flag >= FlagCapture, noisy moves (captures and
// queen promotions, without the capture-underpromotions) are
// FlagQueenPromo..FlagQueenCapturePromo, and the
// promotion piece is the low two bits of the flag.
const (
	FlagQuiet      MoveFlag = 0
	FlagKSCastle   MoveFlag = 1
	FlagQSCastle   MoveFlag = 2
	FlagDoublePush MoveFlag = 3

	FlagKnightPromo MoveFlag = 4
	FlagBishopPromo MoveFlag = 5
	FlagRookPromo   MoveFlag = 6
	FlagQueenPromo  MoveFlag = 7

	FlagCapture MoveFlag = 8
	FlagEP      MoveFlag = 9

	// 10 is skipped so the capture-promotion flags keep the promotion piece
	// in their low two bits.
	FlagQueenCapturePromo  MoveFlag = 11
	FlagKnightCapturePromo MoveFlag = 12
	FlagBishopCapturePromo MoveFlag = 13
	FlagRookCapturePromo   MoveFlag = 14
)

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-15: flag
type Move uint16

// NullMove represents an invalid or missing move.
const NullMove Move = 0

// NewMove creates a move with the given flag.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// NewKSCastle creates a kingside castle from the king's square.
func NewKSCastle(kingSq Square) Move {
	return NewMove(kingSq, kingSq+2, FlagKSCastle)
}

// NewQSCastle creates a queenside castle from the king's square.
func NewQSCastle(kingSq Square) Move {
	return NewMove(kingSq, kingSq-2, FlagQSCastle)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag(m >> 12)
}

// IsNull returns true for the null move.
func (m Move) IsNull() bool {
	return m == NullMove
}

// IsCapture returns true if this move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return m.Flag() >= FlagCapture
}

// IsNoisy returns true for captures and queen promotions, the moves the
// quiescence search examines. Capture-underpromotions are not noisy.
func (m Move) IsNoisy() bool {
	f := m.Flag()
	return f >= FlagQueenPromo && f <= FlagQueenCapturePromo
}

// IsPromo returns true if this is a promotion of any kind.
func (m Move) IsPromo() bool {
	f := m.Flag()
	return (f >= FlagKnightPromo && f <= FlagQueenPromo) || f >= FlagQueenCapturePromo
}

// IsEP returns true if this is an en passant capture.
func (m Move) IsEP() bool {
	return m.Flag() == FlagEP
}

// IsCastle returns true for either castling flag.
func (m Move) IsCastle() bool {
	f := m.Flag()
	return f == FlagKSCastle || f == FlagQSCastle
}

// PromoPiece returns the promotion piece encoded in the flag's low two bits.
// Only meaningful when IsPromo is true.
func (m Move) PromoPiece() Piece {
	return Piece((m >> 12) & 0b11)
}

// String returns the UCI form of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromo() {
		s += string(PromoCharFromPiece(m.PromoPiece()))
	}
	return s
}

// doublePushOrigin returns the square a double push to sq started from.
func (sq Square) doublePushOrigin() Square {
	if sq.Rank() == 3 {
		return sq - 16 // white double push landed on rank 4
	}
	return sq + 16 // black double push landed on rank 5
}

// ParseMove interprets a UCI move string in the context of a position,
// recovering the correct flag. Returns an error for strings that do not
// describe a plausible move on this board.
func ParseMove(s string, b *Board) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NullMove, fmt.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, err
	}

	piece := b.PieceOn(from)
	if piece == NoPiece {
		return NullMove, fmt.Errorf("no piece on %s", from)
	}
	captured := b.PieceOn(to)

	// A king move outside its attack set is a castle.
	if piece == King && !KingAttacks(from).IsSet(to) {
		if to.File() > from.File() {
			return NewKSCastle(from), nil
		}
		return NewQSCastle(from), nil
	}

	if b.PromotablePawns().IsSet(from) {
		if len(s) != 5 {
			return NullMove, fmt.Errorf("missing promotion piece: %q", s)
		}
		var promo Piece
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NullMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		promoFlags := [4]MoveFlag{FlagKnightPromo, FlagBishopPromo, FlagRookPromo, FlagQueenPromo}
		capPromoFlags := [4]MoveFlag{FlagKnightCapturePromo, FlagBishopCapturePromo, FlagRookCapturePromo, FlagQueenCapturePromo}
		if captured == NoPiece {
			return NewMove(from, to, promoFlags[promo]), nil
		}
		return NewMove(from, to, capPromoFlags[promo]), nil
	}

	if piece == Pawn {
		if b.EPSquare != NoSquare && b.EPSquare == to {
			return NewMove(from, to, FlagEP), nil
		}
		if from == to.doublePushOrigin() && (to.Rank() == 3 || to.Rank() == 4) {
			return NewMove(from, to, FlagDoublePush), nil
		}
	}

	if captured == NoPiece {
		return NewMove(from, to, FlagQuiet), nil
	}
	return NewMove(from, to, FlagCapture), nil
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
