package board

import "strings"

// CastleRights is a 4-bit mask of the remaining castling options.
type CastleRights uint8

const (
	WhiteKS CastleRights = 1 << iota
	WhiteQS
	BlackKS
	BlackQS

	NoCastling  CastleRights = 0
	AllCastling CastleRights = WhiteKS | WhiteQS | BlackKS | BlackQS
)

// castleRightsMask[sq] holds the rights that survive a move touching sq.
// Moving the king or a rook, or capturing a rook on its home square, strips
// the corresponding bits.
var castleRightsMask = func() [SquareCount]CastleRights {
	var masks [SquareCount]CastleRights
	for i := range masks {
		masks[i] = AllCastling
	}
	masks[E1] &^= WhiteKS | WhiteQS
	masks[H1] &^= WhiteKS
	masks[A1] &^= WhiteQS
	masks[E8] &^= BlackKS | BlackQS
	masks[H8] &^= BlackKS
	masks[A8] &^= BlackQS
	return masks
}()

// String returns the FEN castling field.
func (cr CastleRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKS != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQS != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKS != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQS != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// Board is the authoritative position. It is a plain value: search code
// clones it with an assignment and plays moves on the clone.
type Board struct {
	// Piece occupancy by kind, and by color. The union of the six piece
	// bitboards always equals Colors[White] | Colors[Black], and the two
	// color sets are disjoint.
	Pieces [PieceCount]Bitboard
	Colors [ColorCount]Bitboard

	Stm          Color
	CastleRights CastleRights
	EPSquare     Square // en passant target, NoSquare if none
	HalfMoves    int    // plies since the last pawn move or capture

	// Rolling Zobrist hash, maintained by move application.
	Hash uint64
}

// PieceBB returns the bitboard of one piece kind in one color.
func (b *Board) PieceBB(p Piece, c Color) Bitboard {
	return b.Pieces[p] & b.Colors[c]
}

// Us returns the side-to-move occupancy.
func (b *Board) Us() Bitboard {
	return b.Colors[b.Stm]
}

// Them returns the opponent occupancy.
func (b *Board) Them() Bitboard {
	return b.Colors[b.Stm.Flip()]
}

// Occupied returns the full occupancy.
func (b *Board) Occupied() Bitboard {
	return b.Colors[White] | b.Colors[Black]
}

// PieceOn returns the piece kind on a square, or NoPiece.
func (b *Board) PieceOn(sq Square) Piece {
	bb := sq.Bitboard()
	for p := Knight; p <= King; p++ {
		if b.Pieces[p].Overlaps(bb) {
			return p
		}
	}
	return NoPiece
}

// ColorOn returns the color occupying a square. Only valid for occupied
// squares.
func (b *Board) ColorOn(sq Square) Color {
	if b.Colors[White].IsSet(sq) {
		return White
	}
	return Black
}

// KingSquare returns the king square for a color.
func (b *Board) KingSquare(c Color) Square {
	return (b.Pieces[King] & b.Colors[c]).LSB()
}

// PromotablePawns returns the side-to-move pawns one push away from the
// back rank.
func (b *Board) PromotablePawns() Bitboard {
	if b.Stm == White {
		return b.PieceBB(Pawn, White) & Rank7
	}
	return b.PieceBB(Pawn, Black) & Rank2
}

// HasNonPawnMaterial reports whether the side to move owns at least one
// piece besides pawns and the king. Null-move pruning requires it as a
// conservative zugzwang gate.
func (b *Board) HasNonPawnMaterial() bool {
	minors := b.Pieces[Knight] | b.Pieces[Bishop] | b.Pieces[Rook] | b.Pieces[Queen]
	return minors.Overlaps(b.Us())
}

// IsAttacked returns true if the square is attacked by the given color.
func (b *Board) IsAttacked(sq Square, by Color) bool {
	occupied := b.Occupied()

	if PawnAttacks(sq, by.Flip()).Overlaps(b.PieceBB(Pawn, by)) {
		return true
	}
	if KnightAttacks(sq).Overlaps(b.PieceBB(Knight, by)) {
		return true
	}
	if KingAttacks(sq).Overlaps(b.PieceBB(King, by)) {
		return true
	}

	diag := b.Pieces[Bishop] | b.Pieces[Queen]
	if BishopAttacks(sq, occupied).Overlaps(diag & b.Colors[by]) {
		return true
	}
	straight := b.Pieces[Rook] | b.Pieces[Queen]
	return RookAttacks(sq, occupied).Overlaps(straight & b.Colors[by])
}

// InCheck returns true if the side to move is in check.
func (b *Board) InCheck() bool {
	return b.IsAttacked(b.KingSquare(b.Stm), b.Stm.Flip())
}

// Castle path masks: squares that must be empty, and squares the king
// crosses (which must not be attacked, the king square included).
var (
	ksCastleEmpty  = [ColorCount]Bitboard{F1.Bitboard() | G1.Bitboard(), F8.Bitboard() | G8.Bitboard()}
	qsCastleEmpty  = [ColorCount]Bitboard{B1.Bitboard() | C1.Bitboard() | D1.Bitboard(), B8.Bitboard() | C8.Bitboard() | D8.Bitboard()}
	ksCastleChecks = [ColorCount][3]Square{{E1, F1, G1}, {E8, F8, G8}}
	qsCastleChecks = [ColorCount][3]Square{{E1, D1, C1}, {E8, D8, C8}}
)

// CanKSCastle reports whether the side to move may castle kingside right
// now: the right is intact, the path is clear, and the king does not start
// in, cross, or land on an attacked square.
func (b *Board) CanKSCastle() bool {
	us := b.Stm
	right := WhiteKS
	if us == Black {
		right = BlackKS
	}
	if b.CastleRights&right == 0 || b.Occupied().Overlaps(ksCastleEmpty[us]) {
		return false
	}
	them := us.Flip()
	for _, sq := range ksCastleChecks[us] {
		if b.IsAttacked(sq, them) {
			return false
		}
	}
	return true
}

// CanQSCastle is the queenside analogue of CanKSCastle. The b-file square
// only needs to be empty, not safe.
func (b *Board) CanQSCastle() bool {
	us := b.Stm
	right := WhiteQS
	if us == Black {
		right = BlackQS
	}
	if b.CastleRights&right == 0 || b.Occupied().Overlaps(qsCastleEmpty[us]) {
		return false
	}
	them := us.Flip()
	for _, sq := range qsCastleChecks[us] {
		if b.IsAttacked(sq, them) {
			return false
		}
	}
	return true
}

func (b *Board) addPiece(p Piece, c Color, sq Square) {
	bb := sq.Bitboard()
	b.Pieces[p] |= bb
	b.Colors[c] |= bb
	b.Hash ^= zobristPieces[c][p][sq]
}

func (b *Board) removePiece(p Piece, c Color, sq Square) {
	bb := sq.Bitboard()
	b.Pieces[p] &^= bb
	b.Colors[c] &^= bb
	b.Hash ^= zobristPieces[c][p][sq]
}

// TryPlayMove applies a move to the board, maintaining the rolling hash.
// If the move leaves the mover's king attacked (or a castle is currently
// impossible), it returns false; the receiver is then in an undefined state
// and must be discarded, which is why callers always play on a clone.
func (b *Board) TryPlayMove(mv Move) bool {
	us := b.Stm
	them := us.Flip()
	from := mv.From()
	to := mv.To()
	flag := mv.Flag()
	piece := b.PieceOn(from)

	if piece == NoPiece || !b.Colors[us].IsSet(from) {
		return false
	}

	b.Hash ^= zobristBlackToMove
	if b.EPSquare != NoSquare {
		b.Hash ^= zobristEPFile[b.EPSquare.File()]
		b.EPSquare = NoSquare
	}

	captured := NoPiece
	switch flag {
	case FlagKSCastle:
		if !b.CanKSCastle() {
			return false
		}
		rookFrom := NewSquare(7, from.Rank())
		rookTo := NewSquare(5, from.Rank())
		b.removePiece(King, us, from)
		b.addPiece(King, us, to)
		b.removePiece(Rook, us, rookFrom)
		b.addPiece(Rook, us, rookTo)

	case FlagQSCastle:
		if !b.CanQSCastle() {
			return false
		}
		rookFrom := NewSquare(0, from.Rank())
		rookTo := NewSquare(3, from.Rank())
		b.removePiece(King, us, from)
		b.addPiece(King, us, to)
		b.removePiece(Rook, us, rookFrom)
		b.addPiece(Rook, us, rookTo)

	case FlagDoublePush:
		b.removePiece(Pawn, us, from)
		b.addPiece(Pawn, us, to)
		ep := Square((int(from) + int(to)) / 2)
		b.EPSquare = ep
		b.Hash ^= zobristEPFile[ep.File()]

	case FlagEP:
		capturedSq := to - 8
		if us == Black {
			capturedSq = to + 8
		}
		captured = Pawn
		b.removePiece(Pawn, them, capturedSq)
		b.removePiece(Pawn, us, from)
		b.addPiece(Pawn, us, to)

	default:
		if mv.IsCapture() {
			captured = b.PieceOn(to)
			if captured == NoPiece {
				return false
			}
			b.removePiece(captured, them, to)
		}
		b.removePiece(piece, us, from)
		if mv.IsPromo() {
			b.addPiece(mv.PromoPiece(), us, to)
		} else {
			b.addPiece(piece, us, to)
		}
	}

	oldRights := b.CastleRights
	b.CastleRights &= castleRightsMask[from] & castleRightsMask[to]
	if b.CastleRights != oldRights {
		b.Hash ^= zobristCastling[oldRights] ^ zobristCastling[b.CastleRights]
	}

	if piece == Pawn || captured != NoPiece {
		b.HalfMoves = 0
	} else {
		b.HalfMoves++
	}

	b.Stm = them

	return !b.IsAttacked(b.KingSquare(us), them)
}

// PlayNullMove passes the turn: side to move flips, the en passant target
// clears, and the hash follows. Nothing else changes.
func (b *Board) PlayNullMove() {
	b.Hash ^= zobristBlackToMove
	if b.EPSquare != NoSquare {
		b.Hash ^= zobristEPFile[b.EPSquare.File()]
		b.EPSquare = NoSquare
	}
	b.Stm = b.Stm.Flip()
}

// String returns a printable diagram of the board.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			p := b.PieceOn(sq)
			if p == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteByte(p.Char(b.ColorOn(sq)))
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
