package board

// Polyglot-style hashing for the opening book. The key schedule mirrors the
// Polyglot layout (768 piece keys, 4 castling, 8 en passant files, one
// side-to-move key) and is generated from its own fixed-seed PRNG, so hashes
// are reproducible across runs. The key values are not the standard Polyglot
// random table, so books keyed with that table do not match these hashes.
var (
	polyglotPieces      [768]uint64
	polyglotCastling    [4]uint64
	polyglotEnPassant   [8]uint64
	polyglotWhiteToMove uint64
)

func init() {
	rng := prng{state: 0x37B4A4B3F0D1C0D0}

	for i := range polyglotPieces {
		polyglotPieces[i] = rng.next()
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = rng.next()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = rng.next()
	}
	polyglotWhiteToMove = rng.next()
}

// polyglotPieceKind maps a piece and color to the Polyglot piece ordering:
// black pawn = 0, white pawn = 1, black knight = 2, ...
func polyglotPieceKind(p Piece, c Color) int {
	order := [PieceCount]int{1, 2, 3, 4, 0, 5} // knight..king, pawn first in polyglot
	kind := 2 * order[p]
	if c == White {
		kind++
	}
	return kind
}

// PolyglotHash computes the opening-book hash of the position.
func (b *Board) PolyglotHash() uint64 {
	var hash uint64

	for c := White; c <= Black; c++ {
		for p := Knight; p <= King; p++ {
			bb := b.PieceBB(p, c)
			for !bb.Empty() {
				sq := bb.PopLSB()
				hash ^= polyglotPieces[polyglotPieceKind(p, c)*64+int(sq)]
			}
		}
	}

	if b.CastleRights&WhiteKS != 0 {
		hash ^= polyglotCastling[0]
	}
	if b.CastleRights&WhiteQS != 0 {
		hash ^= polyglotCastling[1]
	}
	if b.CastleRights&BlackKS != 0 {
		hash ^= polyglotCastling[2]
	}
	if b.CastleRights&BlackQS != 0 {
		hash ^= polyglotCastling[3]
	}

	// The en passant file is hashed only when a pawn can actually capture.
	if b.EPSquare != NoSquare {
		them := b.Stm.Flip()
		if PawnAttacks(b.EPSquare, them).Overlaps(b.PieceBB(Pawn, b.Stm)) {
			hash ^= polyglotEnPassant[b.EPSquare.File()]
		}
	}

	if b.Stm == White {
		hash ^= polyglotWhiteToMove
	}

	return hash
}
