package board

// Move generation is split into noisy moves (captures, en passant, queen
// promotions) and quiet moves (everything else) so the search's staged move
// picker can generate each batch on demand.

// GenerateNoisy appends all pseudo-legal noisy moves to the list.
func (b *Board) GenerateNoisy(ml *MoveList) {
	us := b.Stm
	them := b.Them()
	occupied := b.Occupied()

	b.genPieceMoves(ml, them, FlagCapture)

	pawns := b.PieceBB(Pawn, us)
	promoPawns := b.PromotablePawns()
	normalPawns := pawns &^ promoPawns

	// Promotion captures and push promotions surface only the queen here;
	// the underpromotions are generated with the quiets.
	for bb := promoPawns; !bb.Empty(); {
		from := bb.PopLSB()
		for attacks := PawnAttacks(from, us) & them; !attacks.Empty(); {
			ml.Add(NewMove(from, attacks.PopLSB(), FlagQueenCapturePromo))
		}
	}
	for pushes := PawnSinglePush(promoPawns, occupied, us); !pushes.Empty(); {
		to := pushes.PopLSB()
		ml.Add(NewMove(pawnPushOrigin(to, us), to, FlagQueenPromo))
	}

	for bb := normalPawns; !bb.Empty(); {
		from := bb.PopLSB()
		for attacks := PawnAttacks(from, us) & them; !attacks.Empty(); {
			ml.Add(NewMove(from, attacks.PopLSB(), FlagCapture))
		}
	}

	if b.EPSquare != NoSquare {
		for attackers := PawnAttacks(b.EPSquare, us.Flip()) & pawns; !attackers.Empty(); {
			ml.Add(NewMove(attackers.PopLSB(), b.EPSquare, FlagEP))
		}
	}
}

// GenerateQuiets appends all pseudo-legal quiet moves to the list:
// non-captures, castles, double pushes, and underpromotions.
func (b *Board) GenerateQuiets(ml *MoveList) {
	us := b.Stm
	them := b.Them()
	occupied := b.Occupied()

	b.genPieceMoves(ml, ^occupied, FlagQuiet)

	pawns := b.PieceBB(Pawn, us)
	promoPawns := b.PromotablePawns()
	normalPawns := pawns &^ promoPawns

	underpromos := [3]MoveFlag{FlagKnightPromo, FlagBishopPromo, FlagRookPromo}
	underCapPromos := [3]MoveFlag{FlagKnightCapturePromo, FlagBishopCapturePromo, FlagRookCapturePromo}

	for bb := promoPawns; !bb.Empty(); {
		from := bb.PopLSB()
		for attacks := PawnAttacks(from, us) & them; !attacks.Empty(); {
			to := attacks.PopLSB()
			for _, flag := range underCapPromos {
				ml.Add(NewMove(from, to, flag))
			}
		}
	}
	for pushes := PawnSinglePush(promoPawns, occupied, us); !pushes.Empty(); {
		to := pushes.PopLSB()
		from := pawnPushOrigin(to, us)
		for _, flag := range underpromos {
			ml.Add(NewMove(from, to, flag))
		}
	}

	singles := PawnSinglePush(normalPawns, occupied, us)
	for bb := singles; !bb.Empty(); {
		to := bb.PopLSB()
		ml.Add(NewMove(pawnPushOrigin(to, us), to, FlagQuiet))
	}
	for doubles := PawnDoublePush(singles, occupied, us); !doubles.Empty(); {
		to := doubles.PopLSB()
		ml.Add(NewMove(to.doublePushOrigin(), to, FlagDoublePush))
	}

	if b.CanKSCastle() {
		ml.Add(NewKSCastle(b.KingSquare(us)))
	}
	if b.CanQSCastle() {
		ml.Add(NewQSCastle(b.KingSquare(us)))
	}
}

// genPieceMoves adds knight, bishop, rook, queen, and king moves whose
// destinations fall in filter.
func (b *Board) genPieceMoves(ml *MoveList, filter Bitboard, flag MoveFlag) {
	us := b.Stm
	occupied := b.Occupied()

	for bb := b.PieceBB(Knight, us); !bb.Empty(); {
		from := bb.PopLSB()
		for moves := KnightAttacks(from) & filter; !moves.Empty(); {
			ml.Add(NewMove(from, moves.PopLSB(), flag))
		}
	}
	for bb := b.PieceBB(Bishop, us); !bb.Empty(); {
		from := bb.PopLSB()
		for moves := BishopAttacks(from, occupied) & filter; !moves.Empty(); {
			ml.Add(NewMove(from, moves.PopLSB(), flag))
		}
	}
	for bb := b.PieceBB(Rook, us); !bb.Empty(); {
		from := bb.PopLSB()
		for moves := RookAttacks(from, occupied) & filter; !moves.Empty(); {
			ml.Add(NewMove(from, moves.PopLSB(), flag))
		}
	}
	for bb := b.PieceBB(Queen, us); !bb.Empty(); {
		from := bb.PopLSB()
		for moves := QueenAttacks(from, occupied) & filter; !moves.Empty(); {
			ml.Add(NewMove(from, moves.PopLSB(), flag))
		}
	}

	from := b.KingSquare(us)
	for moves := KingAttacks(from) & filter; !moves.Empty(); {
		ml.Add(NewMove(from, moves.PopLSB(), flag))
	}
}

// pawnPushOrigin returns the square a single push to sq came from.
func pawnPushOrigin(sq Square, c Color) Square {
	if c == White {
		return sq - 8
	}
	return sq + 8
}

// GenerateAll appends every pseudo-legal move.
func (b *Board) GenerateAll(ml *MoveList) {
	b.GenerateNoisy(ml)
	b.GenerateQuiets(ml)
}

// LegalMoves returns the legal moves for the position, filtering the
// pseudo-legal set through clone-and-play.
func (b *Board) LegalMoves() *MoveList {
	var pseudo, legal MoveList
	b.GenerateAll(&pseudo)
	for i := 0; i < pseudo.Len(); i++ {
		clone := *b
		if clone.TryPlayMove(pseudo.Get(i)) {
			legal.Add(pseudo.Get(i))
		}
	}
	return &legal
}

// HasLegalMoves reports whether the side to move has any legal move.
func (b *Board) HasLegalMoves() bool {
	var pseudo MoveList
	b.GenerateAll(&pseudo)
	for i := 0; i < pseudo.Len(); i++ {
		clone := *b
		if clone.TryPlayMove(pseudo.Get(i)) {
			return true
		}
	}
	return false
}

// IsPseudoLegal verifies that a speculative move (from the transposition
// table or the killer slot) could have been generated for this position.
// It never plays the move, so it cannot vouch for full legality.
func (b *Board) IsPseudoLegal(mv Move) bool {
	if mv.IsNull() {
		return false
	}

	from := mv.From()
	to := mv.To()
	fromBB := from.Bitboard()
	toBB := to.Bitboard()
	us := b.Us()
	them := b.Them()
	occupied := b.Occupied()
	flag := mv.Flag()

	// The from-square must hold one of our pieces.
	if !fromBB.Overlaps(us) {
		return false
	}
	// Captures other than en passant must take an enemy piece.
	if mv.IsCapture() && flag != FlagEP && !toBB.Overlaps(them) {
		return false
	}
	// Non-captures must land on an empty square.
	if !mv.IsCapture() && toBB.Overlaps(occupied) {
		return false
	}

	piece := b.PieceOn(from)
	stm := b.Stm

	switch flag {
	case FlagQuiet, FlagCapture:
		var moves Bitboard
		switch piece {
		case Knight:
			moves = KnightAttacks(from)
		case Bishop:
			moves = BishopAttacks(from, occupied)
		case Rook:
			moves = RookAttacks(from, occupied)
		case Queen:
			moves = QueenAttacks(from, occupied)
		case King:
			moves = KingAttacks(from)
		default: // pawn
			pawn := fromBB &^ b.PromotablePawns()
			if flag == FlagQuiet {
				moves = PawnSinglePush(pawn, occupied, stm)
			} else {
				if pawn.Empty() {
					return false
				}
				moves = PawnAttacks(from, stm)
			}
		}
		return toBB.Overlaps(moves)

	case FlagDoublePush:
		single := PawnSinglePush(fromBB, occupied, stm)
		return piece == Pawn && toBB.Overlaps(PawnDoublePush(single, occupied, stm))

	case FlagKSCastle:
		return b.CanKSCastle() && from == b.KingSquare(stm)

	case FlagQSCastle:
		return b.CanQSCastle() && from == b.KingSquare(stm)

	case FlagEP:
		return piece == Pawn && b.EPSquare == to &&
			PawnAttacks(from, stm).Overlaps(to.Bitboard())

	default: // promotions
		pawn := fromBB & b.PromotablePawns()
		if pawn.Empty() {
			return false
		}
		var moves Bitboard
		if mv.IsCapture() {
			moves = PawnAttacks(from, stm)
		} else {
			moves = PawnSinglePush(pawn, occupied, stm)
		}
		return toBB.Overlaps(moves)
	}
}
