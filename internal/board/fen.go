package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// StartBoard returns the starting position.
func StartBoard() Board {
	b, _ := FromFEN(StartFEN)
	return b
}

// FromFEN parses a FEN string. The move-number field is accepted but not
// retained; the half-move clock is.
func FromFEN(fen string) (Board, error) {
	var b Board
	b.EPSquare = NoSquare

	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return b, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("invalid FEN: need 8 ranks, got %d", len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if file > 7 {
				return b, fmt.Errorf("too many squares in rank %d", rank+1)
			}
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			piece, color := PieceFromChar(ch)
			if piece == NoPiece {
				return b, fmt.Errorf("invalid piece character: %c", ch)
			}
			sq := NewSquare(file, rank)
			b.Pieces[piece] |= sq.Bitboard()
			b.Colors[color] |= sq.Bitboard()
			file++
		}
		if file != 8 {
			return b, fmt.Errorf("rank %d has %d squares", rank+1, file)
		}
	}

	switch parts[1] {
	case "w":
		b.Stm = White
	case "b":
		b.Stm = Black
	default:
		return b, fmt.Errorf("invalid side to move: %q", parts[1])
	}

	if parts[2] != "-" {
		for j := 0; j < len(parts[2]); j++ {
			switch parts[2][j] {
			case 'K':
				b.CastleRights |= WhiteKS
			case 'Q':
				b.CastleRights |= WhiteQS
			case 'k':
				b.CastleRights |= BlackKS
			case 'q':
				b.CastleRights |= BlackQS
			default:
				return b, fmt.Errorf("invalid castling character: %c", parts[2][j])
			}
		}
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return b, fmt.Errorf("invalid en passant square: %q", parts[3])
		}
		b.EPSquare = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return b, fmt.Errorf("invalid half-move clock: %q", parts[4])
		}
		b.HalfMoves = hmc
	}

	b.Hash = b.CompleteHash()
	return b, nil
}

// ToFEN serializes the position. The move number is not tracked and is
// always emitted as 1.
func (b *Board) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			p := b.PieceOn(sq)
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Char(b.ColorOn(sq)))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.Stm == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.CastleRights.String())
	sb.WriteByte(' ')
	sb.WriteString(b.EPSquare.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfMoves))
	sb.WriteString(" 1")

	return sb.String()
}
