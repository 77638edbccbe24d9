// Package book implements a Polyglot-format opening book probed at the
// search root.
package book

import (
	"encoding/binary"
	"io"
	"math/rand"
	"os"

	"github.com/spamdrew128/Galumph/internal/board"
)

// Entry is one book move with its selection weight.
type Entry struct {
	From, To board.Square
	Promo    board.Piece // NoPiece when not a promotion
	Weight   uint16
}

// Book maps position keys to their weighted book moves.
type Book struct {
	entries map[uint64][]Entry
	rng     *rand.Rand
}

// Load reads a Polyglot book file.
func Load(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadReader(f)
}

// LoadReader reads Polyglot records: 8-byte key, 2-byte move, 2-byte
// weight, 4-byte learn field, all big-endian.
func LoadReader(r io.Reader) (*Book, error) {
	b := &Book{
		entries: make(map[uint64][]Entry),
		rng:     rand.New(rand.NewSource(1)),
	}

	var record [16]byte
	for {
		if _, err := io.ReadFull(r, record[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}

		key := binary.BigEndian.Uint64(record[0:8])
		moveData := binary.BigEndian.Uint16(record[8:10])
		weight := binary.BigEndian.Uint16(record[10:12])

		b.entries[key] = append(b.entries[key], decodeMove(moveData, weight))
	}

	return b, nil
}

// decodeMove unpacks the Polyglot move encoding: to in bits 0-5, from in
// bits 6-11, promotion piece in bits 12-14.
func decodeMove(data uint16, weight uint16) Entry {
	to := board.NewSquare(int(data&7), int((data>>3)&7))
	from := board.NewSquare(int((data>>6)&7), int((data>>9)&7))

	promo := board.NoPiece
	// Polyglot promotion order: 1=knight, 2=bishop, 3=rook, 4=queen.
	if p := (data >> 12) & 7; p >= 1 && p <= 4 {
		promo = board.Piece(p - 1)
	}

	return Entry{From: from, To: to, Promo: promo, Weight: weight}
}

// Probe returns a legal book move for the position, selected at random with
// probability proportional to weight. The boolean is false when the
// position is out of book.
func (b *Book) Probe(pos *board.Board) (board.Move, bool) {
	if b == nil {
		return board.NullMove, false
	}

	candidates := b.entries[pos.PolyglotHash()]
	if len(candidates) == 0 {
		return board.NullMove, false
	}

	total := 0
	for _, e := range candidates {
		total += int(e.Weight)
	}

	pick := 0
	if total > 0 {
		pick = b.rng.Intn(total)
	}

	for _, e := range candidates {
		pick -= int(e.Weight)
		if pick < 0 || total == 0 {
			if mv, ok := b.matchLegal(pos, e); ok {
				return mv, true
			}
		}
	}

	return board.NullMove, false
}

// matchLegal resolves a book entry against the position's legal moves.
// Polyglot encodes castling as king-takes-rook, which the from/to match on
// the castle flag squares absorbs.
func (b *Book) matchLegal(pos *board.Board, e Entry) (board.Move, bool) {
	from, to := e.From, e.To

	// King-takes-own-rook castling notation.
	if pos.PieceOn(from) == board.King {
		switch {
		case from == board.E1 && to == board.H1:
			to = board.G1
		case from == board.E1 && to == board.A1:
			to = board.C1
		case from == board.E8 && to == board.H8:
			to = board.G8
		case from == board.E8 && to == board.A8:
			to = board.C8
		}
	}

	legal := pos.LegalMoves()
	for i := 0; i < legal.Len(); i++ {
		mv := legal.Get(i)
		if mv.From() != from || mv.To() != to {
			continue
		}
		if mv.IsPromo() {
			if e.Promo != board.NoPiece && mv.PromoPiece() == e.Promo {
				return mv, true
			}
			continue
		}
		if e.Promo == board.NoPiece {
			return mv, true
		}
	}

	return board.NullMove, false
}
