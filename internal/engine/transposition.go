package engine

import (
	"sync/atomic"

	"github.com/spamdrew128/Galumph/internal/board"
)

// TTFlag is the 2-bit bound kind of a transposition table entry.
type TTFlag uint8

const (
	TTUninitialized TTFlag = iota
	TTLowerBound
	TTExact
	TTUpperBound
)

// DetermineTTFlag derives the bound kind from how the search window moved.
func DetermineTTFlag(bestScore, oldAlpha, alpha, beta int) TTFlag {
	switch {
	case bestScore >= beta:
		return TTLowerBound
	case alpha != oldAlpha:
		return TTExact
	default:
		return TTUpperBound
	}
}

// TTEntry is one unpacked transposition table entry. On the wire it is a
// single uint64:
//
//	bits 0-15   move
//	bits 16-31  score (int16, mate scores ply-relative)
//	bits 32-47  verification key (upper 16 bits of the hash)
//	bits 48-53  age
//	bits 54-55  flag
//	bits 56-63  depth
type TTEntry struct {
	Move  board.Move
	score int16
	key   uint16
	age   uint8
	flag  TTFlag
	depth uint8
}

const ttAgeMax = 63 // largest value that fits the 6-bit age field

func packEntry(e TTEntry) uint64 {
	return uint64(e.Move) |
		uint64(uint16(e.score))<<16 |
		uint64(e.key)<<32 |
		uint64(e.age)<<48 |
		uint64(e.flag)<<54 |
		uint64(e.depth)<<56
}

func unpackEntry(data uint64) TTEntry {
	return TTEntry{
		Move:  board.Move(data),
		score: int16(data >> 16),
		key:   uint16(data >> 32),
		age:   uint8(data>>48) & ttAgeMax,
		flag:  TTFlag(data>>54) & 0b11,
		depth: uint8(data >> 56),
	}
}

func keyFromHash(hash uint64) uint16 {
	return uint16(hash >> 48)
}

// scoreToTT converts a score to node-relative form for storage: mate
// distances are shifted by the current ply so they stay correct wherever
// the entry is probed.
func scoreToTT(score, ply int) int16 {
	if score >= MateThreshold {
		return int16(score + ply)
	}
	if score <= -MateThreshold {
		return int16(score - ply)
	}
	return int16(score)
}

// ScoreFromTT converts a stored score back to be relative to the probing
// node's position.
func (e TTEntry) ScoreFromTT(ply int) int {
	score := int(e.score)
	if score >= MateThreshold {
		return score - ply
	}
	if score <= -MateThreshold {
		return score + ply
	}
	return score
}

// CutoffIsPossible reports whether the entry's bound allows returning its
// score at the given window and depth.
func (e TTEntry) CutoffIsPossible(alpha, beta, depth int) bool {
	if int(e.depth) < depth {
		return false
	}
	score := int(e.score)
	switch e.flag {
	case TTExact:
		return true
	case TTLowerBound:
		return score >= beta
	case TTUpperBound:
		return score <= alpha
	default:
		return false
	}
}

// quality orders entries for replacement: newer and deeper wins.
func (e TTEntry) quality() int {
	return 2*int(e.age) + int(e.depth)
}

// TranspositionTable is a fixed-size cache of search results shared across
// iterations. Each slot is one 64-bit atomic cell, so a torn read is
// impossible and the table is safe to share without locks.
type TranspositionTable struct {
	table []atomic.Uint64
	age   uint8
}

// NewTranspositionTable allocates a table of the given size in megabytes.
func NewTranspositionTable(megabytes int) *TranspositionTable {
	const bytesPerEntry = 8
	entries := megabytes * 1024 * 1024 / bytesPerEntry
	return &TranspositionTable{table: make([]atomic.Uint64, entries)}
}

func (tt *TranspositionTable) indexFromHash(hash uint64) int {
	return int(hash % uint64(len(tt.table)))
}

// Store writes an entry if its quality is at least the incumbent's. A store
// with a null best move keeps the slot's previous move when the slot holds
// the same position.
func (tt *TranspositionTable) Store(flag TTFlag, bestScore int, hash uint64, ply, depth int, bestMove board.Move) {
	newEntry := TTEntry{
		Move:  bestMove,
		score: scoreToTT(bestScore, ply),
		key:   keyFromHash(hash),
		age:   tt.age,
		flag:  flag,
		depth: uint8(depth),
	}

	idx := tt.indexFromHash(hash)
	oldEntry := unpackEntry(tt.table[idx].Load())

	if newEntry.quality() >= oldEntry.quality() {
		if bestMove.IsNull() && newEntry.key == oldEntry.key {
			newEntry.Move = oldEntry.Move
		}
		tt.table[idx].Store(packEntry(newEntry))
	}
}

// Probe returns the entry for a hash if the verification key matches and
// the slot has been written.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	entry := unpackEntry(tt.table[tt.indexFromHash(hash)].Load())
	if entry.key == keyFromHash(hash) && entry.flag != TTUninitialized {
		return entry, true
	}
	return TTEntry{}, false
}

// AgeTable advances the age counter once per root search. When the 6-bit
// counter wraps, every entry's age is swept back to zero.
func (tt *TranspositionTable) AgeTable() {
	if tt.age == ttAgeMax {
		tt.age = 0
		for i := range tt.table {
			e := unpackEntry(tt.table[i].Load())
			e.age = 0
			tt.table[i].Store(packEntry(e))
		}
	}
	tt.age++
}

// Resize reallocates the table at a new size in megabytes, discarding all
// entries.
func (tt *TranspositionTable) Resize(megabytes int) {
	const bytesPerEntry = 8
	entries := megabytes * 1024 * 1024 / bytesPerEntry
	tt.table = make([]atomic.Uint64, entries)
	tt.age = 0
}

// Reset clears every entry. Used by "ucinewgame".
func (tt *TranspositionTable) Reset() {
	for i := range tt.table {
		tt.table[i].Store(0)
	}
	tt.age = 0
}

// Hashfull samples the first thousand entries and reports how many are in
// use, in permille, for UCI info output.
func (tt *TranspositionTable) Hashfull() int {
	sample := min(1000, len(tt.table))
	used := 0
	for i := 0; i < sample; i++ {
		if unpackEntry(tt.table[i].Load()).flag != TTUninitialized {
			used++
		}
	}
	return used * 1000 / sample
}
