package board

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(b *Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var ml MoveList
	b.GenerateAll(&ml)

	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		clone := *b
		if !clone.TryPlayMove(ml.Get(i)) {
			continue
		}
		if depth == 1 {
			nodes++
		} else {
			nodes += Perft(&clone, depth-1)
		}
	}
	return nodes
}

// PerftDivideEntry is the subtree count for one root move.
type PerftDivideEntry struct {
	Move  Move
	Nodes uint64
}

// PerftDivide runs perft split by root move, with the root moves searched in
// parallel. Used by the CLI "perft" debug command.
func PerftDivide(b *Board, depth int) ([]PerftDivideEntry, uint64) {
	moves := b.LegalMoves()
	entries := make([]PerftDivideEntry, moves.Len())
	var total atomic.Uint64

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < moves.Len(); i++ {
		i := i
		mv := moves.Get(i)
		g.Go(func() error {
			clone := *b
			clone.TryPlayMove(mv)
			n := Perft(&clone, depth-1)
			entries[i] = PerftDivideEntry{Move: mv, Nodes: n}
			total.Add(n)
			return nil
		})
	}
	g.Wait()

	return entries, total.Load()
}
