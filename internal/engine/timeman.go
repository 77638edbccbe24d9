package engine

import (
	"time"

	"github.com/spamdrew128/Galumph/internal/board"
)

// SearchConfig carries the limits of one "go" command. It is copied by
// value into the search goroutine.
type SearchConfig struct {
	Time      [board.ColorCount]time.Duration // remaining clock per side
	Inc       [board.ColorCount]time.Duration // increment per side
	MovesToGo int                             // moves to the next time control, informational

	MoveTime time.Duration // fixed time for this move
	Depth    int           // maximum depth, 0 = unlimited
	Nodes    uint64        // node budget, 0 = unlimited
	Infinite bool          // search until "stop"

	Overhead time.Duration // communication overhead subtracted from budgets
}

// SearchTimer tracks the hard wall-clock budget of a search against a
// monotonic start time. The zero value is an inactive timer (depth, node,
// and infinite searches have no deadline).
type SearchTimer struct {
	start    time.Time
	deadline time.Duration
	active   bool
}

// NewSearchTimer starts a timer with the given hard limit.
func NewSearchTimer(hardLimit time.Duration) SearchTimer {
	if hardLimit < time.Millisecond {
		hardLimit = time.Millisecond
	}
	return SearchTimer{start: time.Now(), deadline: hardLimit, active: true}
}

// timerFromConfig selects the hard-limit policy: an explicit movetime wins,
// otherwise a standard clock allocation of time/25 + inc/2. Both are
// reduced by the configured overhead. Searches with no clock get no timer.
func timerFromConfig(stm board.Color, config *SearchConfig) SearchTimer {
	if config.Infinite {
		return SearchTimer{}
	}
	if config.MoveTime > 0 {
		return NewSearchTimer(config.MoveTime - config.Overhead)
	}
	if config.Time[stm] > 0 {
		budget := config.Time[stm]/25 + config.Inc[stm]/2 - config.Overhead
		return NewSearchTimer(budget)
	}
	return SearchTimer{}
}

// HardExpired reports whether the budget is spent.
func (t *SearchTimer) HardExpired() bool {
	return t.active && time.Since(t.start) >= t.deadline
}

// Elapsed returns the time since the search started.
func (t *SearchTimer) Elapsed() time.Duration {
	return time.Since(t.start)
}
