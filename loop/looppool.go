package loop

import (
	"math"
	"sort"
)

// LoopPool ranks a collection of loops by simulated unit return.
type LoopPool struct {
	loops []*Loop
}

// NewLoopPool wraps the given loops. The slice is copied.
func NewLoopPool(loops []*Loop) *LoopPool {
	return &LoopPool{loops: append([]*Loop(nil), loops...)}
}

// SortLoops orders the loops descending by the return on one unit of their
// initial asset and returns them. The sort is stable, so loops with equal
// returns keep their insertion order. A loop whose unit simulation fails
// ranks last; that cannot happen for loops produced by the arbitrator, whose
// construction already probed the unit path.
func (lp *LoopPool) SortLoops(withFees bool) []*Loop {
	returns := make(map[*Loop]float64, len(lp.loops))
	for _, l := range lp.loops {
		out, err := l.Convert(1, withFees)
		if err != nil {
			out = math.Inf(-1)
		}
		returns[l] = out
	}
	sort.SliceStable(lp.loops, func(i, j int) bool {
		return returns[lp.loops[i]] > returns[lp.loops[j]]
	})
	return lp.loops
}

// Loops returns the loops in their current order.
func (lp *LoopPool) Loops() []*Loop {
	return lp.loops
}
