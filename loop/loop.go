// Package loop implements the closed trading cycle: its structural
// validation, its round-trip simulation with mandatory rollback, and the
// search for its profit-maximizing trade size.
package loop

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/arbsim/arbsim-go/optimize"
	"github.com/arbsim/arbsim-go/pool"
)

// ErrInvalidLoop is returned when a pair sequence does not form a closed
// cycle. During enumeration this is an expected filtering signal, not an
// exceptional condition; the arbitrator discards such candidates by the
// thousands.
var ErrInvalidLoop = errors.New("invalid loop")

// Loop is an ordered, validated cycle of pairs that starts and ends at the
// same asset. Once built it is immutable; every simulation pass restores the
// touched pools to their initial state, so a loop can be replayed at many
// candidate amounts.
type Loop struct {
	pairs        []*pool.Pair
	initialAsset string
}

// NewLoop validates the pair sequence and returns the loop. Three conditions
// must hold: at least two pairs, a common asset between the first and last
// pair (the initial asset), and an unbroken conversion chain from the initial
// asset back to itself.
//
// The chain is probed with a unit-amount conversion per hop, resetting each
// touched pool immediately. That makes this a price-path-existence check
// only: a structurally valid loop can still deplete a constant-sum pool at a
// real trade size, which surfaces from Convert, not from here.
func NewLoop(pairs []*pool.Pair) (*Loop, error) {
	if len(pairs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 pairs, got %d", ErrInvalidLoop, len(pairs))
	}

	initial, ok := commonAsset(pairs[0], pairs[len(pairs)-1])
	if !ok {
		return nil, fmt.Errorf("%w: first and last pair share no asset", ErrInvalidLoop)
	}

	asset := initial
	for _, pr := range pairs {
		next, _, err := pr.Convert(asset, 1, true)
		pr.Pool().Reset()
		if errors.Is(err, pool.ErrImpossibleConversion) {
			return nil, fmt.Errorf("%w: chain breaks at %s entering %s", ErrInvalidLoop, asset, pr)
		}
		if err != nil {
			return nil, err
		}
		asset = next
	}
	if asset != initial {
		return nil, fmt.Errorf("%w: chain ends at %s, expected %s", ErrInvalidLoop, asset, initial)
	}

	return &Loop{
		pairs:        append([]*pool.Pair(nil), pairs...),
		initialAsset: initial,
	}, nil
}

// commonAsset returns the asset shared by the first and last pair, preferring
// the first pair's asset0 when both are shared.
func commonAsset(first, last *pool.Pair) (string, bool) {
	if first.Asset0 == last.Asset0 || first.Asset0 == last.Asset1 {
		return first.Asset0, true
	}
	if first.Asset1 == last.Asset0 || first.Asset1 == last.Asset1 {
		return first.Asset1, true
	}
	return "", false
}

// Convert simulates the full round trip: amount of the initial asset is fed
// through every pair in order and the final amount of the initial asset is
// returned. Every distinct pool touched during the walk is reset afterwards,
// on success and on error alike, so the loop is side-effect-free across
// repeated simulations.
//
// A depletion error marks the boundary of the feasible trade-size domain for
// this loop, not a broken loop.
func (l *Loop) Convert(amount float64, withFees bool) (float64, error) {
	touched := make(map[*pool.Pool]struct{}, len(l.pairs))
	defer func() {
		for p := range touched {
			p.Reset()
		}
	}()

	asset := l.initialAsset
	for _, pr := range l.pairs {
		touched[pr.Pool()] = struct{}{}
		next, out, err := pr.Convert(asset, amount, withFees)
		if err != nil {
			return 0, err
		}
		asset, amount = next, out
	}
	return amount, nil
}

// MaxAbsoluteProfit searches for the trade size that maximizes the absolute
// profit Convert(x) - x, with fees applied. The profit surface has no closed
// form once slippage and fees compose across hops, so a Nelder-Mead search is
// run from x0 = 1; infeasible sizes (depleted pools) score as -Inf profit and
// the search moves away from them. The result is a local optimum.
func (l *Loop) MaxAbsoluteProfit() (amount, profit float64, err error) {
	objective := func(x float64) float64 {
		out, convErr := l.Convert(x, true)
		if convErr != nil {
			return math.Inf(1)
		}
		return -(out - x)
	}

	amount, err = optimize.Fmin(objective, 1, optimize.Options{})
	if err != nil {
		return 0, 0, err
	}
	out, err := l.Convert(amount, true)
	if err != nil {
		return 0, 0, err
	}
	return amount, out - amount, nil
}

// InitialAsset returns the asset the loop starts and ends with.
func (l *Loop) InitialAsset() string {
	return l.initialAsset
}

// Size returns the number of pairs in the loop.
func (l *Loop) Size() int {
	return len(l.pairs)
}

// Pairs returns a copy of the loop's pair sequence for inspection.
func (l *Loop) Pairs() []*pool.Pair {
	return append([]*pool.Pair(nil), l.pairs...)
}

// GasCost sums the gas cost metadata of every converter the loop crosses.
func (l *Loop) GasCost() int64 {
	var total int64
	for _, pr := range l.pairs {
		total += pr.Pool().Converter().GasCost
	}
	return total
}

func (l *Loop) String() string {
	parts := make([]string, len(l.pairs))
	for i, pr := range l.pairs {
		parts[i] = pr.String()
	}
	return strings.Join(parts, " -> ")
}
