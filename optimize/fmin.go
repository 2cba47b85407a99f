// Package optimize provides a derivative-free scalar minimizer for objectives
// with no closed form, such as a multi-hop trade's negated profit.
package optimize

import (
	"errors"
	"math"
)

// Nelder-Mead coefficients: reflection, expansion, contraction, shrink.
const (
	rho   = 1.0
	chi   = 2.0
	psi   = 0.5
	sigma = 0.5
)

const (
	// nonZeroDelta and zeroDelta size the initial simplex around x0.
	nonZeroDelta = 0.05
	zeroDelta    = 0.00025

	DefaultMaxIter = 200
	DefaultXTol    = 1e-4
	DefaultFTol    = 1e-4
)

// ErrInvalidObjective is returned when Fmin is called without an objective or
// with a non-finite starting point.
var ErrInvalidObjective = errors.New("optimize: invalid objective")

// Options bound the search. Zero values fall back to the defaults above.
type Options struct {
	MaxIter int
	XTol    float64
	FTol    float64
}

func (o Options) withDefaults() Options {
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.XTol <= 0 {
		o.XTol = DefaultXTol
	}
	if o.FTol <= 0 {
		o.FTol = DefaultFTol
	}
	return o
}

// Fmin minimizes f by a one-dimensional Nelder-Mead simplex search started at
// x0 and returns the best point found. The search is local and heuristic:
// convergence to a global minimum is not guaranteed, and the iteration count
// is capped so an ill-behaved objective cannot spin forever. The objective
// may return +Inf to mark infeasible points; the search treats them as
// ordinary bad values and moves away.
func Fmin(f func(float64) float64, x0 float64, opts Options) (float64, error) {
	if f == nil {
		return 0, ErrInvalidObjective
	}
	if math.IsNaN(x0) || math.IsInf(x0, 0) {
		return 0, ErrInvalidObjective
	}
	opts = opts.withDefaults()

	// Two-point simplex around x0, the scipy fmin construction.
	x1 := x0 * (1 + nonZeroDelta)
	if x0 == 0 {
		x1 = zeroDelta
	}

	best, worst := x0, x1
	fBest, fWorst := f(best), f(worst)
	if fWorst < fBest {
		best, worst = worst, best
		fBest, fWorst = fWorst, fBest
	}

	for iter := 0; iter < opts.MaxIter; iter++ {
		if math.Abs(worst-best) <= opts.XTol && math.Abs(fWorst-fBest) <= opts.FTol {
			break
		}

		// In one dimension the centroid of the non-worst vertices is the best
		// point itself.
		centroid := best
		reflected := centroid + rho*(centroid-worst)
		fReflected := f(reflected)

		var candidate float64
		var fCandidate float64
		switch {
		case fReflected < fBest:
			// Try to expand past the reflection.
			expanded := centroid + rho*chi*(centroid-worst)
			if fExpanded := f(expanded); fExpanded < fReflected {
				candidate, fCandidate = expanded, fExpanded
			} else {
				candidate, fCandidate = reflected, fReflected
			}
		case fReflected < fWorst:
			// Outside contraction.
			contracted := centroid + psi*rho*(centroid-worst)
			if fContracted := f(contracted); fContracted <= fReflected {
				candidate, fCandidate = contracted, fContracted
			} else {
				candidate, fCandidate = reflected, fReflected
			}
		default:
			// Inside contraction; if that fails too, shrink toward the best.
			contracted := centroid - psi*(centroid-worst)
			if fContracted := f(contracted); fContracted < fWorst {
				candidate, fCandidate = contracted, fContracted
			} else {
				candidate = best + sigma*(worst-best)
				fCandidate = f(candidate)
			}
		}

		worst, fWorst = candidate, fCandidate
		if fWorst < fBest {
			best, worst = worst, best
			fBest, fWorst = fWorst, fBest
		}
	}

	return best, nil
}
