package pool

import "fmt"

// Pair is a bidirectional view of two assets inside one pool. It is derived
// data: pairs are regenerated from a pool via Pairs and borrow the pool for
// the duration of a simulation call, they never own it. The indices are the
// assets' positions in the parent pool at creation time and stay valid for
// the pool's lifetime because a pool's asset list never changes.
type Pair struct {
	Asset0 string
	Asset1 string

	index0 int
	index1 int
	pool   *Pool
}

// Convert trades amount of asset for the pair's opposite asset and returns
// the target asset together with the delivered amount. The parent pool is
// mutated; see Pool.Convert.
func (pr *Pair) Convert(asset string, amount float64, withFees bool) (string, float64, error) {
	var target string
	switch asset {
	case pr.Asset0:
		target = pr.Asset1
	case pr.Asset1:
		target = pr.Asset0
	default:
		return "", 0, fmt.Errorf("%w: pair %s has no asset %q", ErrImpossibleConversion, pr, asset)
	}

	out, err := pr.pool.Convert(asset, amount, target, withFees)
	if err != nil {
		return "", 0, err
	}
	return target, out, nil
}

// Pool returns the parent pool this pair delegates to.
func (pr *Pair) Pool() *Pool {
	return pr.pool
}

func (pr *Pair) String() string {
	return pr.Asset0 + "/" + pr.Asset1
}
