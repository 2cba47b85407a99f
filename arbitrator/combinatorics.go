package arbitrator

import "github.com/arbsim/arbsim-go/pool"

// eachCombination invokes fn once per unordered k-combination of the indices
// 0..n-1. The slice passed to fn is reused between calls; fn must not retain
// it. A non-nil error from fn aborts the enumeration.
func eachCombination(n, k int, fn func(indices []int) error) error {
	if k <= 0 || k > n {
		return nil
	}
	indices := make([]int, k)
	var recurse func(start, depth int) error
	recurse = func(start, depth int) error {
		if depth == k {
			return fn(indices)
		}
		for i := start; i <= n-(k-depth); i++ {
			indices[depth] = i
			if err := recurse(i+1, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return recurse(0, 0)
}

// eachPermutation invokes fn once per ordering of items, using Heap's
// algorithm. The slice passed to fn is the working buffer; fn must copy it if
// it keeps a reference. A non-nil error from fn aborts the enumeration.
func eachPermutation(items []*pool.Pair, fn func(perm []*pool.Pair) error) error {
	work := append([]*pool.Pair(nil), items...)
	counters := make([]int, len(work))

	if err := fn(work); err != nil {
		return err
	}
	for i := 0; i < len(work); {
		if counters[i] < i {
			if i%2 == 0 {
				work[0], work[i] = work[i], work[0]
			} else {
				work[counters[i]], work[i] = work[i], work[counters[i]]
			}
			if err := fn(work); err != nil {
				return err
			}
			counters[i]++
			i = 0
		} else {
			counters[i] = 0
			i++
		}
	}
	return nil
}
