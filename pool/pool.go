// Package pool implements the stateful liquidity container the simulation
// trades against, and the pair views derived from it.
package pool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arbsim/arbsim-go/amm"
)

var (
	// ErrInvalidPool is returned when a pool cannot be built from the supplied
	// configuration.
	ErrInvalidPool = errors.New("invalid pool configuration")
	// ErrImpossibleConversion is returned when a requested conversion does not
	// exist in the pool or pair it was asked of.
	ErrImpossibleConversion = errors.New("impossible conversion")
)

// Config describes one pool. Exactly one pricing source must be usable: an
// explicit Converter, or a scalar Rate for the two-asset fixed-rate case.
type Config struct {
	Name   string
	Assets []string

	// Amounts are the tracked balances, one per asset. They may be omitted
	// for a two-asset fixed-rate pool, which then has infinite depth and no
	// slippage.
	Amounts []float64

	// Rate synthesizes an implicit fixed-rate converter (asset0 -> asset1 at
	// Rate, asset1 -> asset0 at 1/Rate). Only valid for exactly two assets.
	Rate float64

	Converter *amm.Converter
}

// Pool owns one converter plus the mutable balance vector the converter's
// invariant operates on. Conversions mutate the balances; Reset restores the
// initial state exactly. Pools are not safe for concurrent simulation.
type Pool struct {
	name           string
	assets         []string
	indexByAsset   map[string]int
	initialAmounts []float64
	amounts        []float64
	converter      *amm.Converter
}

// NewPool validates cfg and builds the pool. The amounts slice is copied; the
// caller keeps no alias into the pool's working state.
func NewPool(cfg Config) (*Pool, error) {
	if len(cfg.Assets) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets, got %d", ErrInvalidPool, len(cfg.Assets))
	}
	indexByAsset := make(map[string]int, len(cfg.Assets))
	for i, asset := range cfg.Assets {
		if _, dup := indexByAsset[asset]; dup {
			return nil, fmt.Errorf("%w: duplicate asset %q", ErrInvalidPool, asset)
		}
		indexByAsset[asset] = i
	}

	if cfg.Amounts != nil && len(cfg.Amounts) != len(cfg.Assets) {
		return nil, fmt.Errorf("%w: %d assets but %d amounts", ErrInvalidPool, len(cfg.Assets), len(cfg.Amounts))
	}
	if cfg.Amounts == nil && len(cfg.Assets) > 2 {
		return nil, fmt.Errorf("%w: pools with more than 2 assets require explicit amounts", ErrInvalidPool)
	}

	converter := cfg.Converter
	if converter == nil {
		if len(cfg.Assets) != 2 || cfg.Rate <= 0 {
			return nil, fmt.Errorf("%w: no converter and no valid 2-asset rate", ErrInvalidPool)
		}
		converter = &amm.Converter{
			Name:    "GENERIC",
			Formula: amm.FixedRate{Rate: cfg.Rate},
		}
	}

	p := &Pool{
		name:         cfg.Name,
		assets:       append([]string(nil), cfg.Assets...),
		indexByAsset: indexByAsset,
		converter:    converter,
	}
	if cfg.Amounts != nil {
		p.initialAmounts = append([]float64(nil), cfg.Amounts...)
		p.amounts = append([]float64(nil), cfg.Amounts...)
	}
	return p, nil
}

// Convert trades amount of asset for target against the live balances. The
// converter's raw output is reduced by the fee when withFees is set. This call
// mutates the pool; callers are responsible for calling Reset afterwards.
func (p *Pool) Convert(asset string, amount float64, target string, withFees bool) (float64, error) {
	if asset == target {
		return 0, fmt.Errorf("%w: %s -> %s", ErrImpossibleConversion, asset, target)
	}
	i, ok := p.indexByAsset[asset]
	if !ok {
		return 0, fmt.Errorf("%w: pool %s has no asset %q", ErrImpossibleConversion, p.name, asset)
	}
	j, ok := p.indexByAsset[target]
	if !ok {
		return 0, fmt.Errorf("%w: pool %s has no asset %q", ErrImpossibleConversion, p.name, target)
	}

	out, err := p.converter.Apply(i, j, amount, p.amounts)
	if err != nil {
		return 0, err
	}
	if withFees {
		out *= 1 - p.converter.Fee()
	}
	return out, nil
}

// Reset restores the working balances from the initial ones. A pool without
// tracked state (the infinite-depth fixed-rate case) has nothing to restore.
func (p *Pool) Reset() {
	if p.initialAmounts == nil {
		return
	}
	copy(p.amounts, p.initialAmounts)
}

// Pairs returns one pair per unordered combination of the pool's assets,
// C(n,2) in total, each holding a non-owning back-reference to this pool.
func (p *Pool) Pairs() []*Pair {
	pairs := make([]*Pair, 0, len(p.assets)*(len(p.assets)-1)/2)
	for i := 0; i < len(p.assets); i++ {
		for j := i + 1; j < len(p.assets); j++ {
			pairs = append(pairs, &Pair{
				Asset0: p.assets[i],
				Asset1: p.assets[j],
				index0: i,
				index1: j,
				pool:   p,
			})
		}
	}
	return pairs
}

// Name returns the pool's label.
func (p *Pool) Name() string {
	return p.name
}

// Assets returns a copy of the pool's asset list in index order.
func (p *Pool) Assets() []string {
	return append([]string(nil), p.assets...)
}

// Amounts returns a copy of the live balances, or nil for an untracked pool.
func (p *Pool) Amounts() []float64 {
	if p.amounts == nil {
		return nil
	}
	return append([]float64(nil), p.amounts...)
}

// Converter returns the pool's pricing configuration.
func (p *Pool) Converter() *amm.Converter {
	return p.converter
}

func (p *Pool) String() string {
	return strings.Join(p.assets, "-") + " " + p.converter.String()
}
