// Package amm implements the pricing invariants a pool can trade under.
//
// A Formula conserves some function of the pool's balance vector across a
// trade: a fixed exchange rate (no state), a constant product, or a constant
// sum. Fees are never part of the invariant math; the pool applies them to the
// delivered amount after the formula runs.
package amm

import (
	"errors"
	"fmt"
)

var (
	// ErrLiquidityDepleted is returned when a trade would require a negative
	// balance on the invariant's target side. The pool state is left untouched.
	ErrLiquidityDepleted = errors.New("liquidity depleted on target side")
	// ErrNilFormula is returned when a converter is used without a formula.
	ErrNilFormula = errors.New("converter has no formula")
	// ErrFormulaMismatch is returned when a formula is invoked with indices or
	// state inconsistent with its invariant. This is a configuration error,
	// not a runtime condition to recover from.
	ErrFormulaMismatch = errors.New("formula invoked with mismatched data")
)

// Formula is one pricing invariant. Apply trades amount of asset i for asset j
// against the live balance vector: it must mutate state in place to the
// post-trade balances and return the amount removed from the target side,
// i.e. the amount delivered to the trader. Implementations that reject a trade
// must leave state exactly as they found it.
type Formula interface {
	Apply(i, j int, amount float64, state []float64) (float64, error)
}

// FixedRate converts at a constant price with infinite depth. It never reads
// or writes state, so a fixed-rate pool needs no tracked balances.
type FixedRate struct {
	Rate float64
}

func (f FixedRate) Apply(i, j int, amount float64, _ []float64) (float64, error) {
	if f.Rate <= 0 {
		return 0, fmt.Errorf("%w: fixed rate must be positive, got %g", ErrFormulaMismatch, f.Rate)
	}
	// A fixed rate is inherently two-sided: asset0 -> asset1 at Rate and
	// asset1 -> asset0 at 1/Rate.
	switch {
	case i == 0 && j == 1:
		return f.Rate * amount, nil
	case i == 1 && j == 0:
		return amount / f.Rate, nil
	default:
		return 0, fmt.Errorf("%w: fixed rate is defined for two assets, got indices %d,%d", ErrFormulaMismatch, i, j)
	}
}

// ConstantProduct conserves the product of all balances across a trade.
type ConstantProduct struct{}

func (ConstantProduct) Apply(i, j int, amount float64, state []float64) (float64, error) {
	if err := checkIndices(i, j, state); err != nil {
		return 0, err
	}

	c := 1.0
	for _, balance := range state {
		c *= balance
	}

	initialJ := state[j]
	state[i] += amount

	productNoJ := 1.0
	for k, balance := range state {
		if k == j {
			continue
		}
		productNoJ *= balance
	}
	finalJ := c / productNoJ
	state[j] = finalJ

	return initialJ - finalJ, nil
}

// ConstantSum conserves the sum of all balances across a trade. Unlike the
// constant product it can run a side dry: if the solved target balance is
// negative the trade is rejected and state is left unmutated.
type ConstantSum struct{}

func (ConstantSum) Apply(i, j int, amount float64, state []float64) (float64, error) {
	if err := checkIndices(i, j, state); err != nil {
		return 0, err
	}

	c := 0.0
	for _, balance := range state {
		c += balance
	}

	initialJ := state[j]
	// Solve before writing anything back so a rejected trade cannot leave a
	// partial mutation behind.
	sumNoJ := c - initialJ + amount
	finalJ := c - sumNoJ
	if finalJ < 0 {
		return 0, ErrLiquidityDepleted
	}

	state[i] += amount
	state[j] = finalJ

	return initialJ - finalJ, nil
}

func checkIndices(i, j int, state []float64) error {
	if len(state) < 2 {
		return fmt.Errorf("%w: need at least 2 tracked balances, got %d", ErrFormulaMismatch, len(state))
	}
	if i < 0 || i >= len(state) || j < 0 || j >= len(state) || i == j {
		return fmt.Errorf("%w: invalid asset indices %d,%d for %d balances", ErrFormulaMismatch, i, j, len(state))
	}
	return nil
}

// Converter packages one formula with its fee and gas cost. It is immutable
// configuration and may be shared by any number of pools.
type Converter struct {
	Name       string
	Formula    Formula
	FeePercent float64 // fee in percent, e.g. 0.3 for 30 bps
	GasCost    int64   // metadata only, never consumed by the invariant math
}

// Fee returns the fee as a fraction.
func (c *Converter) Fee() float64 {
	return c.FeePercent / 100
}

// Apply runs the converter's formula against the live balance vector.
func (c *Converter) Apply(i, j int, amount float64, state []float64) (float64, error) {
	if c.Formula == nil {
		return 0, ErrNilFormula
	}
	return c.Formula.Apply(i, j, amount, state)
}

func (c *Converter) String() string {
	return c.Name
}
