package amm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(state []float64) float64 {
	p := 1.0
	for _, v := range state {
		p *= v
	}
	return p
}

func sum(state []float64) float64 {
	s := 0.0
	for _, v := range state {
		s += v
	}
	return s
}

func TestFixedRate(t *testing.T) {
	f := FixedRate{Rate: 2.5}

	t.Run("forward", func(t *testing.T) {
		out, err := f.Apply(0, 1, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, 25.0, out)
	})

	t.Run("reverse", func(t *testing.T) {
		out, err := f.Apply(1, 0, 25, nil)
		require.NoError(t, err)
		assert.Equal(t, 10.0, out)
	})

	t.Run("invalid indices", func(t *testing.T) {
		_, err := f.Apply(0, 2, 10, nil)
		assert.ErrorIs(t, err, ErrFormulaMismatch)
	})

	t.Run("non-positive rate", func(t *testing.T) {
		_, err := FixedRate{}.Apply(0, 1, 10, nil)
		assert.ErrorIs(t, err, ErrFormulaMismatch)
	})
}

func TestConstantProduct(t *testing.T) {
	t.Run("two assets", func(t *testing.T) {
		state := []float64{100, 200}
		before := product(state)

		out, err := ConstantProduct{}.Apply(0, 1, 10, state)
		require.NoError(t, err)

		assert.InDelta(t, 200-20000.0/110, out, 1e-9)
		assert.InDelta(t, 110, state[0], 1e-9)
		assert.InDelta(t, before, product(state), 1e-6, "product must be conserved")
	})

	t.Run("three assets", func(t *testing.T) {
		state := []float64{100, 200, 300}
		before := product(state)

		out, err := ConstantProduct{}.Apply(0, 2, 50, state)
		require.NoError(t, err)

		assert.Greater(t, out, 0.0)
		assert.InDelta(t, before, product(state), before*1e-12, "product must be conserved")
		// The untouched middle balance stays put.
		assert.Equal(t, 200.0, state[1])
	})

	t.Run("bad indices", func(t *testing.T) {
		state := []float64{100, 200}
		_, err := ConstantProduct{}.Apply(1, 1, 10, state)
		assert.ErrorIs(t, err, ErrFormulaMismatch)
		assert.Equal(t, []float64{100, 200}, state)
	})
}

func TestConstantSum(t *testing.T) {
	t.Run("raw swap is one to one", func(t *testing.T) {
		state := []float64{100, 200, 300}
		before := sum(state)

		out, err := ConstantSum{}.Apply(0, 1, 10, state)
		require.NoError(t, err)

		assert.InDelta(t, 10.0, out, 1e-12)
		assert.Equal(t, []float64{110, 190, 300}, state)
		assert.InDelta(t, before, sum(state), 1e-9, "sum must be conserved")
	})

	t.Run("within depletion bound", func(t *testing.T) {
		state := []float64{100, 200, 300}
		out, err := ConstantSum{}.Apply(0, 2, 250, state)
		require.NoError(t, err)
		assert.InDelta(t, 250.0, out, 1e-12)
		assert.InDelta(t, 50.0, state[2], 1e-12)
	})

	t.Run("depletion rejects without mutation", func(t *testing.T) {
		state := []float64{100, 200, 300}
		_, err := ConstantSum{}.Apply(0, 2, 350, state)
		require.ErrorIs(t, err, ErrLiquidityDepleted)
		assert.Equal(t, []float64{100, 200, 300}, state, "rejected trade must leave state untouched")
	})
}

func TestConverter(t *testing.T) {
	t.Run("fee is a fraction of the percent", func(t *testing.T) {
		c := &Converter{Name: "STABLE", Formula: ConstantSum{}, FeePercent: 10}
		assert.Equal(t, 0.1, c.Fee())
	})

	t.Run("nil formula", func(t *testing.T) {
		c := &Converter{Name: "EMPTY"}
		_, err := c.Apply(0, 1, 1, []float64{1, 1})
		assert.ErrorIs(t, err, ErrNilFormula)
	})

	t.Run("delegates to formula", func(t *testing.T) {
		c := &Converter{Name: "FIXED", Formula: FixedRate{Rate: 3}}
		out, err := c.Apply(0, 1, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, 6.0, out)
	})
}
