package arbitrator

import (
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbsim/arbsim-go/amm"
	"github.com/arbsim/arbsim-go/pool"
)

func testLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *Config {
	return &Config{
		Pairs:         [][2]string{{"A", "B"}, {"A", "C"}, {"B", "C"}},
		Rates:         []float64{1.2, 0.8, 1.1},
		InitialAssets: []string{"A"},
		Registry:      prometheus.NewRegistry(),
		Logger:        testLogger(),
	}
}

func TestConfigValidation(t *testing.T) {
	somePool, err := pool.NewPool(pool.Config{Name: "P", Assets: []string{"A", "B"}, Rate: 1})
	require.NoError(t, err)

	testCases := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr error
	}{
		{
			name:    "pairs and pools together",
			mutate:  func(cfg *Config) { cfg.Pools = []*pool.Pool{somePool} },
			wantErr: ErrConflictingSources,
		},
		{
			name: "neither pairs nor pools",
			mutate: func(cfg *Config) {
				cfg.Pairs = nil
				cfg.Rates = nil
			},
			wantErr: ErrNoSource,
		},
		{
			name:    "pairs without rates",
			mutate:  func(cfg *Config) { cfg.Rates = nil },
			wantErr: ErrMissingRates,
		},
		{
			name:    "rate count mismatch",
			mutate:  func(cfg *Config) { cfg.Rates = cfg.Rates[:2] },
			wantErr: ErrMissingRates,
		},
		{
			name:    "no initial assets",
			mutate:  func(cfg *Config) { cfg.InitialAssets = nil },
			wantErr: ErrNoInitialAssets,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			_, err := NewArbitrator(cfg)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("nil registry", func(t *testing.T) {
		cfg := testConfig()
		cfg.Registry = nil
		_, err := NewArbitrator(cfg)
		assert.Error(t, err)
	})

	t.Run("nil logger", func(t *testing.T) {
		cfg := testConfig()
		cfg.Logger = nil
		_, err := NewArbitrator(cfg)
		assert.Error(t, err)
	})
}

func TestGetLoopsPairsMode(t *testing.T) {
	arb, err := NewArbitrator(testConfig())
	require.NoError(t, err)

	loops, err := arb.GetLoops([]int{3}, true)
	require.NoError(t, err)

	// The three pairs form one triangle; of its six orderings, exactly two
	// close a cycle starting from A.
	require.Len(t, loops, 2)
	for _, l := range loops {
		assert.Equal(t, "A", l.InitialAsset())
		assert.Equal(t, 3, l.Size())
	}

	t.Run("ranked by unit return", func(t *testing.T) {
		// A -> B -> C -> A compounds to 1.2*1.1/0.8; the reverse direction
		// is its reciprocal.
		first, err := loops[0].Convert(1, true)
		require.NoError(t, err)
		second, err := loops[1].Convert(1, true)
		require.NoError(t, err)
		assert.InDelta(t, 1.2*1.1/0.8, first, 1e-9)
		assert.InDelta(t, 0.8/(1.2*1.1), second, 1e-9)
	})
}

func TestGetLoopsFiltersInitialAssets(t *testing.T) {
	cfg := testConfig()
	cfg.InitialAssets = []string{"B"}
	arb, err := NewArbitrator(cfg)
	require.NoError(t, err)

	loops, err := arb.GetLoops([]int{3}, false)
	require.NoError(t, err)
	require.NotEmpty(t, loops)
	for _, l := range loops {
		assert.Equal(t, "B", l.InitialAsset())
	}
}

func TestGetLoopsDefaultsToTriangular(t *testing.T) {
	arb, err := NewArbitrator(testConfig())
	require.NoError(t, err)

	loops, err := arb.GetLoops(nil, true)
	require.NoError(t, err)
	require.NotEmpty(t, loops)
	for _, l := range loops {
		assert.Equal(t, 3, l.Size())
	}
}

func TestGetLoopsPoolsMode(t *testing.T) {
	cpmm := &amm.Converter{Name: "CPMM", Formula: amm.ConstantProduct{}}
	p1, err := pool.NewPool(pool.Config{Name: "P1", Assets: []string{"A", "B"}, Amounts: []float64{100, 100}, Converter: cpmm})
	require.NoError(t, err)
	p2, err := pool.NewPool(pool.Config{Name: "P2", Assets: []string{"A", "B"}, Amounts: []float64{200, 100}, Converter: cpmm})
	require.NoError(t, err)

	arb, err := NewArbitrator(&Config{
		Pools:         []*pool.Pool{p1, p2},
		InitialAssets: []string{"A"},
		Registry:      prometheus.NewRegistry(),
		Logger:        testLogger(),
	})
	require.NoError(t, err)

	loops, err := arb.GetLoops([]int{2}, false)
	require.NoError(t, err)

	// Both orderings of the two A/B pairs close a loop from A.
	require.Len(t, loops, 2)

	t.Run("ranking is non-increasing", func(t *testing.T) {
		first, err := loops[0].Convert(1, false)
		require.NoError(t, err)
		second, err := loops[1].Convert(1, false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, first, second)
		assert.Greater(t, first, 1.0, "the mispriced pair must be profitable")
	})

	t.Run("simulation leaves pools reset", func(t *testing.T) {
		assert.Equal(t, []float64{100, 100}, p1.Amounts())
		assert.Equal(t, []float64{200, 100}, p2.Amounts())
	})
}

func TestGetLoopsMixedSizes(t *testing.T) {
	cfg := testConfig()
	// Add a second A/B market so size-2 loops exist alongside the triangle.
	cfg.Pairs = append(cfg.Pairs, [2]string{"A", "B"})
	cfg.Rates = append(cfg.Rates, 0.9)
	arb, err := NewArbitrator(cfg)
	require.NoError(t, err)

	loops, err := arb.GetLoops([]int{2, 3}, false)
	require.NoError(t, err)
	require.NotEmpty(t, loops)

	sizes := make(map[int]int)
	for _, l := range loops {
		assert.Contains(t, []int{2, 3}, l.Size())
		assert.Equal(t, "A", l.InitialAsset())
		sizes[l.Size()]++
	}
	assert.Positive(t, sizes[2])
	assert.Positive(t, sizes[3])
}

func TestGraphView(t *testing.T) {
	arb, err := NewArbitrator(testConfig())
	require.NoError(t, err)

	view := arb.GraphView()
	assert.ElementsMatch(t, []string{"A", "B", "C"}, view.Assets)
	assert.Len(t, view.Pools, 3)

	assert.ElementsMatch(t, []string{"B", "C"}, arb.Graph().NeighborsOf("A"))
}

func TestCombinatorics(t *testing.T) {
	t.Run("combinations", func(t *testing.T) {
		var got [][]int
		err := eachCombination(4, 2, func(indices []int) error {
			got = append(got, append([]int(nil), indices...))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
	})

	t.Run("oversized k", func(t *testing.T) {
		calls := 0
		err := eachCombination(2, 3, func([]int) error { calls++; return nil })
		require.NoError(t, err)
		assert.Zero(t, calls)
	})

	t.Run("permutations", func(t *testing.T) {
		p, err := pool.NewPool(pool.Config{Name: "P", Assets: []string{"A", "B", "C"}, Amounts: []float64{1, 1, 1}, Converter: &amm.Converter{Formula: amm.ConstantSum{}}})
		require.NoError(t, err)
		pairs := p.Pairs()

		seen := make(map[string]int)
		err = eachPermutation(pairs, func(perm []*pool.Pair) error {
			key := ""
			for _, pr := range perm {
				key += pr.String() + " "
			}
			seen[key]++
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, seen, 6, "3! distinct orderings")
		for key, count := range seen {
			assert.Equal(t, 1, count, "ordering %q emitted once", key)
		}
	})
}
