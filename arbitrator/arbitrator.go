// Package arbitrator implements the search driver: it enumerates candidate
// loops over a pool set and returns the survivors ranked by simulated unit
// return.
package arbitrator

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arbsim/arbsim-go/loop"
	"github.com/arbsim/arbsim-go/pool"
	"github.com/arbsim/arbsim-go/registry"
)

var (
	// ErrConflictingSources is returned when both raw pairs and pools are
	// supplied; the two modes are mutually exclusive.
	ErrConflictingSources = errors.New("config: pairs and pools are mutually exclusive")
	// ErrNoSource is returned when neither pairs nor pools are supplied.
	ErrNoSource = errors.New("config: either pairs or pools must be supplied")
	// ErrMissingRates is returned in pairs mode when rates are absent or do
	// not match the pair count.
	ErrMissingRates = errors.New("config: pairs mode requires one rate per pair")
	// ErrNoInitialAssets is returned when no initial assets are permitted.
	ErrNoInitialAssets = errors.New("config: at least one initial asset is required")
)

// Config describes one search. Exactly one of Pairs (with Rates) or Pools
// must be given.
type Config struct {
	// Pairs plus Rates is the simple mode: each pair becomes a two-asset
	// fixed-rate pool with infinite depth.
	Pairs [][2]string
	Rates []float64

	// Pools is the AMM mode: the pools' pair views form the search space.
	Pools []*pool.Pool

	// InitialAssets are the only assets a returned loop may start from.
	InitialAssets []string

	// GasPrice is the price of one gas unit, carried as metadata for
	// callers reporting net figures.
	GasPrice float64

	Registry prometheus.Registerer // required for metrics
	Logger   Logger                // required for logging
}

// validate checks if the configuration is valid, ensuring required
// dependencies are present.
func (c *Config) validate() error {
	if c.Pairs != nil && c.Pools != nil {
		return ErrConflictingSources
	}
	if c.Pairs == nil && c.Pools == nil {
		return ErrNoSource
	}
	if c.Pairs != nil && len(c.Rates) != len(c.Pairs) {
		return ErrMissingRates
	}
	if len(c.InitialAssets) == 0 {
		return ErrNoInitialAssets
	}
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Arbitrator owns the pool set for one search and enumerates loops over it.
// It is not safe for concurrent use: the pools' balances mutate during
// simulation (each simulation fully rolls itself back, but two interleaved
// ones would observe each other's state).
type Arbitrator struct {
	logger  Logger
	metrics *Metrics

	pools         []*pool.Pool
	pairs         []*pool.Pair
	initialAssets mapset.Set[string]
	gasPrice      float64
	graph         *registry.Registry
}

// NewArbitrator constructs an arbitrator from a configuration, returning an
// error if the config is invalid. In pairs mode one fixed-rate pool is
// synthesized per pair.
func NewArbitrator(cfg *Config) (*Arbitrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	pools := cfg.Pools
	if cfg.Pairs != nil {
		pools = make([]*pool.Pool, 0, len(cfg.Pairs))
		for i, pr := range cfg.Pairs {
			p, err := pool.NewPool(pool.Config{
				Name:   "GENERIC",
				Assets: []string{pr[0], pr[1]},
				Rate:   cfg.Rates[i],
			})
			if err != nil {
				return nil, fmt.Errorf("pair %s/%s: %w", pr[0], pr[1], err)
			}
			pools = append(pools, p)
		}
	}

	pairs := make([]*pool.Pair, 0, len(pools))
	for _, p := range pools {
		pairs = append(pairs, p.Pairs()...)
	}

	return &Arbitrator{
		logger:        cfg.Logger,
		metrics:       NewMetrics(cfg.Registry),
		pools:         pools,
		pairs:         pairs,
		initialAssets: mapset.NewThreadUnsafeSet(cfg.InitialAssets...),
		gasPrice:      cfg.GasPrice,
		graph:         registry.NewRegistry(pools),
	}, nil
}

// GetLoops enumerates every ordering of every size-s combination of the pair
// set for each requested size, keeps the orderings that form valid loops
// starting from a permitted initial asset, and returns them ranked by unit
// return. A nil sizes defaults to [3], triangular arbitrage.
//
// The search is intentionally exhaustive, O(C(P,s) * s!) construction
// attempts per size; loop sizes in practice are small.
func (a *Arbitrator) GetLoops(sizes []int, withFees bool) ([]*loop.Loop, error) {
	if sizes == nil {
		sizes = []int{3}
	}

	timer := prometheus.NewTimer(a.metrics.searchDuration.WithLabelValues())
	defer timer.ObserveDuration()

	var found []*loop.Loop
	for _, size := range sizes {
		if size < 2 || size > len(a.pairs) {
			a.logger.Warn("skipping unusable loop size", "size", size, "pairs", len(a.pairs))
			continue
		}
		combination := make([]*pool.Pair, size)
		err := eachCombination(len(a.pairs), size, func(indices []int) error {
			for where, index := range indices {
				combination[where] = a.pairs[index]
			}
			return eachPermutation(combination, func(perm []*pool.Pair) error {
				l, err := loop.NewLoop(perm)
				if errors.Is(err, loop.ErrInvalidLoop) {
					// Expected outcome of blind enumeration, not an error.
					a.metrics.candidateLoops.WithLabelValues("invalid").Inc()
					return nil
				}
				if err != nil {
					return err
				}
				a.metrics.candidateLoops.WithLabelValues("valid").Inc()
				if !a.initialAssets.Contains(l.InitialAsset()) {
					a.metrics.filteredLoops.Inc()
					return nil
				}
				a.metrics.validLoops.Inc()
				found = append(found, l)
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	a.logger.Debug("loop search finished",
		"sizes", sizes,
		"pairs", len(a.pairs),
		"loops", len(found),
	)

	return loop.NewLoopPool(found).SortLoops(withFees), nil
}

// Pools returns the pool set the search operates over.
func (a *Arbitrator) Pools() []*pool.Pool {
	return a.pools
}

// Pairs returns the flattened pair set.
func (a *Arbitrator) Pairs() []*pool.Pair {
	return a.pairs
}

// GasPrice returns the configured gas unit price.
func (a *Arbitrator) GasPrice() float64 {
	return a.gasPrice
}

// GraphView returns a snapshot of the asset/pool graph under search.
func (a *Arbitrator) GraphView() *registry.View {
	return a.graph.View()
}

// Graph returns the asset/pool registry for direct queries.
func (a *Arbitrator) Graph() *registry.Registry {
	return a.graph
}
