// Package config loads the YAML scenario file the arbsim binary runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arbsim/arbsim-go/amm"
	"github.com/arbsim/arbsim-go/pool"
)

// Scenario is the root of the YAML scenario file. Exactly one of Pairs or
// Pools must be populated, mirroring the arbitrator's two modes.
type Scenario struct {
	InitialAssets []string `yaml:"initialAssets"`
	Sizes         []int    `yaml:"sizes"`
	WithFees      *bool    `yaml:"withFees"` // defaults to true
	GasPrice      float64  `yaml:"gasPrice"`

	Pairs []Pair `yaml:"pairs"`
	Pools []Pool `yaml:"pools"`
}

// Pair is one fixed-rate pair for simple mode.
type Pair struct {
	Assets [2]string `yaml:"assets"`
	Rate   float64   `yaml:"rate"`
}

// Pool describes one liquidity pool for AMM mode.
type Pool struct {
	Name      string     `yaml:"name"`
	Assets    []string   `yaml:"assets"`
	Amounts   []float64  `yaml:"amounts"`
	Rate      float64    `yaml:"rate"`
	Converter *Converter `yaml:"converter"`
}

// Converter selects an invariant formula by name.
type Converter struct {
	Name       string  `yaml:"name"`
	Formula    string  `yaml:"formula"` // fixed-rate | constant-product | constant-sum
	Rate       float64 `yaml:"rate"`    // fixed-rate only
	FeePercent float64 `yaml:"feePercent"`
	GasCost    int64   `yaml:"gasCost"`
}

// Load reads and decodes the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

// ApplyFees reports whether fees should be applied, defaulting to true.
func (s *Scenario) ApplyFees() bool {
	if s.WithFees == nil {
		return true
	}
	return *s.WithFees
}

// BuildPools converts the scenario's pool entries into live pools.
func (s *Scenario) BuildPools() ([]*pool.Pool, error) {
	pools := make([]*pool.Pool, 0, len(s.Pools))
	for _, pc := range s.Pools {
		var converter *amm.Converter
		if pc.Converter != nil {
			formula, err := formulaByName(pc.Converter)
			if err != nil {
				return nil, fmt.Errorf("pool %q: %w", pc.Name, err)
			}
			converter = &amm.Converter{
				Name:       pc.Converter.Name,
				Formula:    formula,
				FeePercent: pc.Converter.FeePercent,
				GasCost:    pc.Converter.GasCost,
			}
		}
		p, err := pool.NewPool(pool.Config{
			Name:      pc.Name,
			Assets:    pc.Assets,
			Amounts:   pc.Amounts,
			Rate:      pc.Rate,
			Converter: converter,
		})
		if err != nil {
			return nil, fmt.Errorf("pool %q: %w", pc.Name, err)
		}
		pools = append(pools, p)
	}
	return pools, nil
}

func formulaByName(c *Converter) (amm.Formula, error) {
	switch c.Formula {
	case "fixed-rate":
		return amm.FixedRate{Rate: c.Rate}, nil
	case "constant-product":
		return amm.ConstantProduct{}, nil
	case "constant-sum":
		return amm.ConstantSum{}, nil
	default:
		return nil, fmt.Errorf("unknown formula %q", c.Formula)
	}
}
