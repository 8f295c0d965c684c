// Package gridstability scores annual power balance, voltage stability
// and spinning reserve adequacy from the aggregate year state.
package gridstability

import (
	"encoding/json"
	"io/ioutil"
	"math"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Config holds the grid stability model parameters.
type Config struct {
	BaseFrequencyHz  float64 `json:"BaseFrequencyHz"`
	SpinningReserve  float64 `json:"SpinningReserve"`  // required fraction of demand
	ReserveFromSpare float64 `json:"ReserveFromSpare"` // fraction of spare potential counted as reserve
}

// Model is the grid stability auxiliary model.
type Model struct {
	config Config
}

// New reads the model configuration from a JSON file.
func New(configPath string) (*Model, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return nil, err
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig builds the model from an in-memory configuration.
func NewWithConfig(cfg Config) *Model {
	if cfg.BaseFrequencyHz == 0 {
		cfg.BaseFrequencyHz = 50.0
	}
	return &Model{config: cfg}
}

func (m *Model) Name() string { return "grid_stability" }

// Adjust reports stability metrics for the year. It never adjusts
// demand; the output is strictly additive.
func (m *Model) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	gen := s.TotalGenerationMWh()
	demand := s.DemandMWh

	balance := gen - demand
	freqDeviation := 0.0
	stability := 1.0
	adequacy := 1.0
	if demand > 0 {
		freqDeviation = balance / demand * m.config.BaseFrequencyHz
		stability = math.Max(0, 1-math.Abs(1-gen/demand))

		potential := 0.0
		for _, t := range p.Technologies {
			potential += s.CapacityMW[t.Name] * t.AvailabilityFactor * params.HoursPerYear
		}
		required := demand * m.config.SpinningReserve
		if required > 0 {
			available := math.Max(0, potential-gen) * m.config.ReserveFromSpare
			adequacy = math.Min(1, available/required)
		}
	}

	return state.Adjustment{
		Metrics: map[string]float64{
			"frequency_deviation_hz":  freqDeviation,
			"voltage_stability_index": stability,
			"reserve_adequacy":        adequacy,
		},
	}, nil
}
