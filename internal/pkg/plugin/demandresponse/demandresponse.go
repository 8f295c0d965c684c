// Package demandresponse models demand-side load reduction programs.
// It is the one auxiliary model whose output feeds back into the core:
// the reported demand delta is consumed by the energy model when it
// advances to the following year.
package demandresponse

import (
	"encoding/json"
	"io/ioutil"
	"math"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Config holds the demand response program parameters.
type Config struct {
	ParticipationRate float64 `json:"ParticipationRate"`
	MaxReductionMWh   float64 `json:"MaxReductionMWh"`
	IncentiveUSDMWh   float64 `json:"IncentiveUSDMWh"`
}

// Model is the demand response auxiliary model.
type Model struct {
	config Config
}

// New reads the program configuration from a JSON file.
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
	return &Model{config: cfg}
}

func (m *Model) Name() string { return "demand_response" }

// Adjust computes the enrolled load reduction for the year. The
// reduction never exceeds demand itself.
func (m *Model) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	reduction := math.Min(m.config.MaxReductionMWh*m.config.ParticipationRate, s.DemandMWh)
	return state.Adjustment{
		DemandDeltaMWh: -reduction,
		Metrics: map[string]float64{
			"load_reduction_mwh": reduction,
			"incentive_cost_usd": reduction * m.config.IncentiveUSDMWh,
		},
	}, nil
}
