// Package storage models annual shifting of surplus renewable energy
// through a storage fleet with round-trip losses and degradation.
package storage

import (
	"encoding/json"
	"io/ioutil"
	"math"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Config holds the storage fleet parameters.
type Config struct {
	PowerMW       float64 `json:"PowerMW"`
	CapacityMWh   float64 `json:"CapacityMWh"`
	Efficiency    float64 `json:"Efficiency"` // round trip
	AnnualDegrade float64 `json:"AnnualDegrade"`
	InstalledYear int     `json:"InstalledYear"`
}

// Model is the storage auxiliary model.
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
	return &Model{config: cfg}
}

func (m *Model) Name() string { return "storage" }

// Adjust estimates how much surplus potential the fleet could shift
// into served energy for the year. Degradation shrinks usable capacity
// with age; the estimate is carried as metrics only.
func (m *Model) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	surplus := 0.0
	for _, t := range p.Technologies {
		if !t.Renewable {
			continue
		}
		potential := s.CapacityMW[t.Name] * t.AvailabilityFactor * params.HoursPerYear
		surplus += math.Max(0, potential-s.GenerationMWh[t.Name])
	}

	age := s.Year - m.config.InstalledYear
	if age < 0 {
		age = 0
	}
	usableMWh := m.config.CapacityMWh * math.Pow(1-m.config.AnnualDegrade, float64(age))
	throughputCap := m.config.PowerMW * params.HoursPerYear

	shifted := math.Min(surplus, throughputCap)
	delivered := shifted * m.config.Efficiency
	avoidedUnmet := math.Min(s.UnmetDemandMWh, delivered)

	cycles := 0.0
	if usableMWh > 0 {
		cycles = shifted / usableMWh
	}

	return state.Adjustment{
		Metrics: map[string]float64{
			"energy_shifted_mwh":   shifted,
			"energy_delivered_mwh": delivered,
			"avoided_unmet_mwh":    avoidedUnmet,
			"usable_capacity_mwh":  usableMWh,
			"equivalent_cycles":    cycles,
		},
	}, nil
}
