// Package network applies aggregate transmission and distribution
// losses to dispatched generation and reports delivered energy.
package network

import (
	"encoding/json"
	"io/ioutil"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Config holds the loss factors.
type Config struct {
	TransmissionLoss float64 `json:"TransmissionLoss"`
	DistributionLoss float64 `json:"DistributionLoss"`
}

// Model is the network auxiliary model.
type Model struct {
	config Config
}

// New reads the network configuration from a JSON file.
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

func (m *Model) Name() string { return "network" }

// Adjust reports delivered energy after both loss stages.
func (m *Model) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	gen := s.TotalGenerationMWh()
	afterTransmission := gen * (1 - m.config.TransmissionLoss)
	delivered := afterTransmission * (1 - m.config.DistributionLoss)
	return state.Adjustment{
		Metrics: map[string]float64{
			"transmission_loss_mwh": gen - afterTransmission,
			"distribution_loss_mwh": afterTransmission - delivered,
			"delivered_mwh":         delivered,
		},
	}, nil
}
