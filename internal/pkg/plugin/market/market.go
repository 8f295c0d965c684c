// Package market estimates an annual clearing price from the dispatch
// merit order: the variable cost of the marginal dispatched unit,
// clamped to the configured cap and floor.
package market

import (
	"encoding/json"
	"io/ioutil"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Config holds the market price bounds.
type Config struct {
	PriceCapMWh   float64 `json:"PriceCapMWh"`
	PriceFloorMWh float64 `json:"PriceFloorMWh"`
	ScarcityPrice float64 `json:"ScarcityPrice"` // applied when demand goes unmet
}

// Model is the market auxiliary model.
type Model struct {
	config Config
}

// New reads the market configuration from a JSON file.
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

func (m *Model) Name() string { return "market" }

// Adjust prices the year at the marginal dispatched technology's
// variable cost. Years with unmet demand clear at the scarcity price.
func (m *Model) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	price := m.config.PriceFloorMWh
	if s.UnmetDemandMWh > 0 {
		price = m.config.ScarcityPrice
	} else {
		for _, t := range p.Technologies {
			if s.GenerationMWh[t.Name] <= 0 {
				continue
			}
			if vc := t.VariableCost(s.Year, p.StartYear); vc > price {
				price = vc
			}
		}
	}
	if m.config.PriceCapMWh > 0 && price > m.config.PriceCapMWh {
		price = m.config.PriceCapMWh
	}

	return state.Adjustment{
		Metrics: map[string]float64{
			"clearing_price_mwh": price,
			"consumer_cost_usd":  price * s.TotalGenerationMWh(),
		},
	}, nil
}
