// Package weather reports seeded inter-annual resource variability
// indices for the renewable technologies. The generator is reseeded
// from the configured seed and the year, so runs stay reproducible and
// the seed travels with the configuration.
package weather

import (
	"encoding/json"
	"io/ioutil"
	"math/rand"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Config holds the variability parameters.
type Config struct {
	Seed        int64   `json:"Seed"`
	Variability float64 `json:"Variability"` // std dev of the resource index around 1.0
}

// Model is the weather auxiliary model.
type Model struct {
	config Config
}

// New reads the weather configuration from a JSON file.
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

func (m *Model) Name() string { return "weather" }

// Adjust draws one resource index per renewable technology for the
// year. Indices are clamped to [0, 2] and reported as metrics only.
func (m *Model) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	rng := rand.New(rand.NewSource(m.config.Seed + int64(s.Year)))
	metrics := make(map[string]float64)
	for _, t := range p.Technologies {
		if !t.Renewable {
			continue
		}
		index := 1.0 + rng.NormFloat64()*m.config.Variability
		if index < 0 {
			index = 0
		}
		if index > 2 {
			index = 2
		}
		metrics["resource_index_"+t.Name] = index
	}
	return state.Adjustment{Metrics: metrics}, nil
}
