package market

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

func testParams() params.ParameterSet {
	return params.ParameterSet{
		StartYear: 2024,
		Technologies: []params.Technology{
			{Name: "TEST_solar", Renewable: true, AvailabilityFactor: 0.18, LifetimeYears: 25},
			{Name: "TEST_gas", AvailabilityFactor: 0.85, VariableCostMWh: 50, LifetimeYears: 30},
			{Name: "TEST_oil", AvailabilityFactor: 0.85, VariableCostMWh: 120, LifetimeYears: 30},
		},
	}
}

func TestNew(t *testing.T) {
	m, err := New("./market_test_config.json")
	assert.NilError(t, err)
	assert.Assert(t, m.Name() == "market")
	assert.Assert(t, m.config.PriceCapMWh == 300)
}

func TestMarginalUnitSetsPrice(t *testing.T) {
	m := NewWithConfig(Config{PriceCapMWh: 300})
	s := state.YearState{
		Year: 2024,
		GenerationMWh: map[string]float64{
			"TEST_solar": 50000,
			"TEST_gas":   50000,
			"TEST_oil":   0,
		},
	}

	a, err := m.Adjust(s, testParams())
	assert.NilError(t, err)
	assert.Assert(t, a.Metrics["clearing_price_mwh"] == 50)
	assert.Assert(t, a.Metrics["consumer_cost_usd"] == 50*100000)
}

func TestScarcityPrice(t *testing.T) {
	m := NewWithConfig(Config{PriceCapMWh: 300, ScarcityPrice: 250})
	s := state.YearState{
		Year:           2024,
		UnmetDemandMWh: 1000,
		GenerationMWh:  map[string]float64{"TEST_gas": 50000},
	}

	a, err := m.Adjust(s, testParams())
	assert.NilError(t, err)
	assert.Assert(t, a.Metrics["clearing_price_mwh"] == 250)
}

func TestPriceCapApplies(t *testing.T) {
	m := NewWithConfig(Config{PriceCapMWh: 100})
	s := state.YearState{
		Year:          2024,
		GenerationMWh: map[string]float64{"TEST_oil": 1000},
	}

	a, err := m.Adjust(s, testParams())
	assert.NilError(t, err)
	assert.Assert(t, a.Metrics["clearing_price_mwh"] == 100)
}

func TestFloorWhenNothingDispatched(t *testing.T) {
	m := NewWithConfig(Config{PriceFloorMWh: 10})
	s := state.YearState{Year: 2024, GenerationMWh: map[string]float64{}}

	a, err := m.Adjust(s, testParams())
	assert.NilError(t, err)
	assert.Assert(t, a.Metrics["clearing_price_mwh"] == 10)
}
