package economy

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

func testParams() params.ParameterSet {
	return params.ParameterSet{
		StartYear:        2024,
		EndYear:          2026,
		BaseDemandMWh:    100000,
		DiscountRate:     0.08,
		ElectricityPrice: 85,
		CarbonPrice:      10,
		Technologies: []params.Technology{
			{
				Name:               "TEST_solar",
				Renewable:          true,
				AvailabilityFactor: 0.18,
				CapitalCostKW:      800,
				CostDecline:        0.03,
				FixedOMKW:          10,
				LifetimeYears:      25,
				MaxAnnualBuildMW:   100,
			},
			{
				Name:               "TEST_gas",
				AvailabilityFactor: 0.85,
				CapitalCostKW:      1000,
				FixedOMKW:          25,
				VariableCostMWh:    50,
				EmissionFactor:     0.4,
				LifetimeYears:      30,
				MaxAnnualBuildMW:   100,
			},
		},
	}
}

func testState() state.YearState {
	return state.YearState{
		Year:          2024,
		DemandMWh:     100000,
		CapacityMW:    map[string]float64{"TEST_solar": 20, "TEST_gas": 30},
		NewBuildMW:    map[string]float64{"TEST_solar": 20, "TEST_gas": 0},
		GenerationMWh: map[string]float64{"TEST_solar": 31536, "TEST_gas": 68464},
		Vintages: []state.Vintage{
			{Technology: "TEST_solar", BuildYear: 2024, CapacityMW: 20},
			{Technology: "TEST_gas", BuildYear: 2020, CapacityMW: 30},
		},
	}
}

func TestEvaluateCosts(t *testing.T) {
	p := testParams()
	r := Evaluate(testState(), state.EconomicRecord{}, p)

	assert.Assert(t, r.Year == 2024)
	// 20 MW of solar at 800 USD/kW
	assert.Assert(t, math.Abs(r.CapexUSD-20*1000*800) < 1e-6)
	// fixed O&M on all standing capacity
	assert.Assert(t, math.Abs(r.FixedOMUSD-(20*1000*10+30*1000*25)) < 1e-6)
	// fuel on gas generation only
	assert.Assert(t, math.Abs(r.VariableCostUSD-68464*50) < 1e-6)
	// carbon on gas emissions at 10 USD/t
	assert.Assert(t, math.Abs(r.CarbonCostUSD-68464*0.4*10) < 1e-6)
}

func TestCumulativeCapexChains(t *testing.T) {
	p := testParams()
	prior := state.EconomicRecord{CumulativeCapexUSD: 5e6}
	r := Evaluate(testState(), prior, p)
	assert.Assert(t, math.Abs(r.CumulativeCapexUSD-(5e6+r.CapexUSD)) < 1e-6)
}

func TestOpex(t *testing.T) {
	r := state.EconomicRecord{FixedOMUSD: 1, VariableCostUSD: 2, CarbonCostUSD: 3}
	assert.Assert(t, r.OpexUSD() == 6)
}

func TestVintageLCOEZeroDiscount(t *testing.T) {
	p := testParams()
	p.DiscountRate = 0
	solar, _ := p.Technology("TEST_solar")
	v := state.Vintage{Technology: "TEST_solar", BuildYear: 2024, CapacityMW: 20}

	// at zero discount: (capex + lifetime O&M) / lifetime generation
	capex := 20 * 1000 * 800.0
	om := 25 * 20 * 1000 * 10.0
	gen := 25 * 20 * 0.18 * params.HoursPerYear
	expect := (capex + om) / gen
	assert.Assert(t, math.Abs(VintageLCOE(v, solar, p)-expect) < 1e-9)
}

func TestVintageLCOEDiscountRaisesCost(t *testing.T) {
	p := testParams()
	solar, _ := p.Technology("TEST_solar")
	v := state.Vintage{Technology: "TEST_solar", BuildYear: 2024, CapacityMW: 20}

	discounted := VintageLCOE(v, solar, p)
	p.DiscountRate = 0
	flat := VintageLCOE(v, solar, p)
	assert.Assert(t, discounted > flat)
}

func TestCostDeclineLowersLaterVintages(t *testing.T) {
	p := testParams()
	solar, _ := p.Technology("TEST_solar")
	early := state.Vintage{Technology: "TEST_solar", BuildYear: 2024, CapacityMW: 20}
	late := state.Vintage{Technology: "TEST_solar", BuildYear: 2026, CapacityMW: 20}

	assert.Assert(t, VintageLCOE(late, solar, p) < VintageLCOE(early, solar, p))
}

func TestPortfolioLCOEWeighted(t *testing.T) {
	p := testParams()
	r := Evaluate(testState(), state.EconomicRecord{}, p)

	solar, _ := p.Technology("TEST_solar")
	gas, _ := p.Technology("TEST_gas")
	solarLCOE := VintageLCOE(state.Vintage{Technology: "TEST_solar", BuildYear: 2024, CapacityMW: 20}, solar, p)
	gasLCOE := VintageLCOE(state.Vintage{Technology: "TEST_gas", BuildYear: 2020, CapacityMW: 30}, gas, p) + 50

	expect := (31536*solarLCOE + 68464*gasLCOE) / 100000
	assert.Assert(t, math.Abs(r.LCOE-expect) < 1e-9)
}
