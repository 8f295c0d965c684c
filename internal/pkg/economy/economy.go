// Package economy evaluates the yearly capital and operating cost of a
// capacity state and levelizes cost across technology vintages.
package economy

import (
	"math"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Evaluate computes the economic record for one year state, chaining
// cumulative figures from the prior record. The prior record for the
// start year is the zero value.
func Evaluate(s state.YearState, prior state.EconomicRecord, p params.ParameterSet) state.EconomicRecord {
	r := state.EconomicRecord{Year: s.Year}

	for _, t := range p.Technologies {
		r.CapexUSD += s.NewBuildMW[t.Name] * 1000 * t.CapitalCost(s.Year, p.StartYear)
		r.FixedOMUSD += s.CapacityMW[t.Name] * 1000 * t.FixedOMKW
		r.VariableCostUSD += s.GenerationMWh[t.Name] * t.VariableCost(s.Year, p.StartYear)
		r.CarbonCostUSD += s.GenerationMWh[t.Name] * t.EmissionFactor * p.CarbonPrice
	}
	r.CumulativeCapexUSD = prior.CumulativeCapexUSD + r.CapexUSD
	r.LCOE = portfolioLCOE(s, p)
	return r
}

// portfolioLCOE is the generation-weighted average of the vintage
// LCOEs active in the year. Each technology's generation is allocated
// to its vintages pro rata to capacity.
func portfolioLCOE(s state.YearState, p params.ParameterSet) float64 {
	totalGen := 0.0
	weighted := 0.0
	for _, v := range s.Vintages {
		t, ok := p.Technology(v.Technology)
		if !ok {
			continue
		}
		techCap := s.CapacityMW[t.Name]
		if techCap <= 0 {
			continue
		}
		gen := s.GenerationMWh[t.Name] * v.CapacityMW / techCap
		if gen <= 0 {
			continue
		}
		lcoe := VintageLCOE(v, t, p) + t.VariableCost(s.Year, p.StartYear)
		weighted += gen * lcoe
		totalGen += gen
	}
	if totalGen == 0 {
		return 0
	}
	return weighted / totalGen
}

// VintageLCOE levelizes the fixed cost of one vintage: discounted
// capital plus lifetime fixed O&M over discounted lifetime generation,
// at the run's discount rate. Variable cost is added per dispatch year
// by the caller. With a zero discount rate this reduces to plain total
// cost over total generation.
func VintageLCOE(v state.Vintage, t params.Technology, p params.ParameterSet) float64 {
	capex := v.CapacityMW * 1000 * t.CapitalCost(v.BuildYear, p.StartYear)
	annualOM := v.CapacityMW * 1000 * t.FixedOMKW
	annualGen := v.CapacityMW * t.AvailabilityFactor * params.HoursPerYear

	pvCost := capex
	pvGen := 0.0
	for yr := 1; yr <= t.LifetimeYears; yr++ {
		df := math.Pow(1+p.DiscountRate, float64(yr))
		pvCost += annualOM / df
		pvGen += annualGen / df
	}
	if pvGen == 0 {
		return 0
	}
	return pvCost / pvGen
}
