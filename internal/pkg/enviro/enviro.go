// Package enviro computes emission and resource-use indicators from a
// year's generation mix. Evaluation is stateless and side-effect free.
package enviro

import (
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Evaluate dots generation by technology with the per-technology
// emission, air pollutant and water factors, and installed capacity
// with the land and employment factors.
func Evaluate(s state.YearState, p params.ParameterSet) state.EnvironmentalRecord {
	r := state.EnvironmentalRecord{
		Year:            s.Year,
		CO2ByTechnology: make(map[string]float64, len(p.Technologies)),
	}
	for _, t := range p.Technologies {
		gen := s.GenerationMWh[t.Name]
		co2 := gen * t.EmissionFactor
		r.CO2ByTechnology[t.Name] = co2
		r.CO2Tonnes += co2
		r.SO2Kg += gen * t.SO2Factor
		r.NOxKg += gen * t.NOxFactor
		r.PM25Kg += gen * t.PM25Factor
		r.WaterM3 += gen * t.WaterFactor
		r.LandM2 += s.CapacityMW[t.Name] * 1000 * t.LandFactor
		r.EmploymentJobs += s.CapacityMW[t.Name] * t.EmploymentFactor
	}
	return r
}
