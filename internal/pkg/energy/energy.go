// Package energy advances the national capacity, dispatch and demand
// state one year at a time.
package energy

import (
	"fmt"
	"math"
	"sort"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// InfeasibleError reports that demand cannot be met by the end of the
// horizon even with every technology building at its maximum rate in
// every remaining year.
type InfeasibleError struct {
	Year            int
	DemandMWh       float64
	MaxPotentialMWh float64
}

func (e InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible scenario at %d: end-of-horizon demand %.0f MWh exceeds maximum attainable potential %.0f MWh",
		e.Year, e.DemandMWh, e.MaxPotentialMWh)
}

// Initial builds the start-year state from the parameter set: initial
// capacity enters as pre-aged vintages, then the start year is expanded
// and dispatched like any other.
func Initial(p params.ParameterSet) (state.YearState, error) {
	vintages := make([]state.Vintage, 0, len(p.Technologies))
	for _, t := range p.Technologies {
		if t.InitialCapacityMW > 0 {
			vintages = append(vintages, state.Vintage{
				Technology: t.Name,
				BuildYear:  p.StartYear - t.InitialAgeYears,
				CapacityMW: t.InitialCapacityMW,
			})
		}
	}
	return step(p.StartYear, p.BaseDemandMWh, 0, vintages, p)
}

// Advance derives the next year's state from the previous one. Demand
// grows by the configured rate, then consumes any demand delta the
// previous year's auxiliary models reported.
func Advance(prev state.YearState, p params.ParameterSet) (state.YearState, error) {
	year := prev.Year + 1
	demand := prev.DemandMWh * (1 + p.DemandGrowth)
	for _, adj := range prev.Adjustments {
		demand += adj.DemandDeltaMWh
	}
	if demand < 0 {
		demand = 0
	}
	return step(year, demand, prev.UnmetDemandMWh, prev.Vintages, p)
}

// step runs retirement, expansion and dispatch for one year. The
// carried shortfall from the previous year inflates the build
// requirement; it is never resolved retroactively.
func step(year int, demand, carried float64, prevVintages []state.Vintage, p params.ParameterSet) (state.YearState, error) {
	s := state.YearState{
		Year:                year,
		DemandMWh:           demand,
		CarriedShortfallMWh: carried,
		CapacityMW:          make(map[string]float64, len(p.Technologies)),
		NewBuildMW:          make(map[string]float64, len(p.Technologies)),
		RetiredMW:           make(map[string]float64, len(p.Technologies)),
		GenerationMWh:       make(map[string]float64, len(p.Technologies)),
		Adjustments:         make(map[string]state.Adjustment),
		Vintages:            make([]state.Vintage, 0, len(prevVintages)+len(p.Technologies)),
	}
	for _, t := range p.Technologies {
		s.CapacityMW[t.Name] = 0
		s.GenerationMWh[t.Name] = 0
	}

	// Retirement: a vintage serves its build year plus lifetime-1
	// further years.
	for _, v := range prevVintages {
		t, ok := p.Technology(v.Technology)
		if !ok || year-v.BuildYear >= t.LifetimeYears {
			s.RetiredMW[v.Technology] += v.CapacityMW
			continue
		}
		s.Vintages = append(s.Vintages, v)
		s.CapacityMW[v.Technology] += v.CapacityMW
	}

	expand(&s, p)

	if err := checkFeasible(s, p); err != nil {
		return s, err
	}

	dispatch(&s, p)
	return s, nil
}

// expand sizes and allocates new capacity: first to close the gap to
// the year's renewable-share target, then to cover demand plus reserve
// margin and any carried shortfall. Allocation is cheapest screening
// LCOE first, stable tie-break by technology name, capped by each
// technology's maximum annual build.
func expand(s *state.YearState, p params.ParameterSet) {
	target := p.RenewableTarget(s.Year)
	required := s.DemandMWh*(1+p.ReserveMargin) + s.CarriedShortfallMWh

	renewableGap := target*s.DemandMWh - potentialWhere(*s, p, true)
	if renewableGap > 0 {
		allocate(s, p, renewableGap, true)
	}

	totalGap := required - potentialWhere(*s, p, false)
	if totalGap > 0 {
		allocate(s, p, totalGap, false)
	}
}

// allocate adds capacity worth gapMWh of annual potential across the
// (optionally renewable-only) technologies in merit order.
func allocate(s *state.YearState, p params.ParameterSet, gapMWh float64, renewableOnly bool) {
	order := buildOrder(p, s.Year, renewableOnly)
	for _, t := range order {
		if gapMWh <= 0 {
			return
		}
		headroomMW := t.MaxAnnualBuildMW - s.NewBuildMW[t.Name]
		if headroomMW <= 0 {
			continue
		}
		perMW := t.AvailabilityFactor * params.HoursPerYear
		needMW := gapMWh / perMW
		addMW := math.Min(needMW, headroomMW)
		if addMW <= 0 {
			continue
		}
		s.NewBuildMW[t.Name] += addMW
		s.CapacityMW[t.Name] += addMW
		s.Vintages = append(s.Vintages, state.Vintage{
			Technology: t.Name,
			BuildYear:  s.Year,
			CapacityMW: addMW,
		})
		gapMWh -= addMW * perMW
	}
}

// dispatch serves demand in ascending variable-cost merit order, never
// exceeding capacity times availability. Any shortfall is recorded as
// unmet demand, not clamped away.
func dispatch(s *state.YearState, p params.ParameterSet) {
	order := make([]params.Technology, len(p.Technologies))
	copy(order, p.Technologies)
	sort.SliceStable(order, func(i, j int) bool {
		ci := order[i].VariableCost(s.Year, p.StartYear)
		cj := order[j].VariableCost(s.Year, p.StartYear)
		if ci != cj {
			return ci < cj
		}
		return order[i].Name < order[j].Name
	})

	remaining := s.DemandMWh
	renewableGen := 0.0
	for _, t := range order {
		if remaining <= 0 {
			break
		}
		avail := s.CapacityMW[t.Name] * t.AvailabilityFactor * params.HoursPerYear
		gen := math.Min(avail, remaining)
		s.GenerationMWh[t.Name] = gen
		remaining -= gen
		if t.Renewable {
			renewableGen += gen
		}
	}
	s.UnmetDemandMWh = remaining

	total := s.TotalGenerationMWh()
	if total > 0 {
		s.RenewableShare = renewableGen / total
	}
	if s.DemandMWh > 0 {
		s.ReserveMargin = (potentialWhere(*s, p, false) - s.DemandMWh) / s.DemandMWh
	}
}

// checkFeasible verifies the remaining horizon can cover demand if
// every technology builds at its maximum rate from this year on.
// Scheduled retirements of current vintages are accounted for.
func checkFeasible(s state.YearState, p params.ParameterSet) error {
	horizon := p.EndYear - s.Year
	finalDemand := s.DemandMWh * math.Pow(1+p.DemandGrowth, float64(horizon))

	potential := 0.0
	for _, v := range s.Vintages {
		t, ok := p.Technology(v.Technology)
		if !ok || p.EndYear-v.BuildYear >= t.LifetimeYears {
			continue
		}
		potential += v.CapacityMW * t.AvailabilityFactor * params.HoursPerYear
	}
	for _, t := range p.Technologies {
		years := float64(horizon)
		if t.LifetimeYears < horizon {
			// builds older than a lifetime are retired again by the end
			years = float64(t.LifetimeYears)
		}
		potential += t.MaxAnnualBuildMW * years * t.AvailabilityFactor * params.HoursPerYear
	}

	if potential+1e-6 < finalDemand {
		return InfeasibleError{Year: s.Year, DemandMWh: finalDemand, MaxPotentialMWh: potential}
	}
	return nil
}

// buildOrder ranks technologies by screening LCOE for the year: the
// capital-recovery-factor annualized capital and fixed O&M per MWh of
// expected output, plus variable cost. Ties break on name so the
// ranking is deterministic.
func buildOrder(p params.ParameterSet, year int, renewableOnly bool) []params.Technology {
	order := make([]params.Technology, 0, len(p.Technologies))
	for _, t := range p.Technologies {
		if renewableOnly && !t.Renewable {
			continue
		}
		order = append(order, t)
	}
	sort.SliceStable(order, func(i, j int) bool {
		ci := ScreeningLCOE(order[i], year, p)
		cj := ScreeningLCOE(order[j], year, p)
		if ci != cj {
			return ci < cj
		}
		return order[i].Name < order[j].Name
	})
	return order
}

// ScreeningLCOE is the marginal cost of energy from new capacity of t
// in the given year, USD/MWh.
func ScreeningLCOE(t params.Technology, year int, p params.ParameterSet) float64 {
	crf := capitalRecovery(p.DiscountRate, t.LifetimeYears)
	annualPerMW := t.CapitalCost(year, p.StartYear)*1000*crf + t.FixedOMKW*1000
	return annualPerMW/(t.AvailabilityFactor*params.HoursPerYear) + t.VariableCost(year, p.StartYear)
}

func capitalRecovery(rate float64, lifetime int) float64 {
	if rate == 0 {
		return 1 / float64(lifetime)
	}
	f := math.Pow(1+rate, float64(lifetime))
	return rate * f / (f - 1)
}

func potentialWhere(s state.YearState, p params.ParameterSet, renewableOnly bool) float64 {
	total := 0.0
	for _, t := range p.Technologies {
		if renewableOnly && !t.Renewable {
			continue
		}
		total += s.CapacityMW[t.Name] * t.AvailabilityFactor * params.HoursPerYear
	}
	return total
}
