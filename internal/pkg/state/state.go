// Package state defines the per-year records exchanged between the
// energy, economic and environmental models, and the result table
// assembled from them over a run.
package state

import "sort"

// Vintage is a block of capacity built in a specific year, tracked
// separately for retirement and cost accounting.
type Vintage struct {
	Technology string
	BuildYear  int
	CapacityMW float64
}

// Adjustment is the output of one auxiliary model for one year.
// DemandDeltaMWh feeds back into the following year's demand; Metrics
// are carried on the year's record unchanged.
type Adjustment struct {
	DemandDeltaMWh float64
	Metrics        map[string]float64
}

// YearState is the unit of simulation time. Each state is derived
// deterministically from its predecessor and the parameter set alone.
type YearState struct {
	Year int

	CapacityMW    map[string]float64
	Vintages      []Vintage
	NewBuildMW    map[string]float64
	RetiredMW     map[string]float64
	GenerationMWh map[string]float64

	DemandMWh           float64
	UnmetDemandMWh      float64
	CarriedShortfallMWh float64
	RenewableShare      float64
	ReserveMargin       float64

	// Adjustments holds auxiliary model outputs keyed by model name.
	Adjustments map[string]Adjustment
}

// TotalCapacityMW sums installed capacity across technologies.
func (s YearState) TotalCapacityMW() float64 {
	total := 0.0
	for _, mw := range s.CapacityMW {
		total += mw
	}
	return total
}

// TotalGenerationMWh sums dispatched generation across technologies.
func (s YearState) TotalGenerationMWh() float64 {
	total := 0.0
	for _, mwh := range s.GenerationMWh {
		total += mwh
	}
	return total
}

// Technologies returns the technology names present in the state in
// stable sorted order.
func (s YearState) Technologies() []string {
	names := make([]string, 0, len(s.CapacityMW))
	for name := range s.CapacityMW {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone deep-copies the state. Auxiliary models receive clones so
// none of them can alias the run's maps.
func (s YearState) Clone() YearState {
	out := s
	out.CapacityMW = cloneMap(s.CapacityMW)
	out.NewBuildMW = cloneMap(s.NewBuildMW)
	out.RetiredMW = cloneMap(s.RetiredMW)
	out.GenerationMWh = cloneMap(s.GenerationMWh)
	out.Vintages = make([]Vintage, len(s.Vintages))
	copy(out.Vintages, s.Vintages)
	out.Adjustments = make(map[string]Adjustment, len(s.Adjustments))
	for name, adj := range s.Adjustments {
		a := adj
		a.Metrics = cloneMap(adj.Metrics)
		out.Adjustments[name] = a
	}
	return out
}

// EconomicRecord holds the economic evaluation of one year.
type EconomicRecord struct {
	Year int

	CapexUSD           float64
	CumulativeCapexUSD float64
	FixedOMUSD         float64
	VariableCostUSD    float64
	CarbonCostUSD      float64

	// LCOE is the portfolio levelized cost (USD/MWh), the generation
	// weighted average of the active vintage LCOEs.
	LCOE float64
}

// OpexUSD is total operating expenditure for the year.
func (r EconomicRecord) OpexUSD() float64 {
	return r.FixedOMUSD + r.VariableCostUSD + r.CarbonCostUSD
}

// EnvironmentalRecord holds the environmental evaluation of one year.
type EnvironmentalRecord struct {
	Year int

	CO2Tonnes       float64
	CO2ByTechnology map[string]float64
	SO2Kg           float64
	NOxKg           float64
	PM25Kg          float64
	WaterM3         float64
	LandM2          float64
	EmploymentJobs  float64
}

// FinanceSummary is computed once per run from the full cash-flow
// series. IRR is only meaningful when IRRConverged is true.
type FinanceSummary struct {
	NPVUSD       float64
	IRR          float64
	IRRConverged bool
	PaybackYears int
	PaidBack     bool
}

// Row is one completed simulation year.
type Row struct {
	State YearState
	Econ  EconomicRecord
	Env   EnvironmentalRecord
}

// / ResultTable is the sole output artifact of one orchestrator run:
// one row per completed year, in increasing year order. On failure the
// table still holds every year completed before the failing one.
type ResultTable struct {
	Rows    []Row
	Summary *FinanceSummary
}

// FinalYear returns the last completed row. ok is false for an empty
// table.
func (t ResultTable) FinalYear() (Row, bool) {
	if len(t.Rows) == 0 {
		return Row{}, false
	}
	return t.Rows[len(t.Rows)-1], true
}

// CumulativeCapexUSD returns total capital invested over the run.
func (t ResultTable) CumulativeCapexUSD() float64 {
	if len(t.Rows) == 0 {
		return 0
	}
	return t.Rows[len(t.Rows)-1].Econ.CumulativeCapexUSD
}

func cloneMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
