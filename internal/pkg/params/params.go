package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"sort"
)

// ErrInvalidParameters reports a malformed or internally inconsistent
// parameter set. It is always detected before any year is simulated.
var ErrInvalidParameters = errors.New("invalid parameters")

// HoursPerYear converts MW of capacity at a given availability into MWh.
const HoursPerYear = 8760.0

// Technology holds the per-technology planning assumptions for one
// generation technology. Costs are expressed against the start year;
// trajectories (cost decline, escalation) are applied per simulated year.
type Technology struct {
	Name               string  `json:"Name"`
	Renewable          bool    `json:"Renewable"`
	AvailabilityFactor float64 `json:"AvailabilityFactor"`
	CapitalCostKW      float64 `json:"CapitalCostKW"`    // USD/kW at start year
	CostDecline        float64 `json:"CostDecline"`      // fraction/year
	FixedOMKW          float64 `json:"FixedOMKW"`        // USD/kW-year
	VariableCostMWh    float64 `json:"VariableCostMWh"`  // USD/MWh
	CostEscalation     float64 `json:"CostEscalation"`   // fraction/year on variable cost
	EmissionFactor     float64 `json:"EmissionFactor"`   // tCO2/MWh
	SO2Factor          float64 `json:"SO2Factor"`        // kg/MWh
	NOxFactor          float64 `json:"NOxFactor"`        // kg/MWh
	PM25Factor         float64 `json:"PM25Factor"`       // kg/MWh
	WaterFactor        float64 `json:"WaterFactor"`      // m3/MWh
	LandFactor         float64 `json:"LandFactor"`       // m2/kW
	EmploymentFactor   float64 `json:"EmploymentFactor"` // jobs/MW installed
	LifetimeYears      int     `json:"LifetimeYears"`
	MaxAnnualBuildMW   float64 `json:"MaxAnnualBuildMW"`
	InitialCapacityMW  float64 `json:"InitialCapacityMW"`
	InitialAgeYears    int     `json:"InitialAgeYears"`
}

// CapitalCost returns the technology unit capital cost (USD/kW) in the
// given simulation year, with the annual decline trajectory applied.
// The decline runs forward from the start year only: years before it,
// such as the build years of pre-existing vintages, are priced at the
// start-year cost rather than extrapolating the decline backwards.
func (t Technology) CapitalCost(year, startYear int) float64 {
	return t.CapitalCostKW * pow(1.0-t.CostDecline, year-startYear)
}

// VariableCost returns the technology variable cost (USD/MWh) in the
// given simulation year, with escalation applied. As with CapitalCost,
// years before the start year are priced at the start-year cost.
func (t Technology) VariableCost(year, startYear int) float64 {
	return t.VariableCostMWh * pow(1.0+t.CostEscalation, year-startYear)
}

// ParameterSet is the immutable configuration for one simulation run.
// A set is constructed once, validated, and never mutated afterwards;
// scenario and sensitivity trials each derive their own copy through
// Overrides.Apply.
type ParameterSet struct {
	StartYear int `json:"StartYear"`
	EndYear   int `json:"EndYear"`

	BaseDemandMWh    float64 `json:"BaseDemandMWh"`
	DemandGrowth     float64 `json:"DemandGrowth"`
	DiscountRate     float64 `json:"DiscountRate"`
	ReserveMargin    float64 `json:"ReserveMargin"`
	ElectricityPrice float64 `json:"ElectricityPrice"` // USD/MWh revenue assumption
	CarbonPrice      float64 `json:"CarbonPrice"`      // USD/tCO2

	// RenewableTargets maps target years to renewable generation share.
	// Shares between target years are linearly interpolated.
	RenewableTargets map[int]float64 `json:"RenewableTargets"`

	Technologies []Technology `json:"Technologies"`
}

// NewFromFile reads a parameter set from a JSON configuration file and
// validates it.
func NewFromFile(configPath string) (ParameterSet, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return ParameterSet{}, err
	}
	p := ParameterSet{}
	if err := json.Unmarshal(jsonConfig, &p); err != nil {
		return ParameterSet{}, err
	}
	return p, p.Validate()
}

// Validate checks the parameter set is complete and numerically sane.
// All violations are reported wrapped in ErrInvalidParameters.
func (p ParameterSet) Validate() error {
	if p.StartYear > p.EndYear {
		return fmt.Errorf("%w: start year %d after end year %d", ErrInvalidParameters, p.StartYear, p.EndYear)
	}
	if p.BaseDemandMWh < 0 {
		return fmt.Errorf("%w: negative base demand %f", ErrInvalidParameters, p.BaseDemandMWh)
	}
	if p.DiscountRate < 0 {
		return fmt.Errorf("%w: negative discount rate %f", ErrInvalidParameters, p.DiscountRate)
	}
	if p.ReserveMargin < 0 {
		return fmt.Errorf("%w: negative reserve margin %f", ErrInvalidParameters, p.ReserveMargin)
	}
	if len(p.Technologies) == 0 {
		return fmt.Errorf("%w: no technologies defined", ErrInvalidParameters)
	}
	seen := make(map[string]bool)
	for _, t := range p.Technologies {
		if t.Name == "" {
			return fmt.Errorf("%w: technology with empty name", ErrInvalidParameters)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate technology %q", ErrInvalidParameters, t.Name)
		}
		seen[t.Name] = true
		if t.AvailabilityFactor <= 0 || t.AvailabilityFactor > 1 {
			return fmt.Errorf("%w: %s availability factor %f outside (0,1]", ErrInvalidParameters, t.Name, t.AvailabilityFactor)
		}
		if t.CapitalCostKW < 0 || t.FixedOMKW < 0 || t.VariableCostMWh < 0 {
			return fmt.Errorf("%w: %s has a negative cost", ErrInvalidParameters, t.Name)
		}
		if t.CostDecline < 0 || t.CostDecline >= 1 {
			return fmt.Errorf("%w: %s cost decline %f outside [0,1)", ErrInvalidParameters, t.Name, t.CostDecline)
		}
		if t.LifetimeYears <= 0 {
			return fmt.Errorf("%w: %s lifetime %d years", ErrInvalidParameters, t.Name, t.LifetimeYears)
		}
		if t.MaxAnnualBuildMW < 0 || t.InitialCapacityMW < 0 {
			return fmt.Errorf("%w: %s has negative capacity limits", ErrInvalidParameters, t.Name)
		}
		if t.InitialAgeYears < 0 || t.InitialAgeYears >= t.LifetimeYears {
			return fmt.Errorf("%w: %s initial age %d outside [0,lifetime)", ErrInvalidParameters, t.Name, t.InitialAgeYears)
		}
		if t.EmissionFactor < 0 || t.SO2Factor < 0 || t.NOxFactor < 0 || t.PM25Factor < 0 {
			return fmt.Errorf("%w: %s has a negative emission factor", ErrInvalidParameters, t.Name)
		}
		if t.WaterFactor < 0 || t.LandFactor < 0 || t.EmploymentFactor < 0 {
			return fmt.Errorf("%w: %s has a negative resource factor", ErrInvalidParameters, t.Name)
		}
	}
	for year, share := range p.RenewableTargets {
		if share < 0 || share > 1 {
			return fmt.Errorf("%w: renewable target %f for %d outside [0,1]", ErrInvalidParameters, share, year)
		}
	}
	return nil
}

// Years returns the number of simulated years, inclusive of both ends.
func (p ParameterSet) Years() int {
	return p.EndYear - p.StartYear + 1
}

// Technology looks up a technology by name.
func (p ParameterSet) Technology(name string) (Technology, bool) {
	for _, t := range p.Technologies {
		if t.Name == name {
			return t, true
		}
	}
	return Technology{}, false
}

// RenewableTarget returns the renewable share target for a year,
// linearly interpolated between the defined target years and held flat
// outside them. With no targets defined the target is zero.
func (p ParameterSet) RenewableTarget(year int) float64 {
	if len(p.RenewableTargets) == 0 {
		return 0
	}
	years := make([]int, 0, len(p.RenewableTargets))
	for y := range p.RenewableTargets {
		years = append(years, y)
	}
	sort.Ints(years)

	if year <= years[0] {
		return p.RenewableTargets[years[0]]
	}
	last := years[len(years)-1]
	if year >= last {
		return p.RenewableTargets[last]
	}
	for i := 1; i < len(years); i++ {
		if year <= years[i] {
			y0, y1 := years[i-1], years[i]
			s0, s1 := p.RenewableTargets[y0], p.RenewableTargets[y1]
			frac := float64(year-y0) / float64(y1-y0)
			return s0 + frac*(s1-s0)
		}
	}
	return p.RenewableTargets[last]
}

// Clone returns a deep copy of the parameter set. Overrides operate on
// clones so a base set shared across trials is never written to.
func (p ParameterSet) Clone() ParameterSet {
	out := p
	out.Technologies = make([]Technology, len(p.Technologies))
	copy(out.Technologies, p.Technologies)
	out.RenewableTargets = make(map[int]float64, len(p.RenewableTargets))
	for y, s := range p.RenewableTargets {
		out.RenewableTargets[y] = s
	}
	return out
}

func pow(base float64, exp int) float64 {
	if exp < 0 {
		return 1.0
	}
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
