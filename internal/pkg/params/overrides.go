package params

import (
	"fmt"
	"strings"
)

// Overrides is a partial parameter override applied on top of a base
// set. Nil fields inherit the base value unchanged. Apply never writes
// to the base set, so one base may be shared across concurrent trials.
type Overrides struct {
	StartYear        *int     `json:"StartYear,omitempty"`
	EndYear          *int     `json:"EndYear,omitempty"`
	BaseDemandMWh    *float64 `json:"BaseDemandMWh,omitempty"`
	DemandGrowth     *float64 `json:"DemandGrowth,omitempty"`
	DiscountRate     *float64 `json:"DiscountRate,omitempty"`
	ReserveMargin    *float64 `json:"ReserveMargin,omitempty"`
	ElectricityPrice *float64 `json:"ElectricityPrice,omitempty"`
	CarbonPrice      *float64 `json:"CarbonPrice,omitempty"`

	RenewableTargets map[int]float64 `json:"RenewableTargets,omitempty"`

	// Technologies maps a technology name to field overrides for it.
	Technologies map[string]TechnologyOverride `json:"Technologies,omitempty"`
}

// TechnologyOverride overrides individual fields of one technology.
type TechnologyOverride struct {
	AvailabilityFactor *float64 `json:"AvailabilityFactor,omitempty"`
	CapitalCostKW      *float64 `json:"CapitalCostKW,omitempty"`
	CostDecline        *float64 `json:"CostDecline,omitempty"`
	FixedOMKW          *float64 `json:"FixedOMKW,omitempty"`
	VariableCostMWh    *float64 `json:"VariableCostMWh,omitempty"`
	MaxAnnualBuildMW   *float64 `json:"MaxAnnualBuildMW,omitempty"`
	InitialCapacityMW  *float64 `json:"InitialCapacityMW,omitempty"`
}

// Apply derives a new validated parameter set from base with the
// overrides applied. The base set is left untouched.
func (o Overrides) Apply(base ParameterSet) (ParameterSet, error) {
	p := base.Clone()

	setInt(&p.StartYear, o.StartYear)
	setInt(&p.EndYear, o.EndYear)
	setFloat(&p.BaseDemandMWh, o.BaseDemandMWh)
	setFloat(&p.DemandGrowth, o.DemandGrowth)
	setFloat(&p.DiscountRate, o.DiscountRate)
	setFloat(&p.ReserveMargin, o.ReserveMargin)
	setFloat(&p.ElectricityPrice, o.ElectricityPrice)
	setFloat(&p.CarbonPrice, o.CarbonPrice)

	if o.RenewableTargets != nil {
		p.RenewableTargets = make(map[int]float64, len(o.RenewableTargets))
		for y, s := range o.RenewableTargets {
			p.RenewableTargets[y] = s
		}
	}

	for name, to := range o.Technologies {
		i := techIndex(p, name)
		if i < 0 {
			return ParameterSet{}, fmt.Errorf("%w: override for unknown technology %q", ErrInvalidParameters, name)
		}
		t := &p.Technologies[i]
		setFloat(&t.AvailabilityFactor, to.AvailabilityFactor)
		setFloat(&t.CapitalCostKW, to.CapitalCostKW)
		setFloat(&t.CostDecline, to.CostDecline)
		setFloat(&t.FixedOMKW, to.FixedOMKW)
		setFloat(&t.VariableCostMWh, to.VariableCostMWh)
		setFloat(&t.MaxAnnualBuildMW, to.MaxAnnualBuildMW)
		setFloat(&t.InitialCapacityMW, to.InitialCapacityMW)
	}

	return p, p.Validate()
}

// Named builds an override setting a single parameter addressed by
// name, for sensitivity sweeps. Scalar names: discount_rate,
// demand_growth, base_demand, reserve_margin, electricity_price,
// carbon_price. Technology fields use "<technology>.<field>" with
// fields capex, availability, cost_decline, fixed_om, variable_cost
// and max_build.
func Named(name string, value float64) (Overrides, error) {
	o := Overrides{}
	switch name {
	case "discount_rate":
		o.DiscountRate = &value
	case "demand_growth":
		o.DemandGrowth = &value
	case "base_demand":
		o.BaseDemandMWh = &value
	case "reserve_margin":
		o.ReserveMargin = &value
	case "electricity_price":
		o.ElectricityPrice = &value
	case "carbon_price":
		o.CarbonPrice = &value
	default:
		tech, field, ok := strings.Cut(name, ".")
		if !ok {
			return Overrides{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidParameters, name)
		}
		to := TechnologyOverride{}
		switch field {
		case "capex":
			to.CapitalCostKW = &value
		case "availability":
			to.AvailabilityFactor = &value
		case "cost_decline":
			to.CostDecline = &value
		case "fixed_om":
			to.FixedOMKW = &value
		case "variable_cost":
			to.VariableCostMWh = &value
		case "max_build":
			to.MaxAnnualBuildMW = &value
		default:
			return Overrides{}, fmt.Errorf("%w: unknown technology field %q", ErrInvalidParameters, field)
		}
		o.Technologies = map[string]TechnologyOverride{tech: to}
	}
	return o, nil
}

func techIndex(p ParameterSet, name string) int {
	for i, t := range p.Technologies {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
