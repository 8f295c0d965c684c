package params

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"
)

func TestApplyLeavesBaseUntouched(t *testing.T) {
	base := testParams()
	rate := 0.12
	capex := 600.0
	o := Overrides{
		DiscountRate:     &rate,
		RenewableTargets: map[int]float64{2030: 0.25},
		Technologies: map[string]TechnologyOverride{
			"TEST_solar": {CapitalCostKW: &capex},
		},
	}

	p, err := o.Apply(base)
	assert.NilError(t, err)
	assert.Assert(t, p.DiscountRate == 0.12)
	assert.Assert(t, p.RenewableTargets[2030] == 0.25)
	solar, _ := p.Technology("TEST_solar")
	assert.Assert(t, solar.CapitalCostKW == 600)

	// base is shared across concurrent trials and must never move
	assert.Assert(t, base.DiscountRate == 0.08)
	assert.Assert(t, base.RenewableTargets[2030] == 0.15)
	baseSolar, _ := base.Technology("TEST_solar")
	assert.Assert(t, baseSolar.CapitalCostKW == 800)
}

func TestApplyEmptyOverrides(t *testing.T) {
	base := testParams()
	p, err := Overrides{}.Apply(base)
	assert.NilError(t, err)
	assert.Assert(t, p.DiscountRate == base.DiscountRate)
	assert.Assert(t, len(p.Technologies) == len(base.Technologies))
}

func TestApplyUnknownTechnology(t *testing.T) {
	capex := 600.0
	o := Overrides{Technologies: map[string]TechnologyOverride{
		"TEST_fusion": {CapitalCostKW: &capex},
	}}
	_, err := o.Apply(testParams())
	assert.Assert(t, errors.Is(err, ErrInvalidParameters))
}

func TestApplyValidatesResult(t *testing.T) {
	rate := -0.5
	_, err := Overrides{DiscountRate: &rate}.Apply(testParams())
	assert.Assert(t, errors.Is(err, ErrInvalidParameters))
}

func TestNamedScalar(t *testing.T) {
	o, err := Named("discount_rate", 0.1)
	assert.NilError(t, err)
	p, err := o.Apply(testParams())
	assert.NilError(t, err)
	assert.Assert(t, p.DiscountRate == 0.1)
}

func TestNamedTechnologyField(t *testing.T) {
	o, err := Named("TEST_solar.capex", 500)
	assert.NilError(t, err)
	p, err := o.Apply(testParams())
	assert.NilError(t, err)
	solar, _ := p.Technology("TEST_solar")
	assert.Assert(t, solar.CapitalCostKW == 500)
}

func TestNamedUnknown(t *testing.T) {
	_, err := Named("frequency", 50)
	assert.Assert(t, errors.Is(err, ErrInvalidParameters))

	_, err = Named("TEST_solar.color", 1)
	assert.Assert(t, errors.Is(err, ErrInvalidParameters))
}
