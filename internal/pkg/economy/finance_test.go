package economy

import (
	"errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/bdenergy/transim/internal/pkg/state"
)

func TestNPVZeroRate(t *testing.T) {
	flows := []float64{-100, 40, 40, 40}
	assert.Assert(t, math.Abs(NPV(0, flows)-20) < 1e-9)
}

func TestNPVDiscounts(t *testing.T) {
	flows := []float64{-100, 110}
	expect := -100 + 110/1.05
	assert.Assert(t, math.Abs(NPV(0.05, flows)-expect) < 1e-9)
}

func TestIRRKnownRate(t *testing.T) {
	// -100 now, 110 in one year: exactly 10%
	irr, err := IRR([]float64{-100, 110})
	assert.NilError(t, err)
	assert.Assert(t, math.Abs(irr-0.10) < 1e-5)
}

func TestIRRLongSeries(t *testing.T) {
	// 18 years of 12 on a 100 outlay brackets between 8 and 12 percent
	flows := make([]float64, 19)
	flows[0] = -100
	for i := 1; i < len(flows); i++ {
		flows[i] = 12
	}
	irr, err := IRR(flows)
	assert.NilError(t, err)
	assert.Assert(t, irr > 0.08 && irr < 0.12)
	assert.Assert(t, math.Abs(NPV(irr, flows)) < 1e-4)
}

func TestIRRNoSignChange(t *testing.T) {
	_, err := IRR([]float64{-100, -50, -25})
	assert.Assert(t, errors.Is(err, ErrNoConvergence))
}

func TestPayback(t *testing.T) {
	flows := []float64{-100, 30, 30, 50, 10}
	year, ok := payback(flows)
	assert.Assert(t, ok)
	assert.Assert(t, year == 3)

	_, ok = payback([]float64{-100, 10})
	assert.Assert(t, !ok)
}

func TestSummarize(t *testing.T) {
	p := testParams()
	rows := []state.Row{
		{
			State: state.YearState{GenerationMWh: map[string]float64{"TEST_gas": 100000}},
			Econ:  state.EconomicRecord{CapexUSD: 30e6, VariableCostUSD: 5e6},
		},
		{
			State: state.YearState{GenerationMWh: map[string]float64{"TEST_gas": 100000}},
			Econ:  state.EconomicRecord{VariableCostUSD: 5e6},
		},
	}

	summary, err := Summarize(rows, p)
	assert.NilError(t, err)

	// flows: 8.5e6-35e6, then 8.5e6-5e6 per remaining year
	flow0 := 100000*85.0 - 35e6
	flow1 := 100000*85.0 - 5e6
	expectNPV := flow0 + flow1/1.08
	assert.Assert(t, math.Abs(summary.NPVUSD-expectNPV) < 1e-6)
	assert.Assert(t, !summary.PaidBack)
	assert.Assert(t, summary.IRRConverged)
}

func TestSummarizeNoConvergence(t *testing.T) {
	p := testParams()
	rows := []state.Row{
		{
			State: state.YearState{},
			Econ:  state.EconomicRecord{CapexUSD: 30e6},
		},
	}

	summary, err := Summarize(rows, p)
	assert.Assert(t, errors.Is(err, ErrNoConvergence))
	// NPV and payback still populated on the summary
	assert.Assert(t, summary.NPVUSD == -30e6)
	assert.Assert(t, !summary.IRRConverged)
}
