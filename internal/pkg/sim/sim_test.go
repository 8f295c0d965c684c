package sim

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/bdenergy/transim/internal/pkg/economy"
	"github.com/bdenergy/transim/internal/pkg/energy"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

func testParams() params.ParameterSet {
	return params.ParameterSet{
		StartYear:        2024,
		EndYear:          2026,
		BaseDemandMWh:    100000,
		DemandGrowth:     0.05,
		DiscountRate:     0.08,
		ElectricityPrice: 85,
		Technologies: []params.Technology{
			{
				Name:               "TEST_solar",
				Renewable:          true,
				AvailabilityFactor: 0.18,
				CapitalCostKW:      800,
				FixedOMKW:          10,
				LifetimeYears:      25,
				MaxAnnualBuildMW:   25,
				InitialCapacityMW:  50,
			},
		},
	}
}

// adjusterFunc adapts a closure into an auxiliary model for tests.
type adjusterFunc struct {
	name string
	fn   func(state.YearState, params.ParameterSet) (state.Adjustment, error)
}

func (a adjusterFunc) Name() string { return a.name }

func (a adjusterFunc) Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
	return a.fn(s, p)
}

func TestRunThreeYears(t *testing.T) {
	orc, err := New()
	assert.NilError(t, err)

	table, err := orc.Run(testParams())
	assert.NilError(t, err)
	assert.Assert(t, len(table.Rows) == 3)

	// one row per year, increasing
	for i, row := range table.Rows {
		assert.Assert(t, row.State.Year == 2024+i)
		assert.Assert(t, row.Econ.Year == 2024+i)
		assert.Assert(t, row.Env.Year == 2024+i)
	}

	// growing demand forces new solar every year, so cumulative capex
	// strictly increases
	prev := 0.0
	for _, row := range table.Rows {
		assert.Assert(t, row.State.NewBuildMW["TEST_solar"] > 0)
		assert.Assert(t, row.Econ.CumulativeCapexUSD > prev)
		prev = row.Econ.CumulativeCapexUSD
	}

	assert.Assert(t, table.Summary != nil)
}

func TestRunSingleYear(t *testing.T) {
	p := testParams()
	p.EndYear = p.StartYear

	orc, _ := New()
	table, err := orc.Run(p)
	assert.NilError(t, err)
	assert.Assert(t, len(table.Rows) == 1)
	assert.Assert(t, table.Rows[0].State.Year == 2024)
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	p := testParams()
	p.StartYear = 2030
	p.EndYear = 2024

	orc, _ := New()
	table, err := orc.Run(p)
	assert.Assert(t, errors.Is(err, params.ErrInvalidParameters))
	assert.Assert(t, len(table.Rows) == 0)
}

func TestRunIsIdempotent(t *testing.T) {
	p := testParams()
	orc, _ := New()

	first, err := orc.Run(p)
	assert.NilError(t, err)
	second, err := orc.Run(p)
	assert.NilError(t, err)

	assert.DeepEqual(t, first, second)
}

func TestRunStopsOnInfeasibility(t *testing.T) {
	p := testParams()
	p.BaseDemandMWh = 1e9

	orc, _ := New()
	table, err := orc.Run(p)
	assert.Assert(t, err != nil)
	infeasible := energy.InfeasibleError{}
	assert.Assert(t, errors.As(err, &infeasible))
	assert.Assert(t, len(table.Rows) == 0)
}

func TestPluginAdjustmentsRecorded(t *testing.T) {
	adj := adjusterFunc{
		name: "TEST_metrics",
		fn: func(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
			return state.Adjustment{Metrics: map[string]float64{"value": float64(s.Year)}}, nil
		},
	}

	orc, err := New(adj)
	assert.NilError(t, err)
	table, err := orc.Run(testParams())
	assert.NilError(t, err)

	for _, row := range table.Rows {
		a, ok := row.State.Adjustments["TEST_metrics"]
		assert.Assert(t, ok)
		assert.Assert(t, a.Metrics["value"] == float64(row.State.Year))
	}
}

func TestPluginDemandDeltaFeedsBack(t *testing.T) {
	adj := adjusterFunc{
		name: "TEST_dr",
		fn: func(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
			return state.Adjustment{DemandDeltaMWh: -1000}, nil
		},
	}

	withPlugin, _ := New(adj)
	without, _ := New()

	a, err := withPlugin.Run(testParams())
	assert.NilError(t, err)
	b, err := without.Run(testParams())
	assert.NilError(t, err)

	// the delta lands the following year
	assert.Assert(t, a.Rows[0].State.DemandMWh == b.Rows[0].State.DemandMWh)
	assert.Assert(t, a.Rows[1].State.DemandMWh == b.Rows[1].State.DemandMWh-1000)
}

func TestRunReportsNoConvergence(t *testing.T) {
	p := testParams()
	// No revenue makes every annual flow negative, so IRR has no root.
	p.ElectricityPrice = 0

	orc, _ := New()
	table, err := orc.Run(p)
	assert.Assert(t, errors.Is(err, economy.ErrNoConvergence))

	// the per-year series and the rest of the summary survive
	assert.Assert(t, len(table.Rows) == 3)
	assert.Assert(t, table.Summary != nil)
	assert.Assert(t, !table.Summary.IRRConverged)
	assert.Assert(t, table.Summary.NPVUSD < 0)
}

func TestPluginSeesCopyOfState(t *testing.T) {
	adj := adjusterFunc{
		name: "TEST_mutator",
		fn: func(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
			s.CapacityMW["TEST_solar"] = 0
			s.GenerationMWh["TEST_solar"] = 0
			s.Vintages = nil
			return state.Adjustment{}, nil
		},
	}

	withMutator, _ := New(adj)
	plain, _ := New()

	a, err := withMutator.Run(testParams())
	assert.NilError(t, err)
	b, err := plain.Run(testParams())
	assert.NilError(t, err)

	for i := range a.Rows {
		assert.DeepEqual(t, a.Rows[i].State.CapacityMW, b.Rows[i].State.CapacityMW)
		assert.DeepEqual(t, a.Rows[i].State.GenerationMWh, b.Rows[i].State.GenerationMWh)
	}
}

func TestPluginFailureWrapped(t *testing.T) {
	boom := errors.New("boom")
	adj := adjusterFunc{
		name: "TEST_broken",
		fn: func(s state.YearState, p params.ParameterSet) (state.Adjustment, error) {
			return state.Adjustment{}, boom
		},
	}

	orc, _ := New(adj)
	table, err := orc.Run(testParams())
	assert.Assert(t, errors.Is(err, boom))

	pluginErr := PluginError{}
	assert.Assert(t, errors.As(err, &pluginErr))
	assert.Assert(t, pluginErr.Plugin == "TEST_broken")
	assert.Assert(t, pluginErr.Year == 2024)
	assert.Assert(t, len(table.Rows) == 0)
}

func TestPhaseString(t *testing.T) {
	assert.Assert(t, Initialized.String() == "Initialized")
	assert.Assert(t, Running.String() == "Running")
	assert.Assert(t, Completed.String() == "Completed")
	assert.Assert(t, Failed.String() == "Failed")
	assert.Assert(t, Phase(99).String() == "Unknown")
}
