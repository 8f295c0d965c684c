package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/bdenergy/transim/internal/pkg/scenario"
	"github.com/bdenergy/transim/internal/pkg/sensitivity"
	"github.com/bdenergy/transim/internal/pkg/state"
)

func testTable() state.ResultTable {
	return state.ResultTable{
		Rows: []state.Row{
			{
				State: state.YearState{
					Year:           2024,
					DemandMWh:      100000,
					GenerationMWh:  map[string]float64{"solar": 30000, "gas": 70000},
					CapacityMW:     map[string]float64{"solar": 20, "gas": 30},
					RenewableShare: 0.3,
				},
				Econ: state.EconomicRecord{Year: 2024, CapexUSD: 1e6, CumulativeCapexUSD: 1e6, LCOE: 55},
				Env:  state.EnvironmentalRecord{Year: 2024, CO2Tonnes: 28000},
			},
			{
				State: state.YearState{
					Year:           2025,
					DemandMWh:      105000,
					GenerationMWh:  map[string]float64{"solar": 35000, "gas": 70000},
					CapacityMW:     map[string]float64{"solar": 22, "gas": 30},
					RenewableShare: 0.33,
				},
				Econ: state.EconomicRecord{Year: 2025, CapexUSD: 5e5, CumulativeCapexUSD: 1.5e6, LCOE: 54},
				Env:  state.EnvironmentalRecord{Year: 2025, CO2Tonnes: 28000, SO2Kg: 700, NOxKg: 420, PM25Kg: 35, EmploymentJobs: 93},
			},
		},
		Summary: &state.FinanceSummary{NPVUSD: 1e7, IRR: 0.11, IRRConverged: true, PaybackYears: 8, PaidBack: true},
	}
}

func TestWriteResultTable(t *testing.T) {
	buf := bytes.Buffer{}
	assert.NilError(t, WriteResultTable(&buf, testTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NilError(t, err)
	assert.Assert(t, len(records) == 3)
	assert.DeepEqual(t, records[0], yearHeader)
	assert.Assert(t, records[1][0] == "2024")
	assert.Assert(t, records[2][0] == "2025")
	assert.Assert(t, records[1][1] == "100000")
}

func TestWriteScenarioComparison(t *testing.T) {
	result := scenario.Result{
		"baseline": {Table: testTable()},
		"failed":   {Err: errors.New("infeasible")},
	}

	buf := bytes.Buffer{}
	assert.NilError(t, WriteScenarioComparison(&buf, result))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NilError(t, err)
	// header plus two baseline rows; the failed scenario is skipped
	assert.Assert(t, len(records) == 3)
	assert.Assert(t, records[1][0] == "baseline")
	assert.Assert(t, records[1][1] == "2024")
}

func TestWriteSensitivity(t *testing.T) {
	samples := []sensitivity.Sample{
		{Parameter: "discount_rate", Value: 0.04, Outcome: 1e9},
		{Parameter: "discount_rate", Value: 0.08, Err: errors.New("boom")},
	}

	buf := bytes.Buffer{}
	assert.NilError(t, WriteSensitivity(&buf, samples))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NilError(t, err)
	assert.Assert(t, len(records) == 3)
	assert.Assert(t, records[1][3] == "false")
	assert.Assert(t, records[2][3] == "true")
}

func TestWriteReport(t *testing.T) {
	buf := bytes.Buffer{}
	assert.NilError(t, WriteReport(&buf, "Test Run", testTable()))

	report := buf.String()
	assert.Assert(t, strings.Contains(report, "# Test Run"))
	assert.Assert(t, strings.Contains(report, "2025"))
	assert.Assert(t, strings.Contains(report, "IRR"))
	assert.Assert(t, strings.Contains(report, "Final SO2 emissions: 700 kg"))
	assert.Assert(t, strings.Contains(report, "Final NOx emissions: 420 kg"))
	assert.Assert(t, strings.Contains(report, "Final PM2.5 emissions: 35 kg"))
	assert.Assert(t, strings.Contains(report, "Direct employment: 93 jobs"))
}

func TestWriteReportNoConvergence(t *testing.T) {
	table := testTable()
	table.Summary = &state.FinanceSummary{NPVUSD: -5e6}

	buf := bytes.Buffer{}
	assert.NilError(t, WriteReport(&buf, "Test Run", table))
	assert.Assert(t, strings.Contains(buf.String(), "not available"))
}

func TestWriteComparisonReport(t *testing.T) {
	result := scenario.Result{
		"baseline": {Table: testTable()},
		"failed":   {Err: errors.New("infeasible")},
	}

	buf := bytes.Buffer{}
	assert.NilError(t, WriteComparisonReport(&buf, result))

	report := buf.String()
	assert.Assert(t, strings.Contains(report, "baseline"))
	assert.Assert(t, strings.Contains(report, "failed"))
	assert.Assert(t, strings.Contains(report, "Direct employment: 93 jobs"))
}
