// Package export writes result tables to CSV and renders the Markdown
// run reports. It only ever consumes fully completed tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/bdenergy/transim/internal/pkg/scenario"
	"github.com/bdenergy/transim/internal/pkg/sensitivity"
	"github.com/bdenergy/transim/internal/pkg/state"
)

var yearHeader = []string{
	"year", "demand_mwh", "generation_mwh", "unmet_mwh", "renewable_share",
	"reserve_margin", "capex_usd", "cumulative_capex_usd", "opex_usd",
	"lcoe_usd_mwh", "co2_tonnes", "water_m3", "land_m2",
}

// WriteResultTable writes one run's year series as CSV.
func WriteResultTable(w io.Writer, table state.ResultTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(yearHeader); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := []string{
			strconv.Itoa(row.State.Year),
			f(row.State.DemandMWh),
			f(row.State.TotalGenerationMWh()),
			f(row.State.UnmetDemandMWh),
			f(row.State.RenewableShare),
			f(row.State.ReserveMargin),
			f(row.Econ.CapexUSD),
			f(row.Econ.CumulativeCapexUSD),
			f(row.Econ.OpexUSD()),
			f(row.Econ.LCOE),
			f(row.Env.CO2Tonnes),
			f(row.Env.WaterM3),
			f(row.Env.LandM2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScenarioComparison writes all completed scenarios side by side,
// one row per (scenario, year), scenarios in stable name order.
func WriteScenarioComparison(w io.Writer, result scenario.Result) error {
	cw := csv.NewWriter(w)
	header := append([]string{"scenario"}, yearHeader...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, name := range result.Names() {
		outcome := result[name]
		if outcome.Err != nil {
			continue
		}
		for _, row := range outcome.Table.Rows {
			record := []string{
				name,
				strconv.Itoa(row.State.Year),
				f(row.State.DemandMWh),
				f(row.State.TotalGenerationMWh()),
				f(row.State.UnmetDemandMWh),
				f(row.State.RenewableShare),
				f(row.State.ReserveMargin),
				f(row.Econ.CapexUSD),
				f(row.Econ.CumulativeCapexUSD),
				f(row.Econ.OpexUSD()),
				f(row.Econ.LCOE),
				f(row.Env.CO2Tonnes),
				f(row.Env.WaterM3),
				f(row.Env.LandM2),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSensitivity writes a single-parameter sweep as CSV.
func WriteSensitivity(w io.Writer, samples []sensitivity.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"parameter", "value", "outcome", "failed"}); err != nil {
		return err
	}
	for _, s := range samples {
		record := []string{s.Parameter, f(s.Value), f(s.Outcome), strconv.FormatBool(s.Err != nil)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(v float64) string {
	return fmt.Sprintf("%g", v)
}
