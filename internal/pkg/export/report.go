package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/bdenergy/transim/internal/pkg/scenario"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// WriteReport renders the Markdown summary for one completed run.
func WriteReport(w io.Writer, title string, table state.ResultTable) error {
	b := strings.Builder{}
	fmt.Fprintf(&b, "# %s\n", title)

	first, ok := firstRow(table)
	last, _ := table.FinalYear()
	if !ok {
		b.WriteString("\nNo completed years.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\n## Key Findings (%d-%d)\n", first.State.Year, last.State.Year)

	b.WriteString("\n### Renewable Energy Share\n")
	fmt.Fprintf(&b, "- Final renewable share: %.1f%%\n", last.State.RenewableShare*100)

	b.WriteString("\n### Emissions\n")
	fmt.Fprintf(&b, "- Initial emissions: %.1f Mt CO2\n", first.Env.CO2Tonnes/1e6)
	fmt.Fprintf(&b, "- Final emissions: %.1f Mt CO2\n", last.Env.CO2Tonnes/1e6)
	fmt.Fprintf(&b, "- Reduction: %.1f Mt CO2\n", (first.Env.CO2Tonnes-last.Env.CO2Tonnes)/1e6)

	b.WriteString("\n### Investment Requirements\n")
	fmt.Fprintf(&b, "- Total investment needed: $%.1f billion\n", table.CumulativeCapexUSD()/1e9)
	fmt.Fprintf(&b, "- Average annual investment: $%.1f billion\n", table.CumulativeCapexUSD()/1e9/float64(len(table.Rows)))

	b.WriteString("\n### Cost of Electricity\n")
	fmt.Fprintf(&b, "- Final portfolio LCOE: $%.2f/MWh\n", last.Econ.LCOE)

	b.WriteString("\n### Air Pollutants\n")
	fmt.Fprintf(&b, "- Final SO2 emissions: %.0f kg\n", last.Env.SO2Kg)
	fmt.Fprintf(&b, "- Final NOx emissions: %.0f kg\n", last.Env.NOxKg)
	fmt.Fprintf(&b, "- Final PM2.5 emissions: %.0f kg\n", last.Env.PM25Kg)

	b.WriteString("\n### Environmental Impacts\n")
	fmt.Fprintf(&b, "- Final water withdrawal: %.0f m3\n", last.Env.WaterM3)
	fmt.Fprintf(&b, "- Final land committed: %.0f m2\n", last.Env.LandM2)

	b.WriteString("\n### Employment\n")
	fmt.Fprintf(&b, "- Direct employment: %.0f jobs\n", last.Env.EmploymentJobs)

	if s := table.Summary; s != nil {
		b.WriteString("\n### Financial Summary\n")
		fmt.Fprintf(&b, "- NPV: $%.1f million\n", s.NPVUSD/1e6)
		if s.IRRConverged {
			fmt.Fprintf(&b, "- IRR: %.2f%%\n", s.IRR*100)
		} else {
			b.WriteString("- IRR: not available (no convergence)\n")
		}
		if s.PaidBack {
			fmt.Fprintf(&b, "- Payback: year %d of the run\n", s.PaybackYears+1)
		} else {
			b.WriteString("- Payback: not reached within the horizon\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteComparisonReport renders the Markdown comparison across
// scenarios, in stable name order. Failed scenarios are listed with
// their failure reason.
func WriteComparisonReport(w io.Writer, result scenario.Result) error {
	b := strings.Builder{}
	b.WriteString("# Scenario Comparison\n")

	for _, name := range result.Names() {
		outcome := result[name]
		fmt.Fprintf(&b, "\n## %s\n", name)
		if outcome.Err != nil {
			fmt.Fprintf(&b, "- Failed after %d years: %v\n", len(outcome.Table.Rows), outcome.Err)
			continue
		}
		last, ok := outcome.Table.FinalYear()
		if !ok {
			b.WriteString("- No completed years\n")
			continue
		}
		fmt.Fprintf(&b, "- Final renewable share: %.1f%%\n", last.State.RenewableShare*100)
		fmt.Fprintf(&b, "- Final emissions: %.1f Mt CO2\n", last.Env.CO2Tonnes/1e6)
		fmt.Fprintf(&b, "- Total investment: $%.1f billion\n", outcome.Table.CumulativeCapexUSD()/1e9)
		fmt.Fprintf(&b, "- Final LCOE: $%.2f/MWh\n", last.Econ.LCOE)
		fmt.Fprintf(&b, "- Direct employment: %.0f jobs\n", last.Env.EmploymentJobs)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func firstRow(table state.ResultTable) (state.Row, bool) {
	if len(table.Rows) == 0 {
		return state.Row{}, false
	}
	return table.Rows[0], true
}
