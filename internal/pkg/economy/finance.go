package economy

import (
	"errors"
	"math"

	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// ErrNoConvergence reports that the IRR root-find did not converge
// within its iteration bound. It is reported, never defaulted to zero.
var ErrNoConvergence = errors.New("financial root-finding did not converge")

const (
	irrTolerance  = 1e-7
	irrIterations = 200
	irrLowerBound = -0.99
	irrUpperBound = 10.0
)

// Summarize computes the run-level financial metrics from the full
// per-year cash-flow series: revenue at the assumed electricity price
// against capital and operating expenditure. On ErrNoConvergence the
// returned summary still carries NPV and payback; only IRR is marked
// unavailable.
func Summarize(rows []state.Row, p params.ParameterSet) (state.FinanceSummary, error) {
	flows := make([]float64, len(rows))
	for i, row := range rows {
		revenue := row.State.TotalGenerationMWh() * p.ElectricityPrice
		flows[i] = revenue - row.Econ.CapexUSD - row.Econ.OpexUSD()
	}

	summary := state.FinanceSummary{NPVUSD: NPV(p.DiscountRate, flows)}
	summary.PaybackYears, summary.PaidBack = payback(flows)

	irr, err := IRR(flows)
	if err != nil {
		return summary, err
	}
	summary.IRR = irr
	summary.IRRConverged = true
	return summary, nil
}

// NPV discounts the cash-flow series to the first period.
func NPV(rate float64, flows []float64) float64 {
	total := 0.0
	for i, f := range flows {
		total += f / math.Pow(1+rate, float64(i))
	}
	return total
}

// IRR finds the discount rate at which NPV is zero by bisection. The
// bracket is located by scanning [irrLowerBound, irrUpperBound] for a
// sign change; no sign change or a bisection that fails to meet
// tolerance within the iteration bound fails with ErrNoConvergence.
func IRR(flows []float64) (float64, error) {
	lo, hi, ok := bracket(flows)
	if !ok {
		return 0, ErrNoConvergence
	}

	fLo := NPV(lo, flows)
	for i := 0; i < irrIterations; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(mid, flows)
		if math.Abs(fMid) < irrTolerance || (hi-lo)/2 < irrTolerance {
			return mid, nil
		}
		if (fLo < 0) == (fMid < 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0, ErrNoConvergence
}

// bracket scans the admissible rate range for a sign change in NPV.
func bracket(flows []float64) (float64, float64, bool) {
	const steps = 400
	width := (irrUpperBound - irrLowerBound) / steps
	prevRate := irrLowerBound
	prevNPV := NPV(prevRate, flows)
	for i := 1; i <= steps; i++ {
		rate := irrLowerBound + float64(i)*width
		v := NPV(rate, flows)
		if prevNPV == 0 {
			return prevRate, prevRate, true
		}
		if (prevNPV < 0) != (v < 0) {
			return prevRate, rate, true
		}
		prevRate, prevNPV = rate, v
	}
	return 0, 0, false
}

// payback returns the first period by which cumulative cash flow turns
// non-negative, counted from the start of the series.
func payback(flows []float64) (int, bool) {
	cumulative := 0.0
	for i, f := range flows {
		cumulative += f
		if cumulative >= 0 {
			return i, true
		}
	}
	return 0, false
}
