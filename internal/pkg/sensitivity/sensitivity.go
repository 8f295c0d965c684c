// Package sensitivity sweeps parameters across sample ranges and maps
// each sampled value to a scalar outcome extracted from the run.
package sensitivity

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/bdenergy/transim/internal/pkg/economy"
	"github.com/bdenergy/transim/internal/pkg/msg"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/sim"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Extractor reduces a completed result table to one scalar outcome.
type Extractor func(state.ResultTable) float64

// Sample is one point of a single-parameter sensitivity surface.
type Sample struct {
	Parameter string
	Value     float64
	Outcome   float64
	Err       error
}

// GridSample is one point of a multi-parameter sweep, keyed by the
// parameter values in axis order.
type GridSample struct {
	Values  []float64
	Outcome float64
	Err     error
}

// Axis is one dimension of a multi-parameter sweep.
type Axis struct {
	Parameter string
	Values    []float64
}

// Runner executes sensitivity sweeps against a base parameter set.
type Runner struct {
	pid       uuid.UUID
	publisher *msg.PubSub
}

// New builds a sensitivity runner.
func New() (*Runner, error) {
	pid, err := uuid.NewUUID()
	return &Runner{pid: pid, publisher: msg.NewPublisher(pid)}, err
}

// PID is a getter for the runner PID.
func (r *Runner) PID() uuid.UUID {
	return r.pid
}

// Subscribe returns a read-only channel of runner events.
func (r *Runner) Subscribe(pid uuid.UUID, topic msg.Topic) <-chan msg.Msg {
	return r.publisher.Subscribe(pid, topic)
}

// Unsubscribe drops the subscriber's channels.
func (r *Runner) Unsubscribe(pid uuid.UUID) {
	r.publisher.Unsubscribe(pid)
}

// Sweep runs the orchestrator once per sampled value with only the
// named parameter overridden, in sample order. The context is checked
// between trials, so a long sweep cancels at trial granularity. A
// failed trial is recorded on its sample and never stops the sweep.
func (r *Runner) Sweep(ctx context.Context, base params.ParameterSet, parameter string, values []float64, extract Extractor) ([]Sample, error) {
	samples := make([]Sample, 0, len(values))
	for _, value := range values {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		sample := Sample{Parameter: parameter, Value: value}
		table, err := runTrial(base, []string{parameter}, []float64{value})
		if err != nil {
			sample.Err = err
			log.Printf("[Sensitivity] %s=%v failed: %v\n", parameter, value, err)
		} else {
			sample.Outcome = extract(table)
		}
		samples = append(samples, sample)
		r.publisher.Publish(msg.Result, sample)
	}
	return samples, nil
}

// SweepGrid runs the cartesian product of the axes, one trial per
// combination, with the same per-combination isolation as Sweep. An
// axis with no values makes the product empty, so no trials run.
func (r *Runner) SweepGrid(ctx context.Context, base params.ParameterSet, axes []Axis, extract Extractor) ([]GridSample, error) {
	names := make([]string, len(axes))
	for i, axis := range axes {
		if len(axis.Values) == 0 {
			return []GridSample{}, nil
		}
		names[i] = axis.Parameter
	}

	samples := []GridSample{}
	indices := make([]int, len(axes))
	for {
		if err := ctx.Err(); err != nil {
			return samples, err
		}
		values := make([]float64, len(axes))
		for i, axis := range axes {
			values[i] = axis.Values[indices[i]]
		}
		sample := GridSample{Values: values}
		table, err := runTrial(base, names, values)
		if err != nil {
			sample.Err = err
		} else {
			sample.Outcome = extract(table)
		}
		samples = append(samples, sample)
		r.publisher.Publish(msg.Result, sample)

		if !next(indices, axes) {
			return samples, nil
		}
	}
}

func runTrial(base params.ParameterSet, names []string, values []float64) (state.ResultTable, error) {
	p := base
	for i, name := range names {
		overrides, err := params.Named(name, values[i])
		if err != nil {
			return state.ResultTable{}, err
		}
		p, err = overrides.Apply(p)
		if err != nil {
			return state.ResultTable{}, err
		}
	}
	orc, err := sim.New()
	if err != nil {
		return state.ResultTable{}, err
	}
	table, err := orc.Run(p)
	if errors.Is(err, economy.ErrNoConvergence) {
		// The series stands; the summary on the table carries the miss.
		return table, nil
	}
	return table, err
}

// next advances the odometer over the axis value indices.
func next(indices []int, axes []Axis) bool {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < len(axes[i].Values) {
			return true
		}
		indices[i] = 0
	}
	return false
}

// FinalRenewableShare extracts the final-year renewable share.
func FinalRenewableShare(t state.ResultTable) float64 {
	row, ok := t.FinalYear()
	if !ok {
		return 0
	}
	return row.State.RenewableShare
}

// CumulativeCapex extracts total capital invested over the run.
func CumulativeCapex(t state.ResultTable) float64 {
	return t.CumulativeCapexUSD()
}

// FinalEmissions extracts final-year CO2 emissions.
func FinalEmissions(t state.ResultTable) float64 {
	row, ok := t.FinalYear()
	if !ok {
		return 0
	}
	return row.Env.CO2Tonnes
}
