// Package sim drives the year-by-year simulation loop, feeding each
// model's output into the next and assembling the result table.
package sim

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/bdenergy/transim/internal/pkg/economy"
	"github.com/bdenergy/transim/internal/pkg/energy"
	"github.com/bdenergy/transim/internal/pkg/enviro"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/plugin"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// PluginError wraps an unexpected failure from an auxiliary model.
type PluginError struct {
	Plugin string
	Year   int
	Err    error
}

func (e PluginError) Error() string {
	return fmt.Sprintf("auxiliary model %s failed at %d: %v", e.Plugin, e.Year, e.Err)
}

func (e PluginError) Unwrap() error { return e.Err }

// Phase is the run state machine.
type Phase int

const (
	Initialized Phase = iota
	Running
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "Initialized"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

// Orchestrator runs one simulation per Run call. A run is a pure
// function of its parameter set; the orchestrator itself holds only
// identity and the auxiliary model registry, so one instance may serve
// concurrent runs.
type Orchestrator struct {
	pid     uuid.UUID
	plugins []plugin.Adjuster
}

// New builds an orchestrator with zero or more auxiliary models. The
// models run once per year in registration order.
func New(plugins ...plugin.Adjuster) (*Orchestrator, error) {
	pid, err := uuid.NewUUID()
	return &Orchestrator{pid: pid, plugins: plugins}, err
}

// PID is a getter for the orchestrator PID.
func (o *Orchestrator) PID() uuid.UUID {
	return o.pid
}

// Run simulates every year from start to end inclusive. It validates
// parameters before simulating any year, and stops at the first model
// failure; the returned table always preserves the years completed
// before the failure. A finance summary that fails to converge is
// reported through the returned error while leaving the per-year
// series intact.
func (o *Orchestrator) Run(p params.ParameterSet) (state.ResultTable, error) {
	table := state.ResultTable{}
	if err := p.Validate(); err != nil {
		return table, err
	}

	phase := Running
	prev := state.YearState{}
	prior := state.EconomicRecord{}

	for year := p.StartYear; year <= p.EndYear; year++ {
		var s state.YearState
		var err error
		if year == p.StartYear {
			s, err = energy.Initial(p)
		} else {
			s, err = energy.Advance(prev, p)
		}
		if err != nil {
			phase = Failed
			log.Printf("[Sim] %v run %s failed at %d: %v\n", phase, o.pid, year, err)
			return table, err
		}

		// Each auxiliary model gets its own copy of the year state, so
		// a misbehaving model cannot corrupt the run.
		for _, adj := range o.plugins {
			a, err := adj.Adjust(s.Clone(), p)
			if err != nil {
				phase = Failed
				log.Printf("[Sim] %v run %s failed at %d: %v\n", phase, o.pid, year, err)
				return table, PluginError{Plugin: adj.Name(), Year: year, Err: err}
			}
			s.Adjustments[adj.Name()] = a
		}

		econ := economy.Evaluate(s, prior, p)
		env := enviro.Evaluate(s, p)

		table.Rows = append(table.Rows, state.Row{State: s, Econ: econ, Env: env})
		prev = s
		prior = econ
	}

	summary, err := economy.Summarize(table.Rows, p)
	table.Summary = &summary
	if err != nil && !errors.Is(err, economy.ErrNoConvergence) {
		return table, err
	}
	phase = Completed
	log.Printf("[Sim] %v run %s: %d years\n", phase, o.pid, len(table.Rows))
	// err is nil or economy.ErrNoConvergence; the series stands either way.
	return table, err
}
