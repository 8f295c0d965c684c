// Package scenario executes the orchestrator under named parameter
// overrides and collects a comparable multi-scenario result set.
package scenario

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bdenergy/transim/internal/pkg/economy"
	"github.com/bdenergy/transim/internal/pkg/msg"
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/sim"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Outcome is the result of one scenario trial: either a completed
// table or a failure marker. A failed trial still carries the years
// completed before the failure for diagnosis.
type Outcome struct {
	Table state.ResultTable
	Err   error
}

// Result maps scenario names to their outcomes. All completed tables
// share the base year range, so rows compare directly across
// scenarios.
type Result map[string]Outcome

// Names returns the scenario names in stable sorted order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TrialDone is the payload published per completed trial.
type TrialDone struct {
	Scenario string
	Outcome  Outcome
}

// Runner executes scenario batches. Trials run concurrently; each
// derives its own parameter set, so no state is shared between them.
type Runner struct {
	pid       uuid.UUID
	publisher *msg.PubSub
}

// New builds a scenario runner.
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

// Run derives one parameter set per named override, runs each scenario
// on its own goroutine and collects the outcomes. One scenario's
// failure never aborts the others.
func (r *Runner) Run(base params.ParameterSet, scenarios map[string]params.Overrides) Result {
	result := make(Result, len(scenarios))
	mux := sync.Mutex{}
	wg := sync.WaitGroup{}

	for name, overrides := range scenarios {
		wg.Add(1)
		go func(name string, overrides params.Overrides) {
			defer wg.Done()
			outcome := runOne(base, overrides)
			if outcome.Err != nil {
				log.Printf("[Scenario] %s failed: %v\n", name, outcome.Err)
			} else {
				log.Printf("[Scenario] %s: %d years\n", name, len(outcome.Table.Rows))
			}
			mux.Lock()
			result[name] = outcome
			mux.Unlock()
			r.publisher.Publish(msg.Result, TrialDone{Scenario: name, Outcome: outcome})
		}(name, overrides)
	}
	wg.Wait()
	return result
}

func runOne(base params.ParameterSet, overrides params.Overrides) Outcome {
	p, err := overrides.Apply(base)
	if err != nil {
		return Outcome{Err: err}
	}
	orc, err := sim.New()
	if err != nil {
		return Outcome{Err: err}
	}
	table, err := orc.Run(p)
	if errors.Is(err, economy.ErrNoConvergence) {
		// A full series with an unavailable IRR is a completed trial;
		// the summary on the table carries the miss.
		err = nil
	}
	return Outcome{Table: table, Err: err}
}

// LoadOverrides reads a named-scenario override file, the JSON mapping
// of scenario name to partial overrides.
func LoadOverrides(configPath string) (map[string]params.Overrides, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	scenarios := make(map[string]params.Overrides)
	if err := json.Unmarshal(jsonConfig, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}
