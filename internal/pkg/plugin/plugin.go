// Package plugin defines the capability interface for auxiliary models
// hooked into the per-year loop. The orchestrator invokes each
// registered adjuster once per year with the freshly advanced state;
// the returned adjustment is merged into that year's record. An empty
// registry leaves core behavior unchanged.
package plugin

import (
	"github.com/bdenergy/transim/internal/pkg/params"
	"github.com/bdenergy/transim/internal/pkg/state"
)

// Adjuster is an auxiliary model. Adjust must be deterministic in its
// inputs and free of side effects on the passed state.
type Adjuster interface {
	Name() string
	Adjust(s state.YearState, p params.ParameterSet) (state.Adjustment, error)
}
