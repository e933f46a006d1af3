package campaign

import (
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/engine"
)

// StopCondition counts completed vaccinations and fires its signal once the
// target is reached, provided early stopping is enabled.
type StopCondition struct {
	signal    *engine.Signal
	target    int
	enabled   bool
	completed int
}

// NewStopCondition creates a stop condition around an unfired signal
func NewStopCondition(signal *engine.Signal, target int, enabled bool) *StopCondition {
	return &StopCondition{signal: signal, target: target, enabled: enabled}
}

// Increment records one completion
func (s *StopCondition) Increment() {
	s.completed++
	if s.enabled && s.completed >= s.target {
		s.signal.Fire()
	}
}

// Completed returns the number of completions so far
func (s *StopCondition) Completed() int {
	return s.completed
}

// Fired reports whether the target signal has fired
func (s *StopCondition) Fired() bool {
	return s.signal.Fired()
}

// Signal returns the underlying one-shot signal
func (s *StopCondition) Signal() *engine.Signal {
	return s.signal
}
