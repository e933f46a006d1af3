package engine

// Signal is a one-shot broadcast. It transitions from unfired to fired
// exactly once; waiters registered before that run synchronously inside
// Fire, in registration order.
type Signal struct {
	eng     *Engine
	fired   bool
	waiters []Action
}

// NewSignal creates an unfired signal bound to an engine
func NewSignal(eng *Engine) *Signal {
	return &Signal{eng: eng}
}

// Fired reports whether Fire has been called
func (s *Signal) Fired() bool {
	return s.fired
}

// Fire triggers the signal. Only the first call has an effect and returns true.
func (s *Signal) Fire() bool {
	if s.fired {
		return false
	}
	s.fired = true
	waiters := s.waiters
	s.waiters = nil
	for _, w := range waiters {
		w()
	}
	return true
}

// Wait registers fn to run when the signal fires. If it already has, fn is
// scheduled at the current instant instead.
func (s *Signal) Wait(fn Action) {
	if s.fired {
		s.eng.Schedule(0, "signal", fn)
		return
	}
	s.waiters = append(s.waiters, fn)
}
