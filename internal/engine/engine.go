package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
)

// ctxCheckInterval is how many events run between context checks
const ctxCheckInterval = 1024

// Engine is a single-threaded discrete-event scheduler. Simulated time is a
// float64 count of minutes. Every suspension a process makes is a continuation
// scheduled here; the run loop resumes them in (time, schedule order).
type Engine struct {
	queue       *EventQueue
	now         float64
	seq         uint64
	processed   uint64
	peakPending int
	stopped     bool
	logger      *slog.Logger
}

// NewEngine creates a new simulation engine at time zero
func NewEngine() *Engine {
	return &Engine{
		queue:  NewEventQueue(),
		logger: logger.Default,
	}
}

// SetLogger sets the engine's logger
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
}

// Now returns the current simulation time in minutes
func (e *Engine) Now() float64 {
	return e.now
}

// Schedule resumes fn after delay minutes. Negative or NaN delays run at the
// current instant. An infinite delay never fires, so it is not queued and
// Schedule reports false.
func (e *Engine) Schedule(delay float64, label string, fn Action) bool {
	if math.IsNaN(delay) || delay < 0 {
		delay = 0
	}
	return e.ScheduleAt(e.now+delay, label, fn)
}

// ScheduleAt resumes fn at an absolute simulation time, clamped to now
func (e *Engine) ScheduleAt(at float64, label string, fn Action) bool {
	if math.IsInf(at, 1) {
		return false
	}
	if math.IsNaN(at) || at < e.now {
		at = e.now
	}
	e.seq++
	e.queue.Schedule(&Event{Time: at, Seq: e.seq, Label: label, Action: fn})
	if n := e.queue.Len(); n > e.peakPending {
		e.peakPending = n
	}

	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("Event scheduled",
			"label", label,
			"time", at,
			"seq", e.seq,
			"queue_size", e.queue.Len())
	}
	return true
}

// Stop makes Run return once the running continuation finishes
func (e *Engine) Stop() {
	e.stopped = true
}

// Stopped reports whether Stop was called
func (e *Engine) Stopped() bool {
	return e.stopped
}

// Pending returns the number of queued continuations
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Processed returns the number of continuations run so far
func (e *Engine) Processed() uint64 {
	return e.processed
}

// Run resumes continuations in order until one of: Stop is called, the next
// continuation lies at or past until, the queue drains, or ctx is cancelled.
// On the horizon the clock is advanced to until. ctx errors are returned
// together with the stats accumulated so far.
func (e *Engine) Run(ctx context.Context, until float64) (RunStats, error) {
	e.logger.Info("Starting simulation",
		"until", until,
		"pending", e.queue.Len())

	var reason StopReason
	var err error
	for {
		if e.stopped {
			reason = ReasonStopped
			break
		}
		if e.processed%ctxCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				reason = ReasonCancelled
				e.logger.Info("Simulation cancelled", "sim_time", e.now)
				break
			}
		}

		next := e.queue.Peek()
		if next == nil {
			reason = ReasonDrained
			break
		}
		if next.Time >= until {
			e.now = until
			reason = ReasonHorizon
			break
		}

		e.queue.Next()
		e.now = next.Time
		e.processed++
		if e.logger.Enabled(ctx, slog.LevelDebug) {
			e.logger.Debug("Processing event",
				"label", next.Label,
				"sim_time", e.now,
				"queue_size", e.queue.Len())
		}
		next.Action()
	}

	stats := e.Stats(reason)
	e.logger.Info("Simulation completed",
		"reason", reason,
		"sim_time", e.now,
		"events_processed", e.processed)
	return stats, err
}

// Stats returns the current counters tagged with reason
func (e *Engine) Stats(reason StopReason) RunStats {
	return RunStats{
		Reason:      reason,
		FinalTime:   e.now,
		Processed:   e.processed,
		PeakPending: e.peakPending,
	}
}
