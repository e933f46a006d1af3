package engine

import (
	"context"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
)

func newTestEngine() *Engine {
	e := NewEngine()
	e.SetLogger(logger.Discard())
	return e
}

func TestNewEngine(t *testing.T) {
	engine := NewEngine()
	if engine == nil {
		t.Fatal("NewEngine returned nil")
	}
	if engine.Now() != 0 {
		t.Errorf("Expected time 0, got %f", engine.Now())
	}
	if engine.Pending() != 0 {
		t.Errorf("Expected empty queue, got %d", engine.Pending())
	}
}

func TestEngineRunOrder(t *testing.T) {
	engine := newTestEngine()

	var order []string
	var times []float64
	record := func(name string) Action {
		return func() {
			order = append(order, name)
			times = append(times, engine.Now())
		}
	}

	engine.Schedule(5, "c", record("c"))
	engine.Schedule(1, "a", record("a"))
	engine.Schedule(3, "b", record("b"))
	engine.Schedule(3, "b2", record("b2")) // same instant, scheduled later

	stats, err := engine.Run(context.Background(), math.Inf(1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	expected := []string{"a", "b", "b2", "c"}
	for i, name := range expected {
		if order[i] != name {
			t.Errorf("Event %d: expected %s, got %s", i, name, order[i])
		}
	}
	if times[0] != 1 || times[1] != 3 || times[3] != 5 {
		t.Errorf("Unexpected event times: %v", times)
	}
	if stats.Reason != ReasonDrained {
		t.Errorf("Expected drained, got %s", stats.Reason)
	}
	if stats.Processed != 4 {
		t.Errorf("Expected 4 processed events, got %d", stats.Processed)
	}
	if stats.FinalTime != 5 {
		t.Errorf("Expected final time 5, got %f", stats.FinalTime)
	}
}

func TestEngineScheduleFromContinuation(t *testing.T) {
	engine := newTestEngine()

	count := 0
	var tick Action
	tick = func() {
		count++
		if count < 10 {
			engine.Schedule(2, "tick", tick)
		}
	}
	engine.Schedule(0, "tick", tick)

	stats, err := engine.Run(context.Background(), math.Inf(1))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if count != 10 {
		t.Errorf("Expected 10 ticks, got %d", count)
	}
	if stats.FinalTime != 18 {
		t.Errorf("Expected final time 18, got %f", stats.FinalTime)
	}
}

func TestEngineZeroDelayRunsAfterCurrentInstantPeers(t *testing.T) {
	engine := newTestEngine()

	var order []string
	engine.Schedule(1, "first", func() {
		order = append(order, "first")
		engine.Schedule(0, "spawned", func() { order = append(order, "spawned") })
	})
	engine.Schedule(1, "second", func() { order = append(order, "second") })

	if _, err := engine.Run(context.Background(), 10); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := []string{"first", "second", "spawned"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, order)
		}
	}
}

func TestEngineHorizon(t *testing.T) {
	engine := newTestEngine()

	ran := 0
	engine.Schedule(5, "before", func() { ran++ })
	engine.Schedule(10, "at", func() { ran++ })
	engine.Schedule(20, "after", func() { ran++ })

	stats, err := engine.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if ran != 1 {
		t.Errorf("Expected only the event before the horizon to run, got %d", ran)
	}
	if stats.Reason != ReasonHorizon {
		t.Errorf("Expected horizon, got %s", stats.Reason)
	}
	if engine.Now() != 10 {
		t.Errorf("Expected clock at horizon 10, got %f", engine.Now())
	}
	if engine.Pending() != 2 {
		t.Errorf("Expected 2 pending events, got %d", engine.Pending())
	}
}

func TestEngineStop(t *testing.T) {
	engine := newTestEngine()

	ran := 0
	engine.Schedule(1, "stopper", func() {
		ran++
		engine.Stop()
	})
	engine.Schedule(1, "same-instant", func() { ran++ })
	engine.Schedule(2, "later", func() { ran++ })

	stats, err := engine.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Reason != ReasonStopped {
		t.Errorf("Expected stopped, got %s", stats.Reason)
	}
	if ran != 1 {
		t.Errorf("Expected nothing to run after Stop, got %d", ran)
	}
	if !engine.Stopped() {
		t.Error("Expected Stopped() to be true")
	}
	if stats.FinalTime != 1 {
		t.Errorf("Expected final time 1, got %f", stats.FinalTime)
	}
}

func TestEngineContextCancel(t *testing.T) {
	engine := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())

	var tick Action
	tick = func() {
		if engine.Processed() == 10 {
			cancel()
		}
		engine.Schedule(1, "tick", tick)
	}
	engine.Schedule(0, "tick", tick)

	stats, err := engine.Run(ctx, math.Inf(1))
	if err == nil {
		t.Fatal("Expected context error")
	}
	if stats.Reason != ReasonCancelled {
		t.Errorf("Expected cancelled, got %s", stats.Reason)
	}
	if stats.Processed != ctxCheckInterval {
		t.Errorf("Expected cancellation at the next check (%d), got %d", ctxCheckInterval, stats.Processed)
	}
}

func TestEngineScheduleEdgeCases(t *testing.T) {
	engine := newTestEngine()

	if engine.Schedule(math.Inf(1), "never", func() {}) {
		t.Error("Expected infinite delay to be rejected")
	}
	if engine.Pending() != 0 {
		t.Error("Infinite delay must not be queued")
	}

	var at []float64
	engine.Schedule(-3, "negative", func() { at = append(at, engine.Now()) })
	engine.Schedule(math.NaN(), "nan", func() { at = append(at, engine.Now()) })

	if _, err := engine.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(at) != 2 || at[0] != 0 || at[1] != 0 {
		t.Errorf("Expected both clamped events at time 0, got %v", at)
	}
}

func TestEngineRunEmptyQueue(t *testing.T) {
	engine := newTestEngine()
	stats, err := engine.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Reason != ReasonDrained {
		t.Errorf("Expected drained, got %s", stats.Reason)
	}
	if engine.Now() != 0 {
		t.Errorf("Drained run must not advance the clock, got %f", engine.Now())
	}
}

func TestEnginePeakPending(t *testing.T) {
	engine := newTestEngine()
	for i := 0; i < 7; i++ {
		engine.Schedule(float64(i), "e", func() {})
	}
	stats, _ := engine.Run(context.Background(), math.Inf(1))
	if stats.PeakPending != 7 {
		t.Errorf("Expected peak pending 7, got %d", stats.PeakPending)
	}
}
