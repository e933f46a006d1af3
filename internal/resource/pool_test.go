package resource

import (
	"context"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/engine"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
)

func newEngine() *engine.Engine {
	e := engine.NewEngine()
	e.SetLogger(logger.Discard())
	return e
}

func run(t *testing.T, e *engine.Engine) {
	t.Helper()
	if _, err := e.Run(context.Background(), math.Inf(1)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestNewPool(t *testing.T) {
	p := NewPool(newEngine(), 3)
	if p.Capacity() != 3 {
		t.Errorf("Expected capacity 3, got %d", p.Capacity())
	}
	if p.InUse() != 0 || p.QueueLength() != 0 {
		t.Errorf("Expected idle pool, got inUse=%d queue=%d", p.InUse(), p.QueueLength())
	}
	if NewPool(newEngine(), -2).Capacity() != 0 {
		t.Error("Negative capacity should clamp to zero")
	}
}

func TestPoolImmediateGrant(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 2)

	granted := 0
	p.Request(func() { granted++ })
	p.Request(func() { granted++ })

	if p.InUse() != 2 {
		t.Errorf("Expected both stations taken at request time, got %d", p.InUse())
	}
	if granted != 0 {
		t.Error("Grant continuations must run through the scheduler")
	}
	run(t, e)
	if granted != 2 {
		t.Errorf("Expected 2 grants, got %d", granted)
	}
}

func TestPoolQueuesWhenFull(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 1)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		p.Request(func() {
			order = append(order, i)
			e.Schedule(1, "service", p.Release)
		})
	}

	if p.QueueLength() != 2 {
		t.Errorf("Expected 2 waiters, got %d", p.QueueLength())
	}
	if !p.Full() {
		t.Error("Expected pool to be full")
	}

	run(t, e)

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("Expected FIFO grants [0 1 2], got %v", order)
	}
	if p.InUse() != 0 || p.QueueLength() != 0 {
		t.Errorf("Expected idle pool after run, got inUse=%d queue=%d", p.InUse(), p.QueueLength())
	}
	if p.MaxInUse() != 1 {
		t.Errorf("Expected peak 1, got %d", p.MaxInUse())
	}
	if p.Queued() != 2 || p.Granted() != 3 {
		t.Errorf("Expected queued=2 granted=3, got queued=%d granted=%d", p.Queued(), p.Granted())
	}
	if e.Now() != 3 {
		t.Errorf("Expected three back-to-back services ending at 3, got %f", e.Now())
	}
}

func TestPoolReleaseHandsOverSlot(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 1)

	p.Request(func() {})
	p.Request(func() {})
	p.Release()

	if p.InUse() != 1 {
		t.Errorf("Slot must stay occupied across hand-over, got %d", p.InUse())
	}
	if p.QueueLength() != 0 {
		t.Errorf("Expected empty queue, got %d", p.QueueLength())
	}
}

func TestPoolNoBargingPastWaiters(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 1)

	var order []string
	p.Request(func() { order = append(order, "a") })
	p.Request(func() { order = append(order, "b") })
	// a releases; b takes over. A newcomer at the same instant must queue.
	p.Release()
	p.Request(func() { order = append(order, "c") })

	if p.QueueLength() != 1 {
		t.Fatalf("Expected newcomer to queue, got queue=%d", p.QueueLength())
	}
	run(t, e)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Expected a then b, got %v", order)
	}
}

func TestPoolZeroCapacity(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 0)

	granted := false
	p.Request(func() { granted = true })
	run(t, e)

	if granted {
		t.Error("Zero-capacity pool must never grant")
	}
	if p.QueueLength() != 1 {
		t.Errorf("Expected request to wait forever, got queue=%d", p.QueueLength())
	}
	p.Release() // no-op when nothing is in use
	if p.InUse() != 0 {
		t.Errorf("Release on idle pool must not go negative, got %d", p.InUse())
	}
}

func TestPoolCapacityInvariantUnderLoad(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 3)

	violated := false
	for i := 0; i < 200; i++ {
		delay := float64(i%17) * 0.5
		e.Schedule(delay, "arrive", func() {
			p.Request(func() {
				if p.InUse() > p.Capacity() {
					violated = true
				}
				e.Schedule(2.5, "service", p.Release)
			})
		})
	}
	run(t, e)

	if violated || p.MaxInUse() > 3 {
		t.Errorf("Capacity exceeded: max in use %d", p.MaxInUse())
	}
	if p.Granted() != 200 {
		t.Errorf("Expected all 200 requests granted, got %d", p.Granted())
	}
}

func TestPoolBusyMinutes(t *testing.T) {
	e := newEngine()
	p := NewPool(e, 2)

	p.Request(func() { e.Schedule(4, "service", p.Release) })
	p.Request(func() { e.Schedule(2, "service", p.Release) })
	run(t, e)

	if got := p.BusyMinutes(); math.Abs(got-6) > 1e-9 {
		t.Errorf("Expected 6 busy station-minutes, got %f", got)
	}
	// 6 busy out of 2 stations x 4 minutes
	if got := p.Utilization(); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Expected utilization 0.75, got %f", got)
	}
}
