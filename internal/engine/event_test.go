package engine

import (
	"testing"
)

func TestNewEventQueue(t *testing.T) {
	eq := NewEventQueue()
	if eq == nil {
		t.Fatal("NewEventQueue returned nil")
	}
	if !eq.IsEmpty() {
		t.Error("New event queue should be empty")
	}
	if eq.Next() != nil || eq.Peek() != nil {
		t.Error("Empty queue should return nil from Next and Peek")
	}
}

func TestEventQueueScheduleAndNext(t *testing.T) {
	eq := NewEventQueue()

	eq.Schedule(&Event{Label: "evt-1", Time: 1, Seq: 1})
	eq.Schedule(&Event{Label: "evt-2", Time: 2, Seq: 2})
	eq.Schedule(&Event{Label: "evt-3", Time: 0.5, Seq: 3})

	if eq.Len() != 3 {
		t.Errorf("Expected queue size 3, got %d", eq.Len())
	}

	// Should get events in time order
	for _, want := range []string{"evt-3", "evt-1", "evt-2"} {
		next := eq.Next()
		if next.Label != want {
			t.Errorf("Expected %s, got %s", want, next.Label)
		}
	}

	if !eq.IsEmpty() {
		t.Error("Queue should be empty after removing all events")
	}
}

func TestEventQueueTieBreakBySeq(t *testing.T) {
	eq := NewEventQueue()

	// Same time, scheduled out of order
	eq.Schedule(&Event{Label: "third", Time: 5, Seq: 30})
	eq.Schedule(&Event{Label: "first", Time: 5, Seq: 10})
	eq.Schedule(&Event{Label: "second", Time: 5, Seq: 20})

	for _, want := range []string{"first", "second", "third"} {
		if got := eq.Next().Label; got != want {
			t.Errorf("Expected %s, got %s", want, got)
		}
	}
}

func TestEventQueuePeekAndClear(t *testing.T) {
	eq := NewEventQueue()
	eq.Schedule(&Event{Label: "late", Time: 10, Seq: 1})
	eq.Schedule(&Event{Label: "early", Time: 1, Seq: 2})

	if eq.Peek().Label != "early" {
		t.Errorf("Expected Peek to return early, got %s", eq.Peek().Label)
	}
	if eq.Len() != 2 {
		t.Error("Peek must not remove the event")
	}

	eq.Clear()
	if !eq.IsEmpty() {
		t.Error("Queue should be empty after Clear")
	}
}

func TestEventQueueManyEvents(t *testing.T) {
	eq := NewEventQueue()
	for i := 0; i < 500; i++ {
		// interleave times so the heap has to reorder
		eq.Schedule(&Event{Time: float64((i * 37) % 101), Seq: uint64(i)})
	}

	prev := eq.Next()
	for !eq.IsEmpty() {
		cur := eq.Next()
		if cur.Time < prev.Time || (cur.Time == prev.Time && cur.Seq < prev.Seq) {
			t.Fatalf("Out of order: (%f,%d) after (%f,%d)", cur.Time, cur.Seq, prev.Time, prev.Seq)
		}
		prev = cur
	}
}
