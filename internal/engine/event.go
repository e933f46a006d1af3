package engine

import (
	"container/heap"
)

// Action is a continuation resumed by the run loop at its scheduled time
type Action func()

// Event is a pending continuation
type Event struct {
	Time   float64 // simulated minutes
	Seq    uint64  // schedule order, breaks ties at equal Time
	Label  string
	Action Action
}

// EventQueue is a min-heap of events ordered by (Time, Seq).
// It is owned by a single run loop and is not safe for concurrent use.
type EventQueue struct {
	events []*Event
}

// NewEventQueue creates a new event queue
func NewEventQueue() *EventQueue {
	eq := &EventQueue{
		events: make([]*Event, 0),
	}
	heap.Init(eq)
	return eq
}

// Len returns the number of events in the queue
func (eq *EventQueue) Len() int {
	return len(eq.events)
}

// Less compares two events by time, then by schedule order
func (eq *EventQueue) Less(i, j int) bool {
	a, b := eq.events[i], eq.events[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.Seq < b.Seq
}

// Swap swaps two events in the queue
func (eq *EventQueue) Swap(i, j int) {
	eq.events[i], eq.events[j] = eq.events[j], eq.events[i]
}

// Push adds an event to the queue
func (eq *EventQueue) Push(x interface{}) {
	eq.events = append(eq.events, x.(*Event))
}

// Pop removes and returns the last element; use Next for heap order
func (eq *EventQueue) Pop() interface{} {
	old := eq.events
	n := len(old)
	event := old[n-1]
	old[n-1] = nil // avoid memory leak
	eq.events = old[0 : n-1]
	return event
}

// Schedule adds an event to the queue
func (eq *EventQueue) Schedule(event *Event) {
	heap.Push(eq, event)
}

// Next removes and returns the earliest event, or nil when empty
func (eq *EventQueue) Next() *Event {
	if eq.Len() == 0 {
		return nil
	}
	return heap.Pop(eq).(*Event)
}

// Peek returns the earliest event without removing it
func (eq *EventQueue) Peek() *Event {
	if eq.Len() == 0 {
		return nil
	}
	return eq.events[0]
}

// Clear removes all events from the queue
func (eq *EventQueue) Clear() {
	eq.events = make([]*Event, 0)
}

// IsEmpty returns true if the queue is empty
func (eq *EventQueue) IsEmpty() bool {
	return eq.Len() == 0
}
