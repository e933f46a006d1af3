package resource

import (
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/engine"
)

// Pool is a finite set of identical stations with a strict FIFO wait list.
// It belongs to one engine and, like the engine, is used from a single goroutine.
type Pool struct {
	eng      *engine.Engine
	capacity int
	inUse    int
	waiters  []engine.Action
	head     int

	maxInUse   int
	granted    uint64
	queued     uint64
	busyArea   float64 // integral of inUse over simulated time
	lastChange float64
}

// NewPool creates a pool with the given number of stations. A negative
// capacity is treated as zero.
func NewPool(eng *engine.Engine, capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{eng: eng, capacity: capacity}
}

// Request asks for one station. grant runs as a continuation at the instant
// the station is assigned: immediately when one is free and nobody waits,
// otherwise once every earlier waiter has been served.
func (p *Pool) Request(grant engine.Action) {
	if p.inUse < p.capacity && p.QueueLength() == 0 {
		p.setInUse(p.inUse + 1)
		p.granted++
		p.eng.Schedule(0, "grant", grant)
		return
	}
	p.queued++
	p.waiters = append(p.waiters, grant)
}

// Release frees one station. If anyone waits, the head of the queue takes
// the station over without it ever becoming free.
func (p *Pool) Release() {
	if p.inUse == 0 {
		return
	}
	if p.QueueLength() > 0 {
		next := p.waiters[p.head]
		p.waiters[p.head] = nil
		p.head++
		p.compact()
		p.granted++
		p.eng.Schedule(0, "grant", next)
		return
	}
	p.setInUse(p.inUse - 1)
}

// InUse returns the number of occupied stations
func (p *Pool) InUse() int {
	return p.inUse
}

// Capacity returns the number of stations
func (p *Pool) Capacity() int {
	return p.capacity
}

// QueueLength returns the number of pending requests
func (p *Pool) QueueLength() int {
	return len(p.waiters) - p.head
}

// Full reports whether every station is occupied
func (p *Pool) Full() bool {
	return p.inUse >= p.capacity
}

// MaxInUse returns the peak number of occupied stations observed
func (p *Pool) MaxInUse() int {
	return p.maxInUse
}

// Granted returns how many requests have been given a station
func (p *Pool) Granted() uint64 {
	return p.granted
}

// Queued returns how many requests had to wait
func (p *Pool) Queued() uint64 {
	return p.queued
}

// BusyMinutes returns station-minutes of occupation up to the engine's clock
func (p *Pool) BusyMinutes() float64 {
	return p.busyArea + float64(p.inUse)*(p.eng.Now()-p.lastChange)
}

// Utilization returns the observed fraction of station capacity used up to
// the engine's clock, or 0 before any time has elapsed
func (p *Pool) Utilization() float64 {
	now := p.eng.Now()
	if p.capacity == 0 || now <= 0 {
		return 0
	}
	return p.BusyMinutes() / (float64(p.capacity) * now)
}

func (p *Pool) setInUse(n int) {
	now := p.eng.Now()
	p.busyArea += float64(p.inUse) * (now - p.lastChange)
	p.lastChange = now
	p.inUse = n
	if n > p.maxInUse {
		p.maxInUse = n
	}
}

// compact drops the served prefix once it dominates the backing slice
func (p *Pool) compact() {
	if p.head > 64 && p.head*2 >= len(p.waiters) {
		n := copy(p.waiters, p.waiters[p.head:])
		for i := n; i < len(p.waiters); i++ {
			p.waiters[i] = nil
		}
		p.waiters = p.waiters[:n]
		p.head = 0
	}
}
