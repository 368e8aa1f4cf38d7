// Package coretest holds test doubles shared by the packages that drive rooms.
package coretest

import (
	"sync"

	"github.com/dkeye/Relay/internal/core"
)

// Recorder is a core.SignalConnection that keeps every event it accepts.
// Capacity bounds the number of accepted events; zero means unbounded.
type Recorder struct {
	Capacity int

	mu     sync.Mutex
	events []core.Event
	closed int
}

func (r *Recorder) TrySend(ev core.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed > 0 {
		return core.ErrConnClosed
	}
	if r.Capacity > 0 && len(r.events) >= r.Capacity {
		return core.ErrBackpressure
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
}

// Closes reports how many times Close was called.
func (r *Recorder) Closes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Recorder) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType filters the recorded events by type, keeping their order.
func (r *Recorder) OfType(t core.EventType) []core.Event {
	var out []core.Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// Types lists the recorded event types in order.
func (r *Recorder) Types() []core.EventType {
	var out []core.EventType
	for _, ev := range r.Events() {
		out = append(out, ev.Type)
	}
	return out
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
