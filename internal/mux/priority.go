// Package mux selects which lighting input is visible. Inputs carry an
// integer priority (lower value wins) and an optional expiry; the engine asks
// the muxer for the active input every frame.
package mux

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/ledglow/internal/color"
	"github.com/example/ledglow/internal/effect"
)

// DefaultPriority is assigned to inputs that do not specify one.
const DefaultPriority = 1000

// Kind discriminates input payloads.
type Kind int

const (
	// KindColor shows a solid color.
	KindColor Kind = iota
	// KindLedColors shows a static per-LED frame.
	KindLedColors
	// KindEffect runs a named effect.
	KindEffect
)

// Input is one prioritized request for control of the LEDs.
type Input struct {
	ID       int64 // stamped by Push; identifies this exact request
	Priority int
	Expires  time.Time // zero means no expiry

	Kind   Kind
	Color  color.Color
	Colors []color.Color
	Effect string
	Args   effect.Args
	// Duration bounds the effect run itself, separate from Expires.
	Duration time.Duration
}

// Muxer holds at most one input per priority.
type Muxer struct {
	mu     sync.Mutex
	inputs map[int]*Input
}

var inputID atomic.Int64

func New() *Muxer {
	return &Muxer{inputs: map[int]*Input{}}
}

// Push registers in, replacing any existing input at the same priority, and
// returns the stamped input ID. A zero priority is mapped to DefaultPriority.
func (m *Muxer) Push(in Input) int64 {
	if in.Priority == 0 {
		in.Priority = DefaultPriority
	}
	in.ID = inputID.Add(1)
	m.mu.Lock()
	m.inputs[in.Priority] = &in
	m.mu.Unlock()
	return in.ID
}

// Clear removes the input at the given priority.
func (m *Muxer) Clear(priority int) {
	m.mu.Lock()
	delete(m.inputs, priority)
	m.mu.Unlock()
}

// ClearID removes the input at the given priority only while it still
// carries the given ID. A retiring input cannot take down a replacement
// pushed at the same priority in the meantime.
func (m *Muxer) ClearID(priority int, id int64) {
	m.mu.Lock()
	if in, ok := m.inputs[priority]; ok && in.ID == id {
		delete(m.inputs, priority)
	}
	m.mu.Unlock()
}

// ClearAll removes every input.
func (m *Muxer) ClearAll() {
	m.mu.Lock()
	m.inputs = map[int]*Input{}
	m.mu.Unlock()
}

// Active drops expired entries and returns the highest-priority input
// (lowest numeric value), or nil when no input is registered.
func (m *Muxer) Active(now time.Time) *Input {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *Input
	for p, in := range m.inputs {
		if !in.Expires.IsZero() && now.After(in.Expires) {
			delete(m.inputs, p)
			continue
		}
		if best == nil || in.Priority < best.Priority {
			best = in
		}
	}
	return best
}

// Len reports the number of live entries, counting expired ones until the
// next Active call collects them.
func (m *Muxer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}
