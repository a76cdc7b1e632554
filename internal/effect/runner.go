package effect

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/ledglow/internal/color"
)

// FrameKind discriminates messages flowing from a running effect instance.
type FrameKind int

const (
	// FrameColor carries one color for the whole strip.
	FrameColor FrameKind = iota
	// FrameLedColors carries a per-LED frame.
	FrameLedColors
	// FrameCompleted is the final message of an instance; Err holds the
	// effect's failure, if any.
	FrameCompleted
)

// Frame is one message emitted by a running effect. Seq identifies the
// instance that produced it so the consumer can discard frames from an
// instance it has already aborted.
type Frame struct {
	Kind   FrameKind
	Seq    int64
	Color  color.Color
	Colors []color.Color
	Err    error
}

// Handle controls a running effect instance.
type Handle struct {
	seq      int64
	priority int

	abort chan struct{}
	done  chan struct{}
	once  sync.Once
}

// Seq returns the instance sequence number stamped on its frames.
func (h *Handle) Seq() int64 { return h.seq }

// Priority returns the input priority the instance was launched with.
func (h *Handle) Priority() int { return h.priority }

// Abort requests cooperative cancellation. Idempotent; returns immediately.
func (h *Handle) Abort() { h.once.Do(func() { close(h.abort) }) }

// Wait blocks until the effect goroutine has finished.
func (h *Handle) Wait() { <-h.done }

var instanceSeq atomic.Int64

// instanceMethods implements Runtime for one effect instance. The abort
// channel is owned and closed by the host; the effect only reads it.
type instanceMethods struct {
	seq      int64
	ledCount int
	deadline time.Time // zero means no deadline
	out      chan<- Frame
	abort    <-chan struct{}
}

func (m *instanceMethods) LedCount() int { return m.ledCount }

func (m *instanceMethods) Abort() bool {
	select {
	case <-m.abort:
		return true
	default:
	}
	if !m.deadline.IsZero() && time.Now().After(m.deadline) {
		return true
	}
	return false
}

func (m *instanceMethods) Sleep(d time.Duration) bool {
	if !m.deadline.IsZero() {
		if remain := time.Until(m.deadline); remain < d {
			d = remain
		}
	}
	if d <= 0 {
		return !m.Abort()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-m.abort:
		return false
	case <-t.C:
		return !m.Abort()
	}
}

func (m *instanceMethods) send(f Frame) {
	select {
	case m.out <- f:
	case <-m.abort:
		// Consumer is gone or the instance was aborted; drop the frame.
	}
}

func (m *instanceMethods) SetColor(c color.Color) {
	m.send(Frame{Kind: FrameColor, Seq: m.seq, Color: c})
}

func (m *instanceMethods) SetLedColors(cs []color.Color) {
	buf := make([]color.Color, len(cs))
	copy(buf, cs)
	m.send(Frame{Kind: FrameLedColors, Seq: m.seq, Colors: buf})
}

// Start launches e on its own goroutine. Frames are delivered on out; the
// final message is always FrameCompleted (sent unconditionally, even after
// abort, so the consumer can join the instance). A non-zero duration arms a
// deadline observed by Abort.
func Start(e Effect, args Args, ledCount int, duration time.Duration, priority int, out chan<- Frame) *Handle {
	h := &Handle{
		seq:      instanceSeq.Add(1),
		priority: priority,
		abort:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	m := &instanceMethods{
		seq:      h.seq,
		ledCount: ledCount,
		out:      out,
		abort:    h.abort,
	}
	if duration > 0 {
		m.deadline = time.Now().Add(duration)
	}
	go func() {
		defer close(h.done)
		err := e.Run(m, args)
		select {
		case out <- Frame{Kind: FrameCompleted, Seq: h.seq, Err: err}:
		default:
			// Consumer already stopped draining; completion is best effort.
		}
	}()
	return h
}
