// Package engine owns the frame loop: it asks the muxer which input is
// visible, runs effects for effect inputs, feeds resulting colors through
// smoothing and the output transform, and writes frames to the LED driver.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/ledglow/internal/color"
	"github.com/example/ledglow/internal/effect"
	"github.com/example/ledglow/internal/led"
	"github.com/example/ledglow/internal/mux"
	"github.com/example/ledglow/internal/smoothing"
)

// Options configures an Engine.
type Options struct {
	LedCount  int
	FPS       int
	Transform color.Transform
	Smoothing smoothing.Settings
}

// Engine drives one LED device. Control methods are safe to call from any
// goroutine; the frame loop itself runs in Run.
type Engine struct {
	opts Options
	drv  led.Driver
	reg  *effect.Registry
	mux  *mux.Muxer
	sm   *smoothing.Smoothing

	frames chan effect.Frame

	// frame-loop state, touched only inside Run
	handle   *effect.Handle
	activeID int64
	target   []color.Color
	work     []color.Color
	rgb      []byte

	frameID    atomic.Uint64
	activeName atomic.Value // string: running effect name, "" when none

	onFrame func(frameID uint64, rgb []byte)
}

func New(opts Options, drv led.Driver, reg *effect.Registry) (*Engine, error) {
	if opts.LedCount <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", opts.LedCount)
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	e := &Engine{
		opts:   opts,
		drv:    drv,
		reg:    reg,
		mux:    mux.New(),
		sm:     smoothing.New(opts.Smoothing, opts.LedCount),
		frames: make(chan effect.Frame, 64),
		target: make([]color.Color, opts.LedCount),
		work:   make([]color.Color, opts.LedCount),
		rgb:    make([]byte, opts.LedCount*3),
	}
	e.activeName.Store("")
	return e, nil
}

func (e *Engine) LedCount() int { return e.opts.LedCount }

// OnFrame registers a listener invoked with every written frame. Must be set
// before Run starts.
func (e *Engine) OnFrame(f func(frameID uint64, rgb []byte)) { e.onFrame = f }

// FrameID returns the id of the last written frame.
func (e *Engine) FrameID() uint64 { return e.frameID.Load() }

// ActiveEffect returns the name of the running effect, or "".
func (e *Engine) ActiveEffect() string { return e.activeName.Load().(string) }

// PendingInputs returns the number of registered muxer inputs.
func (e *Engine) PendingInputs() int { return e.mux.Len() }

// SetColor requests a solid color at the given priority. A zero duration
// means the input persists until cleared.
func (e *Engine) SetColor(c color.Color, priority int, duration time.Duration) {
	in := mux.Input{Priority: priority, Kind: mux.KindColor, Color: c}
	if duration > 0 {
		in.Expires = time.Now().Add(duration)
	}
	e.mux.Push(in)
}

// SetLedColors requests a static per-LED frame at the given priority.
func (e *Engine) SetLedColors(cs []color.Color, priority int, duration time.Duration) error {
	if len(cs) != e.opts.LedCount {
		return fmt.Errorf("frame has %d colors, want %d", len(cs), e.opts.LedCount)
	}
	buf := make([]color.Color, len(cs))
	copy(buf, cs)
	in := mux.Input{Priority: priority, Kind: mux.KindLedColors, Colors: buf}
	if duration > 0 {
		in.Expires = time.Now().Add(duration)
	}
	e.mux.Push(in)
	return nil
}

// StartEffect requests the named effect at the given priority. The duration
// bounds both the input and the effect itself.
func (e *Engine) StartEffect(name string, args effect.Args, priority int, duration time.Duration) error {
	if _, ok := e.reg.Get(name); !ok {
		return fmt.Errorf("unknown effect: %s", name)
	}
	in := mux.Input{
		Priority: priority,
		Kind:     mux.KindEffect,
		Effect:   name,
		Args:     args,
		Duration: duration,
	}
	if duration > 0 {
		in.Expires = time.Now().Add(duration)
	}
	e.mux.Push(in)
	return nil
}

// Clear removes the input at the given priority.
func (e *Engine) Clear(priority int) { e.mux.Clear(priority) }

// ClearAll removes every input; the strip fades to black.
func (e *Engine) ClearAll() { e.mux.ClearAll() }

// Run executes the frame loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(e.opts.FPS)
	tick := time.NewTicker(interval)
	defer tick.Stop()

	log.Info().Int("leds", e.opts.LedCount).Int("fps", e.opts.FPS).Msg("engine starting")

	for {
		select {
		case <-ctx.Done():
			e.stopEffect()
			log.Info().Msg("engine stopped")
			return nil
		case f := <-e.frames:
			e.consume(f, time.Now())
		case now := <-tick.C:
			e.syncActive(now)
			e.writeFrame(now)
		}
	}
}

// syncActive reconciles the muxer's choice with what is currently shown.
func (e *Engine) syncActive(now time.Time) {
	in := e.mux.Active(now)
	if in == nil {
		if e.activeID != 0 {
			e.stopEffect()
			e.activeID = 0
			color.Fill(e.target, color.Black)
			e.sm.SetTarget(e.target, now)
		}
		return
	}
	if in.ID == e.activeID {
		return
	}
	e.stopEffect()
	e.activeID = in.ID

	switch in.Kind {
	case mux.KindColor:
		color.Fill(e.target, in.Color)
		e.sm.SetTarget(e.target, now)
	case mux.KindLedColors:
		copy(e.target, in.Colors)
		e.sm.SetTarget(e.target, now)
	case mux.KindEffect:
		eff, ok := e.reg.Get(in.Effect)
		if !ok {
			log.Error().Str("effect", in.Effect).Msg("active input references unknown effect")
			e.mux.Clear(in.Priority)
			e.activeID = 0
			return
		}
		e.handle = effect.Start(eff, in.Args, e.opts.LedCount, in.Duration, in.Priority, e.frames)
		e.activeName.Store(in.Effect)
		log.Debug().Str("effect", in.Effect).Int("priority", in.Priority).Msg("effect started")
	}
}

// consume applies one message from the running effect instance. Frames from
// superseded instances are dropped.
func (e *Engine) consume(f effect.Frame, now time.Time) {
	if e.handle == nil || f.Seq != e.handle.Seq() {
		return
	}
	switch f.Kind {
	case effect.FrameColor:
		color.Fill(e.target, f.Color)
		e.sm.SetTarget(e.target, now)
	case effect.FrameLedColors:
		if len(f.Colors) == len(e.target) {
			copy(e.target, f.Colors)
			e.sm.SetTarget(e.target, now)
		}
	case effect.FrameCompleted:
		if f.Err != nil {
			log.Error().Err(f.Err).Str("effect", e.ActiveEffect()).Msg("effect failed")
		}
		// The effect returned on its own; retire its input so the muxer
		// falls back to the next priority. ClearID leaves a newer request
		// that replaced the input at this priority untouched.
		e.mux.ClearID(e.handle.Priority(), e.activeID)
		e.handle = nil
		e.activeID = 0
		e.activeName.Store("")
	}
}

func (e *Engine) writeFrame(now time.Time) {
	out := e.sm.Update(now)
	copy(e.work, out)
	e.opts.Transform.ApplyAll(e.work)
	color.ToBytes(e.work, e.rgb)
	if err := e.drv.Write(e.rgb); err != nil {
		log.Error().Err(err).Msg("driver write failed")
		return
	}
	id := e.frameID.Add(1)
	if e.onFrame != nil {
		e.onFrame(id, e.rgb)
	}
}

func (e *Engine) stopEffect() {
	if e.handle == nil {
		return
	}
	e.handle.Abort()
	e.handle.Wait()
	e.handle = nil
	e.activeName.Store("")
}
