// Package smoothing implements linear output smoothing: written colors ramp
// toward their target over a configured window instead of stepping, which
// hides the discrete frames of slow effects on bright strips.
package smoothing

import (
	"time"

	"github.com/example/ledglow/internal/color"
)

type Settings struct {
	Enable bool          `yaml:"enable"`
	Window time.Duration `yaml:"window"` // full settle time for a new target
}

// Smoothing tracks 16-bit per-channel state so repeated small steps do not
// quantize away. Not safe for concurrent use; the engine owns it.
type Smoothing struct {
	settings  Settings
	current   []color.Color16
	target    []color.Color16
	out       []color.Color
	targetAt  time.Time // when current should equal target
	prevWrite time.Time
}

func New(settings Settings, ledCount int) *Smoothing {
	return &Smoothing{
		settings: settings,
		current:  make([]color.Color16, ledCount),
		target:   make([]color.Color16, ledCount),
		out:      make([]color.Color, ledCount),
	}
}

// SetTarget installs a new target frame. len(cs) must match the LED count.
func (s *Smoothing) SetTarget(cs []color.Color, now time.Time) {
	for i, c := range cs {
		s.target[i] = c.To16()
	}
	s.prevWrite = now
	s.targetAt = now.Add(s.settings.Window)
}

// Settled reports whether the output already equals the target.
func (s *Smoothing) Settled(now time.Time) bool {
	return !s.settings.Enable || !now.Before(s.targetAt)
}

func lerpChannel(cur, tgt uint16, k float64) uint16 {
	diff := int32(tgt) - int32(cur)
	v := int32(cur) + int32(k*float64(diff))
	if v < 0 {
		v = 0
	}
	if v > 65535 {
		v = 65535
	}
	return uint16(v)
}

// Update advances the ramp to now and returns the frame to write. The
// returned slice is reused across calls.
func (s *Smoothing) Update(now time.Time) []color.Color {
	if s.Settled(now) {
		copy(s.current, s.target)
	} else {
		// Fraction of the remaining window consumed since the last write.
		total := s.targetAt.Sub(s.prevWrite)
		remain := s.targetAt.Sub(now)
		k := 1.0 - float64(remain)/float64(total)
		for i := range s.current {
			s.current[i] = color.Color16{
				R: lerpChannel(s.current[i].R, s.target[i].R, k),
				G: lerpChannel(s.current[i].G, s.target[i].G, k),
				B: lerpChannel(s.current[i].B, s.target[i].B, k),
			}
		}
	}
	for i, c := range s.current {
		s.out[i] = c.To8()
	}
	return s.out
}
