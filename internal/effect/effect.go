// Package effect hosts the built-in lighting effects and the runtime they
// execute against. An effect is a unit of animated output logic with a
// lifecycle from start to abort; it pushes colors through the Runtime and
// cooperates with cancellation by polling Abort at every suspension point.
package effect

import (
	"time"

	"github.com/example/ledglow/internal/color"
)

// Runtime is the set of host capabilities an effect may consume.
type Runtime interface {
	// LedCount reports the number of LEDs on the output device.
	LedCount() int
	// Abort reports whether the host has requested this effect stop.
	// Cheap enough to poll every frame.
	Abort() bool
	// SetColor pushes a single color for the whole strip. Fire-and-forget.
	SetColor(c color.Color)
	// SetLedColors pushes a per-LED frame. len(cs) must equal LedCount.
	SetLedColors(cs []color.Color)
	// Sleep suspends for d, waking early on abort. Returns false if the
	// effect was aborted while sleeping.
	Sleep(d time.Duration) bool
}

// Effect is a runnable lighting effect. Run blocks until the effect
// completes or observes an abort, and returns only unexpected failures.
type Effect interface {
	Name() string
	Run(rt Runtime, args Args) error
}
