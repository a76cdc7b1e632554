package effect

import (
	"time"

	"github.com/example/ledglow/internal/color"
)

const fadeSteps = 256

// Fade interpolates linearly from a start to an end color over fade-time
// seconds in 256 discrete frames, then holds the end color until aborted.
type Fade struct{}

func (Fade) Name() string { return "fade" }

func (Fade) Run(rt Runtime, args Args) error {
	fadeTime := args.Float("fade-time", 5.0)
	start := args.Color("color-start", color.New(255, 174, 11))
	end := args.Color("color-end", color.New(100, 100, 100))

	step := [3]float64{
		(float64(end.R) - float64(start.R)) / fadeSteps,
		(float64(end.G) - float64(start.G)) / fadeSteps,
		(float64(end.B) - float64(start.B)) / fadeSteps,
	}

	delay := time.Duration(fadeTime / fadeSteps * float64(time.Second))
	if delay < 0 {
		delay = 0
	}

	for i := 0; i < fadeSteps; i++ {
		if rt.Abort() {
			break
		}
		// Truncation toward zero, not rounding: the frame sequence leans
		// slightly toward the start color on purpose.
		rt.SetColor(color.New(
			color.ClampChannel(float64(start.R)+step[0]*float64(i)),
			color.ClampChannel(float64(start.G)+step[1]*float64(i)),
			color.ClampChannel(float64(start.B)+step[2]*float64(i)),
		))
		rt.Sleep(delay)
	}

	// Force the exact configured end color regardless of rounding drift.
	rt.SetColor(end)

	// Hold until the host asks us to stop.
	for !rt.Abort() {
		rt.Sleep(time.Second)
	}
	return nil
}
