package effect

import (
	"math"
	"time"

	"github.com/example/ledglow/internal/color"
)

// Breathe oscillates the brightness of a base color on a sine wave.
type Breathe struct{}

func (Breathe) Name() string { return "breathe" }

func (Breathe) Run(rt Runtime, args Args) error {
	base := args.Color("color", color.New(0, 100, 255))
	period := args.Float("period", 4.0) // seconds per full cycle
	if period <= 0 {
		period = 4.0
	}
	fps := args.Float("fps", 30.0)
	if fps <= 0 {
		fps = 30.0
	}

	delay := time.Duration(float64(time.Second) / fps)
	t := 0.0

	for !rt.Abort() {
		s := 0.5 - 0.5*math.Cos(2*math.Pi*t/period)
		rt.SetColor(base.Scale(s))
		t += 1.0 / fps
		rt.Sleep(delay)
	}
	return nil
}
