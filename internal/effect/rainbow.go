package effect

import (
	"math"
	"time"

	"github.com/example/ledglow/internal/color"
)

// Rainbow sweeps an HSV hue wheel across the strip.
type Rainbow struct{}

func (Rainbow) Name() string { return "rainbow" }

func (Rainbow) Run(rt Runtime, args Args) error {
	speed := args.Float("speed", 1.0)       // wheel rotations per second
	brightness := args.Float("brightness", 1.0)
	fps := args.Float("fps", 30.0)
	if fps <= 0 {
		fps = 30.0
	}

	n := rt.LedCount()
	buf := make([]color.Color, n)
	delay := time.Duration(float64(time.Second) / fps)
	phase := 0.0

	for !rt.Abort() {
		for i := 0; i < n; i++ {
			h := math.Mod(float64(i)/float64(n)+phase, 1.0)
			buf[i] = color.HSV(h, 1.0, brightness)
		}
		rt.SetLedColors(buf)
		phase = math.Mod(phase+speed/fps, 1.0)
		rt.Sleep(delay)
	}
	return nil
}
