package effect

import (
	"time"

	"github.com/example/ledglow/internal/color"
)

// Solid holds a single configured color until aborted.
type Solid struct{}

func (Solid) Name() string { return "solid" }

func (Solid) Run(rt Runtime, args Args) error {
	c := args.Color("color", color.New(255, 255, 255))
	rt.SetColor(c)
	for !rt.Abort() {
		rt.Sleep(time.Second)
	}
	return nil
}
