package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/example/ledglow/internal/color"
	"github.com/example/ledglow/internal/effect"
	"github.com/example/ledglow/internal/led"
	"github.com/example/ledglow/internal/mux"
	"github.com/example/ledglow/internal/smoothing"
)

func testEngine(t *testing.T, count int) (*Engine, *led.Sim) {
	t.Helper()
	drv := led.NewSim()
	e, err := New(Options{
		LedCount:  count,
		FPS:       200,
		Transform: color.DefaultTransform(),
		Smoothing: smoothing.Settings{Enable: false},
	}, drv, effect.Builtin())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("engine did not stop")
		}
	})
	return e, drv
}

func waitFor(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func repeatRGB(c color.Color, n int) []byte {
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		out = append(out, c.R, c.G, c.B)
	}
	return out
}

func TestSolidColorReachesDriver(t *testing.T) {
	e, drv := testEngine(t, 4)
	e.SetColor(color.New(10, 20, 30), 500, 0)

	want := repeatRGB(color.New(10, 20, 30), 4)
	waitFor(t, "solid color frame", func() bool {
		return bytes.Equal(drv.Last(), want)
	})
}

func TestEffectFramesReachDriver(t *testing.T) {
	e, drv := testEngine(t, 4)
	if err := e.StartEffect("solid", effect.Args{"color": []any{200, 0, 0}}, 500, 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	want := repeatRGB(color.New(200, 0, 0), 4)
	waitFor(t, "effect frame", func() bool {
		return bytes.Equal(drv.Last(), want)
	})
	if e.ActiveEffect() != "solid" {
		t.Fatalf("expected solid running, got %q", e.ActiveEffect())
	}
}

func TestHigherPriorityPreempts(t *testing.T) {
	e, drv := testEngine(t, 2)
	if err := e.StartEffect("fade", effect.Args{}, 800, 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "fade to start", func() bool { return e.ActiveEffect() == "fade" })

	e.SetColor(color.New(0, 0, 99), 100, 0)
	want := repeatRGB(color.New(0, 0, 99), 2)
	waitFor(t, "preempting color", func() bool {
		return bytes.Equal(drv.Last(), want) && e.ActiveEffect() == ""
	})

	// Removing the high-priority input hands control back to the effect.
	e.Clear(100)
	waitFor(t, "fade to resume", func() bool { return e.ActiveEffect() == "fade" })
}

func TestEffectDeadlineFallsBack(t *testing.T) {
	e, drv := testEngine(t, 2)
	e.SetColor(color.New(5, 5, 5), 900, 0)
	if err := e.StartEffect("solid", effect.Args{"color": []any{255, 255, 255}}, 100, 80*time.Millisecond); err != nil {
		t.Fatalf("start: %v", err)
	}

	want := repeatRGB(color.New(5, 5, 5), 2)
	waitFor(t, "fallback after deadline", func() bool {
		return bytes.Equal(drv.Last(), want)
	})
	if e.ActiveEffect() != "" {
		t.Fatalf("effect should have retired, got %q", e.ActiveEffect())
	}
}

func TestClearAllGoesBlack(t *testing.T) {
	e, drv := testEngine(t, 3)
	e.SetColor(color.New(50, 50, 50), 500, 0)
	waitFor(t, "color", func() bool {
		return bytes.Equal(drv.Last(), repeatRGB(color.New(50, 50, 50), 3))
	})
	e.ClearAll()
	waitFor(t, "black frame", func() bool {
		return bytes.Equal(drv.Last(), repeatRGB(color.Black, 3))
	})
	if e.PendingInputs() != 0 {
		t.Fatalf("expected no inputs, got %d", e.PendingInputs())
	}
}

func TestCompletedEffectSparesReplacementInput(t *testing.T) {
	// Drive the loop steps by hand: an effect that finishes right after a
	// new request lands at its priority must not retire that request.
	e, err := New(Options{
		LedCount:  2,
		FPS:       200,
		Transform: color.DefaultTransform(),
		Smoothing: smoothing.Settings{Enable: false},
	}, led.NewSim(), effect.Builtin())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}

	if err := e.StartEffect("solid", effect.Args{}, 100, 0); err != nil {
		t.Fatalf("start: %v", err)
	}
	now := time.Now()
	e.syncActive(now)
	h := e.handle
	if h == nil {
		t.Fatal("effect instance should be running")
	}
	defer func() {
		h.Abort()
		h.Wait()
	}()

	e.SetColor(color.New(1, 2, 3), 100, 0)
	e.consume(effect.Frame{Kind: effect.FrameCompleted, Seq: h.Seq()}, now)

	if e.PendingInputs() != 1 {
		t.Fatalf("replacement input was dropped, %d inputs left", e.PendingInputs())
	}
	if in := e.mux.Active(now); in == nil || in.Kind != mux.KindColor {
		t.Fatalf("expected the fresh color input to survive, got %#v", in)
	}
}

func TestUnknownEffectRejected(t *testing.T) {
	e, _ := testEngine(t, 2)
	if err := e.StartEffect("nope", nil, 100, 0); err == nil {
		t.Fatal("expected error for unknown effect")
	}
}

func TestSetLedColorsLengthChecked(t *testing.T) {
	e, _ := testEngine(t, 4)
	if err := e.SetLedColors([]color.Color{{}}, 100, 0); err == nil {
		t.Fatal("expected length mismatch error")
	}
}
