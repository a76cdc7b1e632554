package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/example/ledglow/internal/color"
	"github.com/example/ledglow/internal/config"
	"github.com/example/ledglow/internal/effect"
	"github.com/example/ledglow/internal/engine"
	"github.com/example/ledglow/internal/led"
	"github.com/example/ledglow/internal/playlist"
	"github.com/example/ledglow/internal/smoothing"
	"github.com/example/ledglow/internal/ws"
)

// playlistPriority leaves room above for API inputs to preempt a running show.
const playlistPriority = 900

// cliFlags holds the command line values so that flags the user actually
// passed can be applied over a loaded config file.
type cliFlags struct {
	count      *int
	fps        *int
	driver     *string
	spiDev     *string
	colorOrder *string
	brightness *float64
	addr       *string
	effectsDir *string
	playlist   *string
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		count:      fs.Int("leds", 50, "number of LEDs on the strip"),
		fps:        fs.Int("fps", 60, "target frames per second"),
		driver:     fs.String("driver", "sim", "driver: spi | sim"),
		spiDev:     fs.String("spi-dev", "", "SPI port (empty picks the first available)"),
		colorOrder: fs.String("color-order", "GRB", "LED strip channel order (e.g. GRB, RGB)"),
		brightness: fs.Float64("brightness", 1.0, "global brightness 0..1"),
		addr:       fs.String("addr", ":8080", "HTTP listen address"),
		effectsDir: fs.String("effects", "", "directory of effect definition JSON files"),
		playlist:   fs.String("playlist", "", "playlist YAML to start on boot"),
	}
}

// apply overlays every flag that was explicitly set on the command line onto
// cfg. The config file fills the rest, so a file cannot silently undo an
// explicit command line choice.
func (c *cliFlags) apply(cfg *config.Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "leds":
			cfg.LedCount = *c.count
		case "fps":
			cfg.FPS = *c.fps
		case "driver":
			cfg.Driver = *c.driver
		case "spi-dev":
			cfg.SPI.Dev = *c.spiDev
		case "color-order":
			cfg.SPI.ColorOrder = *c.colorOrder
		case "brightness":
			cfg.Transform.Brightness = *c.brightness
		case "addr":
			cfg.Addr = *c.addr
		case "effects":
			cfg.EffectsDir = *c.effectsDir
		case "playlist":
			cfg.Playlist = *c.playlist
		}
	})
}

func main() {
	fl := registerFlags(flag.CommandLine)
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// Defaults, then the config file, then explicit flags on top.
	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding without it")
		}
	} else {
		cfg = c
	}
	fl.apply(cfg, flag.CommandLine)

	// ---- Driver ----
	var drv led.Driver
	switch cfg.Driver {
	case "spi":
		d, err := led.NewPeriph(cfg.SPI.Dev, cfg.LedCount, cfg.SPI.ColorOrder)
		if err != nil {
			log.Warn().Err(err).Msg("SPI init failed; falling back to sim")
			drv = led.NewSim()
		} else {
			drv = d
		}
	case "sim":
		drv = led.NewSim()
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using sim")
		drv = led.NewSim()
	}

	// ---- Effects ----
	reg := effect.Builtin()
	var defs []effect.Definition
	if cfg.EffectsDir != "" {
		d, err := effect.ReadDefinitionDir(cfg.EffectsDir, reg)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.EffectsDir).Msg("effect definitions unavailable")
		} else {
			defs = d
			log.Info().Int("count", len(defs)).Msg("effect definitions loaded")
		}
	}

	// ---- Engine ----
	eng, err := engine.New(engine.Options{
		LedCount: cfg.LedCount,
		FPS:      cfg.FPS,
		Transform: color.Transform{
			GammaR:     cfg.Transform.GammaR,
			GammaG:     cfg.Transform.GammaG,
			GammaB:     cfg.Transform.GammaB,
			Brightness: cfg.Transform.Brightness,
			WhiteCap:   cfg.Transform.WhiteCap,
		},
		Smoothing: smoothing.Settings{
			Enable: cfg.Smoothing.Enable,
			Window: time.Duration(cfg.Smoothing.WindowMs) * time.Millisecond,
		},
	}, drv, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}

	// ---- API ----
	server := ws.NewServer(eng, reg.List())
	eng.OnFrame(server.BroadcastFrame)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := eng.Run(ctx); err != nil {
			log.Error().Err(err).Msg("engine stopped with error")
		}
	}()

	// ---- Boot playlist ----
	if cfg.Playlist != "" {
		show, err := playlist.Load(cfg.Playlist)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Playlist).Msg("playlist unavailable")
		} else {
			player := playlist.NewPlayer(playlist.Hooks{
				Start: func(name string, args effect.Args) {
					if err := eng.StartEffect(name, args, playlistPriority, 0); err != nil {
						log.Warn().Err(err).Str("effect", name).Msg("playlist entry skipped")
					}
				},
				Stop: func() { eng.Clear(playlistPriority) },
			})
			if err := player.Load(show); err != nil {
				log.Warn().Err(err).Msg("playlist rejected")
			} else {
				player.Start()
				go func() {
					const dt = 100 * time.Millisecond
					tick := time.NewTicker(dt)
					defer tick.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-tick.C:
							player.Tick(dt.Seconds())
						}
					}
				}()
			}
		}
	} else if len(defs) > 0 {
		// No show configured: boot into the first definition.
		d := defs[0]
		if err := eng.StartEffect(d.Effect, d.Args, playlistPriority, 0); err != nil {
			log.Warn().Err(err).Str("effect", d.Effect).Msg("boot effect failed")
		}
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", cfg.Driver).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")

	_ = srv.Close()
	cancel()
	select {
	case <-engineDone:
	case <-time.After(2 * time.Second):
		log.Warn().Msg("engine did not stop in time")
	}
	if err := drv.Close(); err != nil {
		log.Warn().Err(err).Msg("driver close failed")
	}
}
