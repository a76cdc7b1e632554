package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/ledglow/internal/config"
)

func TestExplicitFlagsSurviveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("driver: spi\nled_count: 8\nfps: 30\n"), 0644))

	fs := flag.NewFlagSet("ledglowd", flag.ContinueOnError)
	fl := registerFlags(fs)
	assert.NoError(t, fs.Parse([]string{"-leds", "120", "-playlist", "show.yaml"}))

	cfg, err := config.Load(path)
	assert.NoError(t, err)
	fl.apply(cfg, fs)

	assert.Equal(t, 120, cfg.LedCount, "explicit flag wins over the file")
	assert.Equal(t, "show.yaml", cfg.Playlist, "flag without a file counterpart survives")
	assert.Equal(t, "spi", cfg.Driver, "file value kept when the flag was not passed")
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "GRB", cfg.SPI.ColorOrder, "default fills what neither file nor flags set")
}

func TestColorOrderFlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("led_count: 4\nspi:\n  color_order: BGR\n"), 0644))

	fs := flag.NewFlagSet("ledglowd", flag.ContinueOnError)
	fl := registerFlags(fs)
	assert.NoError(t, fs.Parse([]string{"-color-order", "RGB"}))

	cfg, err := config.Load(path)
	assert.NoError(t, err)
	fl.apply(cfg, fs)

	assert.Equal(t, "RGB", cfg.SPI.ColorOrder)
}
