package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type SPI struct {
	Dev        string `yaml:"dev"`         // e.g. /dev/spidev0.0; empty picks the first port
	ColorOrder string `yaml:"color_order"` // strip channel order, e.g. GRB or RGB
}

type SmoothingCfg struct {
	Enable   bool `yaml:"enable"`
	WindowMs int  `yaml:"window_ms"`
}

type TransformCfg struct {
	GammaR     float64 `yaml:"gamma_r"`
	GammaG     float64 `yaml:"gamma_g"`
	GammaB     float64 `yaml:"gamma_b"`
	Brightness float64 `yaml:"brightness"`
	WhiteCap   float64 `yaml:"white_cap"`
}

type Config struct {
	Driver   string `yaml:"driver"` // "spi" | "sim"
	LedCount int    `yaml:"led_count"`
	FPS      int    `yaml:"fps"`
	Addr     string `yaml:"addr"`

	EffectsDir string `yaml:"effects_dir,omitempty"`
	Playlist   string `yaml:"playlist,omitempty"`

	SPI       SPI          `yaml:"spi,omitempty"`
	Smoothing SmoothingCfg `yaml:"smoothing"`
	Transform TransformCfg `yaml:"transform"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Driver:   "sim",
		LedCount: 50,
		FPS:      60,
		Addr:     ":8080",
		SPI: SPI{
			ColorOrder: "GRB",
		},
		Smoothing: SmoothingCfg{
			Enable:   true,
			WindowMs: 150,
		},
		Transform: TransformCfg{
			GammaR:     1,
			GammaG:     1,
			GammaB:     1,
			Brightness: 1,
			WhiteCap:   0,
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.LedCount <= 0 {
		return nil, fmt.Errorf("config: led_count must be positive, got %d", c.LedCount)
	}
	if c.FPS <= 0 {
		c.FPS = 60
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
