// Package config loads controller settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/greenhouse/internal/gpio"
	"github.com/sweeney/greenhouse/internal/logic"
	"github.com/sweeney/greenhouse/internal/moisture"
)

type Pins struct {
	Chip      string `yaml:"chip"`
	Sprinkler int    `yaml:"sprinkler"`
	Photo     int    `yaml:"photo"`
	LED       int    `yaml:"led"`
}

type Moisture struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

type Thresholds struct {
	MinValid  int `yaml:"minValid"`
	MaxValid  int `yaml:"maxValid"`
	LowWater  int `yaml:"lowWater"`
	HighWater int `yaml:"highWater"`
}

type Config struct {
	Pins        Pins          `yaml:"pins"`
	Moisture    Moisture      `yaml:"moisture"`
	Thresholds  Thresholds    `yaml:"thresholds"`
	MirrorLight bool          `yaml:"mirrorLight"`
	Poll        time.Duration `yaml:"poll"`
	Heartbeat   time.Duration `yaml:"heartbeat"`
}

// Default returns the stock wiring and thresholds.
func Default() Config {
	t := logic.DefaultThresholds()
	return Config{
		Pins: Pins{
			Chip:      "gpiochip0",
			Sprinkler: gpio.DefaultPinSprinkler,
			Photo:     gpio.DefaultPinPhoto,
			LED:       gpio.DefaultPinLED,
		},
		Moisture: Moisture{
			Bus:     moisture.DefaultBus,
			Address: moisture.DefaultAddress,
		},
		Thresholds: Thresholds{
			MinValid:  t.MinValid,
			MaxValid:  t.MaxValid,
			LowWater:  t.LowWater,
			HighWater: t.HighWater,
		},
		Poll:      time.Second,
		Heartbeat: 15 * time.Minute,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping values for keys that are absent,
// and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks pins are distinct and thresholds are consistent.
func (c Config) Validate() error {
	if c.Pins.Sprinkler == c.Pins.Photo || c.Pins.Sprinkler == c.Pins.LED || c.Pins.Photo == c.Pins.LED {
		return fmt.Errorf("pins must be distinct: sprinkler=%d photo=%d led=%d",
			c.Pins.Sprinkler, c.Pins.Photo, c.Pins.LED)
	}
	if c.Poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.Poll)
	}
	return c.LogicThresholds().Validate()
}

// LogicThresholds converts the YAML thresholds for the controller.
func (c Config) LogicThresholds() logic.Thresholds {
	return logic.Thresholds{
		MinValid:  c.Thresholds.MinValid,
		MaxValid:  c.Thresholds.MaxValid,
		LowWater:  c.Thresholds.LowWater,
		HighWater: c.Thresholds.HighWater,
	}
}

// LogicPins converts the pin numbers for the controller.
func (c Config) LogicPins() logic.Pins {
	return logic.Pins{
		Sprinkler: c.Pins.Sprinkler,
		Photo:     c.Pins.Photo,
		LED:       c.Pins.LED,
	}
}
