package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tinygo-org/wsdma/spidma"
	"github.com/tinygo-org/wsdma/ws2812"
)

// Config represents the streamer configuration
type Config struct {
	SPI          string        `yaml:"spi"`
	ClockHz      uint32        `yaml:"clock_hz"`
	LEDs         int           `yaml:"leds"`
	Order        string        `yaml:"order"`
	Latch        time.Duration `yaml:"latch"`
	FaultPolicy  string        `yaml:"fault_policy"`
	Pattern      string        `yaml:"pattern"`
	From         string        `yaml:"from"`
	To           string        `yaml:"to"`
	FrameRate    int           `yaml:"frame_rate"`
	StallTimeout time.Duration `yaml:"stall_timeout"`
	Marker       Marker        `yaml:"marker"`
}

// Marker is an optional GPIO line toggled once per completed frame, for
// triggering a logic analyser.
type Marker struct {
	Chip string `yaml:"chip"`
	Line int    `yaml:"line"`
}

// Enabled reports whether a marker line is configured.
func (m Marker) Enabled() bool { return m.Chip != "" }

// Default returns the default configuration
func Default() *Config {
	return &Config{
		ClockHz:      ws2812.DefaultTiming.ClockHz,
		LEDs:         30,
		Order:        "GRB",
		Latch:        ws2812.LatchWS2812B,
		FaultPolicy:  "continue",
		Pattern:      "rainbow",
		From:         "#0a3306",
		To:           "#36ff1f",
		FrameRate:    60,
		StallTimeout: time.Second,
		Marker:       Marker{Line: -1},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(b, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be caught by the type system.
func (c *Config) Validate() error {
	if c.LEDs <= 0 {
		return errors.Errorf("config: leds must be positive, got %d", c.LEDs)
	}
	if c.FrameRate < 0 {
		return errors.Errorf("config: frame_rate must not be negative, got %d", c.FrameRate)
	}
	if _, err := c.Timing(); err != nil {
		return err
	}
	if _, err := ws2812.ParseOrder(c.Order); err != nil {
		return errors.Wrapf(err, "config: order %q", c.Order)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	switch c.Pattern {
	case "rainbow", "gradient", "off":
	default:
		return errors.Errorf("config: unknown pattern %q", c.Pattern)
	}
	if c.Marker.Enabled() && c.Marker.Line < 0 {
		return errors.Errorf("config: marker line must be set for chip %s", c.Marker.Chip)
	}
	return nil
}

// Timing derives the protocol constants for the configured clock and latch.
func (c *Config) Timing() (ws2812.Timing, error) {
	t, err := ws2812.NewTiming(c.ClockHz, c.Latch)
	return t, errors.Wrapf(err, "config: clock_hz %d", c.ClockHz)
}

// Encoder returns the encoder for the configured clock and channel order.
func (c *Config) Encoder() (ws2812.Encoder, error) {
	t, err := c.Timing()
	if err != nil {
		return ws2812.Encoder{}, err
	}
	o, err := ws2812.ParseOrder(c.Order)
	if err != nil {
		return ws2812.Encoder{}, errors.Wrapf(err, "config: order %q", c.Order)
	}
	return ws2812.NewEncoder(t, o)
}

// Policy maps fault_policy to the engine setting.
func (c *Config) Policy() (spidma.FaultPolicy, error) {
	switch strings.ToLower(c.FaultPolicy) {
	case "", "continue":
		return spidma.FaultContinue, nil
	case "halt":
		return spidma.FaultHalt, nil
	}
	return 0, errors.Errorf("config: unknown fault_policy %q", c.FaultPolicy)
}
