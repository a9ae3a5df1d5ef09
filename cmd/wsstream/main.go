// Command wsstream streams an animation to a WS2812 strip wired to a Linux
// SPI port.
//
// The strip is refreshed continuously by a spidma.Engine; the animation is
// advanced each time a frame completes, while the engine holds the line low
// for the reset gap.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tinygo-org/wsdma/host/spidev"
	"github.com/tinygo-org/wsdma/internal/config"
	"github.com/tinygo-org/wsdma/pattern"
	"github.com/tinygo-org/wsdma/spidma"
	"github.com/tinygo-org/wsdma/ws2812"
)

var (
	configPath  = flag.String("config", "", "YAML configuration file")
	spiPort     = flag.String("spi", "", "SPI port name, empty for the first one")
	clockHz     = flag.Uint("clock", 0, "SPI clock in Hz")
	leds        = flag.Int("leds", 0, "number of LEDs on the strip")
	order       = flag.String("order", "", "channel order, GRB for WS2812")
	patternName = flag.String("pattern", "", "rainbow, gradient or off")
	faultPolicy = flag.String("fault-policy", "", "continue or halt")
	frameRate   = flag.Int("rate", -1, "animation steps per second, 0 steps on every frame")
	markerChip  = flag.String("marker-chip", "", "GPIO chip of the frame marker line")
	markerLine  = flag.Int("marker-line", -1, "GPIO line toggled once per frame")
	verbose     = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	quit := make(chan struct{})
	go func() {
		<-sigChan
		log.Info("shutting down")
		close(quit)
	}()

	if err := run(cfg, quit); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the configuration file if one was given and applies the
// flags that were set on the command line.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "spi":
			cfg.SPI = *spiPort
		case "clock":
			cfg.ClockHz = uint32(*clockHz)
		case "leds":
			cfg.LEDs = *leds
		case "order":
			cfg.Order = *order
		case "pattern":
			cfg.Pattern = *patternName
		case "fault-policy":
			cfg.FaultPolicy = *faultPolicy
		case "rate":
			cfg.FrameRate = *frameRate
		case "marker-chip":
			cfg.Marker.Chip = *markerChip
		case "marker-line":
			cfg.Marker.Line = *markerLine
		}
	})
	return cfg, cfg.Validate()
}

func run(cfg *config.Config, quit <-chan struct{}) error {
	enc, err := cfg.Encoder()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	anim, err := newAnimation(cfg)
	if err != nil {
		return err
	}
	frame, err := ws2812.NewFrame(cfg.LEDs, enc)
	if err != nil {
		return errors.Wrap(err, "frame")
	}
	mk, err := openMarker(cfg.Marker)
	if err != nil {
		return err
	}
	defer mk.Close()

	bus, err := spidev.Open(cfg.SPI, cfg.ClockHz)
	if err != nil {
		return err
	}
	defer bus.Close()

	t, _ := cfg.Timing()
	e := spidma.New(spidma.NewSPIChannel(bus), t)
	e.SetFaultPolicy(policy)
	var done spidma.Flag
	if err := e.Start(frame.Bytes(), &done); err != nil {
		return errors.Wrap(err, "start")
	}
	defer e.Stop()
	logger := log.WithFields(log.Fields{
		"leds":     cfg.LEDs,
		"clock_hz": t.ClockHz,
		"high":     enc.High(),
		"low":      enc.Low(),
		"reset":    t.ResetGap(),
		"pattern":  cfg.Pattern,
	})
	logger.Info("streaming")

	if cfg.FrameRate > 0 {
		anim.period = time.Second / time.Duration(cfg.FrameRate)
	}
	report := time.NewTicker(5 * time.Second)
	defer report.Stop()
	for {
		select {
		case <-quit:
			return nil
		case <-report.C:
			logStats(logger, e.Stats())
		default:
		}
		if err := done.Wait(cfg.StallTimeout); err != nil {
			if herr := e.Err(); herr != nil {
				err = herr
			}
			logStats(logger, e.Stats())
			return errors.Wrap(err, "stream")
		}
		if err := mk.Toggle(); err != nil {
			logger.WithError(err).Warn("marker")
		}
		anim.tick(frame, time.Now())
	}
}

func logStats(logger *log.Entry, s spidma.Stats) {
	logger.WithFields(log.Fields{
		"frames":     s.Frames,
		"faults":     s.Faults,
		"last_fault": s.LastFault,
		"spurious":   s.Spurious,
	}).Debug("stats")
}

// animation holds the colors of the strip between frames.
type animation struct {
	leds  []pattern.GRB
	grad  *pattern.Gradient
	phase int
	off   bool

	// period between animation steps; zero steps on every frame.
	period time.Duration
	last   time.Time
	shown  bool
}

func newAnimation(cfg *config.Config) (*animation, error) {
	a := &animation{leds: make([]pattern.GRB, cfg.LEDs)}
	switch cfg.Pattern {
	case "rainbow":
		pattern.Init(a.leds, 0)
	case "gradient":
		g, err := pattern.NewGradient(cfg.From, cfg.To)
		if err != nil {
			return nil, errors.Wrap(err, "gradient")
		}
		a.grad = g
		g.Fill(a.leds, 0)
	case "off":
		a.off = true
	}
	return a, nil
}

func (a *animation) step() {
	switch {
	case a.off:
	case a.grad != nil:
		a.phase++
		a.grad.Fill(a.leds, a.phase)
	default:
		pattern.ShiftAll(a.leds)
	}
}

// tick is called each time a frame completes. The first call shows the
// initial colors, since Engine.Start blanks the frame; later calls advance
// the animation once per period.
func (a *animation) tick(f *ws2812.Frame, now time.Time) {
	if a.shown {
		if now.Sub(a.last) < a.period {
			return
		}
		a.step()
	}
	a.shown = true
	a.last = now
	a.render(f)
}

func (a *animation) render(f *ws2812.Frame) {
	for i, c := range a.leds {
		f.SetGRB(i, c.G, c.R, c.B)
	}
}
