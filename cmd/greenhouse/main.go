// Command greenhouse waters the soil and switches the grow light from a
// moisture sensor and a photo sensor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/sweeney/greenhouse/internal/config"
	"github.com/sweeney/greenhouse/internal/gpio"
	"github.com/sweeney/greenhouse/internal/logic"
	"github.com/sweeney/greenhouse/internal/moisture"
	"github.com/sweeney/greenhouse/internal/status"
)

// maxFaultHold caps how long moisture checks are suspended after repeated
// range faults.
const maxFaultHold = 5 * time.Minute

func main() {
	cfg, printState, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseFlags loads the optional config file and applies any flags that were
// set explicitly on top of it.
func parseFlags(fs *flag.FlagSet, args []string) (config.Config, bool, error) {
	def := config.Default()

	configPath := fs.String("config", "", "YAML config file (optional)")
	poll := fs.Duration("poll", def.Poll, "Sensor polling interval")
	heartbeat := fs.Duration("heartbeat", def.Heartbeat, "Heartbeat log interval (0 to disable)")
	chip := fs.String("chip", def.Pins.Chip, "GPIO chip name")
	pinSprinkler := fs.Int("pin-sprinkler", def.Pins.Sprinkler, "BCM pin number for the sprinkler relay")
	pinPhoto := fs.Int("pin-photo", def.Pins.Photo, "BCM pin number for the photo sensor")
	pinLED := fs.Int("pin-led", def.Pins.LED, "BCM pin number for the red grow light")
	bus := fs.String("i2c-bus", def.Moisture.Bus, "I2C bus of the moisture sensor")
	addr := fs.Uint("moisture-addr", uint(def.Moisture.Address), "I2C address of the moisture sensor")
	mirror := fs.Bool("mirror-light", def.MirrorLight, "Switch the grow light off when the photo sensor reads false")
	printState := fs.Bool("print-state", false, "Print current sensor state and exit")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, false, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, false, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "poll":
			cfg.Poll = *poll
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		case "chip":
			cfg.Pins.Chip = *chip
		case "pin-sprinkler":
			cfg.Pins.Sprinkler = *pinSprinkler
		case "pin-photo":
			cfg.Pins.Photo = *pinPhoto
		case "pin-led":
			cfg.Pins.LED = *pinLED
		case "i2c-bus":
			cfg.Moisture.Bus = *bus
		case "moisture-addr":
			cfg.Moisture.Address = uint16(*addr)
		case "mirror-light":
			cfg.MirrorLight = *mirror
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, false, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, *printState, nil
}

func run(cfg config.Config, printState bool) error {
	// Print state mode only requests the photo pin so no output is driven.
	outputs := []int{cfg.Pins.Sprinkler, cfg.Pins.LED}
	if printState {
		outputs = nil
	}

	var gpioIO *gpio.RealIO
	err := retryOpen("gpio", func() error {
		var err error
		gpioIO, err = gpio.NewRealIO(cfg.Pins.Chip, cfg.Pins.Photo, outputs...)
		return err
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioIO.Close()

	var sensor *moisture.Seesaw
	err = retryOpen("moisture sensor", func() error {
		var err error
		sensor, err = moisture.OpenSeesaw(cfg.Moisture.Bus, cfg.Moisture.Address)
		return err
	})
	if err != nil {
		return fmt.Errorf("init moisture sensor: %w", err)
	}
	defer sensor.Close()

	ctrl := logic.NewController(gpioIO, sensor, cfg.LogicPins(),
		logic.WithThresholds(cfg.LogicThresholds()),
		logic.WithMirrorLight(cfg.MirrorLight),
	)
	tracker := status.NewTracker(time.Now(), statusConfig(cfg))

	if printState {
		return printCurrentState(os.Stdout, ctrl, tracker)
	}

	log.Printf("startup: %s", status.FormatStatusEvent(tracker.Snapshot(), "STARTUP"))
	log.Printf("started: poll=%v heartbeat=%v sprinkler=%d photo=%d led=%d mirror=%v",
		cfg.Poll, cfg.Heartbeat, cfg.Pins.Sprinkler, cfg.Pins.Photo, cfg.Pins.LED, cfg.MirrorLight)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, tracker, newFaultBackOff(cfg.Poll), cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

// retryOpen retries hardware initialisation with exponential backoff; the
// I2C bus and GPIO chip can lag behind the service at boot.
func retryOpen(what string, open func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(func() error {
		err := open()
		if err != nil {
			log.Printf("open %s: %v", what, err)
		}
		return err
	}, backoff.WithMaxRetries(bo, 4))
}

// newFaultBackOff spaces out moisture checks while the sensor keeps
// reporting out-of-range values. It never gives up.
func newFaultBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = maxFaultHold
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

func printCurrentState(w io.Writer, ctrl *logic.Controller, tracker *status.Tracker) error {
	m, err := ctrl.MeasureSoilMoisture()
	if err != nil {
		tracker.SetFault(err, time.Now())
	} else {
		tracker.SetMoisture(m)
	}

	bright, err := ctrl.CheckTooMuchLight()
	if err != nil {
		return fmt.Errorf("read photo sensor: %w", err)
	}
	tracker.SetBright(bright)
	tracker.Update(ctrl)

	_, err = fmt.Fprintf(w, "%s\n", status.FormatJSON(tracker.Snapshot()))
	return err
}

func runLoop(ctrl *logic.Controller, tracker *status.Tracker, faults backoff.BackOff, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	var holdUntil time.Time

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := ctrl.Shutdown(); err != nil {
				log.Printf("shutdown: %v", err)
			}
			tracker.Update(ctrl)
			log.Printf("shutdown: %s", status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN"))
			return nil

		case <-tick:
			t := now()

			if !holdUntil.After(t) {
				wasOn := ctrl.SprinklerOn()
				_, err := ctrl.ManageSprinkler()
				switch {
				case errors.Is(err, logic.ErrSensorRange):
					wait := faults.NextBackOff()
					holdUntil = t.Add(wait)
					log.Printf("moisture fault: %v (holding sprinkler, next check in %v)", err, wait)
					tracker.SetFault(err, t)
				case err != nil:
					log.Printf("sprinkler error: %v", err)
					tracker.SetFault(err, t)
				default:
					faults.Reset()
					holdUntil = time.Time{}
					m, _ := ctrl.LastMoisture()
					tracker.SetMoisture(m)
					if ctrl.SprinklerOn() != wasOn {
						log.Printf("event: %s (moisture=%d)", ctrl.LastAction(), m)
					}
				}
			}

			wasLit := ctrl.RedLightOn()
			act, err := ctrl.ManageLightbulb()
			if err != nil {
				log.Printf("light error: %v", err)
			} else {
				tracker.SetBright(act == logic.ActionLightOn)
				if ctrl.RedLightOn() != wasLit {
					log.Printf("event: %s", act)
				}
			}

			tracker.Update(ctrl)

			if snap, ok := tracker.CheckHeartbeat(t, heartbeat); ok {
				log.Printf("heartbeat: uptime=%v sprinkler=%v light=%v moisture=%d sprinkler_on=%d sprinkler_off=%d light_on=%d light_off=%d faults=%d",
					snap.Uptime().Truncate(time.Second), snap.SprinklerOn, snap.RedLightOn, snap.Moisture,
					snap.Counts.SprinklerOn, snap.Counts.SprinklerOff, snap.Counts.LightOn, snap.Counts.LightOff, snap.Counts.RangeFaults)
			}
		}
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		PollMs:       cfg.Poll.Milliseconds(),
		HeartbeatMs:  cfg.Heartbeat.Milliseconds(),
		PinSprinkler: cfg.Pins.Sprinkler,
		PinPhoto:     cfg.Pins.Photo,
		PinLED:       cfg.Pins.LED,
		MoistureBus:  cfg.Moisture.Bus,
		MoistureAddr: cfg.Moisture.Address,
		MirrorLight:  cfg.MirrorLight,
		Thresholds:   cfg.LogicThresholds(),
	}
}
