package logic

import (
	"errors"
	"fmt"
)

// Controller decides when to switch the sprinkler and the red grow light.
// It remembers the last level it commanded for each actuator and never reads
// the actuators back. Not safe for concurrent use.
type Controller struct {
	io          DigitalIO
	sensor      MoistureSensor
	pins        Pins
	thresholds  Thresholds
	mirrorLight bool

	sprinklerOn bool
	redLightOn  bool
	counts      Counts
	last        Action

	reading    int
	hasReading bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithThresholds overrides DefaultThresholds.
func WithThresholds(t Thresholds) Option {
	return func(c *Controller) { c.thresholds = t }
}

// WithMirrorLight makes ManageLightbulb switch the light off when the photo
// input reads false. Without it the light latches on.
func WithMirrorLight(mirror bool) Option {
	return func(c *Controller) { c.mirrorLight = mirror }
}

// NewController creates a controller with both actuators assumed off.
func NewController(io DigitalIO, moisture MoistureSensor, pins Pins, opts ...Option) *Controller {
	c := &Controller{
		io:         io,
		sensor:     moisture,
		pins:       pins,
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore seeds the remembered actuator states, e.g. when resuming with the
// hardware already in a known state. It issues no writes.
func (c *Controller) Restore(sprinklerOn, redLightOn bool) {
	c.sprinklerOn = sprinklerOn
	c.redLightOn = redLightOn
}

// MeasureSoilMoisture reads the moisture sensor once and returns the reading
// if it is inside the valid band. Otherwise it returns a *SensorRangeError.
// It never touches an output.
func (c *Controller) MeasureSoilMoisture() (int, error) {
	m, err := c.sensor.Read()
	if err != nil {
		return 0, fmt.Errorf("read moisture: %w", err)
	}
	if m < c.thresholds.MinValid || m > c.thresholds.MaxValid {
		c.counts.RangeFaults++
		return 0, &SensorRangeError{Reading: m, Min: c.thresholds.MinValid, Max: c.thresholds.MaxValid}
	}
	c.reading = m
	c.hasReading = true
	return m, nil
}

// TurnOnSprinkler writes HIGH to the sprinkler pin and records it.
func (c *Controller) TurnOnSprinkler() error {
	if err := c.io.Write(c.pins.Sprinkler, High); err != nil {
		return fmt.Errorf("write sprinkler pin %d: %w", c.pins.Sprinkler, err)
	}
	c.sprinklerOn = true
	c.counts.SprinklerOn++
	c.last = ActionSprinklerOn
	return nil
}

// TurnOffSprinkler writes LOW to the sprinkler pin and records it.
func (c *Controller) TurnOffSprinkler() error {
	if err := c.io.Write(c.pins.Sprinkler, Low); err != nil {
		return fmt.Errorf("write sprinkler pin %d: %w", c.pins.Sprinkler, err)
	}
	c.sprinklerOn = false
	c.counts.SprinklerOff++
	c.last = ActionSprinklerOff
	return nil
}

// ManageSprinkler applies the hysteresis rule to one moisture reading.
// Below LowWater the sprinkler is commanded on, above HighWater it is
// commanded off, and in between (edges included) nothing is written.
func (c *Controller) ManageSprinkler() (Action, error) {
	m, err := c.MeasureSoilMoisture()
	if err != nil {
		return ActionNone, err
	}

	switch {
	case m < c.thresholds.LowWater:
		return ActionSprinklerOn, c.TurnOnSprinkler()
	case m > c.thresholds.HighWater:
		return ActionSprinklerOff, c.TurnOffSprinkler()
	}
	return ActionNone, nil
}

// CheckTooMuchLight returns the photo input level.
//
// The name is historical: a true reading is
// what turns the red light on; see ManageLightbulb.
func (c *Controller) CheckTooMuchLight() (bool, error) {
	v, err := c.io.Read(c.pins.Photo)
	if err != nil {
		return false, fmt.Errorf("read photo pin %d: %w", c.pins.Photo, err)
	}
	return v, nil
}

// ManageLightbulb turns the red light on when the photo input is true.
// A false input writes nothing unless mirror mode is enabled, in which case
// the light is switched off.
func (c *Controller) ManageLightbulb() (Action, error) {
	bright, err := c.CheckTooMuchLight()
	if err != nil {
		return ActionNone, err
	}

	if bright {
		if err := c.io.Write(c.pins.LED, High); err != nil {
			return ActionNone, fmt.Errorf("write led pin %d: %w", c.pins.LED, err)
		}
		c.redLightOn = true
		c.counts.LightOn++
		c.last = ActionLightOn
		return ActionLightOn, nil
	}

	if !c.mirrorLight {
		return ActionNone, nil
	}
	if err := c.io.Write(c.pins.LED, Low); err != nil {
		return ActionNone, fmt.Errorf("write led pin %d: %w", c.pins.LED, err)
	}
	c.redLightOn = false
	c.counts.LightOff++
	c.last = ActionLightOff
	return ActionLightOff, nil
}

// Shutdown drives both actuators LOW without counting the commands. Both
// writes are attempted even if the first fails.
func (c *Controller) Shutdown() error {
	var errs []error
	if err := c.io.Write(c.pins.Sprinkler, Low); err != nil {
		errs = append(errs, fmt.Errorf("write sprinkler pin %d: %w", c.pins.Sprinkler, err))
	} else {
		c.sprinklerOn = false
	}
	if err := c.io.Write(c.pins.LED, Low); err != nil {
		errs = append(errs, fmt.Errorf("write led pin %d: %w", c.pins.LED, err))
	} else {
		c.redLightOn = false
	}
	return errors.Join(errs...)
}

// SprinklerOn reports the last commanded sprinkler state.
func (c *Controller) SprinklerOn() bool {
	return c.sprinklerOn
}

// RedLightOn reports the last commanded red light state.
func (c *Controller) RedLightOn() bool {
	return c.redLightOn
}

// LastMoisture returns the most recent valid reading. ok is false until the
// first valid reading.
func (c *Controller) LastMoisture() (m int, ok bool) {
	return c.reading, c.hasReading
}

// LastAction returns the most recent successful actuator command.
func (c *Controller) LastAction() Action {
	return c.last
}

// CountsSnapshot returns a copy of the command and fault counters.
func (c *Controller) CountsSnapshot() Counts {
	return c.counts
}

// Thresholds returns the thresholds in use.
func (c *Controller) Thresholds() Thresholds {
	return c.thresholds
}
