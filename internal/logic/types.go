// Package logic contains the greenhouse control rules.
// This package has NO hardware dependencies: sensors and pins are injected
// through the narrow interfaces below so the rules can be tested with fakes.
package logic

import (
	"errors"
	"fmt"
)

// Level is a digital logic level written to an output pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// DigitalIO reads and writes single digital pins.
type DigitalIO interface {
	Read(pin int) (bool, error)
	Write(pin int, level Level) error
}

// MoistureSensor returns a raw soil-moisture reading in sensor units.
type MoistureSensor interface {
	Read() (int, error)
}

// Pins identifies the digital pins used by the controller.
type Pins struct {
	Sprinkler int
	Photo     int
	LED       int
}

// Thresholds holds the moisture limits.
// Valid readings lie in [MinValid, MaxValid]. The sprinkler turns on below
// LowWater and off above HighWater; readings in between leave it alone.
type Thresholds struct {
	MinValid  int
	MaxValid  int
	LowWater  int
	HighWater int
}

// DefaultThresholds returns the stock sensor band and hysteresis band.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinValid:  300,
		MaxValid:  500,
		LowWater:  375,
		HighWater: 425,
	}
}

// Validate checks that the hysteresis band sits inside the valid band.
func (t Thresholds) Validate() error {
	if t.MinValid > t.MaxValid {
		return fmt.Errorf("min valid %d above max valid %d", t.MinValid, t.MaxValid)
	}
	if t.LowWater > t.HighWater {
		return fmt.Errorf("low water %d above high water %d", t.LowWater, t.HighWater)
	}
	if t.LowWater < t.MinValid || t.HighWater > t.MaxValid {
		return fmt.Errorf("hysteresis band [%d, %d] outside valid band [%d, %d]",
			t.LowWater, t.HighWater, t.MinValid, t.MaxValid)
	}
	return nil
}

// ErrSensorRange matches any SensorRangeError via errors.Is.
var ErrSensorRange = errors.New("moisture reading out of range")

// SensorRangeError reports a moisture reading outside the valid band.
type SensorRangeError struct {
	Reading int
	Min     int
	Max     int
}

func (e *SensorRangeError) Error() string {
	return fmt.Sprintf("moisture reading %d outside [%d, %d]", e.Reading, e.Min, e.Max)
}

// Is makes errors.Is(err, ErrSensorRange) true.
func (e *SensorRangeError) Is(target error) bool {
	return target == ErrSensorRange
}

// Action is the actuator command issued by a manage call.
type Action string

const (
	ActionNone         Action = ""
	ActionSprinklerOn  Action = "SPRINKLER_ON"
	ActionSprinklerOff Action = "SPRINKLER_OFF"
	ActionLightOn      Action = "LIGHT_ON"
	ActionLightOff     Action = "LIGHT_OFF"
)

// Counts tracks commands issued and faults seen since startup.
type Counts struct {
	SprinklerOn  int
	SprinklerOff int
	LightOn      int
	LightOff     int
	RangeFaults  int
}
