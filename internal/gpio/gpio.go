// Package gpio provides digital pin access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/greenhouse/internal/logic"

// IO reads input pins and drives output pins.
type IO interface {
	logic.DigitalIO

	// Close releases GPIO resources.
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinSprinkler = 13 // sprinkler relay
	DefaultPinPhoto     = 8  // photo sensor digital output
	DefaultPinLED       = 18 // red grow light
)
