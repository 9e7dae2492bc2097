//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/greenhouse/internal/logic"
)

var _ IO = (*RealIO)(nil)

// RealIO is not available on non-Linux platforms.
type RealIO struct{}

// NewRealIO returns an error on non-Linux platforms.
func NewRealIO(chip string, photo int, outputs ...int) (*RealIO, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealIO) Read(pin int) (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Write is not implemented on non-Linux platforms.
func (r *RealIO) Write(pin int, level logic.Level) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealIO) Close() error {
	return nil
}
