//go:build linux

package gpio

import (
	"fmt"

	"github.com/sweeney/greenhouse/internal/logic"
	"github.com/warthog618/go-gpiocdev"
)

var _ IO = (*RealIO)(nil)

// RealIO drives GPIO on actual hardware using the Linux GPIO character device.
type RealIO struct {
	chip    *gpiocdev.Chip
	inputs  map[int]*gpiocdev.Line
	outputs map[int]*gpiocdev.Line
}

// NewRealIO requests the photo pin as an input and every pin in outputs as an
// output driven LOW.
func NewRealIO(chipName string, photo int, outputs ...int) (*RealIO, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("greenhouse"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealIO{
		chip:    chip,
		inputs:  make(map[int]*gpiocdev.Line),
		outputs: make(map[int]*gpiocdev.Line),
	}

	// Pull-down matches Pi boot defaults so an unplugged sensor reads false.
	in, err := chip.RequestLine(photo, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request photo pin %d: %w", photo, err)
	}
	r.inputs[photo] = in

	for _, pin := range outputs {
		out, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request output pin %d: %w", pin, err)
		}
		r.outputs[pin] = out
	}

	return r, nil
}

// Read returns the level of an input pin.
func (r *RealIO) Read(pin int) (bool, error) {
	line, ok := r.inputs[pin]
	if !ok {
		return false, fmt.Errorf("pin %d not requested as input", pin)
	}
	v, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("read pin %d: %w", pin, err)
	}
	return v != 0, nil
}

// Write sets the level of an output pin.
func (r *RealIO) Write(pin int, level logic.Level) error {
	line, ok := r.outputs[pin]
	if !ok {
		return fmt.Errorf("pin %d not requested as output", pin)
	}
	v := 0
	if level == logic.High {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("write pin %d: %w", pin, err)
	}
	return nil
}

// Close releases GPIO resources.
// Outputs are reconfigured to input with pull-down (matching Pi boot defaults)
// before closing so relays are not left energised across a reboot.
func (r *RealIO) Close() error {
	var errs []error

	for pin, line := range r.outputs {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	for pin, line := range r.inputs {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
