package gpio

import (
	"fmt"

	"github.com/sweeney/greenhouse/internal/logic"
)

var _ IO = (*FakeIO)(nil)

// FakeIO is a test double that returns scripted input values and records
// every output write.
type FakeIO struct {
	// Inputs contains scripted values per input pin.
	// Each Read of a pin consumes the next value; the last one repeats.
	Inputs map[int][]bool

	// Writes records every successful Write in order.
	Writes []Write

	// Reads records the pin of every Read call in order.
	Reads []int

	// ReadError, if set, will be returned by Read()
	ReadError error

	// WriteError, if set, will be returned by Write() and nothing is recorded
	WriteError error

	// Closed tracks if Close was called
	Closed bool

	index map[int]int
}

// Write is a single recorded output write.
type Write struct {
	Pin   int
	Level logic.Level
}

// NewFakeIO creates a FakeIO with no scripted inputs.
func NewFakeIO() *FakeIO {
	return &FakeIO{
		Inputs: make(map[int][]bool),
		index:  make(map[int]int),
	}
}

// SetInput scripts the values returned for pin.
func (f *FakeIO) SetInput(pin int, values ...bool) {
	f.Inputs[pin] = values
	f.index[pin] = 0
}

// Read returns the next scripted value for pin.
func (f *FakeIO) Read(pin int) (bool, error) {
	f.Reads = append(f.Reads, pin)
	if f.ReadError != nil {
		return false, f.ReadError
	}

	values := f.Inputs[pin]
	if len(values) == 0 {
		return false, fmt.Errorf("no values configured for pin %d", pin)
	}

	i := f.index[pin]
	if i < len(values)-1 {
		f.index[pin] = i + 1
	}
	return values[i], nil
}

// Write records the level written to pin.
func (f *FakeIO) Write(pin int, level logic.Level) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Writes = append(f.Writes, Write{Pin: pin, Level: level})
	return nil
}

// WritesTo returns the recorded writes for a single pin.
func (f *FakeIO) WritesTo(pin int) []logic.Level {
	var out []logic.Level
	for _, w := range f.Writes {
		if w.Pin == pin {
			out = append(out, w.Level)
		}
	}
	return out
}

// Close marks the IO as closed.
func (f *FakeIO) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded calls and rewinds scripted inputs.
func (f *FakeIO) Reset() {
	f.Writes = nil
	f.Reads = nil
	f.Closed = false
	for pin := range f.index {
		f.index[pin] = 0
	}
}
