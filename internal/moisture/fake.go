package moisture

import "errors"

var _ Sensor = (*FakeSensor)(nil)

// FakeSensor is a test double that returns scripted moisture readings.
type FakeSensor struct {
	// Values contains scripted readings.
	// Each call to Read() consumes the next value; the last one repeats.
	Values []int

	// ReadError, if set, will be returned by Read()
	ReadError error

	// Calls counts Read() invocations
	Calls int

	index int
}

// NewFakeSensor creates a FakeSensor with the given readings.
func NewFakeSensor(values ...int) *FakeSensor {
	return &FakeSensor{Values: values}
}

// SetValue replaces the scripted readings with a single value.
func (f *FakeSensor) SetValue(v int) {
	f.Values = []int{v}
	f.index = 0
}

// Read returns the next scripted reading.
func (f *FakeSensor) Read() (int, error) {
	f.Calls++
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	if len(f.Values) == 0 {
		return 0, errors.New("no values configured")
	}

	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}
