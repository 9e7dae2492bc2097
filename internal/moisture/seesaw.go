// Package moisture reads soil moisture from an Adafruit STEMMA (Seesaw)
// capacitive sensor over I2C.
package moisture

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var _ Sensor = (*Seesaw)(nil)

// DefaultAddress is the factory I2C address of the soil sensor.
const DefaultAddress = 0x36

// DefaultBus is the Raspberry Pi header I2C bus.
const DefaultBus = "1"

// Seesaw register addresses.
const (
	baseStatus = 0x00
	baseTouch  = 0x0F

	statusHWID   = 0x01
	touchChannel = 0x10

	hwIDCode = 0x55
)

// Sensor returns raw moisture readings.
type Sensor interface {
	Read() (int, error)
}

// Seesaw is a soil moisture sensor on an I2C bus.
type Seesaw struct {
	bus   i2c.Bus
	dev   i2c.Dev
	delay time.Duration
	tries int
}

// NewSeesaw wraps an already opened bus and checks the chip answers with the
// Seesaw hardware ID.
func NewSeesaw(bus i2c.Bus, addr uint16) (*Seesaw, error) {
	s := &Seesaw{
		bus:   bus,
		dev:   i2c.Dev{Bus: bus, Addr: addr},
		delay: 5 * time.Millisecond,
		tries: 3,
	}
	id, err := s.readRegister(baseStatus, statusHWID, 1)
	if err != nil {
		return nil, fmt.Errorf("probe seesaw at 0x%02x: %w", addr, err)
	}
	if id[0] != hwIDCode {
		return nil, fmt.Errorf("seesaw at 0x%02x: unexpected hardware id 0x%02x", addr, id[0])
	}
	return s, nil
}

// OpenSeesaw initialises the host drivers, opens the named I2C bus and
// attaches a Seesaw at addr.
func OpenSeesaw(busName string, addr uint16) (*Seesaw, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	s, err := NewSeesaw(bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}
	return s, nil
}

// Read returns the capacitive moisture reading.
// The chip occasionally answers 0xFFFF while busy; those answers are retried.
func (s *Seesaw) Read() (int, error) {
	for i := 0; i < s.tries; i++ {
		buf, err := s.readRegister(baseTouch, touchChannel, 2)
		if err != nil {
			return 0, err
		}
		v := binary.BigEndian.Uint16(buf)
		if v != 0xFFFF {
			return int(v), nil
		}
	}
	return 0, fmt.Errorf("seesaw busy after %d reads", s.tries)
}

// Close releases the bus if it can be closed.
func (s *Seesaw) Close() error {
	if c, ok := s.bus.(i2c.BusCloser); ok {
		return c.Close()
	}
	return nil
}

func (s *Seesaw) readRegister(base, fn byte, n int) ([]byte, error) {
	if err := s.dev.Tx([]byte{base, fn}, nil); err != nil {
		return nil, fmt.Errorf("select register 0x%02x%02x: %w", base, fn, err)
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	buf := make([]byte, n)
	if err := s.dev.Tx(nil, buf); err != nil {
		return nil, fmt.Errorf("read register 0x%02x%02x: %w", base, fn, err)
	}
	return buf, nil
}
