package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/greenhouse/internal/gpio"
	"github.com/sweeney/greenhouse/internal/logic"
	"github.com/sweeney/greenhouse/internal/moisture"
	"github.com/sweeney/greenhouse/internal/status"
)

var pins = logic.Pins{
	Sprinkler: gpio.DefaultPinSprinkler,
	Photo:     gpio.DefaultPinPhoto,
	LED:       gpio.DefaultPinLED,
}

// TestIntegrationWateringCycle tests the flow from fake sensors through the
// controller to the status JSON over a full drying and watering cycle.
func TestIntegrationWateringCycle(t *testing.T) {
	readings := []int{
		440, // wet: commanded off
		420, // band
		390, // band
		376, // band
		374, // dry: on
		380, // band: stays on
		410, // band
		425, // upper edge: stays on
		426, // wet: off
		400, // band: stays off
	}
	wantOn := []bool{false, false, false, false, true, true, true, true, false, false}

	io := gpio.NewFakeIO()
	io.SetInput(gpio.DefaultPinPhoto, false)
	sensor := moisture.NewFakeSensor(readings...)
	ctrl := logic.NewController(io, sensor, pins)
	startTime := time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC)
	tracker := status.NewTracker(startTime, status.Config{Thresholds: ctrl.Thresholds()})

	for i := range readings {
		if _, err := ctrl.ManageSprinkler(); err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if _, err := ctrl.ManageLightbulb(); err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
		if ctrl.SprinklerOn() != wantOn[i] {
			t.Errorf("sample %d (m=%d): sprinklerOn=%v, want %v", i, readings[i], ctrl.SprinklerOn(), wantOn[i])
		}
		if m, ok := ctrl.LastMoisture(); ok {
			tracker.SetMoisture(m)
		}
		tracker.Update(ctrl)
	}

	want := []logic.Level{logic.Low, logic.High, logic.Low}
	got := io.WritesTo(gpio.DefaultPinSprinkler)
	if len(got) != len(want) {
		t.Fatalf("sprinkler writes: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if leds := io.WritesTo(gpio.DefaultPinLED); len(leds) != 0 {
		t.Errorf("dark greenhouse should not switch the light, got %v", leds)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(status.FormatJSON(tracker.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Sprinkler != "OFF" {
		t.Errorf("sprinkler: got %s, want OFF", parsed.Status.Sprinkler)
	}
	if parsed.Status.Counts.SprinklerOn != 1 || parsed.Status.Counts.SprinklerOff != 2 {
		t.Errorf("counts: got %+v", parsed.Status.Counts)
	}
	if parsed.Status.Moisture == nil || *parsed.Status.Moisture != 400 {
		t.Errorf("moisture: got %v, want 400", parsed.Status.Moisture)
	}
}

// TestIntegrationFaultNeverActuates verifies out-of-range readings interleaved
// with valid ones never produce a write.
func TestIntegrationFaultNeverActuates(t *testing.T) {
	readings := []int{299, 501, 0, 1023, 300, 500}

	io := gpio.NewFakeIO()
	io.SetInput(gpio.DefaultPinPhoto, false)
	sensor := moisture.NewFakeSensor(readings...)
	ctrl := logic.NewController(io, sensor, pins)

	faults := 0
	for i := range readings {
		_, err := ctrl.ManageSprinkler()
		if errors.Is(err, logic.ErrSensorRange) {
			faults++
			if len(io.Writes) != 0 {
				t.Fatalf("sample %d: fault produced writes %v", i, io.Writes)
			}
			continue
		}
		if err != nil {
			t.Fatalf("sample %d: unexpected error: %v", i, err)
		}
	}

	if faults != 4 {
		t.Errorf("expected 4 faults, got %d", faults)
	}
	// 300 turns on, 500 turns off
	if got := io.WritesTo(gpio.DefaultPinSprinkler); len(got) != 2 || got[0] != logic.High || got[1] != logic.Low {
		t.Errorf("sprinkler writes: got %v, want [HIGH LOW]", got)
	}
}

// TestIntegrationLightAndSprinklerIndependent verifies each manage call only
// touches its own pin.
func TestIntegrationLightAndSprinklerIndependent(t *testing.T) {
	io := gpio.NewFakeIO()
	io.SetInput(gpio.DefaultPinPhoto, true)
	sensor := moisture.NewFakeSensor(350)
	ctrl := logic.NewController(io, sensor, pins)

	if _, err := ctrl.ManageLightbulb(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(io.Writes) != 1 || io.Writes[0].Pin != gpio.DefaultPinLED {
		t.Fatalf("light: expected one led write, got %v", io.Writes)
	}
	if sensor.Calls != 0 {
		t.Errorf("light management should not read moisture, got %d reads", sensor.Calls)
	}

	io.Reset()
	if _, err := ctrl.ManageSprinkler(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(io.Writes) != 1 || io.Writes[0].Pin != gpio.DefaultPinSprinkler {
		t.Fatalf("sprinkler: expected one sprinkler write, got %v", io.Writes)
	}
	if len(io.Reads) != 0 {
		t.Errorf("sprinkler management should not read the photo pin, got %v", io.Reads)
	}
}
