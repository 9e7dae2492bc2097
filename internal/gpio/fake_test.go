package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/greenhouse/internal/logic"
)

func TestFakeIORead(t *testing.T) {
	f := NewFakeIO()
	f.SetInput(DefaultPinPhoto, true, false)

	v, err := f.Read(DefaultPinPhoto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Error("read 0: expected true")
	}

	v, err = f.Read(DefaultPinPhoto)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v {
		t.Error("read 1: expected false")
	}

	// Third read should repeat last value
	v, _ = f.Read(DefaultPinPhoto)
	if v {
		t.Error("read 2 (repeat): expected false")
	}

	if len(f.Reads) != 3 {
		t.Errorf("expected 3 recorded reads, got %d", len(f.Reads))
	}
}

func TestFakeIOReadUnconfiguredPin(t *testing.T) {
	f := NewFakeIO()

	_, err := f.Read(DefaultPinPhoto)
	if err == nil {
		t.Error("expected error for pin with no values")
	}
}

func TestFakeIOReadError(t *testing.T) {
	f := NewFakeIO()
	f.SetInput(DefaultPinPhoto, true)
	f.ReadError = errors.New("simulated error")

	_, err := f.Read(DefaultPinPhoto)
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeIOWrite(t *testing.T) {
	f := NewFakeIO()

	f.Write(DefaultPinSprinkler, logic.High)
	f.Write(DefaultPinLED, logic.High)
	f.Write(DefaultPinSprinkler, logic.Low)

	if len(f.Writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(f.Writes))
	}
	if f.Writes[1] != (Write{Pin: DefaultPinLED, Level: logic.High}) {
		t.Errorf("write 1: got %+v", f.Writes[1])
	}

	got := f.WritesTo(DefaultPinSprinkler)
	if len(got) != 2 || got[0] != logic.High || got[1] != logic.Low {
		t.Errorf("sprinkler writes: got %v, want [HIGH LOW]", got)
	}
}

func TestFakeIOWriteError(t *testing.T) {
	f := NewFakeIO()
	f.WriteError = errors.New("simulated error")

	if err := f.Write(DefaultPinLED, logic.High); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.Writes) != 0 {
		t.Errorf("failed write should not be recorded, got %d", len(f.Writes))
	}
}

func TestFakeIOClose(t *testing.T) {
	f := NewFakeIO()

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeIOReset(t *testing.T) {
	f := NewFakeIO()
	f.SetInput(DefaultPinPhoto, true, false)

	f.Read(DefaultPinPhoto)
	f.Write(DefaultPinLED, logic.High)

	f.Reset()

	if len(f.Writes) != 0 || len(f.Reads) != 0 {
		t.Error("reset should clear recorded calls")
	}
	v, _ := f.Read(DefaultPinPhoto)
	if !v {
		t.Error("after reset: expected first scripted value (true)")
	}
}

func TestLevelString(t *testing.T) {
	if logic.High.String() != "HIGH" {
		t.Errorf("High: got %q", logic.High.String())
	}
	if logic.Low.String() != "LOW" {
		t.Errorf("Low: got %q", logic.Low.String())
	}
}
