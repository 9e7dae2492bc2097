// Package status provides a thread-safe status tracker for the greenhouse
// daemon. It is written by the control loop and read by -print-state and the
// heartbeat log.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/greenhouse/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs       int64
	HeartbeatMs  int64
	PinSprinkler int
	PinPhoto     int
	PinLED       int
	MoistureBus  string
	MoistureAddr uint16
	MirrorLight  bool
	Thresholds   logic.Thresholds
}

// Snapshot is a point-in-time view of daemon state. Moisture is the last
// valid reading and HasMoisture stays false until one arrives.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	SprinklerOn bool
	RedLightOn  bool
	Moisture    int
	HasMoisture bool
	Bright      bool
	LastAction  logic.Action
	Fault       string
	FaultTime   time.Time
	Counts      logic.Counts
	StartTime   time.Time
	Now         time.Time
	Config      Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu            sync.RWMutex
	snap          Snapshot
	lastHeartbeat time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		lastHeartbeat: startTime,
	}
}

// Update copies actuator states, last action and counts from the controller.
func (t *Tracker) Update(c *logic.Controller) {
	t.mu.Lock()
	t.snap.SprinklerOn = c.SprinklerOn()
	t.snap.RedLightOn = c.RedLightOn()
	t.snap.LastAction = c.LastAction()
	t.snap.Counts = c.CountsSnapshot()
	t.mu.Unlock()
}

// SetMoisture records a valid moisture reading and clears any fault.
func (t *Tracker) SetMoisture(m int) {
	t.mu.Lock()
	t.snap.Moisture = m
	t.snap.HasMoisture = true
	t.snap.Fault = ""
	t.snap.FaultTime = time.Time{}
	t.mu.Unlock()
}

// SetBright records the last photo input level.
func (t *Tracker) SetBright(bright bool) {
	t.mu.Lock()
	t.snap.Bright = bright
	t.mu.Unlock()
}

// SetFault records the most recent fault. The first fault time is kept until
// SetMoisture clears it.
func (t *Tracker) SetFault(err error, at time.Time) {
	t.mu.Lock()
	t.snap.Fault = err.Error()
	if t.snap.FaultTime.IsZero() {
		t.snap.FaultTime = at
	}
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// CheckHeartbeat returns a snapshot if the interval has elapsed since the last
// heartbeat (or startup). Returns false if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (t *Tracker) CheckHeartbeat(now time.Time, interval time.Duration) (Snapshot, bool) {
	if interval <= 0 {
		return Snapshot{}, false
	}

	t.mu.Lock()
	if now.Sub(t.lastHeartbeat) < interval {
		t.mu.Unlock()
		return Snapshot{}, false
	}
	t.lastHeartbeat = now
	s := t.snap
	t.mu.Unlock()

	s.Now = now
	return s, true
}
