package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Sprinkler     string     `json:"sprinkler"`
	RedLight      string     `json:"red_light"`
	Moisture      *int       `json:"moisture,omitempty"`
	Bright        bool       `json:"bright"`
	LastAction    string     `json:"last_action,omitempty"`
	Fault         *FaultJSON `json:"fault,omitempty"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	Counts        CountsJSON `json:"counts"`
	Config        ConfigJSON `json:"config"`
}

// FaultJSON describes the current sensor fault.
type FaultJSON struct {
	Message string `json:"message"`
	Since   string `json:"since"`
}

// CountsJSON is the JSON representation of command and fault counts.
type CountsJSON struct {
	SprinklerOn  int `json:"sprinkler_on"`
	SprinklerOff int `json:"sprinkler_off"`
	LightOn      int `json:"light_on"`
	LightOff     int `json:"light_off"`
	RangeFaults  int `json:"range_faults"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs       int64  `json:"poll_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	PinSprinkler int    `json:"pin_sprinkler"`
	PinPhoto     int    `json:"pin_photo"`
	PinLED       int    `json:"pin_led"`
	MoistureBus  string `json:"moisture_bus"`
	MoistureAddr uint16 `json:"moisture_addr"`
	MirrorLight  bool   `json:"mirror_light"`
	MinValid     int    `json:"min_valid"`
	MaxValid     int    `json:"max_valid"`
	LowWater     int    `json:"low_water"`
	HighWater    int    `json:"high_water"`
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Sprinkler:     onOff(snap.SprinklerOn),
		RedLight:      onOff(snap.RedLightOn),
		Bright:        snap.Bright,
		LastAction:    string(snap.LastAction),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			SprinklerOn:  snap.Counts.SprinklerOn,
			SprinklerOff: snap.Counts.SprinklerOff,
			LightOn:      snap.Counts.LightOn,
			LightOff:     snap.Counts.LightOff,
			RangeFaults:  snap.Counts.RangeFaults,
		},
		Config: ConfigJSON{
			PollMs:       snap.Config.PollMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			PinSprinkler: snap.Config.PinSprinkler,
			PinPhoto:     snap.Config.PinPhoto,
			PinLED:       snap.Config.PinLED,
			MoistureBus:  snap.Config.MoistureBus,
			MoistureAddr: snap.Config.MoistureAddr,
			MirrorLight:  snap.Config.MirrorLight,
			MinValid:     snap.Config.Thresholds.MinValid,
			MaxValid:     snap.Config.Thresholds.MaxValid,
			LowWater:     snap.Config.Thresholds.LowWater,
			HighWater:    snap.Config.Thresholds.HighWater,
		},
	}

	if snap.HasMoisture {
		m := snap.Moisture
		inner.Moisture = &m
	}
	if snap.Fault != "" {
		inner.Fault = &FaultJSON{
			Message: snap.Fault,
			Since:   snap.FaultTime.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status (no event).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns compact JSON for a lifecycle log line.
func FormatStatusEvent(snap Snapshot, event string) []byte {
	inner := buildInner(snap)
	inner.Event = event

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
