package controller

import (
	"time"

	"github.com/victorjacobs/go-smartcomfort/comfort"
)

// ReadingSource supplies the latest temperature/humidity pair. Current
// returns false when no usable reading is available.
type ReadingSource interface {
	Current() (comfort.Reading, bool)
	EntityIDs() (temperature string, humidity string)
}

// ClimateDevice is the underlying HVAC unit. ApplyMode is fire-and-forget:
// the device reports the mode it actually runs through ReportedMode, which
// is surfaced for display but never fed back into decisions.
type ClimateDevice interface {
	EntityID() string
	Available() bool
	SupportedModes() []comfort.Mode
	ApplyMode(mode comfort.Mode) error
	ReportedMode() string
}

// FaultSink receives recoverable fault signals for user-facing surfacing.
type FaultSink interface {
	Raise(fault error)
}

// Snapshot is one cycle's read-only output, recomputed every evaluation.
type Snapshot struct {
	DewPoint            float64      `json:"dew_point"`
	FeelsLike           float64      `json:"feels_like"`
	ComfortZone         string       `json:"comfort_zone"`
	FeelsLikeDifference float64      `json:"feels_like_difference"`
	HumidityPriority    bool         `json:"humidity_priority"`
	DesiredMode         comfort.Mode `json:"desired_mode"`
	UnderlyingHvacMode  string       `json:"underlying_hvac_mode"`
	TargetFeelsLike     float64      `json:"target_feels_like"`
	TargetHumidity      float64      `json:"target_humidity"`
	Reason              string       `json:"reason"`
	EvaluatedAt         time.Time    `json:"evaluated_at"`
}
