package comfort

import (
	"fmt"
	"math"
	"time"
)

// Mode is a desired HVAC operating mode. The values match Home Assistant's
// climate mode strings so they can go straight onto a command topic.
type Mode string

const (
	ModeOff     Mode = "off"
	ModeDry     Mode = "dry"
	ModeCool    Mode = "cool"
	ModeFanOnly Mode = "fan_only"
)

// urgency orders modes for the anti-short-cycle rule: active correction
// beats circulation beats off.
func (m Mode) urgency() int {
	switch m {
	case ModeCool, ModeDry:
		return 2
	case ModeFanOnly:
		return 1
	default:
		return 0
	}
}

type Reading struct {
	Temperature float64 // °F
	Humidity    float64 // %, 0-100
	Taken       time.Time
}

// Validate rejects readings the decision engine must never see.
func (r Reading) Validate() error {
	if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
		return fmt.Errorf("temperature %v: %w", r.Temperature, ErrInvalidReading)
	}
	if math.IsNaN(r.Humidity) || r.Humidity < 0 || r.Humidity > 100 {
		return fmt.Errorf("humidity %v: %w", r.Humidity, ErrInvalidReading)
	}
	return nil
}

type Targets struct {
	FeelsLike float64 // °F
	Humidity  float64 // %, constrained to 30-70 at the config boundary
}

// Metrics is one cycle's derived output. It carries no identity across
// cycles; the engine keeps only what hysteresis needs.
type Metrics struct {
	DewPoint            float64
	FeelsLike           float64
	Zone                Zone
	FeelsLikeDifference float64
}
