package comfort

import (
	"fmt"
	"time"
)

const (
	// DefaultFeelsLikeTolerance is the dead band around the feels-like target.
	DefaultFeelsLikeTolerance = 1.0
	// DefaultHumidityMargin is how far (°F dew point) the air may exceed the
	// target humidity's equivalent dew point before drying kicks in.
	DefaultHumidityMargin = 2.0
	// DefaultDwell is the minimum time a mode is held before a non-urgent
	// transition is allowed, to protect the compressor from short-cycling.
	DefaultDwell = 5 * time.Minute

	// coolOverride: when feels-like exceeds target by this much while
	// humidity is also over target, cooling wins over drying since the AC
	// removes moisture too.
	coolOverride = 3.0
)

type EngineOptions struct {
	FeelsLikeTolerance float64
	HumidityMargin     float64
	Dwell              time.Duration
}

// Engine is the mode decision state machine. It owns the only state that
// survives across cycles: the previously decided mode and when it was
// entered.
type Engine struct {
	opts EngineOptions
	now  func() time.Time

	previousMode   Mode
	lastTransition time.Time
}

// Decision is one cycle's outcome.
type Decision struct {
	Mode             Mode
	HumidityPriority bool
	Reason           string
}

func NewEngine(opts EngineOptions) *Engine {
	if opts.FeelsLikeTolerance == 0 {
		opts.FeelsLikeTolerance = DefaultFeelsLikeTolerance
	}
	if opts.HumidityMargin == 0 {
		opts.HumidityMargin = DefaultHumidityMargin
	}
	if opts.Dwell == 0 {
		opts.Dwell = DefaultDwell
	}

	return &Engine{
		opts:         opts,
		now:          time.Now,
		previousMode: ModeOff,
	}
}

// ComputeMetrics derives one cycle's comfort metrics from a validated
// reading. Deterministic in the reading and targets.
func ComputeMetrics(reading Reading, targets Targets) (Metrics, error) {
	dewPoint, err := DewPoint(reading.Temperature, reading.Humidity)
	if err != nil {
		return Metrics{}, err
	}

	feelsLike, err := FeelsLike(reading.Temperature, reading.Humidity)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		DewPoint:            dewPoint,
		FeelsLike:           feelsLike,
		Zone:                Classify(dewPoint),
		FeelsLikeDifference: feelsLike - targets.FeelsLike,
	}, nil
}

// Decide runs the humidity-first decision policy and the anti-short-cycle
// rule, then commits any accepted transition. The reading must already be
// validated.
func (e *Engine) Decide(metrics Metrics, reading Reading, targets Targets) Decision {
	// The dew point the air would have at the target humidity and current
	// temperature. Inputs are validated upstream, so this cannot fail.
	targetDewPoint, _ := DewPoint(reading.Temperature, targets.Humidity)

	var desired Mode
	var reason string
	var humidityPriority bool

	switch {
	case metrics.DewPoint >= targetDewPoint+e.opts.HumidityMargin:
		humidityPriority = true
		if metrics.FeelsLike >= targets.FeelsLike+coolOverride {
			desired = ModeCool
			reason = fmt.Sprintf("humidity over target and feels like %.1f°F, cooling", metrics.FeelsLike)
		} else {
			desired = ModeDry
			reason = fmt.Sprintf("dew point %.1f°F over target equivalent %.1f°F, drying", metrics.DewPoint, targetDewPoint)
		}
	case metrics.FeelsLike > targets.FeelsLike+e.opts.FeelsLikeTolerance:
		desired = ModeCool
		reason = fmt.Sprintf("feels like %.1f°F over target %.1f°F, cooling", metrics.FeelsLike, targets.FeelsLike)
	case metrics.FeelsLike < targets.FeelsLike-e.opts.FeelsLikeTolerance &&
		(e.previousMode == ModeCool || e.previousMode == ModeDry):
		desired = ModeOff
		reason = fmt.Sprintf("feels like %.1f°F under target %.1f°F, correcting overshoot", metrics.FeelsLike, targets.FeelsLike)
	default:
		if metrics.Zone >= ZoneSlightlyHumid {
			desired = ModeFanOnly
			reason = "within tolerance but air is humid, circulating"
		} else {
			desired = ModeOff
			reason = "within tolerance"
		}
	}

	if desired != e.previousMode {
		held := e.now().Sub(e.lastTransition) < e.opts.Dwell
		if held && desired.urgency() <= e.previousMode.urgency() {
			reason = fmt.Sprintf("holding %v, dwell not elapsed (wanted %v)", e.previousMode, desired)
			desired = e.previousMode
		} else {
			e.previousMode = desired
			e.lastTransition = e.now()
		}
	}

	return Decision{
		Mode:             desired,
		HumidityPriority: humidityPriority,
		Reason:           reason,
	}
}

// PreviousMode returns the last decided mode. After an apply failure this
// still reflects the decision, so the next cycle does not immediately
// re-decide and thrash.
func (e *Engine) PreviousMode() Mode {
	return e.previousMode
}

// Reset returns the machine to off with a free next transition. Used when
// the controlled climate entity changes and history is no longer
// comparable.
func (e *Engine) Reset() {
	e.previousMode = ModeOff
	e.lastTransition = time.Time{}
}
