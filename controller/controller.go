package controller

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/victorjacobs/go-smartcomfort/comfort"
)

const (
	minTargetFeelsLike = 65
	maxTargetFeelsLike = 85
)

// Controller runs the evaluation cycle: validate the reading, derive the
// comfort metrics, run the decision engine and forward the desired mode to
// the climate device. It is the only component with side effects.
type Controller struct {
	sensor ReadingSource
	device ClimateDevice
	faults FaultSink
	engine *comfort.Engine

	mu         sync.Mutex
	targets    comfort.Targets
	snapshot   *Snapshot
	commanded  *comfort.Mode
	onSnapshot func(Snapshot)

	triggers chan struct{}
}

func New(sensor ReadingSource, device ClimateDevice, faults FaultSink, targets comfort.Targets, opts comfort.EngineOptions) (*Controller, error) {
	if targets.Humidity < 30 || targets.Humidity > 70 {
		return nil, fmt.Errorf("target %v%%: %w", targets.Humidity, comfort.ErrHumidityTargetInvalid)
	}

	return &Controller{
		sensor:   sensor,
		device:   device,
		faults:   faults,
		engine:   comfort.NewEngine(opts),
		targets:  targets,
		triggers: make(chan struct{}, 1),
	}, nil
}

// OnSnapshot registers a callback invoked after every completed cycle, used
// to push sensor states out to Home Assistant. Call before Run.
func (c *Controller) OnSnapshot(fn func(Snapshot)) {
	c.onSnapshot = fn
}

// Trigger requests an evaluation cycle. Triggers arriving while a cycle is
// in flight coalesce into a single pending one.
func (c *Controller) Trigger() {
	select {
	case c.triggers <- struct{}{}:
	default:
	}
}

// Run evaluates on every trigger and on a periodic timer until the context
// is cancelled. Cycles never overlap; a cycle that has started always runs
// to completion.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Evaluate()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.triggers:
			c.Evaluate()
		case <-ticker.C:
			c.Evaluate()
		}
	}
}

// Evaluate runs a single cycle to completion.
func (c *Controller) Evaluate() {
	targets := c.Targets()
	temperatureID, humidityID := c.sensor.EntityIDs()

	reading, ok := c.sensor.Current()
	if !ok {
		c.faults.Raise(comfort.SensorInvalid{
			SensorType: "temperature",
			EntityID:   temperatureID,
			Value:      "unavailable",
		})
		return
	}

	if math.IsNaN(reading.Temperature) || math.IsInf(reading.Temperature, 0) {
		c.faults.Raise(comfort.SensorInvalid{
			SensorType: "temperature",
			EntityID:   temperatureID,
			Value:      fmt.Sprintf("%v", reading.Temperature),
		})
		return
	}

	if math.IsNaN(reading.Humidity) || reading.Humidity < 0 || reading.Humidity > 100 {
		c.faults.Raise(comfort.SensorInvalid{
			SensorType: "humidity",
			EntityID:   humidityID,
			Value:      fmt.Sprintf("%v", reading.Humidity),
		})
		return
	}

	metrics, err := comfort.ComputeMetrics(reading, targets)
	if err != nil {
		c.faults.Raise(comfort.SensorInvalid{
			SensorType: "temperature",
			EntityID:   temperatureID,
			Value:      fmt.Sprintf("%v", reading.Temperature),
		})
		return
	}

	if reading.Humidity > targets.Humidity {
		c.faults.Raise(comfort.HumidityTargetExceeded{
			CurrentHumidity: reading.Humidity,
			TargetHumidity:  targets.Humidity,
		})
	}

	var decision comfort.Decision
	if c.device.Available() {
		decision = c.engine.Decide(metrics, reading, targets)
	} else {
		// Metrics are still computed for sensor display, but never leave an
		// AC running on an unreachable device.
		c.faults.Raise(comfort.ClimateUnavailable{EntityID: c.device.EntityID()})
		decision = comfort.Decision{Mode: comfort.ModeOff, Reason: "climate device unavailable"}
	}

	c.apply(decision.Mode)

	snapshot := Snapshot{
		DewPoint:            metrics.DewPoint,
		FeelsLike:           metrics.FeelsLike,
		ComfortZone:         metrics.Zone.String(),
		FeelsLikeDifference: metrics.FeelsLikeDifference,
		HumidityPriority:    decision.HumidityPriority,
		DesiredMode:         decision.Mode,
		UnderlyingHvacMode:  c.device.ReportedMode(),
		TargetFeelsLike:     targets.FeelsLike,
		TargetHumidity:      targets.Humidity,
		Reason:              decision.Reason,
		EvaluatedAt:         time.Now(),
	}

	c.mu.Lock()
	c.snapshot = &snapshot
	c.mu.Unlock()

	log.Printf("%v - feels like %.1f°F (target %.1f°F), humidity %.1f%% (target %.1f%%), dew point %.1f°F",
		decision.Reason, metrics.FeelsLike, targets.FeelsLike, reading.Humidity, targets.Humidity, metrics.DewPoint)

	if c.onSnapshot != nil {
		c.onSnapshot(snapshot)
	}
}

// apply forwards the desired mode to the device when it changed. The first
// cycle always commands, since the device may have been left running. An
// apply failure is surfaced but not retried; the engine's state already
// reflects the decision so the next cycle does not thrash.
func (c *Controller) apply(mode comfort.Mode) {
	if c.commanded != nil && *c.commanded == mode {
		return
	}
	c.commanded = &mode

	if err := c.device.ApplyMode(mode); err != nil {
		c.faults.Raise(comfort.ModeApplyFailed{Mode: mode, Cause: err})
	}
}

// Snapshot returns the latest cycle output, or false before the first
// completed cycle.
func (c *Controller) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

func (c *Controller) Targets() comfort.Targets {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.targets
}

// SetTargetFeelsLike updates the feels-like target from a user action,
// clamped to the supported range, and schedules a cycle.
func (c *Controller) SetTargetFeelsLike(value float64) {
	if math.IsNaN(value) {
		return
	}
	value = math.Min(math.Max(value, minTargetFeelsLike), maxTargetFeelsLike)

	c.mu.Lock()
	c.targets.FeelsLike = value
	c.mu.Unlock()

	log.Printf("Target feels-like set to %.1f°F", value)
	c.Trigger()
}

// LogSink is the default fault sink; it logs and drops the fault.
type LogSink struct{}

func (LogSink) Raise(fault error) {
	log.Printf("Fault: %v", fault)
}
