package controller

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/victorjacobs/go-smartcomfort/comfort"
)

type fakeSensor struct {
	reading   comfort.Reading
	available bool
}

func (f *fakeSensor) Current() (comfort.Reading, bool) {
	return f.reading, f.available
}

func (f *fakeSensor) EntityIDs() (string, string) {
	return "sensor.bedroom_temperature", "sensor.bedroom_humidity"
}

type fakeDevice struct {
	available bool
	reported  string
	applied   []comfort.Mode
	applyErr  error
}

func (f *fakeDevice) EntityID() string {
	return "climate.bedroom_ac"
}

func (f *fakeDevice) Available() bool {
	return f.available
}

func (f *fakeDevice) SupportedModes() []comfort.Mode {
	return []comfort.Mode{comfort.ModeOff, comfort.ModeDry, comfort.ModeCool, comfort.ModeFanOnly}
}

func (f *fakeDevice) ApplyMode(mode comfort.Mode) error {
	f.applied = append(f.applied, mode)
	return f.applyErr
}

func (f *fakeDevice) ReportedMode() string {
	return f.reported
}

type fakeSink struct {
	faults []error
}

func (f *fakeSink) Raise(fault error) {
	f.faults = append(f.faults, fault)
}

func (f *fakeSink) sensorInvalid() (comfort.SensorInvalid, bool) {
	for _, fault := range f.faults {
		if si, ok := fault.(comfort.SensorInvalid); ok {
			return si, true
		}
	}
	return comfort.SensorInvalid{}, false
}

func newTestController(t *testing.T, sensor *fakeSensor, device *fakeDevice, sink *fakeSink) *Controller {
	t.Helper()

	c, err := New(sensor, device, sink, comfort.Targets{FeelsLike: 72, Humidity: 50}, comfort.EngineOptions{})
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidHumidityTarget(t *testing.T) {
	_, err := New(&fakeSensor{}, &fakeDevice{}, &fakeSink{}, comfort.Targets{FeelsLike: 72, Humidity: 20}, comfort.EngineOptions{})
	require.ErrorIs(t, err, comfort.ErrHumidityTargetInvalid)

	_, err = New(&fakeSensor{}, &fakeDevice{}, &fakeSink{}, comfort.Targets{FeelsLike: 72, Humidity: 75}, comfort.EngineOptions{})
	require.ErrorIs(t, err, comfort.ErrHumidityTargetInvalid)
}

func TestEvaluateCommandsCoolWhenHot(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 78, Humidity: 35}, available: true}
	device := &fakeDevice{available: true, reported: "off"}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()

	require.Equal(t, []comfort.Mode{comfort.ModeCool}, device.applied)

	snapshot, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, comfort.ModeCool, snapshot.DesiredMode)
	assert.False(t, snapshot.HumidityPriority)
	assert.Equal(t, "Comfortable", snapshot.ComfortZone)
	assert.Equal(t, "off", snapshot.UnderlyingHvacMode)
	assert.InDelta(t, 48, snapshot.DewPoint, 1)
}

func TestEvaluateCommandsDryOnHumidityPriority(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 73, Humidity: 70}, available: true}
	device := &fakeDevice{available: true}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()

	require.Equal(t, []comfort.Mode{comfort.ModeDry}, device.applied)

	snapshot, _ := c.Snapshot()
	assert.True(t, snapshot.HumidityPriority)

	// Humidity over target also raises the advisory fault.
	var exceeded bool
	for _, fault := range sink.faults {
		if _, ok := fault.(comfort.HumidityTargetExceeded); ok {
			exceeded = true
		}
	}
	assert.True(t, exceeded)
}

func TestEvaluateMissingReadingPreservesState(t *testing.T) {
	sensor := &fakeSensor{available: false}
	device := &fakeDevice{available: true}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()

	fault, ok := sink.sensorInvalid()
	require.True(t, ok)
	assert.Equal(t, "unavailable", fault.Value)

	assert.Empty(t, device.applied)
	_, ok = c.Snapshot()
	assert.False(t, ok)
	assert.Equal(t, comfort.ModeOff, c.engine.PreviousMode())
}

func TestEvaluateInvalidHumidityRaisesFault(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 75, Humidity: 130}, available: true}
	device := &fakeDevice{available: true}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()

	fault, ok := sink.sensorInvalid()
	require.True(t, ok)
	assert.Equal(t, "humidity", fault.SensorType)
	assert.Equal(t, "sensor.bedroom_humidity", fault.EntityID)
	assert.Empty(t, device.applied)
}

func TestEvaluateNonFiniteTemperatureRaisesFault(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: math.NaN(), Humidity: 50}, available: true}
	device := &fakeDevice{available: true}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()

	fault, ok := sink.sensorInvalid()
	require.True(t, ok)
	assert.Equal(t, "temperature", fault.SensorType)
	assert.Empty(t, device.applied)
}

func TestEvaluateUnavailableDeviceForcesOff(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 78, Humidity: 70}, available: true}
	device := &fakeDevice{available: false}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()

	var unavailable bool
	for _, fault := range sink.faults {
		if _, ok := fault.(comfort.ClimateUnavailable); ok {
			unavailable = true
		}
	}
	assert.True(t, unavailable)

	// Metrics still computed for display, desired mode forced off. The very
	// first cycle commands off explicitly in case the device was left on.
	snapshot, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, comfort.ModeOff, snapshot.DesiredMode)
	assert.Greater(t, snapshot.DewPoint, 60.0)
	assert.Equal(t, []comfort.Mode{comfort.ModeOff}, device.applied)
}

func TestEvaluateApplyFailureSurfacedNotRetried(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 78, Humidity: 35}, available: true}
	device := &fakeDevice{available: true, applyErr: errors.New("device rejected mode")}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()
	c.Evaluate()

	// Commanded once, not retried on the second cycle.
	assert.Equal(t, []comfort.Mode{comfort.ModeCool}, device.applied)

	var failed bool
	for _, fault := range sink.faults {
		if _, ok := fault.(comfort.ModeApplyFailed); ok {
			failed = true
		}
	}
	assert.True(t, failed)
	assert.Equal(t, comfort.ModeCool, c.engine.PreviousMode())
}

func TestEvaluateCommandsOnlyOnChange(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 78, Humidity: 35}, available: true}
	device := &fakeDevice{available: true}
	sink := &fakeSink{}
	c := newTestController(t, sensor, device, sink)

	c.Evaluate()
	c.Evaluate()
	c.Evaluate()

	assert.Equal(t, []comfort.Mode{comfort.ModeCool}, device.applied)
}

func TestSetTargetFeelsLikeClampsAndTriggers(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 72, Humidity: 40}, available: true}
	c := newTestController(t, sensor, &fakeDevice{available: true}, &fakeSink{})

	c.SetTargetFeelsLike(90)
	assert.Equal(t, 85.0, c.Targets().FeelsLike)

	c.SetTargetFeelsLike(40)
	assert.Equal(t, 65.0, c.Targets().FeelsLike)

	c.SetTargetFeelsLike(math.NaN())
	assert.Equal(t, 65.0, c.Targets().FeelsLike)

	select {
	case <-c.triggers:
	default:
		t.Fatal("expected a pending evaluation trigger")
	}
}

func TestTriggerCoalesces(t *testing.T) {
	c := newTestController(t, &fakeSensor{}, &fakeDevice{}, &fakeSink{})

	c.Trigger()
	c.Trigger()
	c.Trigger()

	<-c.triggers
	select {
	case <-c.triggers:
		t.Fatal("triggers should coalesce to one pending cycle")
	default:
	}
}

func TestOnSnapshotCallback(t *testing.T) {
	sensor := &fakeSensor{reading: comfort.Reading{Temperature: 78, Humidity: 35}, available: true}
	c := newTestController(t, sensor, &fakeDevice{available: true}, &fakeSink{})

	var got []Snapshot
	c.OnSnapshot(func(s Snapshot) { got = append(got, s) })

	c.Evaluate()

	require.Len(t, got, 1)
	assert.Equal(t, comfort.ModeCool, got[0].DesiredMode)
}
