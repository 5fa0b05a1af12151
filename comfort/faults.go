package comfort

import (
	"errors"
	"fmt"
)

// ErrHumidityTargetInvalid rejects humidity targets outside 30-70% at the
// configuration boundary; the engine assumes validated targets.
var ErrHumidityTargetInvalid = errors.New("humidity target outside 30-70%")

// Faults are recoverable conditions the engine surfaces for a collaborator
// to present to the user. They implement error but are never fatal.

type SensorInvalid struct {
	SensorType string
	EntityID   string
	Value      string
}

func (f SensorInvalid) Error() string {
	return fmt.Sprintf("%v sensor %v reported invalid value %q", f.SensorType, f.EntityID, f.Value)
}

type ClimateUnavailable struct {
	EntityID string
}

func (f ClimateUnavailable) Error() string {
	return fmt.Sprintf("climate device %v is unavailable", f.EntityID)
}

type HumidityTargetExceeded struct {
	CurrentHumidity float64
	TargetHumidity  float64
}

func (f HumidityTargetExceeded) Error() string {
	return fmt.Sprintf("humidity %.1f%% exceeds target %.1f%%", f.CurrentHumidity, f.TargetHumidity)
}

type ModeApplyFailed struct {
	Mode  Mode
	Cause error
}

func (f ModeApplyFailed) Error() string {
	return fmt.Sprintf("applying mode %v failed: %v", f.Mode, f.Cause)
}

func (f ModeApplyFailed) Unwrap() error {
	return f.Cause
}
