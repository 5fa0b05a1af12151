package comfort

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidReading marks sensor input the calculator refuses to work on.
var ErrInvalidReading = errors.New("invalid sensor reading")

// Magnus approximation constants, valid for -45°C to +60°C.
const (
	magnusA = 17.62
	magnusB = 243.12
)

func fahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// DewPoint computes the dew point in °F from temperature (°F) and relative
// humidity (%) using the Magnus formula. At 100% humidity the dew point
// equals the temperature.
func DewPoint(tempF, humidity float64) (float64, error) {
	if err := validateInput(tempF, humidity); err != nil {
		return 0, err
	}
	if humidity == 0 {
		// ln(0) is undefined; fully dry air has no meaningful dew point,
		// report the bottom of the scale instead.
		return -math.MaxFloat64, nil
	}

	tempC := fahrenheitToCelsius(tempF)
	gamma := math.Log(humidity/100) + magnusA*tempC/(magnusB+tempC)
	dewPointC := magnusB * gamma / (magnusA - gamma)

	return celsiusToFahrenheit(dewPointC), nil
}

// FeelsLike computes the perceived temperature in °F. In hot, humid
// conditions (≥80°F, ≥40% RH) this is the Rothfusz heat index. Below that
// regime the raw temperature is adjusted by a dew-point offset: humid air
// reads warmer, very dry air slightly cooler. The offset is non-decreasing
// in dew point, which keeps feels-like monotone in humidity.
func FeelsLike(tempF, humidity float64) (float64, error) {
	if err := validateInput(tempF, humidity); err != nil {
		return 0, err
	}

	dewPoint, err := DewPoint(tempF, humidity)
	if err != nil {
		return 0, err
	}
	adjusted := tempF + dewPointOffset(dewPoint)

	if tempF >= 80 && humidity >= 40 {
		// Rothfusz dips fractionally below the adjusted temperature right at
		// the regime boundary; never report cooler than the dry estimate.
		return math.Max(heatIndex(tempF, humidity), adjusted), nil
	}

	return adjusted, nil
}

func dewPointOffset(dewPoint float64) float64 {
	switch {
	case dewPoint > 65:
		return (dewPoint - 55) * 0.4
	case dewPoint > 55:
		return (dewPoint - 55) * 0.2
	case dewPoint < 40:
		return -math.Min(2, (40-dewPoint)*0.1)
	default:
		return 0
	}
}

// heatIndex is the NWS Rothfusz regression.
func heatIndex(tempF, humidity float64) float64 {
	t := tempF
	h := humidity

	return -42.379 +
		2.04901523*t +
		10.14333127*h -
		0.22475541*t*h -
		0.00683783*t*t -
		0.05481717*h*h +
		0.00122874*t*t*h +
		0.00085282*t*h*h -
		0.00000199*t*t*h*h
}

func validateInput(tempF, humidity float64) error {
	if math.IsNaN(tempF) || math.IsInf(tempF, 0) {
		return fmt.Errorf("temperature %v: %w", tempF, ErrInvalidReading)
	}
	if math.IsNaN(humidity) || humidity < 0 || humidity > 100 {
		return fmt.Errorf("humidity %v: %w", humidity, ErrInvalidReading)
	}
	return nil
}
