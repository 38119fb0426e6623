package settings

import "fmt"

// Unit is a unit of measure for numeric settings.
//
// Units are partitioned into closed families that never cross-convert:
// temperature, pressure, rotational speed, and time. Conversion between
// units of different families is always unsupported.
type Unit string

// Known units of measure.
const (
	UnitCelsius    Unit = "°C"
	UnitFahrenheit Unit = "°F"
	UnitBar        Unit = "bar"
	UnitPSI        Unit = "psi"
	UnitRPM        Unit = "rpm"
	UnitRPS        Unit = "rps"
	UnitSecond     Unit = "s"
	UnitMinute     Unit = "min"
)

// barPerPSI is the exact conversion factor between bar and psi.
const barPerPSI = 14.5037738007218

// AllUnits returns every recognised unit of measure.
func AllUnits() []Unit {
	return []Unit{
		UnitCelsius, UnitFahrenheit,
		UnitBar, UnitPSI,
		UnitRPM, UnitRPS,
		UnitSecond, UnitMinute,
	}
}

// validUnits is built once at startup for O(1) parse lookups.
var validUnits map[Unit]struct{}

func init() {
	validUnits = make(map[Unit]struct{}, len(AllUnits()))
	for _, u := range AllUnits() {
		validUnits[u] = struct{}{}
	}
}

// ParseUnit converts a wire string into a Unit.
//
// The request layer uses this to reject unknown unit strings before a
// batch reaches the validator; the validator itself only ever receives
// parsed units or none.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := validUnits[u]; ok {
		return u, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// Convert translates value from one unit of measure to another.
//
// Same-unit conversion is an identity and is always supported, including
// for units outside the known families. Conversions within a family use
// the family's fixed formula. Any other pairing reports ok=false.
//
// Convert is pure: no side effects, safe for concurrent use.
func Convert(value float64, from, to Unit) (converted float64, ok bool) {
	if from == to {
		return value, true
	}

	switch {
	// Temperature
	case from == UnitCelsius && to == UnitFahrenheit:
		return value*9/5 + 32, true
	case from == UnitFahrenheit && to == UnitCelsius:
		return (value - 32) * 5 / 9, true

	// Pressure
	case from == UnitBar && to == UnitPSI:
		return value * barPerPSI, true
	case from == UnitPSI && to == UnitBar:
		return value / barPerPSI, true

	// Rotational speed
	case from == UnitRPM && to == UnitRPS:
		return value / 60, true
	case from == UnitRPS && to == UnitRPM:
		return value * 60, true

	// Time
	case from == UnitSecond && to == UnitMinute:
		return value / 60, true
	case from == UnitMinute && to == UnitSecond:
		return value * 60, true
	}

	return 0, false
}
