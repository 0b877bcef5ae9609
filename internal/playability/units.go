package playability

import (
	"fmt"
	"strings"
)

// UnitSystem selects how values are presented to the user. Scoring always
// runs on canonical units (°C, mph, mm); the unit system is passed explicitly
// on every call and never cached.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

const mphPerMs = 2.2369362920544

// ParseUnitSystem accepts "metric" or "imperial" (case-insensitive). Empty
// input means metric.
func ParseUnitSystem(s string) (UnitSystem, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric":
		return Metric, true
	case "imperial":
		return Imperial, true
	}
	return Metric, false
}

func MsToMph(ms float64) float64 { return ms * mphPerMs }
func MphToMs(mph float64) float64 { return mph / mphPerMs }
func CToF(c float64) float64      { return c*9/5 + 32 }
func FToC(f float64) float64      { return (f - 32) * 5 / 9 }

// Temp converts a canonical °C value into the display unit.
func (u UnitSystem) Temp(c float64) float64 {
	if u == Imperial {
		return CToF(c)
	}
	return c
}

// Wind converts canonical mph into the display unit (m/s for metric, the
// provider's native metric wind unit).
func (u UnitSystem) Wind(mph float64) float64 {
	if u == Imperial {
		return mph
	}
	return MphToMs(mph)
}

func (u UnitSystem) FormatTemp(c float64) string {
	if u == Imperial {
		return fmt.Sprintf("%.0f°F", CToF(c))
	}
	return fmt.Sprintf("%.1f°C", c)
}

func (u UnitSystem) FormatWind(mph float64) string {
	if u == Imperial {
		return fmt.Sprintf("%.0f mph", mph)
	}
	return fmt.Sprintf("%.1f m/s", MphToMs(mph))
}

func formatRainRate(mmHr float64) string {
	return fmt.Sprintf("%.1f mm/hr", mmHr)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p*100)
}
