// Package playability turns an hourly forecast into golf playability
// decisions: a status verdict for a chosen tee time, a best tee time per day,
// and a coarse day-level verdict. Everything here is pure; callers supply the
// forecast, region code and unit system explicitly on every call.
package playability

import (
	"strings"
	"time"
)

// ForecastSlot is one hourly observation in canonical units: °C, mph, mm.
// Missing numeric fields are zero. WindGust of zero means no gust data.
type ForecastSlot struct {
	DT        int64     `json:"dt"`
	Temp      float64   `json:"temp"`
	FeelsLike float64   `json:"feelsLike"`
	WindSpeed float64   `json:"windSpeed"`
	WindGust  float64   `json:"windGust"`
	WindDeg   float64   `json:"windDeg"`
	Pop       float64   `json:"pop"`
	RainMm    float64   `json:"rainMm"`
	Weather   Condition `json:"weather"`
}

// DaylightWindow is one calendar day's sunrise and sunset, epoch seconds.
type DaylightWindow struct {
	Sunrise int64 `json:"sunrise"`
	Sunset  int64 `json:"sunset"`
}

func (d DaylightWindow) Contains(dt int64) bool {
	return dt >= d.Sunrise && dt <= d.Sunset
}

// Forecast is a normalized multi-day forecast. Hourly is strictly increasing
// by DT.
type Forecast struct {
	Hourly         []ForecastSlot   `json:"hourly"`
	Days           []DaylightWindow `json:"days"`
	TimezoneOffset int              `json:"timezoneOffset"`
}

// RoundType is the kind of round being played.
type RoundType string

const (
	RoundNine     RoundType = "9"
	RoundEighteen RoundType = "18"
	RoundSociety  RoundType = "society"
)

// ParseRoundType accepts "9", "18" or "society". Empty means 18 holes.
func ParseRoundType(s string) (RoundType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "9":
		return RoundNine, true
	case "", "18":
		return RoundEighteen, true
	case "society":
		return RoundSociety, true
	}
	return RoundEighteen, false
}

// DurationHours is the expected length of the round.
func (r RoundType) DurationHours() float64 {
	if r == RoundNine {
		return 2
	}
	return 4
}

// RoundWindow is the span [TeeOff, TeeOff+DurationHours) of a round.
type RoundWindow struct {
	TeeOff        int64   `json:"teeOff"`
	DurationHours float64 `json:"durationHours"`
}

func NewRoundWindow(teeOff time.Time, round RoundType) RoundWindow {
	return RoundWindow{TeeOff: teeOff.Unix(), DurationHours: round.DurationHours()}
}

func (r RoundWindow) End() int64 {
	return r.TeeOff + int64(r.DurationHours*3600)
}

func (r RoundWindow) Contains(dt int64) bool {
	return dt >= r.TeeOff && dt < r.End()
}

// Metrics are the aggregated window measurements, in canonical units.
type Metrics struct {
	MaxPrecipProb float64 `json:"maxPrecipProb"`
	TotalPrecipMm float64 `json:"totalPrecipMm"`
	AvgWind       float64 `json:"avgWind"`
	MaxGust       float64 `json:"maxGust"`
	AvgTemp       float64 `json:"avgTemp"`
	FeelsLike     float64 `json:"feelsLike"`
	WindChillC    float64 `json:"windChillC"`
}

// Decision is the engine's answer for one round window.
type Decision struct {
	Status      Status   `json:"status"`
	StatusLabel string   `json:"statusLabel"`
	Icon        string   `json:"icon"`
	Label       string   `json:"label"`
	Message     string   `json:"message"`
	Score       int      `json:"score"`
	Metrics     Metrics  `json:"metrics"`
	Reasons     []string `json:"reasons"`
}
