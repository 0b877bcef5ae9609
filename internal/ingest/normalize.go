package ingest

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/lox/fairwayforecast/internal/metrics"
	"github.com/lox/fairwayforecast/internal/playability"
)

// OneCallResponse is the subset of the One Call 3.0 payload the engine uses.
// Pointer fields distinguish absent values from zero.
type OneCallResponse struct {
	Lat            float64       `json:"lat"`
	Lon            float64       `json:"lon"`
	Timezone       string        `json:"timezone"`
	TimezoneOffset int           `json:"timezone_offset"`
	Hourly         []OneCallHour `json:"hourly"`
	Daily          []OneCallDay  `json:"daily"`
}

type OneCallHour struct {
	DT        int64            `json:"dt"`
	Temp      *float64         `json:"temp"`
	FeelsLike *float64         `json:"feels_like"`
	WindSpeed *float64         `json:"wind_speed"` // m/s
	WindGust  *float64         `json:"wind_gust"`  // m/s
	WindDeg   *float64         `json:"wind_deg"`
	Pop       *float64         `json:"pop"`
	Rain      *OneCallPrecip   `json:"rain"`
	Weather   []OneCallWeather `json:"weather"`
}

type OneCallPrecip struct {
	OneHour *float64 `json:"1h"`
}

type OneCallWeather struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

type OneCallDay struct {
	DT      int64 `json:"dt"`
	Sunrise int64 `json:"sunrise"`
	Sunset  int64 `json:"sunset"`
}

// Decode parses a raw One Call body.
func Decode(body []byte) (OneCallResponse, error) {
	var resp OneCallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return OneCallResponse{}, fmt.Errorf("decode onecall: %w", err)
	}
	return resp, nil
}

var clearSky = playability.Condition{ID: 800, Main: "Clear", Description: "clear sky"}

// Normalize converts a metric One Call response into the engine's canonical
// forecast: wind in mph, absent values filled, hours strictly increasing.
func Normalize(resp OneCallResponse) playability.Forecast {
	hourly := make([]playability.ForecastSlot, 0, len(resp.Hourly))
	for _, h := range resp.Hourly {
		for _, flag := range ValidateHour(h) {
			metrics.SlotsFlagged.WithLabelValues(flag).Inc()
		}
		hourly = append(hourly, normalizeHour(h))
	}

	sort.SliceStable(hourly, func(i, j int) bool { return hourly[i].DT < hourly[j].DT })
	deduped := hourly[:0]
	for i, s := range hourly {
		if i > 0 && s.DT == deduped[len(deduped)-1].DT {
			continue
		}
		deduped = append(deduped, s)
	}

	var days []playability.DaylightWindow
	for _, d := range resp.Daily {
		// Polar day or night has no usable sunrise/sunset pair.
		if d.Sunrise == 0 || d.Sunset <= d.Sunrise {
			continue
		}
		days = append(days, playability.DaylightWindow{Sunrise: d.Sunrise, Sunset: d.Sunset})
	}

	return playability.Forecast{
		Hourly:         deduped,
		Days:           days,
		TimezoneOffset: resp.TimezoneOffset,
	}
}

func normalizeHour(h OneCallHour) playability.ForecastSlot {
	s := playability.ForecastSlot{
		DT:        h.DT,
		Temp:      valueOr(h.Temp, 0),
		WindSpeed: playability.MsToMph(valueOr(h.WindSpeed, 0)),
		WindGust:  playability.MsToMph(valueOr(h.WindGust, 0)),
		WindDeg:   valueOr(h.WindDeg, 0),
		Pop:       min(max(valueOr(h.Pop, 0), 0), 1),
		Weather:   clearSky,
	}
	s.FeelsLike = valueOr(h.FeelsLike, s.Temp)
	if h.Rain != nil {
		s.RainMm = max(valueOr(h.Rain.OneHour, 0), 0)
	}
	if len(h.Weather) > 0 {
		w := h.Weather[0]
		s.Weather = playability.Condition{ID: w.ID, Main: w.Main, Description: w.Description}
	}
	return s
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
