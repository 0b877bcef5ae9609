package playability

import (
	"fmt"
	"math"
)

const (
	// Gust spread over the mean that flags a window as gusty.
	gustySpreadMph = 12.0
	// At or below this the label reads as freezing.
	freezingLabelC = 1.0
	// Showers are worth mentioning from this probability even with no volume.
	showerPop = 0.5
)

// ScoreWindow scores an aggregated round window. Status starts at PLAY and
// runs through a fixed waterfall:
//
//	(a) wind chill in the region's risk band: one rank
//	(b) cold and breezy: one rank
//	(c) rain rate floor: light RISKY, moderate DELAY, heavy DELAY (AVOID when windy or gusty)
//	(d) wet and windy, light or moderate rain only: one rank
//	(e) very windy: one rank
//
// An empty window yields UNKNOWN with empty metrics and no reasons.
func ScoreWindow(sig WindowSignals, profile RegionProfile, durationHours float64, units UnitSystem) Decision {
	if sig.Slots == 0 {
		return unknownDecision()
	}
	if durationHours <= 0 {
		durationHours = float64(sig.Slots)
	}

	rate := sig.TotalRainMm / durationHours
	rain := profile.RainBand(rate)
	wind := profile.WindBand(sig.MeanWind)
	gusty := sig.PeakGust-sig.MeanWind >= gustySpreadMph
	chill := WindChill(sig.MinTemp, sig.MeanWind)

	v := newVerdict()

	if chill > profile.RiskWindChillMinC && chill <= profile.RiskWindChillMaxC {
		v.bump(fmt.Sprintf("Wind chill risk: feels like %s", units.FormatTemp(chill)))
	}

	if sig.MinTemp >= profile.ColdBreezyTempMinC && sig.MinTemp <= profile.ColdBreezyTempMaxC &&
		sig.MeanWind >= profile.ColdBreezyWindMph {
		v.bump(fmt.Sprintf("Cold and breezy: %s with %s wind",
			units.FormatTemp(sig.MinTemp), units.FormatWind(sig.MeanWind)))
	}

	switch rain {
	case RainHeavy:
		if wind >= WindWindy || gusty {
			v.floor(StatusAvoid, fmt.Sprintf("Heavy rain with strong wind (%s)", formatRainRate(rate)))
		} else {
			v.floor(StatusDelay, fmt.Sprintf("Heavy rain (%s)", formatRainRate(rate)))
		}
	case RainModerate:
		v.floor(StatusDelay, fmt.Sprintf("Moderate rain (%s)", formatRainRate(rate)))
	case RainLight:
		v.floor(StatusRisky, fmt.Sprintf("Light rain (%s)", formatRainRate(rate)))
	case RainDrizzle:
		v.note(fmt.Sprintf("Drizzle (%s)", formatRainRate(rate)))
	}

	if (rain == RainLight || rain == RainModerate) && (wind >= WindWindy || gusty) {
		v.bump("Wet and windy")
	}

	if wind == WindVeryWindy {
		v.bump(fmt.Sprintf("Very windy: %s mean", units.FormatWind(sig.MeanWind)))
	} else if wind == WindWindy {
		v.note(fmt.Sprintf("Windy: %s mean", units.FormatWind(sig.MeanWind)))
	}
	if gusty {
		v.note(fmt.Sprintf("Gusty: up to %s", units.FormatWind(sig.PeakGust)))
	}
	if rain <= RainDrizzle && sig.MaxPop >= showerPop {
		v.note(fmt.Sprintf("Showers possible (%s chance)", formatPercent(sig.MaxPop)))
	}

	icon, label, message := describe(sig, rain, wind, gusty, profile)

	score := 100 - conditionsPenalty(sig.MeanWind, sig.MaxPop, sig.MeanTemp, profile) - rainBandPenalty[rain]
	score = clampScore(score)
	if limit := statusScoreCap[v.status]; score > limit {
		score = limit
	}

	return Decision{
		Status:      v.status,
		StatusLabel: v.status.Label(),
		Icon:        icon,
		Label:       label,
		Message:     message,
		Score:       score,
		Metrics:     windowMetrics(sig, chill),
		Reasons:     v.reasons,
	}
}

// describe picks the display label for the most severe qualifying condition:
// freezing, heavy rain, high wind, rain, cold, drizzle, gusts, then playable.
func describe(sig WindowSignals, rain RainBand, wind WindBand, gusty bool, profile RegionProfile) (icon, label, message string) {
	switch {
	case sig.MinTemp <= freezingLabelC:
		return "🥶", "Freezing", "Near-freezing temperatures. Expect frost delays and firm greens."
	case rain == RainHeavy:
		return "🌧️", "Heavy rain", "Heavy rain expected. Course may be waterlogged."
	case wind == WindVeryWindy:
		return "💨", "Very windy", "Strong winds all round. Club selection will be a lottery."
	case wind == WindWindy:
		return "💨", "High wind", "Windy round. Expect to flight the ball low."
	case rain == RainModerate:
		return "🌧️", "Rain", "Steady rain. Waterproofs essential."
	case rain == RainLight:
		return "🌦️", "Light rain", "Light rain at times. Pack waterproofs."
	case sig.MinTemp <= profile.ColdToughC:
		return "🧥", "Cold (tough)", "Cold round. Layer up and expect little roll."
	case sig.MinTemp < profile.ColdWarnC:
		return "🧥", "Cold", "Chilly round. Bring an extra layer."
	case rain == RainDrizzle || sig.MaxPop >= showerPop:
		return "🌦️", "Drizzle", "Odd spot of drizzle possible."
	case gusty:
		return "🌬️", "Gusty", "Mostly fine but gusty at times."
	}
	return "⛳", "Playable", "Good conditions for golf."
}

func windowMetrics(sig WindowSignals, chill float64) Metrics {
	return Metrics{
		MaxPrecipProb: round(sig.MaxPop, 2),
		TotalPrecipMm: round(sig.TotalRainMm, 1),
		AvgWind:       round(sig.MeanWind, 1),
		MaxGust:       round(sig.PeakGust, 1),
		AvgTemp:       round(sig.MeanTemp, 1),
		FeelsLike:     round(sig.MeanFeelsLike, 1),
		WindChillC:    round(chill, 1),
	}
}

func unknownDecision() Decision {
	return Decision{
		Status:      StatusUnknown,
		StatusLabel: StatusUnknown.Label(),
		Icon:        "❔",
		Label:       "No forecast",
		Message:     "No forecast data covers this tee time.",
		Reasons:     []string{},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
