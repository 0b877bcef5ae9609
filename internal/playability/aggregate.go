package playability

import "math"

// gustFactor estimates peak gust from mean wind when no gust data exists.
// Approximate only.
const gustFactor = 1.3

// WindowSignals are the aggregated signals of a run of slots.
type WindowSignals struct {
	Slots         int
	MaxPop        float64
	TotalRainMm   float64
	MeanWind      float64
	PeakGust      float64
	GustEstimated bool
	MeanTemp      float64
	MinTemp       float64
	MeanFeelsLike float64
	Thunder       bool
	SnowIce       bool
}

// Aggregate summarises slots. Non-finite values are read as zero, pop is
// clamped to [0,1] and negative rain to zero.
func Aggregate(slots []ForecastSlot) WindowSignals {
	sig := WindowSignals{Slots: len(slots)}
	if len(slots) == 0 {
		return sig
	}

	var sumWind, sumTemp, sumFeels float64
	sig.MinTemp = math.Inf(1)
	haveGust := false

	for _, s := range slots {
		temp := finite(s.Temp)
		wind := math.Max(finite(s.WindSpeed), 0)
		gust := finite(s.WindGust)
		pop := clamp(finite(s.Pop), 0, 1)
		rain := math.Max(finite(s.RainMm), 0)

		sumTemp += temp
		sumWind += wind
		sumFeels += finite(s.FeelsLike)
		sig.TotalRainMm += rain
		if pop > sig.MaxPop {
			sig.MaxPop = pop
		}
		if temp < sig.MinTemp {
			sig.MinTemp = temp
		}
		if gust > 0 {
			haveGust = true
			if gust > sig.PeakGust {
				sig.PeakGust = gust
			}
		}
		if s.Weather.IsThunder() {
			sig.Thunder = true
		}
		if s.Weather.IsSnowIce() {
			sig.SnowIce = true
		}
	}

	n := float64(len(slots))
	sig.MeanTemp = sumTemp / n
	sig.MeanWind = sumWind / n
	sig.MeanFeelsLike = sumFeels / n
	if !haveGust {
		sig.PeakGust = sig.MeanWind * gustFactor
		sig.GustEstimated = true
	}
	return sig
}

// SlotsInWindow returns the slots whose timestamp falls in the round window.
func SlotsInWindow(hourly []ForecastSlot, round RoundWindow) []ForecastSlot {
	var out []ForecastSlot
	for _, s := range hourly {
		if round.Contains(s.DT) {
			out = append(out, s)
		}
	}
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
