package playability

import "time"

// DecideTeeTime evaluates the round starting at the chosen tee-off. The
// window is scored, then checked against the hard stops; a hard stop replaces
// the scored verdict entirely.
func DecideTeeTime(hourly []ForecastSlot, round RoundWindow, profile RegionProfile, units UnitSystem) Decision {
	sig := Aggregate(SlotsInWindow(hourly, round))
	scored := ScoreWindow(sig, profile, round.DurationHours, units)
	if sig.Slots == 0 {
		return scored
	}

	stop := EvaluateHardStop(HardStopInput{
		TempC:      sig.MinTemp,
		WindMph:    sig.MeanWind,
		WindChillC: WindChill(sig.MinTemp, sig.MeanWind),
		Thunder:    sig.Thunder,
		SnowIce:    sig.SnowIce,
	}, profile, units)
	if stop != nil {
		return stop.Decision(scored.Metrics)
	}
	return scored
}

// Request is a complete tee-time query.
type Request struct {
	Forecast Forecast
	Country  string
	TeeOff   time.Time
	Round    RoundType
	Units    UnitSystem
}

// Evaluate resolves the region profile and decides the requested tee time.
func Evaluate(req Request) Decision {
	return DecideTeeTime(
		req.Forecast.Hourly,
		NewRoundWindow(req.TeeOff, req.Round),
		ResolveProfile(req.Country),
		req.Units,
	)
}
