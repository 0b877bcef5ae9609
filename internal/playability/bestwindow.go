package playability

import (
	"math"
	"sort"
)

const (
	// Slots within an hour of sunrise or sunset are never recommended.
	daylightBuffer = 3600

	washoutMinPop  = 0.8
	washoutMeanPop = 0.85

	comfortTargetC = 18.0
	comfortTargetF = 65.0

	noBestSlotPenalty = 18

	dayPlayMin  = 72
	dayToughMin = 48
)

// BestWindow is the recommended tee time for one day, if any.
type BestWindow struct {
	Found  bool          `json:"found"`
	Slot   *ForecastSlot `json:"slot,omitempty"`
	Score  float64       `json:"score,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// DayVerdict is the coarse verdict for a whole day.
type DayVerdict struct {
	Score  int    `json:"score"`
	Status Status `json:"status"`
	Label  string `json:"label"`
}

// DayOutlook bundles a day's daylight, best tee time and verdict.
type DayOutlook struct {
	Daylight DaylightWindow `json:"daylight"`
	Best     BestWindow     `json:"best"`
	Verdict  DayVerdict     `json:"verdict"`
}

// Candidates returns the slots at least an hour after sunrise and an hour
// before sunset.
func Candidates(day []ForecastSlot, daylight DaylightWindow) []ForecastSlot {
	var out []ForecastSlot
	for _, s := range day {
		if s.DT >= daylight.Sunrise+daylightBuffer && s.DT <= daylight.Sunset-daylightBuffer {
			out = append(out, s)
		}
	}
	return out
}

// SelectBestWindow finds the lowest scoring daylight slot. Days where rain is
// near certain across all candidates are rejected outright, however good a
// single hour looks. Ties go to the earliest slot.
func SelectBestWindow(day []ForecastSlot, daylight DaylightWindow, units UnitSystem) BestWindow {
	cands := Candidates(day, daylight)
	if len(cands) == 0 {
		return BestWindow{Reason: "No playable daylight window"}
	}

	minPop, sumPop := math.Inf(1), 0.0
	for _, s := range cands {
		pop := clamp(finite(s.Pop), 0, 1)
		sumPop += pop
		minPop = math.Min(minPop, pop)
	}
	if minPop >= washoutMinPop || sumPop/float64(len(cands)) >= washoutMeanPop {
		return BestWindow{Reason: "Rain almost certain all day"}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].DT < cands[j].DT })

	bestIdx, bestScore := -1, math.Inf(1)
	for i, s := range cands {
		score := slotScore(s, units)
		if score < bestScore {
			bestIdx, bestScore = i, score
		}
	}

	best := cands[bestIdx]
	return BestWindow{Found: true, Slot: &best, Score: round(bestScore, 2)}
}

// slotScore is lower-is-better, computed in the user's display units.
func slotScore(s ForecastSlot, units UnitSystem) float64 {
	target := comfortTargetC
	if units == Imperial {
		target = comfortTargetF
	}
	pop := clamp(finite(s.Pop), 0, 1)
	wind := units.Wind(math.Max(finite(s.WindSpeed), 0))
	temp := units.Temp(finite(s.Temp))
	return pop*12 + wind*0.9 + math.Abs(temp-target)/6
}

// EvaluateDay computes the day verdict from the candidate hours, falling
// back to every daylight hour when the buffer leaves none.
func EvaluateDay(day []ForecastSlot, daylight DaylightWindow, best BestWindow, profile RegionProfile) DayVerdict {
	slots := Candidates(day, daylight)
	if len(slots) == 0 {
		for _, s := range day {
			if daylight.Contains(s.DT) {
				slots = append(slots, s)
			}
		}
	}
	if len(slots) == 0 {
		return DayVerdict{Status: StatusUnknown, Label: "No forecast"}
	}

	sig := Aggregate(slots)
	score := 100 - conditionsPenalty(sig.MeanWind, sig.MaxPop, sig.MeanTemp, profile)
	if !best.Found {
		score -= noBestSlotPenalty
	}
	score = clampScore(score)

	switch {
	case score >= dayPlayMin:
		return DayVerdict{Score: score, Status: StatusPlay, Label: "Play"}
	case score >= dayToughMin:
		return DayVerdict{Score: score, Status: StatusRisky, Label: "Playable (tough)"}
	default:
		return DayVerdict{Score: score, Status: StatusAvoid, Label: "No-play recommended"}
	}
}

// OutlookForDay runs the best-window selector and day verdict for one day.
func OutlookForDay(day []ForecastSlot, daylight DaylightWindow, profile RegionProfile, units UnitSystem) DayOutlook {
	best := SelectBestWindow(day, daylight, units)
	return DayOutlook{
		Daylight: daylight,
		Best:     best,
		Verdict:  EvaluateDay(day, daylight, best, profile),
	}
}

// Outlooks returns one DayOutlook per daylight window in the forecast.
func Outlooks(f Forecast, profile RegionProfile, units UnitSystem) []DayOutlook {
	out := make([]DayOutlook, 0, len(f.Days))
	for _, d := range f.Days {
		var day []ForecastSlot
		for _, s := range f.Hourly {
			if d.Contains(s.DT) {
				day = append(day, s)
			}
		}
		out = append(out, OutlookForDay(day, d, profile, units))
	}
	return out
}
