package playability

// Upper edge of the comfort band. The lower edge is the region's ColdWarnC.
const comfortMaxC = 24.0

type tier struct {
	min     float64
	penalty int
}

// Tiers are checked top-down; the first whose min is reached applies.
var (
	windTiers = []tier{{25, 35}, {18, 22}, {12, 10}, {8, 4}}
	popTiers  = []tier{{0.8, 35}, {0.6, 22}, {0.4, 12}, {0.2, 5}}
	coldTiers = []tier{{10, 25}, {6, 15}, {3, 7}}
	heatTiers = []tier{{10, 20}, {6, 12}, {3, 5}}
)

var rainBandPenalty = map[RainBand]int{
	RainLight:    8,
	RainModerate: 20,
	RainHeavy:    35,
}

// Highest score each status may carry, so scores agree with the day
// verdict thresholds.
var statusScoreCap = map[Status]int{
	StatusPlay:  100,
	StatusRisky: 71,
	StatusDelay: 47,
	StatusAvoid: 20,
}

func tierPenalty(v float64, tiers []tier) int {
	for _, t := range tiers {
		if v >= t.min {
			return t.penalty
		}
	}
	return 0
}

// conditionsPenalty is the tiered penalty for mean wind (mph), peak
// precipitation probability and mean temperature outside the comfort band.
func conditionsPenalty(meanWindMph, maxPop, meanTempC float64, profile RegionProfile) int {
	p := tierPenalty(meanWindMph, windTiers) + tierPenalty(maxPop, popTiers)
	switch {
	case meanTempC < profile.ColdWarnC:
		p += tierPenalty(profile.ColdWarnC-meanTempC, coldTiers)
	case meanTempC > comfortMaxC:
		p += tierPenalty(meanTempC-comfortMaxC, heatTiers)
	}
	return p
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
