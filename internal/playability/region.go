package playability

import (
	"sort"
	"strings"
)

// DefaultCode is the profile code returned for unknown or empty regions.
const DefaultCode = "default"

// RegionProfile holds the comfort and risk thresholds for a region. Values
// are always fully populated; temperatures in °C, wind in mph, rain in mm/hr.
type RegionProfile struct {
	Code string `json:"code"`

	// Temperatures below ColdWarnC get a "Cold" label; at or below
	// ColdToughC the label calls out tough conditions.
	ColdWarnC  float64 `json:"coldWarnC"`
	ColdToughC float64 `json:"coldToughC"`

	// Rain band ceilings are inclusive. RainHeavyMinMmHr is checked before
	// the moderate ceiling, so where the two meet the rate is heavy.
	RainDrizzleMaxMmHr  float64 `json:"rainDrizzleMaxMmHr"`
	RainLightMaxMmHr    float64 `json:"rainLightMaxMmHr"`
	RainModerateMaxMmHr float64 `json:"rainModerateMaxMmHr"`
	RainHeavyMinMmHr    float64 `json:"rainHeavyMinMmHr"`

	WindBreezyMph    float64 `json:"windBreezyMph"`
	WindWindyMph     float64 `json:"windWindyMph"`
	WindVeryWindyMph float64 `json:"windVeryWindyMph"`

	// Wind chill inside (RiskWindChillMinC, RiskWindChillMaxC] costs one rank.
	RiskWindChillMinC float64 `json:"riskWindChillMinC"`
	RiskWindChillMaxC float64 `json:"riskWindChillMaxC"`

	ColdBreezyTempMinC float64 `json:"coldBreezyTempMinC"`
	ColdBreezyTempMaxC float64 `json:"coldBreezyTempMaxC"`
	ColdBreezyWindMph  float64 `json:"coldBreezyWindMph"`

	HardStopWindChillC float64 `json:"hardStopWindChillC"`
}

// DefaultProfile applies to any region without its own tuning.
var DefaultProfile = RegionProfile{
	Code:                DefaultCode,
	ColdWarnC:           10,
	ColdToughC:          5,
	RainDrizzleMaxMmHr:  0.2,
	RainLightMaxMmHr:    1.0,
	RainModerateMaxMmHr: 4.0,
	RainHeavyMinMmHr:    4.0,
	WindBreezyMph:       12,
	WindWindyMph:        18,
	WindVeryWindyMph:    25,
	RiskWindChillMinC:   -2,
	RiskWindChillMaxC:   3,
	ColdBreezyTempMinC:  0,
	ColdBreezyTempMaxC:  6,
	ColdBreezyWindMph:   10,
	HardStopWindChillC:  -2,
}

// Regional deltas on top of DefaultProfile. British and Irish golfers play
// through wetter, windier and colder rounds than the default assumes.
var regionOverrides = map[string]func(p *RegionProfile){
	"GB": britishIsles,
	"IE": britishIsles,
	"NZ": func(p *RegionProfile) {
		p.ColdWarnC = 8
		p.RainDrizzleMaxMmHr = 0.4
		p.RainLightMaxMmHr = 1.2
		p.WindBreezyMph = 14
		p.WindWindyMph = 20
		p.WindVeryWindyMph = 28
	},
	"SE": func(p *RegionProfile) {
		p.ColdWarnC = 8
		p.ColdToughC = 3
		p.RiskWindChillMinC = -3
		p.RiskWindChillMaxC = 1
		p.ColdBreezyTempMaxC = 4
		p.HardStopWindChillC = -3
	},
	"DE": func(p *RegionProfile) {
		p.ColdWarnC = 9
		p.WindWindyMph = 20
	},
	"FR": func(p *RegionProfile) {
		p.ColdWarnC = 10
		p.RainLightMaxMmHr = 0.8
	},
	"US": func(p *RegionProfile) {
		p.ColdWarnC = 11
		p.RainDrizzleMaxMmHr = 0.1
		p.RainLightMaxMmHr = 0.8
		p.RainModerateMaxMmHr = 3.5
		p.RainHeavyMinMmHr = 3.5
		p.WindBreezyMph = 10
		p.WindWindyMph = 16
		p.WindVeryWindyMph = 24
	},
	"AU": warmClimate,
	"ZA": warmClimate,
}

var regionAliases = map[string]string{
	"UK": "GB",
}

func britishIsles(p *RegionProfile) {
	p.ColdWarnC = 7
	p.ColdToughC = 3
	p.RainDrizzleMaxMmHr = 0.5
	p.RainLightMaxMmHr = 1.5
	p.RainModerateMaxMmHr = 5.0
	p.RainHeavyMinMmHr = 5.0
	p.WindBreezyMph = 15
	p.WindWindyMph = 22
	p.WindVeryWindyMph = 30
	p.RiskWindChillMaxC = 0
	p.ColdBreezyTempMaxC = 4
	p.ColdBreezyWindMph = 14
}

func warmClimate(p *RegionProfile) {
	p.ColdWarnC = 12
	p.ColdToughC = 7
	p.RiskWindChillMaxC = 5
	p.ColdBreezyTempMaxC = 10
	p.ColdBreezyWindMph = 10
	p.RainLightMaxMmHr = 1.2
}

// profiles is the materialised set of regional profiles, built once.
var profiles = buildProfiles()

func buildProfiles() map[string]RegionProfile {
	out := make(map[string]RegionProfile, len(regionOverrides))
	for code, apply := range regionOverrides {
		p := DefaultProfile
		p.Code = code
		apply(&p)
		out[code] = p
	}
	return out
}

// ResolveProfile returns the profile for a country code. Lookup is
// case-insensitive; unknown or empty codes yield DefaultProfile.
func ResolveProfile(code string) RegionProfile {
	key := strings.ToUpper(strings.TrimSpace(code))
	if alias, ok := regionAliases[key]; ok {
		key = alias
	}
	if p, ok := profiles[key]; ok {
		return p
	}
	return DefaultProfile
}

// Regions lists the codes that have their own tuning.
func Regions() []string {
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// RainBand classifies a rain rate in mm/hr. A rate equal to
// RainHeavyMinMmHr is heavy even when it also equals RainModerateMaxMmHr.
func (p RegionProfile) RainBand(rateMmHr float64) RainBand {
	switch {
	case rateMmHr <= 0:
		return RainNone
	case rateMmHr <= p.RainDrizzleMaxMmHr:
		return RainDrizzle
	case rateMmHr <= p.RainLightMaxMmHr:
		return RainLight
	case rateMmHr >= p.RainHeavyMinMmHr || rateMmHr > p.RainModerateMaxMmHr:
		return RainHeavy
	default:
		return RainModerate
	}
}

// WindBand classifies a mean wind speed in mph.
func (p RegionProfile) WindBand(mph float64) WindBand {
	switch {
	case mph >= p.WindVeryWindyMph:
		return WindVeryWindy
	case mph >= p.WindWindyMph:
		return WindWindy
	case mph >= p.WindBreezyMph:
		return WindBreezy
	default:
		return WindCalm
	}
}

type RainBand int

const (
	RainNone RainBand = iota
	RainDrizzle
	RainLight
	RainModerate
	RainHeavy
)

func (b RainBand) String() string {
	switch b {
	case RainDrizzle:
		return "drizzle"
	case RainLight:
		return "light"
	case RainModerate:
		return "moderate"
	case RainHeavy:
		return "heavy"
	default:
		return "none"
	}
}

type WindBand int

const (
	WindCalm WindBand = iota
	WindBreezy
	WindWindy
	WindVeryWindy
)

func (b WindBand) String() string {
	switch b {
	case WindBreezy:
		return "breezy"
	case WindWindy:
		return "windy"
	case WindVeryWindy:
		return "very_windy"
	default:
		return "calm"
	}
}
