package playability

import "fmt"

const (
	freezeStopC     = -2.0
	coldWindStopC   = 0.0
	coldWindStopMph = 10.0
)

// HardStopKind identifies which safety rule fired.
type HardStopKind string

const (
	HardStopThunder   HardStopKind = "thunder"
	HardStopSnowIce   HardStopKind = "snow_ice"
	HardStopFreezing  HardStopKind = "freezing"
	HardStopWindChill HardStopKind = "wind_chill"
)

// HardStopInput carries the representative window values checked by the
// safety gate: the coldest temperature, mean wind and resulting wind chill.
type HardStopInput struct {
	TempC      float64
	WindMph    float64
	WindChillC float64
	Thunder    bool
	SnowIce    bool
}

// HardStop is a safety override. When present it replaces normal scoring.
type HardStop struct {
	Kind    HardStopKind
	Icon    string
	Label   string
	Message string
	Reason  string
}

// EvaluateHardStop checks the absolute safety rules in priority order and
// returns the first that matches, or nil.
func EvaluateHardStop(in HardStopInput, profile RegionProfile, units UnitSystem) *HardStop {
	switch {
	case in.Thunder:
		return &HardStop{
			Kind:    HardStopThunder,
			Icon:    "⛈️",
			Label:   "Thunderstorm",
			Message: "Lightning risk. Do not play.",
			Reason:  "Thunderstorm in window",
		}
	case in.SnowIce:
		return &HardStop{
			Kind:    HardStopSnowIce,
			Icon:    "🌨️",
			Label:   "Snow / ice",
			Message: "Snow or ice expected. Course likely closed.",
			Reason:  "Snow/ice/freezing precip risk",
		}
	case in.TempC <= freezeStopC:
		return &HardStop{
			Kind:    HardStopFreezing,
			Icon:    "🥶",
			Label:   "Freezing",
			Message: "Frozen ground and greens. Course likely closed.",
			Reason:  fmt.Sprintf("Temperature %s: freezing", units.FormatTemp(in.TempC)),
		}
	case in.TempC <= coldWindStopC && in.WindMph >= coldWindStopMph:
		return &HardStop{
			Kind:    HardStopWindChill,
			Icon:    "🥶",
			Label:   "Wind chill",
			Message: "Sub-zero air with wind. Too cold to play safely.",
			Reason: fmt.Sprintf("Temperature %s with %s wind: wind chill",
				units.FormatTemp(in.TempC), units.FormatWind(in.WindMph)),
		}
	case in.WindChillC <= profile.HardStopWindChillC:
		return &HardStop{
			Kind:    HardStopWindChill,
			Icon:    "🥶",
			Label:   "Wind chill",
			Message: "Feels well below freezing. Too cold to play safely.",
			Reason:  fmt.Sprintf("Feels like %s: wind chill", units.FormatTemp(in.WindChillC)),
		}
	}
	return nil
}

// Decision renders the hard stop as a final AVOID decision.
func (h *HardStop) Decision(m Metrics) Decision {
	return Decision{
		Status:      StatusAvoid,
		StatusLabel: StatusAvoid.Label(),
		Icon:        h.Icon,
		Label:       h.Label,
		Message:     h.Message,
		Score:       0,
		Metrics:     m,
		Reasons:     []string{h.Reason},
	}
}
