package playability

import "math"

const (
	calmWindMph   = 3.0
	minWindChillC = -60.0
	maxWindChillC = 25.0
)

// WindChill returns the apparent temperature in °C for an air temperature
// (°C) and sustained wind (mph). Below 3 mph the air temperature is returned
// unchanged; otherwise the NWS wind chill formula is applied in °F and the
// result clamped to [-60, 25] °C.
func WindChill(tempC, windMph float64) float64 {
	if windMph < 0 || math.IsNaN(windMph) {
		windMph = 0
	}
	if windMph < calmWindMph {
		return tempC
	}

	tF := CToF(tempC)
	v := math.Pow(windMph, 0.16)
	wcF := 35.74 + 0.6215*tF - 35.75*v + 0.4275*tF*v

	return clamp(FToC(wcF), minWindChillC, maxWindChillC)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
