package playability

import (
	"math"
	"testing"
)

func TestWindChillCalmIsIdentity(t *testing.T) {
	for _, temp := range []float64{-40, -16, -2, 0, 4.5, 18, 35, 60} {
		for _, wind := range []float64{-5, 0, 1, 2.99} {
			if got := WindChill(temp, wind); got != temp {
				t.Errorf("WindChill(%v, %v) = %v, want %v", temp, wind, got, temp)
			}
		}
	}
}

func TestWindChillRange(t *testing.T) {
	for temp := -80.0; temp <= 60; temp += 7.5 {
		for _, wind := range []float64{3, 5, 10, 25, 60, 150, 1e6} {
			got := WindChill(temp, wind)
			if got < minWindChillC || got > maxWindChillC {
				t.Errorf("WindChill(%v, %v) = %v, outside [%v, %v]", temp, wind, got, minWindChillC, maxWindChillC)
			}
		}
	}
}

func TestWindChillKnownValues(t *testing.T) {
	tests := []struct {
		name  string
		temp  float64
		wind  float64
		want  float64
		delta float64
	}{
		// NWS chart: 0°F at 15 mph is -19°F.
		{"nws chart", FToC(0), 15, FToC(-19), 0.5},
		{"near freezing, strong wind", 1, 20, -5.4, 0.2},
		{"mild, light wind", 4, 5, 2.0, 0.2},
		{"clamped low", -50, 100, minWindChillC, 0},
		{"clamped high", 40, 10, maxWindChillC, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindChill(tt.temp, tt.wind)
			if math.Abs(got-tt.want) > tt.delta {
				t.Errorf("WindChill(%v, %v) = %.2f, want %.2f ±%v", tt.temp, tt.wind, got, tt.want, tt.delta)
			}
		})
	}
}

func TestWindChillNaNWindIsCalm(t *testing.T) {
	if got := WindChill(5, math.NaN()); got != 5 {
		t.Errorf("WindChill(5, NaN) = %v, want 5", got)
	}
}
