package playability

const testTee = int64(1_750_000_000) // 2025-06-15 15:06:40 UTC

var conditionNames = map[int]string{
	800: "Clear",
	500: "Rain",
	501: "Rain",
	502: "Rain",
	601: "Snow",
	211: "Thunderstorm",
}

// uniformSlots builds n hourly slots from start with identical weather.
func uniformSlots(start int64, n int, tempC, windMph, rainMmHr float64, weatherID int) []ForecastSlot {
	slots := make([]ForecastSlot, n)
	for i := range slots {
		slots[i] = ForecastSlot{
			DT:        start + int64(i)*3600,
			Temp:      tempC,
			FeelsLike: tempC,
			WindSpeed: windMph,
			RainMm:    rainMmHr,
			Weather:   Condition{ID: weatherID, Main: conditionNames[weatherID]},
		}
		if rainMmHr > 0 {
			slots[i].Pop = 0.9
		}
	}
	return slots
}

func eighteenHoles(tee int64) RoundWindow {
	return RoundWindow{TeeOff: tee, DurationHours: 4}
}
