package ingest

const (
	FlagTempOutOfRange    = "temp_out_of_range"
	FlagWindSpeedUnlikely = "wind_speed_unlikely"
	FlagWindDirInvalid    = "wind_dir_invalid"
	FlagPopInvalid        = "pop_invalid"
	FlagPrecipNegative    = "precip_negative"
	FlagNoWeather         = "no_weather"
)

// ValidateHour flags implausible values in a raw metric forecast hour. Flags
// are reported, not fatal: the normalizer still clamps and fills the hour.
func ValidateHour(h OneCallHour) []string {
	var flags []string

	if h.Temp != nil && (*h.Temp < -60 || *h.Temp > 60) {
		flags = append(flags, FlagTempOutOfRange)
	}

	if h.WindSpeed != nil && (*h.WindSpeed < 0 || *h.WindSpeed > 90) {
		flags = append(flags, FlagWindSpeedUnlikely)
	} else if h.WindGust != nil && (*h.WindGust < 0 || *h.WindGust > 120) {
		flags = append(flags, FlagWindSpeedUnlikely)
	}

	if h.WindDeg != nil && (*h.WindDeg < 0 || *h.WindDeg > 360) {
		flags = append(flags, FlagWindDirInvalid)
	}

	if h.Pop != nil && (*h.Pop < 0 || *h.Pop > 1) {
		flags = append(flags, FlagPopInvalid)
	}

	if h.Rain != nil && h.Rain.OneHour != nil && *h.Rain.OneHour < 0 {
		flags = append(flags, FlagPrecipNegative)
	}

	if len(h.Weather) == 0 {
		flags = append(flags, FlagNoWeather)
	}

	return flags
}
