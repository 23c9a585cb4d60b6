package probe

const (
	// TemperatureUnit is the unit the device reports in tenths.
	TemperatureUnit  = "C"
	temperatureScale = 10
)

// Normalize rescales a temperature reading and its thresholds to whole
// degrees. Other units are left alone. A reading is scaled at most once.
func Normalize(r *Reading) {
	if r == nil || r.scaled || r.Unit != TemperatureUnit {
		return
	}

	r.Value /= temperatureScale
	for _, l := range r.limits() {
		if l.Set {
			l.Value /= temperatureScale
		}
	}
	r.scaled = true
}
