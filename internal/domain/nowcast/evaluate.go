package nowcast

// Evaluate decides whether rain at or above threshold (mm/h) is expected within
// horizonMinutes. Only points with OffsetMinutes <= horizonMinutes are considered.
func Evaluate(snapshot ForecastSnapshot, threshold float64, horizonMinutes int) RainSoonDecision {
	var decision RainSoonDecision
	for _, pt := range snapshot.Points {
		if pt.OffsetMinutes > horizonMinutes {
			continue
		}
		if pt.Intensity < threshold {
			continue
		}
		if decision.MinutesUntilRain == nil {
			offset := pt.OffsetMinutes
			decision.MinutesUntilRain = &offset
		}
		decision.IsOn = true
		if pt.Intensity > decision.MaxIntensity {
			decision.MaxIntensity = pt.Intensity
		}
	}
	return decision
}

func iconFor(d RainSoonDecision) string {
	if d.IsOn {
		return "mdi:weather-pouring"
	}
	return "mdi:weather-sunny"
}

func intensityIcon(current float64) string {
	if current > 0 {
		return "mdi:weather-rainy"
	}
	return "mdi:weather-cloudy"
}
