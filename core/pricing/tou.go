// Package pricing models the time-of-use electricity price shape used by the
// start-time solver and the charging cost scoring.
package pricing

// HourlyMultiplier returns the dimensionless ToU price multiplier for a
// simulation time in seconds. The curve has six fixed time-of-day bins and
// repeats every 24 hours.
func HourlyMultiplier(timeSeconds float64) float64 {
	minuteOfDay := (int(timeSeconds / 60)) % 1440 // 0..1439

	switch {
	case minuteOfDay < 360 || minuteOfDay >= 1320: // 00:00-06:00 and 22:00-24:00
		return 0.7
	case minuteOfDay < 480: // 06:00-08:00
		return 1.6
	case minuteOfDay < 600: // 08:00-10:00
		return 1.47
	case minuteOfDay < 1020: // 10:00-17:00
		return 0.92
	case minuteOfDay < 1200: // 17:00-20:00
		return 1.14
	default: // 20:00-22:00
		return 1.0
	}
}
