package charging

import (
	"math"

	"github.com/evmobility/urbanev/core/logger"
)

// Coincidence modes. In "block" mode the coincidence factor is the
// probability that an aware agent ignores the computed optimum. In
// "dispersion" mode it controls the spread of a truncated normal draw
// around the optimum.
const (
	CoincidenceModeBlock      = "block"
	CoincidenceModeDispersion = "dispersion"
)

// Config holds the charging behavior parameters.
type Config struct {
	// EnableSmartCharging toggles ToU-based deferral globally.
	EnableSmartCharging bool `json:"enable_smart_charging"`
	// AwarenessFactor is the probability [0,1] that a person is aware of
	// ToU pricing. Sampled once per person at population initialization.
	AwarenessFactor float64 `json:"awareness_factor"`
	// CoincidenceFactor [0,1]; see the coincidence modes above.
	CoincidenceFactor float64 `json:"coincidence_factor"`
	// CoincidenceMode selects how CoincidenceFactor is interpreted.
	CoincidenceMode string `json:"coincidence_mode"`
	// AlphaScaleTemporal is the exponent applied to the ToU multiplier
	// before integration. 1.0 leaves the curve unchanged; larger values
	// exaggerate perceived price swings.
	AlphaScaleTemporal float64 `json:"alpha_scale_temporal"`
	// ParkingSearchRadiusM is the radius around an activity location in
	// which agents look for chargers, in meters.
	ParkingSearchRadiusM float64 `json:"parking_search_radius_m"`
	// DefaultRangeAnxietyThreshold is the SOC fraction below which scoring
	// penalizes range anxiety, unless overridden per person.
	DefaultRangeAnxietyThreshold float64 `json:"default_range_anxiety_threshold"`
	// RandomSeed seeds the awareness sampling and solver gating streams.
	RandomSeed int64 `json:"random_seed"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.CoincidenceMode == "" {
		c.CoincidenceMode = CoincidenceModeBlock
	}
	if c.AlphaScaleTemporal == 0 {
		c.AlphaScaleTemporal = 1.0
	}
	if c.ParkingSearchRadiusM == 0 {
		c.ParkingSearchRadiusM = 500
	}
	if c.DefaultRangeAnxietyThreshold == 0 {
		c.DefaultRangeAnxietyThreshold = 0.2
	}
	if c.RandomSeed == 0 {
		c.RandomSeed = 1
	}
}

// Normalize clamps out-of-range values to the nearest valid bound, logging a
// warning for each adjustment. Configuration problems here are never fatal.
func (c *Config) Normalize(log logger.Logger) {
	if c.AwarenessFactor < 0 || c.AwarenessFactor > 1 {
		log.Warnf("awareness_factor outside [0,1] (%v), clamping", c.AwarenessFactor)
		c.AwarenessFactor = math.Max(0, math.Min(1, c.AwarenessFactor))
	}
	if c.CoincidenceFactor < 0 || c.CoincidenceFactor > 1 {
		log.Warnf("coincidence_factor outside [0,1] (%v), clamping", c.CoincidenceFactor)
		c.CoincidenceFactor = math.Max(0, math.Min(1, c.CoincidenceFactor))
	}
	if c.CoincidenceMode != CoincidenceModeBlock && c.CoincidenceMode != CoincidenceModeDispersion {
		log.Warnf("unknown coincidence_mode %q, using %q", c.CoincidenceMode, CoincidenceModeBlock)
		c.CoincidenceMode = CoincidenceModeBlock
	}
	if !isFinite(c.AlphaScaleTemporal) {
		log.Warnf("alpha_scale_temporal is not finite (%v), using 1.0", c.AlphaScaleTemporal)
		c.AlphaScaleTemporal = 1.0
	} else if c.AlphaScaleTemporal < 1 {
		log.Warnf("alpha_scale_temporal < 1 (%v), clamping to 1.0", c.AlphaScaleTemporal)
		c.AlphaScaleTemporal = 1.0
	}
	if c.ParkingSearchRadiusM <= 0 {
		log.Warnf("parking_search_radius_m must be positive (%v), using 500", c.ParkingSearchRadiusM)
		c.ParkingSearchRadiusM = 500
	}
	if c.DefaultRangeAnxietyThreshold <= 0 || c.DefaultRangeAnxietyThreshold > 1 {
		log.Warnf("default_range_anxiety_threshold outside (0,1] (%v), using 0.2", c.DefaultRangeAnxietyThreshold)
		c.DefaultRangeAnxietyThreshold = 0.2
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
