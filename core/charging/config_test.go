package charging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingLogger counts warnings so tests can assert that clamping is
// reported but never fatal.
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debugf(string, ...any)         {}
func (l *recordingLogger) Debugw(string, map[string]any) {}
func (l *recordingLogger) Infof(string, ...any)          {}
func (l *recordingLogger) Warnf(format string, _ ...any) {
	l.warnings = append(l.warnings, format)
}
func (l *recordingLogger) Errorf(string, ...any) {}

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	assert.Equal(t, CoincidenceModeBlock, cfg.CoincidenceMode)
	assert.Equal(t, 1.0, cfg.AlphaScaleTemporal)
	assert.Equal(t, 500.0, cfg.ParkingSearchRadiusM)
	assert.Equal(t, 0.2, cfg.DefaultRangeAnxietyThreshold)
	assert.Equal(t, int64(1), cfg.RandomSeed)
	assert.False(t, cfg.EnableSmartCharging)
}

func TestConfigNormalizeClampsOutOfRangeValues(t *testing.T) {
	cfg := Config{
		AwarenessFactor:              1.5,
		CoincidenceFactor:            -0.3,
		CoincidenceMode:              "jitter",
		AlphaScaleTemporal:           0.4,
		ParkingSearchRadiusM:         -10,
		DefaultRangeAnxietyThreshold: 2,
	}
	log := &recordingLogger{}
	cfg.Normalize(log)

	assert.Equal(t, 1.0, cfg.AwarenessFactor)
	assert.Equal(t, 0.0, cfg.CoincidenceFactor)
	assert.Equal(t, CoincidenceModeBlock, cfg.CoincidenceMode)
	assert.Equal(t, 1.0, cfg.AlphaScaleTemporal)
	assert.Equal(t, 500.0, cfg.ParkingSearchRadiusM)
	assert.Equal(t, 0.2, cfg.DefaultRangeAnxietyThreshold)
	assert.Len(t, log.warnings, 6)
}

func TestConfigNormalizeRejectsNonFiniteAlpha(t *testing.T) {
	cfg := Config{
		CoincidenceMode:              CoincidenceModeDispersion,
		AlphaScaleTemporal:           math.NaN(),
		ParkingSearchRadiusM:         500,
		DefaultRangeAnxietyThreshold: 0.2,
	}
	log := &recordingLogger{}
	cfg.Normalize(log)

	assert.Equal(t, 1.0, cfg.AlphaScaleTemporal)
	assert.Len(t, log.warnings, 1)
}

func TestConfigNormalizeLeavesValidValuesAlone(t *testing.T) {
	cfg := Config{
		EnableSmartCharging:          true,
		AwarenessFactor:              0.5,
		CoincidenceFactor:            0.2,
		CoincidenceMode:              CoincidenceModeDispersion,
		AlphaScaleTemporal:           2.5,
		ParkingSearchRadiusM:         800,
		DefaultRangeAnxietyThreshold: 0.3,
		RandomSeed:                   42,
	}
	log := &recordingLogger{}
	cfg.Normalize(log)

	assert.Empty(t, log.warnings)
	assert.Equal(t, 2.5, cfg.AlphaScaleTemporal)
	assert.Equal(t, 800.0, cfg.ParkingSearchRadiusM)
}
