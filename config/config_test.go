package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evmobility/urbanev/infra/logger"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `charging:
  enable_smart_charging: true
  awareness_factor: 0.6
  coincidence_factor: 0.1
  coincidence_mode: "dispersion"
  alpha_scale_temporal: 2.0
  parking_search_radius_m: 800
  random_seed: 42
scoring:
  beta_money: -0.5
  home_charging_cost: 0.3
  work_charging_cost: 0.25
  public_charging_cost: 0.5
metrics:
  sinks: ["prometheus"]
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "urbanev"
  topic_prefix: "fleet"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"smart_charging", cfg.Charging.EnableSmartCharging, true},
		{"awareness_factor", cfg.Charging.AwarenessFactor, 0.6},
		{"coincidence_mode", cfg.Charging.CoincidenceMode, "dispersion"},
		{"alpha", cfg.Charging.AlphaScaleTemporal, 2.0},
		{"radius", cfg.Charging.ParkingSearchRadiusM, 800.0},
		{"seed", cfg.Charging.RandomSeed, int64(42)},
		{"beta_money", cfg.Scoring.BetaMoney, -0.5},
		{"home_cost", cfg.Scoring.HomeChargingCost, 0.3},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0] == "prometheus", true},
		{"mqtt_enabled", cfg.MQTT.Enabled, true},
		{"mqtt_broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "fleet"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	// Defaults applied to fields the file does not set.
	if cfg.Charging.DefaultRangeAnxietyThreshold != 0.2 {
		t.Errorf("default threshold not applied: %v", cfg.Charging.DefaultRangeAnxietyThreshold)
	}
	if cfg.Scoring.WalkingUtility != -1 {
		t.Errorf("default walking utility not applied: %v", cfg.Scoring.WalkingUtility)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "charging:\n  awareness_factor: 0.3\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_CHARGING__AWARENESS_FACTOR", "0.9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Charging.AwarenessFactor != 0.9 {
		t.Errorf("env override not applied: %v", cfg.Charging.AwarenessFactor)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadRejectsUnknownMetricsSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "metrics:\n  sinks: [\"statsd\"]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown sink")
	}
}

func TestNormalizeClampsCharging(t *testing.T) {
	cfg := &Config{}
	cfg.Charging.SetDefaults()
	cfg.Charging.AwarenessFactor = 2
	cfg.Normalize(logger.NopLogger{})
	if cfg.Charging.AwarenessFactor != 1 {
		t.Errorf("awareness factor not clamped: %v", cfg.Charging.AwarenessFactor)
	}
}
