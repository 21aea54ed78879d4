package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/evmobility/urbanev/core/metrics"
)

func TestPromSinkRecordChargingSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	rec := coremetrics.ChargingSessionRecord{
		SessionID:   "s1",
		VehicleID:   "ev1",
		ChargerID:   "c1",
		ChargerType: "work",
		StartTime:   100,
		EndTime:     4000,
		EnergyKWh:   15,
	}
	if err := sink.RecordChargingSession(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP charging_sessions_total Total number of completed charging sessions
# TYPE charging_sessions_total counter
charging_sessions_total{charger_type="work"} 1
`
	if err := testutil.CollectAndCompare(sink.sessions, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.energy); c == 0 {
		t.Errorf("energy not recorded")
	}
}

func TestPromSinkRecordOccupancy(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordOccupancy("c1", 2, 4); err != nil {
		t.Fatalf("record error: %v", err)
	}
	got := testutil.ToFloat64(sink.occupancy.WithLabelValues("c1"))
	if got != 2 {
		t.Fatalf("occupancy gauge = %v, want 2", got)
	}
}

func TestPromSinkRecordFailuresAndDrops(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordAllocationFailure("work charging failed"); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordTaskDrop("ev1"); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if got := testutil.ToFloat64(sink.failures.WithLabelValues("work charging failed")); got != 1 {
		t.Fatalf("failure counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sink.drops); got != 1 {
		t.Fatalf("drop counter = %v, want 1", got)
	}
}

func TestPromSinkReregistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	// A second sink on the same registry reuses the existing collectors.
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
