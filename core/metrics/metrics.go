package metrics

// ChargingSessionRecord represents one completed charging session to be
// recorded for observability purposes.
type ChargingSessionRecord struct {
	SessionID        string
	PersonID         string
	VehicleID        string
	ChargerID        string
	ChargerType      string // "home", "work" or "public"
	StartTime        float64
	EndTime          float64
	StartSoCFraction float64
	EndSoCFraction   float64
	EnergyKWh        float64
	WalkingDistanceM float64
}

// MetricsSink records completed charging sessions.
type MetricsSink interface {
	RecordChargingSession(rec ChargingSessionRecord) error
}

// OccupancyRecorder records charger occupancy after plug/unplug transitions.
type OccupancyRecorder interface {
	RecordOccupancy(chargerID string, plugged, capacity int) error
}

// AllocationFailureRecorder records failed charger searches.
type AllocationFailureRecorder interface {
	RecordAllocationFailure(actType string) error
}

// TaskDropRecorder records deferred plug-in tasks dropped at fire time.
type TaskDropRecorder interface {
	RecordTaskDrop(vehicleID string) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordChargingSession implements MetricsSink.
func (NopSink) RecordChargingSession(ChargingSessionRecord) error { return nil }
