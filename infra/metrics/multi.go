package metrics

import coremetrics "github.com/evmobility/urbanev/core/metrics"

// MultiSink fans session records out to multiple sinks. Optional recorder
// interfaces are forwarded only to sinks that implement them.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordChargingSession forwards the record to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordChargingSession(rec coremetrics.ChargingSessionRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordChargingSession(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordOccupancy forwards occupancy snapshots.
func (m *MultiSink) RecordOccupancy(chargerID string, plugged, capacity int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.OccupancyRecorder); ok {
			if err := rec.RecordOccupancy(chargerID, plugged, capacity); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAllocationFailure forwards failed charger searches.
func (m *MultiSink) RecordAllocationFailure(actType string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.AllocationFailureRecorder); ok {
			if err := rec.RecordAllocationFailure(actType); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTaskDrop forwards dropped deferred tasks.
func (m *MultiSink) RecordTaskDrop(vehicleID string) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TaskDropRecorder); ok {
			if err := rec.RecordTaskDrop(vehicleID); err != nil {
				return err
			}
		}
	}
	return nil
}
