package charging

import (
	"sync"

	"github.com/evmobility/urbanev/core/metrics"
)

// SessionLog collects completed charging sessions in memory. It implements
// metrics.MetricsSink so it can be fanned in next to the real sinks, and its
// entries can be exported after a run.
type SessionLog struct {
	mu      sync.Mutex
	entries []metrics.ChargingSessionRecord
}

// NewSessionLog creates an empty log.
func NewSessionLog() *SessionLog { return &SessionLog{} }

// RecordChargingSession implements metrics.MetricsSink.
func (l *SessionLog) RecordChargingSession(rec metrics.ChargingSessionRecord) error {
	l.mu.Lock()
	l.entries = append(l.entries, rec)
	l.mu.Unlock()
	return nil
}

// Entries returns a copy of all recorded sessions in completion order.
func (l *SessionLog) Entries() []metrics.ChargingSessionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]metrics.ChargingSessionRecord, len(l.entries))
	copy(out, l.entries)
	return out
}

// TotalEnergyKWh sums the energy delivered across all sessions.
func (l *SessionLog) TotalEnergyKWh() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0.0
	for _, e := range l.entries {
		total += e.EnergyKWh
	}
	return total
}
