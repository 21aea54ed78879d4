package metrics

import (
	coremetrics "github.com/evmobility/urbanev/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records charging activity in Prometheus metrics.
type PromSink struct {
	sessions  *prometheus.CounterVec
	energy    *prometheus.HistogramVec
	occupancy *prometheus.GaugeVec
	failures  *prometheus.CounterVec
	drops     prometheus.Counter
}

// NewPromSink registers charging metrics on the default Prometheus
// registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charging_sessions_total",
		Help: "Total number of completed charging sessions",
	}, []string{"charger_type"})
	energy := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "charging_session_energy_kwh",
		Help:    "Energy delivered per charging session",
		Buckets: []float64{1, 2, 5, 10, 20, 40, 80},
	}, []string{"charger_type"})
	occupancy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "charger_plugged_vehicles",
		Help: "Number of vehicles currently plugged in per charger",
	}, []string{"charger_id"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "charger_allocation_failures_total",
		Help: "Charger searches that found no eligible charger",
	}, []string{"act_type"})
	drops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deferred_task_drops_total",
		Help: "Deferred plug-in tasks dropped at fire time",
	})

	if err := reg.Register(sessions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sessions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(energy); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			energy = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(occupancy); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			occupancy = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(failures); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			failures = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(drops); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			drops = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &PromSink{sessions: sessions, energy: energy, occupancy: occupancy, failures: failures, drops: drops}, nil
}

// RecordChargingSession implements coremetrics.MetricsSink.
func (s *PromSink) RecordChargingSession(rec coremetrics.ChargingSessionRecord) error {
	s.sessions.WithLabelValues(rec.ChargerType).Inc()
	s.energy.WithLabelValues(rec.ChargerType).Observe(rec.EnergyKWh)
	return nil
}

// RecordOccupancy implements coremetrics.OccupancyRecorder.
func (s *PromSink) RecordOccupancy(chargerID string, plugged, capacity int) error {
	s.occupancy.WithLabelValues(chargerID).Set(float64(plugged))
	return nil
}

// RecordAllocationFailure implements coremetrics.AllocationFailureRecorder.
func (s *PromSink) RecordAllocationFailure(actType string) error {
	s.failures.WithLabelValues(actType).Inc()
	return nil
}

// RecordTaskDrop implements coremetrics.TaskDropRecorder.
func (s *PromSink) RecordTaskDrop(vehicleID string) error {
	s.drops.Inc()
	return nil
}
