// Package scoring defines the charging-behaviour telemetry event schema and
// the scoring function that consumes it.
package scoring

// Event is the telemetry record emitted by the session tracker and consumed
// by the scoring subsystem. Cost-only events carry energy/price information
// and skip the behavioural components.
type Event struct {
	TimeSeconds      float64
	PersonID         string
	SoCFraction      float64
	WalkingDistanceM float64
	ActType          string
	StartSoCFraction float64

	// PricingTime is the session start time used for ToU pricing; nil when
	// the event carries no cost information.
	PricingTime *float64
	// EnergyChargedKWh is nil when no energy accounting applies.
	EnergyChargedKWh *float64
	// ChargerType is "home", "work" or "public"; empty when not set.
	ChargerType string
	CostOnly    bool
}

// Sink consumes scoring events. The tracker is handed a Sink at
// construction; there is no process-wide collector.
type Sink interface {
	HandleScoringEvent(ev Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// HandleScoringEvent implements Sink.
func (f SinkFunc) HandleScoringEvent(ev Event) { f(ev) }

// MultiSink fans scoring events out to several sinks in order.
type MultiSink []Sink

// HandleScoringEvent implements Sink.
func (m MultiSink) HandleScoringEvent(ev Event) {
	for _, s := range m {
		s.HandleScoringEvent(ev)
	}
}
