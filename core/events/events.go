package events

import "github.com/evmobility/urbanev/core/model"

// Event is one entry of the chronological simulation feed. The variant set
// is closed: the tracker dispatches on the concrete types below.
type Event interface {
	// Time returns the simulation time of the event in seconds from midnight.
	Time() float64
}

// ActivityStart is emitted when a person begins an activity. Charging
// activities are identified by their type suffix.
type ActivityStart struct {
	TimeSeconds float64
	PersonID    string
	ActType     string
	Coord       model.Coord
	// DepartureSeconds is the planned end time of the activity, taken from
	// the person's plan. Zero means unknown and disables deferral.
	DepartureSeconds float64
}

func (e ActivityStart) Time() float64 { return e.TimeSeconds }

// ActivityEnd is emitted when a person finishes an activity.
type ActivityEnd struct {
	TimeSeconds float64
	PersonID    string
	ActType     string
}

func (e ActivityEnd) Time() float64 { return e.TimeSeconds }

// PersonLeavesVehicle correlates a person with the vehicle they last used.
// It carries no charging side effects.
type PersonLeavesVehicle struct {
	TimeSeconds float64
	PersonID    string
	VehicleID   string
}

func (e PersonLeavesVehicle) Time() float64 { return e.TimeSeconds }

// TimeStep carries no payload; it only advances the simulation clock so
// that deferred tasks can fire between activities.
type TimeStep struct {
	TimeSeconds float64
}

func (e TimeStep) Time() float64 { return e.TimeSeconds }
