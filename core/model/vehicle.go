package model

import (
	"sort"
	"sync"
)

// Battery holds the electric state of a vehicle. The state of charge is a
// fraction of capacity in [0,1] and is mutated by the battery model outside
// this module; the charging core only reads it.
type Battery struct {
	CapacityKWh        float64
	InitialSoCFraction float64

	mu          sync.Mutex
	socFraction float64
}

// NewBattery creates a battery with the given capacity and initial state of
// charge fraction.
func NewBattery(capacityKWh, initialSoCFraction float64) *Battery {
	return &Battery{
		CapacityKWh:        capacityKWh,
		InitialSoCFraction: initialSoCFraction,
		socFraction:        initialSoCFraction,
	}
}

// SoCFraction returns the current state of charge in [0,1].
func (b *Battery) SoCFraction() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.socFraction
}

// SetSoCFraction updates the state of charge, clamped to [0,1]. Called by the
// external battery model, never by the charging core.
func (b *Battery) SetSoCFraction(f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	b.mu.Lock()
	b.socFraction = f
	b.mu.Unlock()
}

// ElectricVehicle represents a chargeable vehicle in the simulation.
type ElectricVehicle struct {
	ID           string
	Battery      *Battery
	ChargerTypes map[string]bool // charger categories this vehicle can use
}

// CompatibleWith returns true if the vehicle can use a charger of the given
// category.
func (v *ElectricVehicle) CompatibleWith(chargerType string) bool {
	return v.ChargerTypes[chargerType]
}

// ElectricFleet is an identity-keyed registry of electric vehicles.
type ElectricFleet struct {
	vehicles map[string]*ElectricVehicle
}

// NewElectricFleet builds a fleet from the given vehicles.
func NewElectricFleet(vehicles []*ElectricVehicle) *ElectricFleet {
	m := make(map[string]*ElectricVehicle, len(vehicles))
	for _, v := range vehicles {
		m[v.ID] = v
	}
	return &ElectricFleet{vehicles: m}
}

// Vehicle returns the vehicle with the given ID, or nil.
func (f *ElectricFleet) Vehicle(id string) *ElectricVehicle {
	return f.vehicles[id]
}

// Contains reports whether the fleet has a vehicle with the given ID.
func (f *ElectricFleet) Contains(id string) bool {
	_, ok := f.vehicles[id]
	return ok
}

// Size returns the number of vehicles in the fleet.
func (f *ElectricFleet) Size() int { return len(f.vehicles) }

// Vehicles returns all vehicles sorted by ID.
func (f *ElectricFleet) Vehicles() []*ElectricVehicle {
	out := make([]*ElectricVehicle, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
