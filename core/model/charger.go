package model

import (
	"fmt"
	"sync"
)

// Charger is a charging location with a fixed number of plugs. Occupancy is
// shared state between concurrent event callback paths and is guarded by a
// mutex. The invariant 0 <= plugged count <= PlugCount holds at all times.
type Charger struct {
	ID              string
	Coord           Coord
	Type            string  // charger category, e.g. "AC22", "DC50"
	PowerKW         float64 // rated power of one plug
	PlugCount       int
	AllowedVehicles map[string]bool // empty means public

	mu      sync.Mutex
	plugged map[string]bool
}

// NewCharger creates a charger with no vehicles plugged.
func NewCharger(id string, coord Coord, chargerType string, powerKW float64, plugCount int) *Charger {
	return &Charger{
		ID:        id,
		Coord:     coord,
		Type:      chargerType,
		PowerKW:   powerKW,
		PlugCount: plugCount,
		plugged:   make(map[string]bool),
	}
}

// Allows reports whether the vehicle may use this charger. An empty allow
// list means the charger is public.
func (c *Charger) Allows(vehicleID string) bool {
	return len(c.AllowedVehicles) == 0 || c.AllowedVehicles[vehicleID]
}

// PluggedCount returns the number of currently plugged vehicles.
func (c *Charger) PluggedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.plugged)
}

// IsPlugged reports whether the vehicle is currently plugged here.
func (c *Charger) IsPlugged(vehicleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plugged[vehicleID]
}

// AddVehicle plugs the vehicle in. It fails when the charger is at capacity
// or the vehicle is already plugged.
func (c *Charger) AddVehicle(vehicleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.plugged[vehicleID] {
		return fmt.Errorf("charger %s: vehicle %s already plugged", c.ID, vehicleID)
	}
	if len(c.plugged) >= c.PlugCount {
		return fmt.Errorf("charger %s: all %d plugs occupied", c.ID, c.PlugCount)
	}
	c.plugged[vehicleID] = true
	return nil
}

// RemoveVehicle unplugs the vehicle. Removing a vehicle that is not plugged
// is an error.
func (c *Charger) RemoveVehicle(vehicleID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.plugged[vehicleID] {
		return fmt.Errorf("charger %s: vehicle %s not plugged", c.ID, vehicleID)
	}
	delete(c.plugged, vehicleID)
	return nil
}

// ChargingInfrastructure is the registry of all chargers. Iteration order is
// the input order, which keeps nearest-charger tie-breaks stable.
type ChargingInfrastructure struct {
	chargers map[string]*Charger
	order    []*Charger
}

// NewChargingInfrastructure builds the registry from the given chargers.
func NewChargingInfrastructure(chargers []*Charger) *ChargingInfrastructure {
	m := make(map[string]*Charger, len(chargers))
	for _, c := range chargers {
		m[c.ID] = c
	}
	return &ChargingInfrastructure{chargers: m, order: chargers}
}

// Charger returns the charger with the given ID, or nil.
func (i *ChargingInfrastructure) Charger(id string) *Charger {
	return i.chargers[id]
}

// Chargers returns all chargers in stable input order.
func (i *ChargingInfrastructure) Chargers() []*Charger { return i.order }
