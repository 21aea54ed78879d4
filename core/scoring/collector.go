package scoring

import "sync"

// Component identifies one term of the behaviour score.
type Component int

const (
	ComponentRangeAnxiety Component = iota
	ComponentEmptyBattery
	ComponentWalkingDistance
	ComponentHomeCharging
	ComponentEnergyBalance
	ComponentChargingCost
)

func (c Component) String() string {
	switch c {
	case ComponentRangeAnxiety:
		return "range_anxiety"
	case ComponentEmptyBattery:
		return "empty_battery"
	case ComponentWalkingDistance:
		return "walking_distance"
	case ComponentHomeCharging:
		return "home_charging"
	case ComponentEnergyBalance:
		return "energy_balance"
	case ComponentChargingCost:
		return "charging_cost"
	default:
		return "unknown"
	}
}

// Collector aggregates score contributions per component across all persons.
// One Collector is built per run and passed into each scorer explicitly.
type Collector struct {
	mu      sync.Mutex
	sums    map[Component]float64
	persons map[Component]map[string]bool
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		sums:    make(map[Component]float64),
		persons: make(map[Component]map[string]bool),
	}
}

// Add records a score contribution for a person.
func (c *Collector) Add(comp Component, personID string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sums[comp] += value
	set := c.persons[comp]
	if set == nil {
		set = make(map[string]bool)
		c.persons[comp] = set
	}
	set[personID] = true
}

// Sum returns the accumulated value for the component.
func (c *Collector) Sum(comp Component) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sums[comp]
}

// PersonCount returns how many distinct persons contributed to the component.
func (c *Collector) PersonCount(comp Component) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.persons[comp])
}

// Reset clears all accumulated values, for reuse between runs.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sums = make(map[Component]float64)
	c.persons = make(map[Component]map[string]bool)
}
