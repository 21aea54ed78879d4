// Package sim loads self-contained charging scenarios and replays their
// event feed through the charging core.
package sim

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/evmobility/urbanev/core/events"
	"github.com/evmobility/urbanev/core/model"
	"github.com/evmobility/urbanev/core/population"
)

// Event kinds accepted in scenario files.
const (
	EventActivityStart = "activity_start"
	EventActivityEnd   = "activity_end"
	EventLeavesVehicle = "leaves_vehicle"
	EventTimeStep      = "time_step"
)

// VehicleSpec describes one electric vehicle.
type VehicleSpec struct {
	ID           string   `yaml:"id"`
	CapacityKWh  float64  `yaml:"capacity_kwh"`
	InitialSoC   float64  `yaml:"initial_soc"`
	ChargerTypes []string `yaml:"charger_types"`
}

// ChargerSpec describes one charger.
type ChargerSpec struct {
	ID              string   `yaml:"id"`
	X               float64  `yaml:"x"`
	Y               float64  `yaml:"y"`
	Type            string   `yaml:"type"`
	PowerKW         float64  `yaml:"power_kw"`
	PlugCount       int      `yaml:"plug_count"`
	AllowedVehicles []string `yaml:"allowed_vehicles"`
}

// PersonSpec describes one person.
type PersonSpec struct {
	ID                 string  `yaml:"id"`
	HomeChargerPowerKW float64 `yaml:"home_charger_power_kw"`
}

// EventSpec is one entry of the chronological feed.
type EventSpec struct {
	Time    float64 `yaml:"time"`
	Kind    string  `yaml:"kind"`
	Person  string  `yaml:"person"`
	Vehicle string  `yaml:"vehicle"`
	ActType string  `yaml:"act_type"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	// Departure is the planned activity end, used for deferral windows.
	Departure float64 `yaml:"departure"`
}

// Scenario is a complete simulation input.
type Scenario struct {
	Vehicles []VehicleSpec `yaml:"vehicles"`
	Chargers []ChargerSpec `yaml:"chargers"`
	Persons  []PersonSpec  `yaml:"persons"`
	Events   []EventSpec   `yaml:"events"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks identifiers and event references.
func (s *Scenario) Validate() error {
	vehicles := make(map[string]bool, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("vehicle without id")
		}
		if vehicles[v.ID] {
			return fmt.Errorf("duplicate vehicle id %q", v.ID)
		}
		if v.CapacityKWh <= 0 {
			return fmt.Errorf("vehicle %s: capacity must be positive", v.ID)
		}
		if v.InitialSoC < 0 || v.InitialSoC > 1 {
			return fmt.Errorf("vehicle %s: initial_soc outside [0,1]", v.ID)
		}
		vehicles[v.ID] = true
	}
	chargers := make(map[string]bool, len(s.Chargers))
	for _, c := range s.Chargers {
		if c.ID == "" {
			return fmt.Errorf("charger without id")
		}
		if chargers[c.ID] {
			return fmt.Errorf("duplicate charger id %q", c.ID)
		}
		if c.PlugCount <= 0 {
			return fmt.Errorf("charger %s: plug_count must be positive", c.ID)
		}
		chargers[c.ID] = true
	}
	persons := make(map[string]bool, len(s.Persons))
	for _, p := range s.Persons {
		if p.ID == "" {
			return fmt.Errorf("person without id")
		}
		if persons[p.ID] {
			return fmt.Errorf("duplicate person id %q", p.ID)
		}
		persons[p.ID] = true
	}
	for i, e := range s.Events {
		switch e.Kind {
		case EventActivityStart, EventActivityEnd:
			if !persons[e.Person] {
				return fmt.Errorf("event %d: unknown person %q", i, e.Person)
			}
		case EventLeavesVehicle:
			if !persons[e.Person] {
				return fmt.Errorf("event %d: unknown person %q", i, e.Person)
			}
			if !vehicles[e.Vehicle] {
				return fmt.Errorf("event %d: unknown vehicle %q", i, e.Vehicle)
			}
		case EventTimeStep:
		default:
			return fmt.Errorf("event %d: unknown kind %q", i, e.Kind)
		}
	}
	return nil
}

// BuildFleet constructs the vehicle registry.
func (s *Scenario) BuildFleet() *model.ElectricFleet {
	vehicles := make([]*model.ElectricVehicle, 0, len(s.Vehicles))
	for _, v := range s.Vehicles {
		types := make(map[string]bool, len(v.ChargerTypes))
		for _, t := range v.ChargerTypes {
			types[t] = true
		}
		vehicles = append(vehicles, &model.ElectricVehicle{
			ID:           v.ID,
			Battery:      model.NewBattery(v.CapacityKWh, v.InitialSoC),
			ChargerTypes: types,
		})
	}
	return model.NewElectricFleet(vehicles)
}

// BuildInfrastructure constructs the charger registry.
func (s *Scenario) BuildInfrastructure() *model.ChargingInfrastructure {
	chargers := make([]*model.Charger, 0, len(s.Chargers))
	for _, c := range s.Chargers {
		ch := model.NewCharger(c.ID, model.Coord{X: c.X, Y: c.Y}, c.Type, c.PowerKW, c.PlugCount)
		if len(c.AllowedVehicles) > 0 {
			ch.AllowedVehicles = make(map[string]bool, len(c.AllowedVehicles))
			for _, id := range c.AllowedVehicles {
				ch.AllowedVehicles[id] = true
			}
		}
		chargers = append(chargers, ch)
	}
	return model.NewChargingInfrastructure(chargers)
}

// BuildPopulation constructs the person registry.
func (s *Scenario) BuildPopulation() *population.Population {
	persons := make([]*population.Person, 0, len(s.Persons))
	for _, p := range s.Persons {
		persons = append(persons, &population.Person{
			ID:                 p.ID,
			HomeChargerPowerKW: p.HomeChargerPowerKW,
		})
	}
	return population.New(persons)
}

// Feed returns the events in chronological order, input order preserved
// among equal times.
func (s *Scenario) Feed() []events.Event {
	specs := make([]EventSpec, len(s.Events))
	copy(specs, s.Events)
	sort.SliceStable(specs, func(i, j int) bool { return specs[i].Time < specs[j].Time })

	feed := make([]events.Event, 0, len(specs))
	for _, e := range specs {
		switch e.Kind {
		case EventActivityStart:
			feed = append(feed, events.ActivityStart{
				TimeSeconds:      e.Time,
				PersonID:         e.Person,
				ActType:          e.ActType,
				Coord:            model.Coord{X: e.X, Y: e.Y},
				DepartureSeconds: e.Departure,
			})
		case EventActivityEnd:
			feed = append(feed, events.ActivityEnd{
				TimeSeconds: e.Time,
				PersonID:    e.Person,
				ActType:     e.ActType,
			})
		case EventLeavesVehicle:
			feed = append(feed, events.PersonLeavesVehicle{
				TimeSeconds: e.Time,
				PersonID:    e.Person,
				VehicleID:   e.Vehicle,
			})
		case EventTimeStep:
			feed = append(feed, events.TimeStep{TimeSeconds: e.Time})
		}
	}
	return feed
}
