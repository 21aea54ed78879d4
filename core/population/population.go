// Package population holds per-person attributes consumed by the charging
// core and the behaviour scoring.
package population

import (
	"math/rand"
	"sort"

	"github.com/evmobility/urbanev/core/logger"
)

// DefaultSubpopulation is assigned to every person at initialization.
const DefaultSubpopulation = "nonCriticalSOC"

// Person carries the attributes relevant to charging behavior. The
// awareness flag is sampled once at population initialization and is
// immutable afterwards.
type Person struct {
	ID                    string
	Subpopulation         string
	SmartChargingAware    bool
	RangeAnxietyThreshold float64
	// HomeChargerPowerKW is zero when the person has no home charger. It is
	// consumed by the scoring component, not the charging core.
	HomeChargerPowerKW float64
}

// Population is an identity-keyed registry of persons with a fixed
// iteration order.
type Population struct {
	persons map[string]*Person
	order   []string
}

// New builds a population from the given persons.
func New(persons []*Person) *Population {
	m := make(map[string]*Person, len(persons))
	order := make([]string, 0, len(persons))
	for _, p := range persons {
		m[p.ID] = p
		order = append(order, p.ID)
	}
	sort.Strings(order)
	return &Population{persons: m, order: order}
}

// Person returns the person with the given ID, or nil.
func (p *Population) Person(id string) *Person {
	return p.persons[id]
}

// IDs returns all person IDs in sorted order.
func (p *Population) IDs() []string { return p.order }

// Size returns the number of persons.
func (p *Population) Size() int { return len(p.persons) }

// InitializeAttributes assigns the default subpopulation, fills in the
// range-anxiety threshold where unset, and samples the smart-charging
// awareness flag from awarenessFactor. Sampling consumes one seeded stream
// in sorted person order, never re-seeded, so runs are reproducible.
func (p *Population) InitializeAttributes(awarenessFactor, defaultRangeAnxietyThreshold float64, seed int64, log logger.Logger) {
	rng := rand.New(rand.NewSource(seed))
	aware := 0
	for _, id := range p.order {
		person := p.persons[id]
		if person.Subpopulation == "" {
			person.Subpopulation = DefaultSubpopulation
		}
		if person.RangeAnxietyThreshold == 0 {
			person.RangeAnxietyThreshold = defaultRangeAnxietyThreshold
		}
		person.SmartChargingAware = rng.Float64() < awarenessFactor
		if person.SmartChargingAware {
			aware++
		}
	}
	log.Infof("population initialized: %d/%d persons ToU-aware (factor=%.2f)", aware, len(p.order), awarenessFactor)
}
