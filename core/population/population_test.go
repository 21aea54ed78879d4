package population

import (
	"testing"

	"github.com/evmobility/urbanev/infra/logger"
)

func makePersons() []*Person {
	return []*Person{
		{ID: "p3"}, {ID: "p1"}, {ID: "p2"}, {ID: "p5"}, {ID: "p4"},
	}
}

func awarenessVector(p *Population) []bool {
	var out []bool
	for _, id := range p.IDs() {
		out = append(out, p.Person(id).SmartChargingAware)
	}
	return out
}

func TestInitializeAttributesDeterministic(t *testing.T) {
	a := New(makePersons())
	b := New(makePersons())
	a.InitializeAttributes(0.5, 0.2, 42, logger.NopLogger{})
	b.InitializeAttributes(0.5, 0.2, 42, logger.NopLogger{})

	va, vb := awarenessVector(a), awarenessVector(b)
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("awareness differs at %d despite identical seeds: %v vs %v", i, va, vb)
		}
	}
}

func TestInitializeAttributesDefaults(t *testing.T) {
	p := New(makePersons())
	p.InitializeAttributes(0, 0.2, 1, logger.NopLogger{})
	for _, id := range p.IDs() {
		person := p.Person(id)
		if person.Subpopulation != DefaultSubpopulation {
			t.Errorf("%s: subpopulation = %q", id, person.Subpopulation)
		}
		if person.RangeAnxietyThreshold != 0.2 {
			t.Errorf("%s: threshold = %v", id, person.RangeAnxietyThreshold)
		}
		if person.SmartChargingAware {
			t.Errorf("%s: aware despite factor 0", id)
		}
	}
}

func TestInitializeAttributesAllAware(t *testing.T) {
	p := New(makePersons())
	p.InitializeAttributes(1, 0.2, 1, logger.NopLogger{})
	for _, id := range p.IDs() {
		if !p.Person(id).SmartChargingAware {
			t.Errorf("%s: not aware despite factor 1", id)
		}
	}
}
