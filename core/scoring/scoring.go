package scoring

import (
	"math"
	"strings"

	"github.com/evmobility/urbanev/core/population"
	"github.com/evmobility/urbanev/core/pricing"
)

const (
	chargingIdentifier = " charging"
	lastActIdentifier  = " end"
	// walkingBeta shapes the saturating walking disutility, after Geurs &
	// van Wee (2004), eq. 1, inverted.
	walkingBeta = 0.005
)

// PersonScorer accumulates the charging-behaviour score of one person from
// the scoring events emitted during a run.
type PersonScorer struct {
	params    Params
	person    *population.Person
	collector *Collector
	score     float64
}

// NewPersonScorer creates a scorer for the given person. The collector
// receives every component contribution; it must not be nil.
func NewPersonScorer(params Params, person *population.Person, collector *Collector) *PersonScorer {
	return &PersonScorer{params: params, person: person, collector: collector}
}

// Score returns the accumulated score.
func (s *PersonScorer) Score() float64 { return s.score }

// HandleScoringEvent implements Sink.
func (s *PersonScorer) HandleScoringEvent(ev Event) {
	if ev.PersonID != s.person.ID {
		return
	}
	if !ev.CostOnly {
		s.scoreBehaviour(ev)
	}
	s.scoreChargingCost(ev)
}

func (s *PersonScorer) add(comp Component, delta float64) {
	s.collector.Add(comp, s.person.ID, delta)
	s.score += delta
}

func (s *PersonScorer) scoreBehaviour(ev Event) {
	soc := ev.SoCFraction

	// Punish SOC below the person's range-anxiety threshold.
	threshold := s.person.RangeAnxietyThreshold
	if soc > 0 && soc < threshold {
		s.add(ComponentRangeAnxiety, s.params.RangeAnxietyUtility*(threshold-soc)/threshold)
	}

	// Severely punish an empty battery.
	if soc == 0 {
		s.add(ComponentEmptyBattery, s.params.EmptyBatteryUtility)
	}

	// Punish walking distance, only when charging.
	if strings.Contains(ev.ActType, chargingIdentifier) {
		s.add(ComponentWalkingDistance, s.params.WalkingUtility*(1-math.Exp(-walkingBeta*ev.WalkingDistanceM)))
	}

	// Reward charging at a private home charger.
	if ev.ActType == "home"+chargingIdentifier && s.person.HomeChargerPowerKW > 0 {
		s.add(ComponentHomeCharging, s.params.HomeChargingUtility)
	}

	// Punish ending the day with less charge than it started with.
	if strings.Contains(ev.ActType, lastActIdentifier) {
		if strings.Contains(ev.ActType, chargingIdentifier) {
			// Charging through the last activity; assume it finishes full.
			soc = 1
		}
		socDiff := soc - ev.StartSoCFraction
		if socDiff <= 0 {
			s.add(ComponentEnergyBalance, s.params.SocDifferenceUtility*math.Abs(socDiff))
		} else {
			s.collector.Add(ComponentEnergyBalance, s.person.ID, 0)
		}
	}
}

func (s *PersonScorer) scoreChargingCost(ev Event) {
	if ev.EnergyChargedKWh == nil || *ev.EnergyChargedKWh <= 0 || ev.ChargerType == "" {
		return
	}
	unitPrice := s.params.UnitPrice(ev.ChargerType)
	effectiveBetaMoney := s.params.BetaMoney * s.params.AlphaScaleCost
	if unitPrice <= 0 || effectiveBetaMoney == 0 {
		return
	}

	// ToU pricing applies at home chargers, evaluated at the session start.
	touMultiplier := 1.0
	if ev.ChargerType == "home" {
		pricingTime := ev.TimeSeconds
		if ev.PricingTime != nil {
			pricingTime = *ev.PricingTime
		}
		touMultiplier = pricing.HourlyMultiplier(pricingTime)
	}

	cost := *ev.EnergyChargedKWh * unitPrice * touMultiplier
	s.add(ComponentChargingCost, effectiveBetaMoney*cost)
}
