package scoring

import "github.com/evmobility/urbanev/core/logger"

// Params are the utility weights and tariffs of the behaviour scoring.
type Params struct {
	// RangeAnxietyUtility is utils per fraction of SOC under the threshold;
	// negative.
	RangeAnxietyUtility float64 `json:"range_anxiety_utility"`
	// EmptyBatteryUtility is the one-off utility of an empty battery; very
	// negative.
	EmptyBatteryUtility float64 `json:"empty_battery_utility"`
	// WalkingUtility is utils per meter walked from charger to activity;
	// negative.
	WalkingUtility float64 `json:"walking_utility"`
	// HomeChargingUtility rewards using a private home charger; positive.
	HomeChargingUtility float64 `json:"home_charging_utility"`
	// SocDifferenceUtility penalizes ending the day below the starting SOC.
	SocDifferenceUtility float64 `json:"soc_difference_utility"`

	// BetaMoney is the marginal utility of money for charging costs,
	// typically negative. 0 disables the cost term.
	BetaMoney float64 `json:"beta_money"`
	// AlphaScaleCost scales BetaMoney; 1.0 means no scaling.
	AlphaScaleCost float64 `json:"alpha_scale_cost"`

	// Unit energy prices per charger type in currency/kWh.
	HomeChargingCost   float64 `json:"home_charging_cost"`
	WorkChargingCost   float64 `json:"work_charging_cost"`
	PublicChargingCost float64 `json:"public_charging_cost"`
}

// SetDefaults applies the standard utility weights.
func (p *Params) SetDefaults() {
	if p.RangeAnxietyUtility == 0 {
		p.RangeAnxietyUtility = -5
	}
	if p.EmptyBatteryUtility == 0 {
		p.EmptyBatteryUtility = -10
	}
	if p.WalkingUtility == 0 {
		p.WalkingUtility = -1
	}
	if p.HomeChargingUtility == 0 {
		p.HomeChargingUtility = 1
	}
	if p.SocDifferenceUtility == 0 {
		p.SocDifferenceUtility = -10
	}
	if p.AlphaScaleCost == 0 {
		p.AlphaScaleCost = 1.0
	}
}

// LogIfSuspicious reports configuration values that are syntactically valid
// but probably wrong. Nothing here halts execution: these are operator
// review signals, not validation gates.
func (p Params) LogIfSuspicious(log logger.Logger) {
	if p.BetaMoney > 0 {
		log.Warnf("beta_money > 0 (%v): charging cost will increase utility, is that intended?", p.BetaMoney)
	}
	if p.HomeChargingCost < 0 || p.WorkChargingCost < 0 || p.PublicChargingCost < 0 {
		log.Errorf("negative charging cost configured (home=%v work=%v public=%v), please review",
			p.HomeChargingCost, p.WorkChargingCost, p.PublicChargingCost)
	}
}

// UnitPrice returns the tariff for the given charger type.
func (p Params) UnitPrice(chargerType string) float64 {
	switch chargerType {
	case "home":
		return p.HomeChargingCost
	case "work":
		return p.WorkChargingCost
	case "public":
		return p.PublicChargingCost
	default:
		return 0
	}
}
