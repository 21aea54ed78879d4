package charging

import (
	"github.com/evmobility/urbanev/core/logger"
	"github.com/evmobility/urbanev/core/model"
)

// Allocator finds the best free charger in the vicinity of an activity
// location. If a charger is private, only allowed vehicles can charge there.
type Allocator struct {
	infra        *model.ChargingInfrastructure
	searchRadius float64
	log          logger.Logger
}

// NewAllocator creates an allocator searching within searchRadiusM meters.
func NewAllocator(infra *model.ChargingInfrastructure, searchRadiusM float64, log logger.Logger) *Allocator {
	return &Allocator{infra: infra, searchRadius: searchRadiusM, log: log}
}

// FindBestCharger returns the closest eligible charger to coord, or nil when
// none qualifies. Eligibility: the allow list admits the vehicle, the
// charger is strictly within the search radius, its category matches the
// vehicle and it has a free plug. Ties on distance keep the first charger in
// registry order, so results are reproducible.
func (a *Allocator) FindBestCharger(coord model.Coord, ev *model.ElectricVehicle) *model.Charger {
	radiusSq := a.searchRadius * a.searchRadius

	var best *model.Charger
	var bestDistSq float64
	for _, charger := range a.infra.Chargers() {
		if !charger.Allows(ev.ID) {
			continue
		}
		distSq := coord.SquaredDistanceTo(charger.Coord)
		if distSq >= radiusSq {
			continue
		}
		if !ev.CompatibleWith(charger.Type) {
			continue
		}
		if charger.PluggedCount() >= charger.PlugCount {
			continue
		}
		if best == nil || distSq < bestDistSq {
			best = charger
			bestDistSq = distSq
		}
	}

	if best == nil {
		a.log.Errorf("no charger found for EV %s at (%v, %v)", ev.ID, coord.X, coord.Y)
		return nil
	}
	return best
}
