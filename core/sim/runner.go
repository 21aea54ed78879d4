package sim

import (
	"context"
	"sort"

	"github.com/evmobility/urbanev/core/charging"
	"github.com/evmobility/urbanev/core/events"
	"github.com/evmobility/urbanev/core/logger"
	"github.com/evmobility/urbanev/core/metrics"
	"github.com/evmobility/urbanev/core/model"
	"github.com/evmobility/urbanev/core/scoring"
	"github.com/evmobility/urbanev/internal/eventbus"
)

// Summary reports the outcome of one scenario run.
type Summary struct {
	EventsProcessed int
	Sessions        int
	TotalEnergyKWh  float64
	// Scores maps person IDs to their accumulated behaviour score.
	Scores map[string]float64
	// ComponentSums maps score component names to their population-wide sum.
	ComponentSums map[string]float64
}

// Runner owns the component graph for one scenario run.
type Runner struct {
	scenario *Scenario
	log      logger.Logger

	fleet      *model.ElectricFleet
	infra      *model.ChargingInfrastructure
	tracker    *charging.SessionTracker
	sessionLog *charging.SessionLog
	occupancy  *charging.OccupancyHistory
	bus        *eventbus.TypedBus[events.SessionEvent]
	scorers    map[string]*scoring.PersonScorer
	collector  *scoring.Collector
}

// NewRunner builds the full component graph from the scenario. The charging
// config and scoring params must already be normalized. The extra metrics
// sink may be nil; the in-memory session log is always attached.
func NewRunner(sc *Scenario, cfg charging.Config, params scoring.Params, extraSink metrics.MetricsSink, log logger.Logger) *Runner {
	fleet := sc.BuildFleet()
	infra := sc.BuildInfrastructure()
	pop := sc.BuildPopulation()
	pop.InitializeAttributes(cfg.AwarenessFactor, cfg.DefaultRangeAnxietyThreshold, cfg.RandomSeed, log)

	collector := scoring.NewCollector()
	scorers := make(map[string]*scoring.PersonScorer, pop.Size())
	sinks := make(scoring.MultiSink, 0, pop.Size())
	for _, id := range pop.IDs() {
		s := scoring.NewPersonScorer(params, pop.Person(id), collector)
		scorers[id] = s
		sinks = append(sinks, s)
	}

	sessionLog := charging.NewSessionLog()
	var metricsSink metrics.MetricsSink = sessionLog
	if extraSink != nil {
		metricsSink = fanoutSink{sessionLog, extraSink}
	}

	bus := eventbus.NewTyped[events.SessionEvent]()
	allocator := charging.NewAllocator(infra, cfg.ParkingSearchRadiusM, log)
	solver := charging.NewStartTimeSolver(cfg, uint64(cfg.RandomSeed), log)
	scheduler := charging.NewDeferredScheduler(fleet, infra, metricsSink, log)
	tracker := charging.NewSessionTracker(cfg, fleet, infra, pop, allocator, solver, scheduler, sinks, metricsSink, bus, log)

	return &Runner{
		scenario:   sc,
		log:        log,
		fleet:      fleet,
		infra:      infra,
		tracker:    tracker,
		sessionLog: sessionLog,
		occupancy:  charging.NewOccupancyHistory(),
		bus:        bus,
		scorers:    scorers,
		collector:  collector,
	}
}

// Bus exposes the session event bus for external observers, e.g. an MQTT
// forwarder. Subscriptions must be made before Run is called.
func (r *Runner) Bus() *eventbus.TypedBus[events.SessionEvent] { return r.bus }

// SessionLog exposes the in-memory session record store.
func (r *Runner) SessionLog() *charging.SessionLog { return r.sessionLog }

// Occupancy exposes the per-charger occupancy history.
func (r *Runner) Occupancy() *charging.OccupancyHistory { return r.occupancy }

// Run replays the scenario feed chronologically. Between events a linear
// charge model advances the state of charge of every plugged vehicle, so
// scenarios are self-contained without an external battery model. Run
// returns early when the context is cancelled.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	occupancySub := r.bus.Subscribe()
	done := make(chan struct{})
	go func() {
		r.occupancy.Run(occupancySub)
		close(done)
	}()

	feed := r.scenario.Feed()
	processed := 0
	lastTime := 0.0
	if len(feed) > 0 {
		lastTime = feed[0].Time()
	}
	for _, ev := range feed {
		if err := ctx.Err(); err != nil {
			break
		}
		r.advanceCharging(lastTime, ev.Time())
		lastTime = ev.Time()
		r.tracker.HandleEvent(ev)
		processed++
	}

	r.bus.Close()
	<-done

	summary := Summary{
		EventsProcessed: processed,
		Sessions:        len(r.sessionLog.Entries()),
		TotalEnergyKWh:  r.sessionLog.TotalEnergyKWh(),
		Scores:          make(map[string]float64, len(r.scorers)),
		ComponentSums:   make(map[string]float64),
	}
	ids := make([]string, 0, len(r.scorers))
	for id := range r.scorers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		summary.Scores[id] = r.scorers[id].Score()
	}
	for _, comp := range []scoring.Component{
		scoring.ComponentRangeAnxiety,
		scoring.ComponentEmptyBattery,
		scoring.ComponentWalkingDistance,
		scoring.ComponentHomeCharging,
		scoring.ComponentEnergyBalance,
		scoring.ComponentChargingCost,
	} {
		if r.collector.PersonCount(comp) > 0 {
			summary.ComponentSums[comp.String()] = r.collector.Sum(comp)
		}
	}
	return summary, ctx.Err()
}

// advanceCharging applies the linear charge model to every vehicle with an
// active session over the interval [from, to).
func (r *Runner) advanceCharging(from, to float64) {
	dt := to - from
	if dt <= 0 {
		return
	}
	for _, v := range r.fleet.Vehicles() {
		session, ok := r.tracker.ActiveSession(v.ID)
		if !ok {
			continue
		}
		charger := r.infra.Charger(session.ChargerID)
		if charger == nil || charger.PowerKW <= 0 {
			continue
		}
		gained := charger.PowerKW * dt / 3600 / v.Battery.CapacityKWh
		v.Battery.SetSoCFraction(v.Battery.SoCFraction() + gained)
	}
}

// fanoutSink forwards session records to both the in-memory log and the
// configured external sink.
type fanoutSink [2]metrics.MetricsSink

func (f fanoutSink) RecordChargingSession(rec metrics.ChargingSessionRecord) error {
	if err := f[0].RecordChargingSession(rec); err != nil {
		return err
	}
	return f[1].RecordChargingSession(rec)
}

func (f fanoutSink) RecordOccupancy(chargerID string, plugged, capacity int) error {
	for _, s := range f {
		if rec, ok := s.(metrics.OccupancyRecorder); ok {
			if err := rec.RecordOccupancy(chargerID, plugged, capacity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f fanoutSink) RecordAllocationFailure(actType string) error {
	for _, s := range f {
		if rec, ok := s.(metrics.AllocationFailureRecorder); ok {
			if err := rec.RecordAllocationFailure(actType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f fanoutSink) RecordTaskDrop(vehicleID string) error {
	for _, s := range f {
		if rec, ok := s.(metrics.TaskDropRecorder); ok {
			if err := rec.RecordTaskDrop(vehicleID); err != nil {
				return err
			}
		}
	}
	return nil
}
