package charging

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/evmobility/urbanev/core/events"
	"github.com/evmobility/urbanev/core/logger"
	"github.com/evmobility/urbanev/core/metrics"
	"github.com/evmobility/urbanev/core/model"
	"github.com/evmobility/urbanev/core/population"
	"github.com/evmobility/urbanev/core/scoring"
	"github.com/evmobility/urbanev/internal/eventbus"
)

// ChargingIdentifier marks activity types that involve charging, e.g.
// "home charging" or "work charging".
const ChargingIdentifier = " charging"

// FailedIdentifier is appended to an activity type when no charger could be
// allocated, so the surrounding replanning can react.
const FailedIdentifier = " failed"

// pendingPlug remembers allocation context between a deferred Schedule call
// and the plug-in firing.
type pendingPlug struct {
	personID         string
	walkingDistanceM float64
}

// SessionTracker is the event-driven state machine of the charging core. It
// consumes the chronological event feed, drives the allocator and the
// start-time solver, maintains active session state and emits scoring
// telemetry. It advances the deferred scheduler on every event it processes;
// no independent clock exists.
type SessionTracker struct {
	cfg       Config
	fleet     *model.ElectricFleet
	infra     *model.ChargingInfrastructure
	pop       *population.Population
	allocator *Allocator
	solver    *StartTimeSolver
	scheduler *DeferredScheduler
	scoring   scoring.Sink
	metrics   metrics.MetricsSink
	bus       *eventbus.TypedBus[events.SessionEvent]
	log       logger.Logger

	mu              sync.Mutex
	lastVehicleUsed map[string]string // person -> vehicle
	sessions        map[string]*Session
	pending         map[string]pendingPlug
}

// NewSessionTracker wires the tracker to its collaborators and registers it
// as the scheduler's plug listener. The bus is optional; scoringSink and
// sink may be nil and default to no-ops.
func NewSessionTracker(
	cfg Config,
	fleet *model.ElectricFleet,
	infra *model.ChargingInfrastructure,
	pop *population.Population,
	allocator *Allocator,
	solver *StartTimeSolver,
	scheduler *DeferredScheduler,
	scoringSink scoring.Sink,
	sink metrics.MetricsSink,
	bus *eventbus.TypedBus[events.SessionEvent],
	log logger.Logger,
) *SessionTracker {
	if scoringSink == nil {
		scoringSink = scoring.SinkFunc(func(scoring.Event) {})
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	t := &SessionTracker{
		cfg:             cfg,
		fleet:           fleet,
		infra:           infra,
		pop:             pop,
		allocator:       allocator,
		solver:          solver,
		scheduler:       scheduler,
		scoring:         scoringSink,
		metrics:         sink,
		bus:             bus,
		log:             log,
		lastVehicleUsed: make(map[string]string),
		sessions:        make(map[string]*Session),
		pending:         make(map[string]pendingPlug),
	}
	scheduler.SetListener(t)
	return t
}

// HandleEvent dispatches one event of the chronological feed. The deferred
// scheduler is advanced first so that tasks due at or before this event's
// time fire before the event itself is handled.
func (t *SessionTracker) HandleEvent(ev events.Event) {
	t.scheduler.ProcessDueTasks(ev.Time())
	switch e := ev.(type) {
	case events.ActivityStart:
		t.handleActivityStart(e)
	case events.ActivityEnd:
		t.handleActivityEnd(e)
	case events.PersonLeavesVehicle:
		t.handlePersonLeavesVehicle(e)
	case events.TimeStep:
		// Clock advance only; ProcessDueTasks already ran.
	}
}

// ActiveSession returns a copy of the vehicle's active session, if any.
func (t *SessionTracker) ActiveSession(vehicleID string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[vehicleID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Reset clears all per-run state, including pending scheduler tasks.
func (t *SessionTracker) Reset() {
	t.scheduler.Reset()
	t.mu.Lock()
	t.lastVehicleUsed = make(map[string]string)
	t.sessions = make(map[string]*Session)
	t.pending = make(map[string]pendingPlug)
	t.mu.Unlock()
}

func (t *SessionTracker) handlePersonLeavesVehicle(e events.PersonLeavesVehicle) {
	t.mu.Lock()
	t.lastVehicleUsed[e.PersonID] = e.VehicleID
	t.mu.Unlock()
}

func (t *SessionTracker) handleActivityStart(e events.ActivityStart) {
	t.mu.Lock()
	vehicleID, ok := t.lastVehicleUsed[e.PersonID]
	t.mu.Unlock()
	if !ok {
		return
	}
	ev := t.fleet.Vehicle(vehicleID)
	if ev == nil {
		return
	}

	actType := e.ActType
	walkingDistance := 0.0

	if strings.HasSuffix(e.ActType, ChargingIdentifier) {
		charger := t.allocator.FindBestCharger(e.Coord, ev)
		if charger != nil {
			walkingDistance = e.Coord.DistanceTo(charger.Coord)
			t.startOrDeferSession(e, ev, charger, walkingDistance)
		} else {
			actType = e.ActType + FailedIdentifier
			t.recordAllocationFailure(e, vehicleID, actType)
		}
	}

	soc := ev.Battery.SoCFraction()
	t.scoring.HandleScoringEvent(scoring.Event{
		TimeSeconds:      e.TimeSeconds,
		PersonID:         e.PersonID,
		SoCFraction:      soc,
		WalkingDistanceM: walkingDistance,
		ActType:          actType,
		StartSoCFraction: ev.Battery.InitialSoCFraction,
	})
}

// startOrDeferSession plugs the vehicle in immediately or, when smart
// charging yields a later start, hands the plug-in to the scheduler.
func (t *SessionTracker) startOrDeferSession(e events.ActivityStart, ev *model.ElectricVehicle, charger *model.Charger, walkingDistance float64) {
	start := e.TimeSeconds
	if t.cfg.EnableSmartCharging {
		aware := false
		if p := t.pop.Person(e.PersonID); p != nil {
			aware = p.SmartChargingAware
		}
		duration := chargeDurationEstimate(ev, charger)
		start = t.solver.ComputeOptimalStartTime(e.TimeSeconds, e.DepartureSeconds, duration, aware)
	}

	if start > e.TimeSeconds+dueEpsilon {
		t.mu.Lock()
		t.pending[ev.ID] = pendingPlug{personID: e.PersonID, walkingDistanceM: walkingDistance}
		t.mu.Unlock()
		t.scheduler.Schedule(ev.ID, charger.ID, start)
		return
	}

	if err := charger.AddVehicle(ev.ID); err != nil {
		// Lost the plug between the eligibility check and now.
		t.log.Warnf("plug-in of EV %s at charger %s failed: %v", ev.ID, charger.ID, err)
		t.recordAllocationFailure(e, ev.ID, e.ActType+FailedIdentifier)
		return
	}
	t.openSession(e.PersonID, ev, charger, e.TimeSeconds, walkingDistance)
}

// OnDeferredPlugIn implements PlugListener. The scheduler has already
// plugged the vehicle in; this records the session start state.
func (t *SessionTracker) OnDeferredPlugIn(vehicleID, chargerID string, now float64) {
	ev := t.fleet.Vehicle(vehicleID)
	charger := t.infra.Charger(chargerID)
	if ev == nil || charger == nil {
		return
	}
	t.mu.Lock()
	p := t.pending[vehicleID]
	delete(t.pending, vehicleID)
	t.mu.Unlock()
	t.openSession(p.personID, ev, charger, now, p.walkingDistanceM)
}

func (t *SessionTracker) openSession(personID string, ev *model.ElectricVehicle, charger *model.Charger, now, walkingDistance float64) {
	session := &Session{
		ID:               uuid.NewString(),
		VehicleID:        ev.ID,
		ChargerID:        charger.ID,
		StartTime:        now,
		StartSoCFraction: ev.Battery.SoCFraction(),
		WalkingDistanceM: walkingDistance,
	}
	t.mu.Lock()
	t.sessions[ev.ID] = session
	t.mu.Unlock()

	t.publish(events.SessionEvent{
		Kind:         events.SessionPlugged,
		TimeSeconds:  now,
		PersonID:     personID,
		VehicleID:    ev.ID,
		ChargerID:    charger.ID,
		PluggedCount: charger.PluggedCount(),
	})
	if rec, ok := t.metrics.(metrics.OccupancyRecorder); ok {
		if err := rec.RecordOccupancy(charger.ID, charger.PluggedCount(), charger.PlugCount); err != nil {
			t.log.Errorf("occupancy metrics error: %v", err)
		}
	}
}

func (t *SessionTracker) handleActivityEnd(e events.ActivityEnd) {
	if !strings.HasSuffix(e.ActType, ChargingIdentifier) {
		return
	}
	t.mu.Lock()
	vehicleID, ok := t.lastVehicleUsed[e.PersonID]
	t.mu.Unlock()
	if !ok {
		return
	}
	ev := t.fleet.Vehicle(vehicleID)
	if ev == nil {
		return
	}

	// A session that never fired its deferred start is silently dropped.
	t.scheduler.CancelIfScheduled(vehicleID)
	t.mu.Lock()
	delete(t.pending, vehicleID)
	session, active := t.sessions[vehicleID]
	delete(t.sessions, vehicleID)
	t.mu.Unlock()
	if !active {
		return
	}

	endSoC := ev.Battery.SoCFraction()
	energyKWh := 0.0
	if delta := endSoC - session.StartSoCFraction; delta > 0 {
		energyKWh = delta * ev.Battery.CapacityKWh
	}

	if energyKWh > 0 {
		chargerType := classifyChargerType(e.ActType)
		pricingTime := session.StartTime
		energy := energyKWh
		t.scoring.HandleScoringEvent(scoring.Event{
			TimeSeconds:      e.TimeSeconds,
			PersonID:         e.PersonID,
			SoCFraction:      endSoC,
			WalkingDistanceM: 0,
			ActType:          e.ActType,
			StartSoCFraction: ev.Battery.InitialSoCFraction,
			PricingTime:      &pricingTime,
			EnergyChargedKWh: &energy,
			ChargerType:      chargerType,
			CostOnly:         true,
		})
	}

	if err := t.metrics.RecordChargingSession(metrics.ChargingSessionRecord{
		SessionID:        session.ID,
		PersonID:         e.PersonID,
		VehicleID:        vehicleID,
		ChargerID:        session.ChargerID,
		ChargerType:      classifyChargerType(e.ActType),
		StartTime:        session.StartTime,
		EndTime:          e.TimeSeconds,
		StartSoCFraction: session.StartSoCFraction,
		EndSoCFraction:   endSoC,
		EnergyKWh:        energyKWh,
		WalkingDistanceM: session.WalkingDistanceM,
	}); err != nil {
		t.log.Errorf("session metrics error: %v", err)
	}

	charger := t.infra.Charger(session.ChargerID)
	if charger == nil {
		t.log.Warnf("charger %s vanished before unplugging EV %s", session.ChargerID, vehicleID)
		return
	}
	if err := charger.RemoveVehicle(vehicleID); err != nil {
		t.log.Errorf("unplugging EV %s from charger %s: %v", vehicleID, charger.ID, err)
		return
	}
	t.publish(events.SessionEvent{
		Kind:         events.SessionUnplugged,
		TimeSeconds:  e.TimeSeconds,
		PersonID:     e.PersonID,
		VehicleID:    vehicleID,
		ChargerID:    charger.ID,
		PluggedCount: charger.PluggedCount(),
	})
	if rec, ok := t.metrics.(metrics.OccupancyRecorder); ok {
		if err := rec.RecordOccupancy(charger.ID, charger.PluggedCount(), charger.PlugCount); err != nil {
			t.log.Errorf("occupancy metrics error: %v", err)
		}
	}
}

func (t *SessionTracker) recordAllocationFailure(e events.ActivityStart, vehicleID, actType string) {
	if rec, ok := t.metrics.(metrics.AllocationFailureRecorder); ok {
		if err := rec.RecordAllocationFailure(actType); err != nil {
			t.log.Errorf("allocation failure metrics error: %v", err)
		}
	}
	t.publish(events.SessionEvent{
		Kind:        events.SessionAllocationFailed,
		TimeSeconds: e.TimeSeconds,
		PersonID:    e.PersonID,
		VehicleID:   vehicleID,
	})
}

func (t *SessionTracker) publish(ev events.SessionEvent) {
	if t.bus != nil {
		t.bus.Publish(ev)
	}
}

// chargeDurationEstimate approximates the time to a full charge at the
// charger's rated power, in seconds.
func chargeDurationEstimate(ev *model.ElectricVehicle, charger *model.Charger) float64 {
	if charger.PowerKW <= 0 {
		return 0
	}
	missingKWh := (1 - ev.Battery.SoCFraction()) * ev.Battery.CapacityKWh
	return missingKWh / charger.PowerKW * 3600
}

// classifyChargerType derives the charger category from the activity type
// prefix: "home" and "work" map to themselves, everything else is public.
func classifyChargerType(actType string) string {
	switch {
	case strings.HasPrefix(actType, "home"):
		return "home"
	case strings.HasPrefix(actType, "work"):
		return "work"
	default:
		return "public"
	}
}
