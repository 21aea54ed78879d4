package charging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evmobility/urbanev/core/events"
	"github.com/evmobility/urbanev/core/model"
	"github.com/evmobility/urbanev/core/population"
	"github.com/evmobility/urbanev/core/scoring"
	"github.com/evmobility/urbanev/infra/logger"
)

type trackerFixture struct {
	tracker   *SessionTracker
	scheduler *DeferredScheduler
	charger   *model.Charger
	vehicle   *model.ElectricVehicle
	log       *SessionLog
	events    *[]scoring.Event
}

func newTrackerFixture(t *testing.T, cfg Config) trackerFixture {
	t.Helper()
	cfg.SetDefaults()

	vehicle := &model.ElectricVehicle{
		ID:           "v1",
		Battery:      model.NewBattery(50, 0.4),
		ChargerTypes: map[string]bool{"AC22": true},
	}
	charger := model.NewCharger("c1", model.Coord{X: 100}, "AC22", 22, 2)
	fleet := model.NewElectricFleet([]*model.ElectricVehicle{vehicle})
	infra := model.NewChargingInfrastructure([]*model.Charger{charger})
	pop := population.New([]*population.Person{{ID: "p1", SmartChargingAware: true, RangeAnxietyThreshold: 0.2}})

	var received []scoring.Event
	sink := scoring.SinkFunc(func(ev scoring.Event) { received = append(received, ev) })

	sessionLog := NewSessionLog()
	nop := logger.NopLogger{}
	allocator := NewAllocator(infra, cfg.ParkingSearchRadiusM, nop)
	solver := NewStartTimeSolver(cfg, 1, nop)
	scheduler := NewDeferredScheduler(fleet, infra, nil, nop)
	tracker := NewSessionTracker(cfg, fleet, infra, pop, allocator, solver, scheduler, sink, sessionLog, nil, nop)

	return trackerFixture{
		tracker:   tracker,
		scheduler: scheduler,
		charger:   charger,
		vehicle:   vehicle,
		log:       sessionLog,
		events:    &received,
	}
}

func TestTrackerImmediatePlugIn(t *testing.T) {
	f := newTrackerFixture(t, Config{})

	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 50, PersonID: "p1", VehicleID: "v1"})
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "p1", ActType: "work charging", Coord: model.Coord{}})

	require.Equal(t, 1, f.charger.PluggedCount())
	session, ok := f.tracker.ActiveSession("v1")
	require.True(t, ok)
	assert.Equal(t, "c1", session.ChargerID)
	assert.Equal(t, 100.0, session.StartTime)
	assert.InDelta(t, 0.4, session.StartSoCFraction, 1e-9)
	assert.NotEmpty(t, session.ID)

	require.Len(t, *f.events, 1)
	ev := (*f.events)[0]
	assert.Equal(t, "work charging", ev.ActType)
	assert.InDelta(t, 100.0, ev.WalkingDistanceM, 1e-9)
	assert.False(t, ev.CostOnly)
}

func TestTrackerEnergyAccountingOnEnd(t *testing.T) {
	f := newTrackerFixture(t, Config{})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "p1", ActType: "work charging", Coord: model.Coord{}})

	// External battery model charges the vehicle during the activity.
	f.vehicle.Battery.SetSoCFraction(0.7)
	f.tracker.HandleEvent(events.ActivityEnd{TimeSeconds: 4000, PersonID: "p1", ActType: "work charging"})

	assert.Equal(t, 0, f.charger.PluggedCount())
	if _, ok := f.tracker.ActiveSession("v1"); ok {
		t.Fatalf("session still active after activity end")
	}

	require.Len(t, *f.events, 2)
	cost := (*f.events)[1]
	require.True(t, cost.CostOnly)
	require.NotNil(t, cost.EnergyChargedKWh)
	assert.InDelta(t, 15.0, *cost.EnergyChargedKWh, 1e-9)
	assert.Equal(t, "work", cost.ChargerType)
	require.NotNil(t, cost.PricingTime)
	assert.Equal(t, 100.0, *cost.PricingTime)

	entries := f.log.Entries()
	require.Len(t, entries, 1)
	assert.InDelta(t, 15.0, entries[0].EnergyKWh, 1e-9)
	assert.Equal(t, "work", entries[0].ChargerType)
	assert.Greater(t, entries[0].EndTime, entries[0].StartTime)
}

func TestTrackerNoCostEventWithoutEnergyGain(t *testing.T) {
	f := newTrackerFixture(t, Config{})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "p1", ActType: "home charging", Coord: model.Coord{}})

	// SOC decreased; no energy was delivered.
	f.vehicle.Battery.SetSoCFraction(0.35)
	f.tracker.HandleEvent(events.ActivityEnd{TimeSeconds: 4000, PersonID: "p1", ActType: "home charging"})

	require.Len(t, *f.events, 1, "only the activity-start event expected")
	assert.Equal(t, 0, f.charger.PluggedCount(), "vehicle must be unplugged regardless")
	entries := f.log.Entries()
	require.Len(t, entries, 1)
	assert.Zero(t, entries[0].EnergyKWh)
}

func TestTrackerAllocationFailure(t *testing.T) {
	f := newTrackerFixture(t, Config{})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	// Out of the 500m search radius.
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "p1", ActType: "leisure charging", Coord: model.Coord{X: 5000}})

	assert.Equal(t, 0, f.charger.PluggedCount())
	require.Len(t, *f.events, 1)
	ev := (*f.events)[0]
	assert.Equal(t, "leisure charging failed", ev.ActType)
	assert.Zero(t, ev.WalkingDistanceM)
}

func TestTrackerIgnoresNonChargingActivities(t *testing.T) {
	f := newTrackerFixture(t, Config{})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "p1", ActType: "work", Coord: model.Coord{}})

	assert.Equal(t, 0, f.charger.PluggedCount())
	// A scoring event is still emitted for EV users, with zero walking.
	require.Len(t, *f.events, 1)
	assert.Zero(t, (*f.events)[0].WalkingDistanceM)
}

func TestTrackerIgnoresUnknownPersons(t *testing.T) {
	f := newTrackerFixture(t, Config{})
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "stranger", ActType: "work charging", Coord: model.Coord{}})
	assert.Empty(t, *f.events)
	assert.Equal(t, 0, f.charger.PluggedCount())
}

func TestTrackerDeferredPlugIn(t *testing.T) {
	f := newTrackerFixture(t, Config{EnableSmartCharging: true})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	// Arrival 08:00 in an expensive bin, departure 14:00; the solver defers
	// the start into the cheap bin at 10:00.
	f.tracker.HandleEvent(events.ActivityStart{
		TimeSeconds:      28800,
		PersonID:         "p1",
		ActType:          "work charging",
		Coord:            model.Coord{},
		DepartureSeconds: 50400,
	})

	require.Equal(t, 0, f.charger.PluggedCount(), "vehicle must not be plugged before the deferred start")
	require.Equal(t, 1, f.scheduler.PendingCount())

	// Advancing the clock past the deferred start fires the plug-in.
	f.tracker.HandleEvent(events.TimeStep{TimeSeconds: 36600})
	require.Equal(t, 1, f.charger.PluggedCount())
	session, ok := f.tracker.ActiveSession("v1")
	require.True(t, ok)
	assert.Equal(t, 36600.0, session.StartTime)
	assert.InDelta(t, 100.0, session.WalkingDistanceM, 1e-9)
}

func TestTrackerCancelsDeferredTaskOnEarlyEnd(t *testing.T) {
	f := newTrackerFixture(t, Config{EnableSmartCharging: true})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	f.tracker.HandleEvent(events.ActivityStart{
		TimeSeconds:      28800,
		PersonID:         "p1",
		ActType:          "work charging",
		Coord:            model.Coord{},
		DepartureSeconds: 50400,
	})
	require.Equal(t, 1, f.scheduler.PendingCount())

	// Activity ends before the deferred start ever fires.
	f.tracker.HandleEvent(events.ActivityEnd{TimeSeconds: 30000, PersonID: "p1", ActType: "work charging"})
	assert.Equal(t, 0, f.scheduler.PendingCount())
	assert.Equal(t, 0, f.charger.PluggedCount())
	assert.Empty(t, f.log.Entries(), "no session record without a plug-in")

	// A later clock advance must not resurrect the task.
	f.tracker.HandleEvent(events.TimeStep{TimeSeconds: 40000})
	assert.Equal(t, 0, f.charger.PluggedCount())
}

func TestTrackerReset(t *testing.T) {
	f := newTrackerFixture(t, Config{})
	f.tracker.HandleEvent(events.PersonLeavesVehicle{TimeSeconds: 0, PersonID: "p1", VehicleID: "v1"})
	f.tracker.HandleEvent(events.ActivityStart{TimeSeconds: 100, PersonID: "p1", ActType: "work charging", Coord: model.Coord{}})
	f.tracker.Reset()
	if _, ok := f.tracker.ActiveSession("v1"); ok {
		t.Fatalf("session survived reset")
	}
	assert.Equal(t, 0, f.scheduler.PendingCount())
}

func TestClassifyChargerType(t *testing.T) {
	assert.Equal(t, "home", classifyChargerType("home charging"))
	assert.Equal(t, "work", classifyChargerType("work charging"))
	assert.Equal(t, "public", classifyChargerType("leisure charging"))
	assert.Equal(t, "public", classifyChargerType("shopping charging"))
}
