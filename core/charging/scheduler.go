package charging

import (
	"sort"
	"sync"

	"github.com/evmobility/urbanev/core/logger"
	"github.com/evmobility/urbanev/core/metrics"
	"github.com/evmobility/urbanev/core/model"
)

// dueEpsilon absorbs float jitter when comparing task start times against
// the current simulation time.
const dueEpsilon = 1e-3

// PlugListener is notified after the scheduler plugs a vehicle in.
type PlugListener interface {
	OnDeferredPlugIn(vehicleID, chargerID string, now float64)
}

// DeferredScheduler holds at most one pending plug-in task per vehicle and
// fires tasks when the simulation clock reaches their start time. It has no
// clock of its own: the session tracker advances it on every event it
// processes. The host may invoke it from concurrent callback paths, so all
// state lives behind one mutex.
type DeferredScheduler struct {
	fleet    *model.ElectricFleet
	infra    *model.ChargingInfrastructure
	listener PlugListener
	metrics  metrics.MetricsSink
	log      logger.Logger

	mu    sync.Mutex
	tasks map[string]ScheduledTask
}

// NewDeferredScheduler creates a scheduler with no pending tasks. The plug
// listener is attached later via SetListener because the tracker and the
// scheduler reference each other.
func NewDeferredScheduler(fleet *model.ElectricFleet, infra *model.ChargingInfrastructure, sink metrics.MetricsSink, log logger.Logger) *DeferredScheduler {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &DeferredScheduler{
		fleet:   fleet,
		infra:   infra,
		metrics: sink,
		log:     log,
		tasks:   make(map[string]ScheduledTask),
	}
}

// SetListener attaches the deferred plug-in listener.
func (s *DeferredScheduler) SetListener(l PlugListener) {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
}

// Schedule registers a deferred plug-in for the vehicle, overwriting any
// prior task. Negative start times are clamped to zero.
func (s *DeferredScheduler) Schedule(vehicleID, chargerID string, startTime float64) {
	if startTime < 0 {
		startTime = 0
	}
	s.mu.Lock()
	s.tasks[vehicleID] = ScheduledTask{VehicleID: vehicleID, ChargerID: chargerID, StartTime: startTime}
	s.mu.Unlock()
	s.log.Infof("scheduled EV %s at t=%d on charger %s", vehicleID, int(startTime), chargerID)
}

// CancelIfScheduled removes the vehicle's pending task if present. Used when
// a session ends before its deferred start ever fires.
func (s *DeferredScheduler) CancelIfScheduled(vehicleID string) {
	s.mu.Lock()
	_, had := s.tasks[vehicleID]
	delete(s.tasks, vehicleID)
	s.mu.Unlock()
	if had {
		s.log.Debugf("cancelled schedule for EV %s", vehicleID)
	}
}

// PendingCount returns the number of pending tasks.
func (s *DeferredScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// ProcessDueTasks fires every task whose start time is <= now (within a 1ms
// epsilon). Due tasks are removed from the map before any side effect runs,
// so each fires at most once even under reentrant or repeated calls at the
// same time. A task whose vehicle or charger is missing is dropped without
// retry.
func (s *DeferredScheduler) ProcessDueTasks(now float64) {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return
	}
	var due []ScheduledTask
	for id, task := range s.tasks {
		if task.StartTime <= now+dueEpsilon {
			due = append(due, task)
			delete(s.tasks, id)
		}
	}
	listener := s.listener
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}
	// Earlier-scheduled tasks fire first; equal start times resolve by
	// vehicle ID to keep runs reproducible.
	sort.Slice(due, func(i, j int) bool {
		if due[i].StartTime != due[j].StartTime {
			return due[i].StartTime < due[j].StartTime
		}
		return due[i].VehicleID < due[j].VehicleID
	})

	for _, task := range due {
		ev := s.fleet.Vehicle(task.VehicleID)
		charger := s.infra.Charger(task.ChargerID)
		if ev == nil || charger == nil {
			s.log.Warnf("could not plug EV %s at t=%d (vehicle or charger missing)", task.VehicleID, int(now))
			if rec, ok := s.metrics.(metrics.TaskDropRecorder); ok {
				if err := rec.RecordTaskDrop(task.VehicleID); err != nil {
					s.log.Errorf("task drop metrics error: %v", err)
				}
			}
			continue
		}
		if err := charger.AddVehicle(ev.ID); err != nil {
			s.log.Warnf("deferred plug-in of EV %s at charger %s failed: %v", ev.ID, charger.ID, err)
			if rec, ok := s.metrics.(metrics.TaskDropRecorder); ok {
				if err := rec.RecordTaskDrop(task.VehicleID); err != nil {
					s.log.Errorf("task drop metrics error: %v", err)
				}
			}
			continue
		}
		if listener != nil {
			listener.OnDeferredPlugIn(task.VehicleID, task.ChargerID, now)
		}
		s.log.Infof("plugging EV %s at charger %s at t=%d (scheduled t=%d)",
			task.VehicleID, task.ChargerID, int(now), int(task.StartTime))
	}
}

// Reset clears all pending tasks. Used between independent simulation runs.
func (s *DeferredScheduler) Reset() {
	s.mu.Lock()
	s.tasks = make(map[string]ScheduledTask)
	s.mu.Unlock()
}
