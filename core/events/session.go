package events

// SessionEventKind classifies session lifecycle notifications.
type SessionEventKind int

const (
	// SessionPlugged is published when a vehicle is plugged into a charger.
	SessionPlugged SessionEventKind = iota
	// SessionUnplugged is published when a vehicle leaves a charger.
	SessionUnplugged
	// SessionAllocationFailed is published when no eligible charger was found.
	SessionAllocationFailed
	// SessionTaskDropped is published when a deferred task was discarded
	// because its vehicle or charger went missing.
	SessionTaskDropped
)

func (k SessionEventKind) String() string {
	switch k {
	case SessionPlugged:
		return "plugged"
	case SessionUnplugged:
		return "unplugged"
	case SessionAllocationFailed:
		return "allocation_failed"
	case SessionTaskDropped:
		return "task_dropped"
	default:
		return "unknown"
	}
}

// SessionEvent is a monitoring notification about the session lifecycle.
// It is published on the event bus for observers such as the occupancy
// history collector; delivery is best-effort.
type SessionEvent struct {
	Kind        SessionEventKind
	TimeSeconds float64
	PersonID    string
	VehicleID   string
	ChargerID   string
	// PluggedCount is the charger occupancy after the event, where relevant.
	PluggedCount int
}
