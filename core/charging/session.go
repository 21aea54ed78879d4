package charging

// Session is an active charging session. One exists per plugged vehicle.
type Session struct {
	ID               string // assigned at plug-in
	VehicleID        string
	ChargerID        string
	StartTime        float64
	StartSoCFraction float64
	WalkingDistanceM float64
}

// ScheduledTask is a pending deferred plug-in. At most one exists per
// vehicle; scheduling again overwrites the previous task.
type ScheduledTask struct {
	VehicleID string
	ChargerID string
	StartTime float64
}
