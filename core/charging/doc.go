// Package charging implements the charging-session lifecycle: matching
// arriving vehicles to chargers, deferring plug-ins to cheaper time-of-use
// windows, tracking active sessions and emitting scoring telemetry.
package charging
