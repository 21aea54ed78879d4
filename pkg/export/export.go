// Package export serializes completed charging sessions for post-run
// analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/evmobility/urbanev/core/metrics"
)

// WriteJSON writes the session records to w in JSON format.
func WriteJSON(w io.Writer, records []metrics.ChargingSessionRecord) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes the session records to w in CSV format.
func WriteCSV(w io.Writer, records []metrics.ChargingSessionRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"session_id", "person_id", "vehicle_id", "charger_id", "charger_type",
		"start_time_s", "end_time_s", "start_soc", "end_soc", "energy_kwh", "walking_distance_m",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.SessionID,
			r.PersonID,
			r.VehicleID,
			r.ChargerID,
			r.ChargerType,
			formatFloat(r.StartTime),
			formatFloat(r.EndTime),
			formatFloat(r.StartSoCFraction),
			formatFloat(r.EndSoCFraction),
			formatFloat(r.EnergyKWh),
			formatFloat(r.WalkingDistanceM),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
