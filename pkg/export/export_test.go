package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/evmobility/urbanev/core/metrics"
)

func sampleRecords() []metrics.ChargingSessionRecord {
	return []metrics.ChargingSessionRecord{
		{
			SessionID:        "s1",
			PersonID:         "p1",
			VehicleID:        "ev1",
			ChargerID:        "c1",
			ChargerType:      "work",
			StartTime:        100,
			EndTime:          4000,
			StartSoCFraction: 0.4,
			EndSoCFraction:   0.7,
			EnergyKWh:        15,
			WalkingDistanceM: 120.5,
		},
		{
			SessionID:   "s2",
			PersonID:    "p2",
			VehicleID:   "ev2",
			ChargerID:   "c2",
			ChargerType: "home",
			EnergyKWh:   8.25,
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var decoded []metrics.ChargingSessionRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0].SessionID != "s1" || decoded[0].EnergyKWh != 15 {
		t.Fatalf("unexpected first record: %+v", decoded[0])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "session_id" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][4] != "work" || rows[1][9] != "15" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
	if rows[2][9] != "8.25" {
		t.Fatalf("unexpected energy: %v", rows[2][9])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %d lines", len(lines))
	}
}
