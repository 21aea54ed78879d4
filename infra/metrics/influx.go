package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/evmobility/urbanev/core/metrics"
	"github.com/evmobility/urbanev/infra/logger"
)

// InfluxSink writes charging activity to an InfluxDB instance using the
// official client. Point timestamps carry the simulation time as an offset
// from the run's wall-clock start so runs can be compared in one bucket.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	runStart time.Time
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		runStart: time.Now(),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordChargingSession writes one completed session as a point.
func (s *InfluxSink) RecordChargingSession(rec coremetrics.ChargingSessionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charging_session").
		AddTag("charger_id", rec.ChargerID).
		AddTag("charger_type", rec.ChargerType).
		AddTag("vehicle_id", rec.VehicleID).
		AddTag("session_id", rec.SessionID).
		AddField("energy_kwh", round3(rec.EnergyKWh)).
		AddField("start_soc", round3(rec.StartSoCFraction)).
		AddField("end_soc", round3(rec.EndSoCFraction)).
		AddField("duration_s", round3(rec.EndTime-rec.StartTime)).
		AddField("walking_distance_m", round3(rec.WalkingDistanceM)).
		SetTime(s.simTime(rec.EndTime))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOccupancy writes a charger occupancy snapshot.
func (s *InfluxSink) RecordOccupancy(chargerID string, plugged, capacity int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("charger_occupancy").
		AddTag("charger_id", chargerID).
		AddField("plugged", plugged).
		AddField("capacity", capacity).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAllocationFailure writes a failed charger search.
func (s *InfluxSink) RecordAllocationFailure(actType string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_failure").
		AddTag("act_type", actType).
		AddField("count", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTaskDrop writes a dropped deferred plug-in task.
func (s *InfluxSink) RecordTaskDrop(vehicleID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("deferred_task_drop").
		AddTag("vehicle_id", vehicleID).
		AddField("count", 1).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

func (s *InfluxSink) simTime(simSeconds float64) time.Time {
	return s.runStart.Add(time.Duration(simSeconds * float64(time.Second)))
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
