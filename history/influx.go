package history

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"agro-collector/confs"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
)

const measurement = "sensor_reading"

var relativeStart = regexp.MustCompile(`^-\d+(ns|us|ms|s|m|h|d|w|mo|y)$`)

type InfluxStore struct {
	client influxdb2.Client
	org    string
	bucket string
}

func NewInfluxStore(url, token, org, bucket string) *InfluxStore {
	return &InfluxStore{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

func (s *InfluxStore) Record(ctx context.Context, p Point) error {
	point := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("sensor_id", p.SensorID).
		AddField("value", p.Value).
		SetTime(p.Time)
	if p.SensorType != "" {
		point.AddTag("sensor_type", p.SensorType)
	}
	if p.ZoneID != "" {
		point.AddTag("zone_id", p.ZoneID)
	}

	writeAPI := s.client.WriteAPIBlocking(s.org, s.bucket)
	if err := writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to write reading point: %w", err)
	}
	return nil
}

// Query returns the points of one sensor since start, which is either a relative
// duration such as "-24h" or an RFC3339 timestamp.
func (s *InfluxStore) Query(ctx context.Context, sensorID, start string) ([]Point, error) {
	query, err := buildQuery(s.bucket, sensorID, start)
	if err != nil {
		return nil, err
	}

	result, err := s.client.QueryAPI(s.org).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reading history: %w", err)
	}
	defer result.Close()

	var points []Point
	for result.Next() {
		rec := result.Record()
		value, ok := rec.Value().(float64)
		if !ok {
			continue
		}
		p := Point{
			SensorID: sensorID,
			Value:    value,
			Time:     rec.Time(),
		}
		if v, ok := rec.ValueByKey("sensor_type").(string); ok {
			p.SensorType = v
		}
		if v, ok := rec.ValueByKey("zone_id").(string); ok {
			p.ZoneID = v
		}
		points = append(points, p)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to read reading history: %w", result.Err())
	}
	return points, nil
}

func (s *InfluxStore) Close() {
	s.client.Close()
}

func buildQuery(bucket, sensorID, start string) (string, error) {
	if start == "" {
		start = "-24h"
	}
	if !relativeStart.MatchString(start) {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return "", fmt.Errorf("%w %q: use a relative duration like -24h or RFC3339", ErrInvalidStart, start)
		}
		start = t.UTC().Format(time.RFC3339)
	}

	return fmt.Sprintf(`from(bucket: "%s")
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == "%s" and r._field == "value" and r.sensor_id == "%s")
  |> sort(columns: ["_time"])`, escapeFlux(bucket), start, measurement, escapeFlux(sensorID)), nil
}

func escapeFlux(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// FromConfig returns an Influx-backed store, or nil when Influx is not fully configured.
func FromConfig(cfg confs.InfluxConfig) Store {
	if !cfg.Enabled() {
		return nil
	}
	return NewInfluxStore(cfg.URL, cfg.Token, cfg.Org, cfg.Bucket)
}
