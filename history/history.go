// Package history keeps a time series of every collected sensor value alongside the
// single last_reading stored on the sensor row.
package history

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHistoryDisabled = errors.New("reading history is not configured")
	ErrInvalidStart    = errors.New("invalid start")
)

type Point struct {
	SensorID   string    `json:"sensor_id"`
	SensorType string    `json:"sensor_type,omitempty"`
	ZoneID     string    `json:"zone_id,omitempty"`
	Value      float64   `json:"value"`
	Time       time.Time `json:"time"`
}

// Recorder stores collected values.
type Recorder interface {
	Record(ctx context.Context, point Point) error
}

// Store is a Recorder that can also be queried.
type Store interface {
	Recorder
	Query(ctx context.Context, sensorID, start string) ([]Point, error)
	Close()
}
