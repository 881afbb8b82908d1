package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"agro-collector/confs"
	"agro-collector/db"
	"agro-collector/entities"
	"agro-collector/history"
	"agro-collector/repositories"
)

var ErrRunInProgress = errors.New("a collector run is already in progress")

// NotificationPublisher pushes freshly created notifications to connected clients.
type NotificationPublisher interface {
	PublishNotification(n entities.Notification)
}

// Collector fetches the current reading of every sensor with a configured endpoint,
// stores it and raises threshold notifications.
type Collector struct {
	sensors       repositories.SensorRepository
	zones         repositories.ZoneRepository
	profiles      repositories.ProfileRepository
	notifications repositories.NotificationRepository
	fetcher       *Fetcher
	recorder      history.Recorder
	publisher     NotificationPublisher
	logger        *slog.Logger
	now           func() time.Time

	running sync.Mutex
}

type CollectorOption func(*Collector)

func WithRecorder(r history.Recorder) CollectorOption {
	return func(c *Collector) { c.recorder = r }
}

func WithPublisher(p NotificationPublisher) CollectorOption {
	return func(c *Collector) { c.publisher = p }
}

func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) { c.now = now }
}

func NewCollector(
	sensors repositories.SensorRepository,
	zones repositories.ZoneRepository,
	profiles repositories.ProfileRepository,
	notifications repositories.NotificationRepository,
	fetcher *Fetcher,
	logger *slog.Logger,
	opts ...CollectorOption,
) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collector{
		sensors:       sensors,
		zones:         zones,
		profiles:      profiles,
		notifications: notifications,
		fetcher:       fetcher,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes all qualifying sensors one after another. Per-sensor failures end up in
// the report; only a failure to load the sensor list fails the whole run.
func (c *Collector) Run(ctx context.Context) (*entities.RunReport, error) {
	if !c.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.running.Unlock()

	sensors, err := c.sensors.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sensors: %w", err)
	}

	report := &entities.RunReport{Success: true, Results: make([]entities.SensorResult, 0, len(sensors))}
	for i := range sensors {
		sensor := &sensors[i]

		cfg, err := sensor.Reading()
		if err != nil {
			c.logger.Warn("skipping sensor with unreadable last_reading", "sensor_id", sensor.ID, "error", err)
			continue
		}
		if cfg.Endpoint() == "" {
			continue
		}

		result := c.processSensor(ctx, sensor, cfg)
		report.Results = append(report.Results, result)
	}

	c.logger.Info("collector run finished", "sensors", len(report.Results), "failed", report.Failed())
	return report, nil
}

func (c *Collector) processSensor(ctx context.Context, sensor *entities.Sensor, cfg entities.ReadingConfig) entities.SensorResult {
	log := c.logger.With("sensor_id", sensor.ID, "sensor", sensor.Name)

	body, err := c.fetcher.Fetch(ctx, cfg)
	if err != nil {
		log.Error("sensor fetch failed", "error", err)
		return entities.SensorResult{SensorID: sensor.ID, Success: false, Error: err.Error()}
	}

	reading, err := ExtractValue(body)
	if err != nil {
		log.Error("sensor response rejected", "error", err)
		return entities.SensorResult{SensorID: sensor.ID, Success: false, Error: err.Error()}
	}
	value := reading.Ptr()
	now := c.now().UTC()

	c.storeReading(ctx, log, sensor, cfg, value, now)

	if value != nil && sensor.AlertEnabled {
		if violation := EvaluateThresholds(sensor, *value); violation != nil {
			if err := c.notify(ctx, log, sensor, *violation, now); err != nil {
				log.Error("threshold notification failed", "error", err)
				return entities.SensorResult{SensorID: sensor.ID, Success: false, Error: err.Error()}
			}
		}
	}

	log.Debug("sensor processed", "source", reading.Source.String(), "value", value)
	return entities.SensorResult{SensorID: sensor.ID, Success: true, Value: value}
}

// storeReading persists the merged last_reading and the history point. Failures are
// logged only; threshold evaluation goes ahead regardless.
func (c *Collector) storeReading(ctx context.Context, log *slog.Logger, sensor *entities.Sensor, cfg entities.ReadingConfig, value *float64, now time.Time) {
	merged, err := cfg.WithReading(value, now).JSON()
	if err != nil {
		log.Error("failed to encode reading", "error", err)
	} else if err := c.sensors.UpdateLastReading(ctx, sensor.ID, merged); err != nil {
		log.Error("failed to persist reading", "error", err)
	}

	if value == nil || c.recorder == nil {
		return
	}
	point := history.Point{SensorID: sensor.ID, SensorType: sensor.Type, Value: *value, Time: now}
	if sensor.ZoneID != nil {
		point.ZoneID = *sensor.ZoneID
	}
	if err := c.recorder.Record(ctx, point); err != nil {
		log.Warn("failed to record reading history", "error", err)
	}
}

// notify creates one warning per profile of the company owning the sensor's zone.
func (c *Collector) notify(ctx context.Context, log *slog.Logger, sensor *entities.Sensor, v Violation, now time.Time) error {
	if sensor.ZoneID == nil || *sensor.ZoneID == "" {
		log.Warn("threshold violated but sensor has no zone; nobody to notify", "bound", v.Bound, "value", v.Value)
		return nil
	}

	zone, err := c.zones.GetByID(ctx, *sensor.ZoneID)
	if err != nil {
		return fmt.Errorf("failed to resolve zone %s: %w", *sensor.ZoneID, err)
	}

	profiles, err := c.profiles.GetByCompanyID(ctx, zone.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to load company users: %w", err)
	}
	if len(profiles) == 0 {
		log.Warn("threshold violated but company has no users", "company_id", zone.CompanyID)
		return nil
	}

	message := v.Message(sensor.Name)
	batch := make([]entities.Notification, 0, len(profiles))
	for _, p := range profiles {
		batch = append(batch, entities.Notification{
			UserID:    p.ID,
			Title:     NotificationTitle,
			Message:   message,
			Type:      entities.NotificationTypeWarning,
			CreatedAt: now,
		})
	}
	if err := c.notifications.CreateBatch(ctx, batch); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}

	log.Info("threshold notifications created", "bound", v.Bound, "value", v.Value, "threshold", v.Threshold, "users", len(batch))

	if c.publisher != nil {
		for _, n := range batch {
			c.publisher.PublishNotification(n)
		}
	}
	return nil
}

// NewDatabaseCollector wires a Collector to the gorm-backed repositories.
func NewDatabaseCollector(database db.Database, cfg confs.CollectorConfig, logger *slog.Logger, opts ...CollectorOption) *Collector {
	return NewCollector(
		repositories.NewSensorPgRepository(database),
		repositories.NewZonePgRepository(database),
		repositories.NewProfilePgRepository(database),
		repositories.NewNotificationPgRepository(database),
		NewFetcher(cfg.HTTPTimeout),
		logger,
		opts...,
	)
}
