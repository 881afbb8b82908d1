package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"agro-collector/entities"
	"agro-collector/history"
	"agro-collector/repositories"
)

var (
	ErrSensorNotFound   = errors.New("sensor not found")
	ErrInvalidSettings  = errors.New("invalid sensor settings")
	allowedFetchMethods = map[string]bool{"GET": true, "POST": true}
)

// SensorSettings is the user-editable part of a sensor. Fields are replaced as a whole.
type SensorSettings struct {
	APIURL       string   `json:"api_url"`
	APIKey       string   `json:"api_key"`
	APIMethod    string   `json:"api_method"`
	ThresholdMin *float64 `json:"threshold_min"`
	ThresholdMax *float64 `json:"threshold_max"`
	AlertEnabled bool     `json:"alert_enabled"`
}

func (s SensorSettings) validate() error {
	if s.APIURL != "" {
		u, err := url.Parse(s.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: api_url must be an http(s) URL", ErrInvalidSettings)
		}
	}
	if s.APIMethod != "" && !allowedFetchMethods[strings.ToUpper(s.APIMethod)] {
		return fmt.Errorf("%w: api_method must be GET or POST", ErrInvalidSettings)
	}
	if s.ThresholdMin != nil && s.ThresholdMax != nil && *s.ThresholdMin > *s.ThresholdMax {
		return fmt.Errorf("%w: threshold_min must not exceed threshold_max", ErrInvalidSettings)
	}
	return nil
}

type SensorUseCase struct {
	SensorRepo   repositories.SensorRepository
	HistoryStore history.Store
}

// NewSensorUseCase builds the use case; store may be nil when history is disabled.
func NewSensorUseCase(sensorRepo repositories.SensorRepository, store history.Store) *SensorUseCase {
	return &SensorUseCase{
		SensorRepo:   sensorRepo,
		HistoryStore: store,
	}
}

// ListSensors returns all sensors, or those of one zone when zoneID is set
func (uc *SensorUseCase) ListSensors(ctx context.Context, zoneID string) ([]entities.Sensor, error) {
	if zoneID != "" {
		return uc.SensorRepo.GetByZoneID(ctx, zoneID)
	}
	return uc.SensorRepo.GetAll(ctx)
}

// GetSensor retrieves a sensor by ID
func (uc *SensorUseCase) GetSensor(ctx context.Context, id string) (*entities.Sensor, error) {
	if id == "" {
		return nil, errors.New("sensor id is required")
	}
	sensor, err := uc.SensorRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSensorNotFound
	}
	return sensor, err
}

// UpdateSettings stores the endpoint config and alert thresholds. The last collected
// value and timestamp inside last_reading are kept as they are.
func (uc *SensorUseCase) UpdateSettings(ctx context.Context, id string, settings SensorSettings) (*entities.Sensor, error) {
	if err := settings.validate(); err != nil {
		return nil, err
	}

	existing, err := uc.GetSensor(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg, err := existing.Reading()
	if err != nil {
		// an unreadable last_reading is replaced rather than blocking the edit
		cfg = entities.ReadingConfig{}
	}
	raw, err := cfg.WithEndpoint(settings.APIURL, settings.APIKey, settings.APIMethod).JSON()
	if err != nil {
		return nil, err
	}

	existing.LastReading = raw
	existing.ThresholdMin = settings.ThresholdMin
	existing.ThresholdMax = settings.ThresholdMax
	existing.AlertEnabled = settings.AlertEnabled

	if err := uc.SensorRepo.UpdateSettings(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSensorNotFound
		}
		return nil, err
	}
	return existing, nil
}

// History returns collected values of a sensor since start (Flux duration or RFC3339).
func (uc *SensorUseCase) History(ctx context.Context, id, start string) ([]history.Point, error) {
	if uc.HistoryStore == nil {
		return nil, history.ErrHistoryDisabled
	}
	if _, err := uc.GetSensor(ctx, id); err != nil {
		return nil, err
	}
	return uc.HistoryStore.Query(ctx, id, start)
}
