package repositories

import (
	"context"
	"errors"
	"time"

	"agro-collector/db"
	"agro-collector/entities"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type sensorPgRepository struct {
	db db.Database
}

func NewSensorPgRepository(database db.Database) SensorRepository {
	return &sensorPgRepository{db: database}
}

func (r *sensorPgRepository) GetAll(ctx context.Context) ([]entities.Sensor, error) {
	var sensors []entities.Sensor
	err := r.db.GetDB().WithContext(ctx).Order("created_at ASC").Find(&sensors).Error
	return sensors, err
}

func (r *sensorPgRepository) GetByID(ctx context.Context, id string) (*entities.Sensor, error) {
	var sensor entities.Sensor
	err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&sensor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sensor, nil
}

func (r *sensorPgRepository) GetByZoneID(ctx context.Context, zoneID string) ([]entities.Sensor, error) {
	var sensors []entities.Sensor
	err := r.db.GetDB().WithContext(ctx).Where("zone_id = ?", zoneID).Order("created_at ASC").Find(&sensors).Error
	return sensors, err
}

// UpdateLastReading writes only the last_reading column so concurrent settings edits to
// thresholds are not overwritten.
func (r *sensorPgRepository) UpdateLastReading(ctx context.Context, id string, reading datatypes.JSON) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Sensor{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_reading": reading,
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sensorPgRepository) UpdateSettings(ctx context.Context, sensor *entities.Sensor) error {
	res := r.db.GetDB().WithContext(ctx).Model(&entities.Sensor{}).Where("id = ?", sensor.ID).Updates(map[string]interface{}{
		"last_reading":  sensor.LastReading,
		"threshold_min": sensor.ThresholdMin,
		"threshold_max": sensor.ThresholdMax,
		"alert_enabled": sensor.AlertEnabled,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
