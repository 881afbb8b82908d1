package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Sensor is a logical device whose reading is fetched from a user-configured endpoint.
// LastReading carries both the fetch configuration and the latest value; see ReadingConfig.
type Sensor struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Type         string         `gorm:"type:varchar(32)" json:"type"` // moisture, temperature, wind, ...
	LastReading  datatypes.JSON `gorm:"type:jsonb" json:"last_reading"`
	ThresholdMin *float64       `json:"threshold_min"`
	ThresholdMax *float64       `json:"threshold_max"`
	AlertEnabled bool           `gorm:"default:false" json:"alert_enabled"`
	ZoneID       *string        `gorm:"index;type:varchar(36)" json:"zone_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (s *Sensor) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Reading parses LastReading into its configuration view.
func (s *Sensor) Reading() (ReadingConfig, error) {
	return ParseReadingConfig(s.LastReading)
}
