package repositories

import (
	"context"
	"errors"

	"agro-collector/entities"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("record not found")

type SensorRepository interface {
	GetAll(ctx context.Context) ([]entities.Sensor, error)
	GetByID(ctx context.Context, id string) (*entities.Sensor, error)
	GetByZoneID(ctx context.Context, zoneID string) ([]entities.Sensor, error)
	UpdateLastReading(ctx context.Context, id string, reading datatypes.JSON) error
	UpdateSettings(ctx context.Context, sensor *entities.Sensor) error
}

type ZoneRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Zone, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]entities.Zone, error)
}

type ProfileRepository interface {
	GetByCompanyID(ctx context.Context, companyID string) ([]entities.Profile, error)
}

type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []entities.Notification) error
	GetByUserID(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entities.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
