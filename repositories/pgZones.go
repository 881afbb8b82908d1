package repositories

import (
	"context"
	"errors"

	"agro-collector/db"
	"agro-collector/entities"

	"gorm.io/gorm"
)

type zonePgRepository struct {
	db db.Database
}

func NewZonePgRepository(database db.Database) ZoneRepository {
	return &zonePgRepository{db: database}
}

func (r *zonePgRepository) GetByID(ctx context.Context, id string) (*entities.Zone, error) {
	var zone entities.Zone
	err := r.db.GetDB().WithContext(ctx).Where("id = ?", id).First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &zone, nil
}

func (r *zonePgRepository) GetByCompanyID(ctx context.Context, companyID string) ([]entities.Zone, error) {
	var zones []entities.Zone
	err := r.db.GetDB().WithContext(ctx).Where("company_id = ?", companyID).Order("name ASC").Find(&zones).Error
	return zones, err
}
