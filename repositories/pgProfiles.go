package repositories

import (
	"context"

	"agro-collector/db"
	"agro-collector/entities"
)

type profilePgRepository struct {
	db db.Database
}

func NewProfilePgRepository(database db.Database) ProfileRepository {
	return &profilePgRepository{db: database}
}

func (r *profilePgRepository) GetByCompanyID(ctx context.Context, companyID string) ([]entities.Profile, error) {
	var profiles []entities.Profile
	err := r.db.GetDB().WithContext(ctx).Where("company_id = ?", companyID).Order("created_at ASC").Find(&profiles).Error
	return profiles, err
}
