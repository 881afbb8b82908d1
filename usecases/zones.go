package usecases

import (
	"context"
	"errors"

	"agro-collector/entities"
	"agro-collector/repositories"
)

type ZoneUseCase struct {
	repo repositories.ZoneRepository
}

func NewZoneUseCase(r repositories.ZoneRepository) *ZoneUseCase {
	return &ZoneUseCase{repo: r}
}

// ListForCompany returns the monitoring zones of one tenant.
func (uc *ZoneUseCase) ListForCompany(ctx context.Context, companyID string) ([]entities.Zone, error) {
	if companyID == "" {
		return nil, errors.New("company_id required")
	}
	return uc.repo.GetByCompanyID(ctx, companyID)
}
