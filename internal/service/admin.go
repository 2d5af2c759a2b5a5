package service

import (
	"context"

	"smarthome_dw/internal/repository"
)

// AdminService performs destructive store maintenance.
type AdminService struct {
	repo repository.MeasurementRepo
}

func NewAdminService(repo repository.MeasurementRepo) *AdminService {
	return &AdminService{repo: repo}
}

// ResetStore drops and recreates the fact table. All ingested measurements are
// lost; the next ETL cycle starts over in bootstrap mode.
func (s *AdminService) ResetStore(ctx context.Context) error {
	return s.repo.Reset(ctx)
}
