package service

import (
	"context"

	"smarthome_dw/internal/models"
	"smarthome_dw/internal/repository"
)

// MetricsService serves the dashboard's status snapshot.
type MetricsService struct {
	repo repository.MeasurementRepo
}

func NewMetricsService(repo repository.MeasurementRepo) *MetricsService {
	return &MetricsService{repo: repo}
}

// Snapshot returns current store totals and latest readings.
func (s *MetricsService) Snapshot(ctx context.Context) (models.StoreMetrics, error) {
	return s.repo.Metrics(ctx)
}
