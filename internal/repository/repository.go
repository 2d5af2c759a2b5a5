package repository

import (
	"context"
	"database/sql"
	"time"

	"smarthome_dw/internal/models"
	storedb "smarthome_dw/internal/repository/db"
)

// InitDB opens/creates the warehouse SQLite file and ensures the schema.
func InitDB(path string) (*sql.DB, error) {
	return storedb.InitDB(path)
}

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// MeasurementRepo is the storage contract for the fact table. The table is
// append-mostly: InsertBatch and Reset are the only mutations.
type MeasurementRepo interface {
	InsertBatch(ctx context.Context, rows []models.Measurement) (int, error)
	LastTimestamp(ctx context.Context) (*time.Time, error)
	ListToday(ctx context.Context) ([]models.Measurement, error)
	Metrics(ctx context.Context) (models.StoreMetrics, error)
	Reset(ctx context.Context) error
}

type Repository struct {
	Measurements MeasurementRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Measurements: NewMeasurementSQLite(db),
		Auth:         NewUserRepository(db),
	}
}
