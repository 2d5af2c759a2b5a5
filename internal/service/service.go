package service

import (
	"context"
	"time"

	"smarthome_dw/internal/logger"
	"smarthome_dw/internal/models"
	"smarthome_dw/internal/repository"
	"smarthome_dw/internal/thingspeak"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// FeedFetcher retrieves one page of remote feed entries, optionally bounded to
// records newer than since. Implemented by thingspeak.Client.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, since *time.Time) (*thingspeak.Payload, error)
}

// ETL runs one fetch -> normalize -> load cycle. It never triggers analyses;
// those are invoked explicitly so transient fetch failures don't get mixed
// into behavioral findings.
type ETL interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// Analyzer scans the current day's measurements for wasteful or excessive
// usage and emits recommendations.
type Analyzer interface {
	AnalyzeWaste(ctx context.Context) ([]models.Recommendation, error)
	AnalyzeHighConsumption(ctx context.Context) (models.ConsumptionReport, error)
	RunAll(ctx context.Context) ([]models.Recommendation, error)
}

// Metrics exposes the read-only store snapshot for the dashboard collaborator.
type Metrics interface {
	Snapshot(ctx context.Context) (models.StoreMetrics, error)
}

// Scheduler is the explicit task handle around periodic ETL cycles: start,
// stop and inspect, no ambient global state.
type Scheduler interface {
	Start() error
	Stop() error
	Status() SchedulerStatus
}

// Admin owns destructive maintenance of the store.
type Admin interface {
	ResetStore(ctx context.Context) error
}

// Config is the service-layer snapshot of the application configuration.
type Config struct {
	Fields                []string // explicit field allow-list; empty means auto-detect
	WasteStreakTarget     int
	HighEnergyThresholdWh float64
	ConsumptionPolicy     string // streak | chunk
	ChunkSize             int
	ETLInterval           time.Duration
	SigningKey            string
}

// Service aggregates all sub-services.
type Service struct {
	ETL
	Analyzer
	Metrics
	Scheduler
	Admin
	Authorization
}

// NewService wires the repository layer and the feed client into concrete
// services.
func NewService(repos *repository.Repository, fetcher FeedFetcher, log *logger.Logger, cfg Config) *Service {
	etlSvc := NewETLService(fetcher, repos.Measurements, cfg.Fields)
	return &Service{
		ETL:           etlSvc,
		Analyzer:      NewAnalyzerService(repos.Measurements, cfg),
		Metrics:       NewMetricsService(repos.Measurements),
		Scheduler:     NewSchedulerService(etlSvc, log, cfg.ETLInterval),
		Admin:         NewAdminService(repos.Measurements),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey),
	}
}
