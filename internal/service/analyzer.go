package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smarthome_dw/internal/models"
	"smarthome_dw/internal/repository"
)

// Consumption policies. PolicyStreak tracks the maximum energy reading within
// each contiguous "on" run; PolicyChunk sums energy over fixed-size record
// chunks.
const (
	PolicyStreak = "streak"
	PolicyChunk  = "chunk"
)

// Fallback analysis parameters, used when config leaves them unset.
const (
	defaultWasteStreakTarget = 120
	defaultEnergyThresholdWh = 100.0
	defaultChunkSize         = 200
)

// AnalyzerService runs the rule-based scans over today's measurements.
type AnalyzerService struct {
	repo            repository.MeasurementRepo
	wasteTarget     int
	energyThreshold float64
	policy          string
	chunkSize       int
}

func NewAnalyzerService(repo repository.MeasurementRepo, cfg Config) *AnalyzerService {
	s := &AnalyzerService{
		repo:            repo,
		wasteTarget:     cfg.WasteStreakTarget,
		energyThreshold: cfg.HighEnergyThresholdWh,
		policy:          cfg.ConsumptionPolicy,
		chunkSize:       cfg.ChunkSize,
	}
	if s.wasteTarget <= 0 {
		s.wasteTarget = defaultWasteStreakTarget
	}
	if s.energyThreshold <= 0 {
		s.energyThreshold = defaultEnergyThresholdWh
	}
	if s.chunkSize <= 0 {
		s.chunkSize = defaultChunkSize
	}
	if s.policy == "" {
		s.policy = PolicyStreak
	}
	return s
}

// AnalyzeWaste scans today's rows in created_at order for runs of
// state=1/presence=0 readings. Each time a run reaches the configured target
// length a recommendation spanning it is emitted and the counter resets, so a
// single long run yields one non-overlapping finding per target-length window.
// An empty day yields no findings.
func (s *AnalyzerService) AnalyzeWaste(ctx context.Context) ([]models.Recommendation, error) {
	rows, err := s.repo.ListToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("load today's measurements: %w", err)
	}

	var (
		recs   []models.Recommendation
		streak int
		start  time.Time
	)
	for _, m := range rows {
		bad := flagIs(m.State, 1) && flagIs(m.Presence, 0)
		if bad {
			if streak == 0 {
				start = m.CreatedAt
			}
			streak++
		} else {
			streak = 0
		}

		if streak == s.wasteTarget {
			recs = append(recs, models.Recommendation{
				ID:        uuid.NewString(),
				Rule:      models.RuleWasteStreak,
				StartsAt:  start,
				EndsAt:    m.CreatedAt,
				Value:     float64(streak),
				Threshold: float64(s.wasteTarget),
				Message: fmt.Sprintf(
					"Device is on with nobody present: %d consecutive readings from %s to %s.",
					streak,
					start.Format(models.TimestampLayout),
					m.CreatedAt.Format(models.TimestampLayout),
				),
			})
			streak = 0
		}
	}
	return recs, nil
}

// AnalyzeHighConsumption dispatches to the configured consumption policy.
func (s *AnalyzerService) AnalyzeHighConsumption(ctx context.Context) (models.ConsumptionReport, error) {
	rows, err := s.repo.ListToday(ctx)
	if err != nil {
		return models.ConsumptionReport{}, fmt.Errorf("load today's measurements: %w", err)
	}
	if s.policy == PolicyChunk {
		return s.consumptionByChunk(rows), nil
	}
	return s.consumptionByStreak(rows), nil
}

// consumptionByStreak tracks contiguous state=1 runs and the maximum energy_wh
// seen inside each. A run closing above the threshold (including a run still
// open at end of data) emits a recommendation; every run's maximum feeds the
// daily total. A run with only NULL energy counts as zero.
func (s *AnalyzerService) consumptionByStreak(rows []models.Measurement) models.ConsumptionReport {
	report := models.ConsumptionReport{Policy: PolicyStreak}

	var (
		inRun    bool
		runStart time.Time
		runEnd   time.Time
		runMax   float64
	)
	closeRun := func() {
		report.TotalWh += runMax
		if runMax > s.energyThreshold {
			report.Recommendations = append(report.Recommendations,
				s.consumptionRecommendation(runStart, runEnd, runMax))
		}
		inRun = false
		runMax = 0
	}

	for _, m := range rows {
		if flagIs(m.State, 1) {
			if !inRun {
				inRun = true
				runStart = m.CreatedAt
				runMax = 0
			}
			if m.EnergyWh.Valid && m.EnergyWh.Float64 > runMax {
				runMax = m.EnergyWh.Float64
			}
			runEnd = m.CreatedAt
		} else if inRun {
			closeRun()
		}
	}
	if inRun {
		// day ended while still on
		closeRun()
	}
	return report
}

// consumptionByChunk partitions the day into consecutive chunks of chunkSize
// records and flags chunks whose energy sum crosses the threshold. A trailing
// partial chunk is not evaluated; the reported total covers the whole day
// regardless.
func (s *AnalyzerService) consumptionByChunk(rows []models.Measurement) models.ConsumptionReport {
	report := models.ConsumptionReport{Policy: PolicyChunk}

	var (
		count      int
		sum        float64
		chunkStart time.Time
	)
	for _, m := range rows {
		if m.EnergyWh.Valid {
			report.TotalWh += m.EnergyWh.Float64
		}

		if count == 0 {
			chunkStart = m.CreatedAt
		}
		count++
		if m.EnergyWh.Valid {
			sum += m.EnergyWh.Float64
		}

		if count == s.chunkSize {
			if sum > s.energyThreshold {
				report.Recommendations = append(report.Recommendations,
					s.consumptionRecommendation(chunkStart, m.CreatedAt, sum))
			}
			count = 0
			sum = 0
		}
	}
	return report
}

// RunAll runs every analysis and concatenates the findings, waste first.
func (s *AnalyzerService) RunAll(ctx context.Context) ([]models.Recommendation, error) {
	waste, err := s.AnalyzeWaste(ctx)
	if err != nil {
		return nil, err
	}
	consumption, err := s.AnalyzeHighConsumption(ctx)
	if err != nil {
		return nil, err
	}
	return append(waste, consumption.Recommendations...), nil
}

func (s *AnalyzerService) consumptionRecommendation(start, end time.Time, valueWh float64) models.Recommendation {
	return models.Recommendation{
		ID:        uuid.NewString(),
		Rule:      models.RuleHighConsumption,
		StartsAt:  start,
		EndsAt:    end,
		Value:     valueWh,
		Threshold: s.energyThreshold,
		Message: fmt.Sprintf(
			"Energy consumption over limit: %.0f Wh / %.0f Wh from %s to %s.",
			valueWh,
			s.energyThreshold,
			start.Format(models.TimestampLayout),
			end.Format(models.TimestampLayout),
		),
	}
}

// flagIs reports whether a nullable 0/1 flag holds want; NULL matches nothing.
func flagIs(v sql.NullInt64, want int64) bool {
	return v.Valid && v.Int64 == want
}
