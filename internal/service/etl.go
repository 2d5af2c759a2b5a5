package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smarthome_dw/internal/etl"
	"smarthome_dw/internal/repository"
)

// CycleResult reports one completed ETL cycle back to the caller.
type CycleResult struct {
	Inserted    int        `json:"inserted"`
	Message     string     `json:"message"`
	ResumedFrom *time.Time `json:"resumed_from,omitempty"`
}

// ETLService drives one incremental fetch -> normalize -> load cycle against a
// single telemetry channel.
type ETLService struct {
	fetcher FeedFetcher
	repo    repository.MeasurementRepo
	fields  []string // explicit field allow-list; empty means auto-detect
}

func NewETLService(fetcher FeedFetcher, repo repository.MeasurementRepo, fields []string) *ETLService {
	return &ETLService{fetcher: fetcher, repo: repo, fields: fields}
}

// RunCycle looks up the last ingested timestamp, fetches only newer records,
// normalizes them and loads them in one atomic batch.
//
// Failures at any stage leave storage untouched: the fetch boundary, not
// deduplication, guarantees each record is loaded exactly once. A batch with
// no mappable measurement columns completes without inserting and reports
// that, per the data-quality policy.
func (s *ETLService) RunCycle(ctx context.Context) (CycleResult, error) {
	last, err := s.repo.LastTimestamp(ctx)
	if err != nil {
		return CycleResult{}, fmt.Errorf("look up last ingested timestamp: %w", err)
	}

	payload, err := s.fetcher.FetchFeed(ctx, last)
	if err != nil {
		return CycleResult{}, fmt.Errorf("fetch feed: %w", err)
	}

	frame, err := etl.Normalize(payload, s.fields)
	if err != nil {
		return CycleResult{}, fmt.Errorf("normalize feed batch: %w", err)
	}
	if frame.Empty() {
		return CycleResult{Message: "no new records", ResumedFrom: last}, nil
	}

	rows, err := mapFrame(frame)
	if err != nil {
		if errors.Is(err, ErrNoUsableData) {
			return CycleResult{Message: "no usable data in fetched batch", ResumedFrom: last}, nil
		}
		return CycleResult{}, fmt.Errorf("map normalized batch: %w", err)
	}

	inserted, err := s.repo.InsertBatch(ctx, rows)
	if err != nil {
		return CycleResult{}, fmt.Errorf("load batch of %d rows: %w", len(rows), err)
	}

	return CycleResult{
		Inserted:    inserted,
		Message:     fmt.Sprintf("inserted %d new records", inserted),
		ResumedFrom: last,
	}, nil
}
