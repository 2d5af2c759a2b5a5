package service

import (
	"context"
	"time"

	"smarthome_dw/internal/models"
	"smarthome_dw/internal/thingspeak"
)

// measurementRepoStub is an in-memory stand-in for the fact table repository.
type measurementRepoStub struct {
	lastTS  *time.Time
	lastErr error

	todayRows []models.Measurement
	todayErr  error

	inserted  []models.Measurement
	insertErr error

	metrics    models.StoreMetrics
	metricsErr error

	resetCalls int
	resetErr   error
}

func (s *measurementRepoStub) InsertBatch(_ context.Context, rows []models.Measurement) (int, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, rows...)
	return len(rows), nil
}

func (s *measurementRepoStub) LastTimestamp(context.Context) (*time.Time, error) {
	return s.lastTS, s.lastErr
}

func (s *measurementRepoStub) ListToday(context.Context) ([]models.Measurement, error) {
	return s.todayRows, s.todayErr
}

func (s *measurementRepoStub) Metrics(context.Context) (models.StoreMetrics, error) {
	return s.metrics, s.metricsErr
}

func (s *measurementRepoStub) Reset(context.Context) error {
	s.resetCalls++
	return s.resetErr
}

// fetcherStub records the since boundary it was called with and returns a
// canned payload.
type fetcherStub struct {
	payload   *thingspeak.Payload
	err       error
	calls     int
	lastSince *time.Time
}

func (f *fetcherStub) FetchFeed(_ context.Context, since *time.Time) (*thingspeak.Payload, error) {
	f.calls++
	f.lastSince = since
	return f.payload, f.err
}
