package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"smarthome_dw/internal/logger"
)

const defaultETLInterval = 15 * time.Second

var (
	ErrSchedulerRunning = errors.New("scheduler already running")
	ErrSchedulerStopped = errors.New("scheduler is not running")
)

// SchedulerStatus is a point-in-time view of the background ETL loop.
type SchedulerStatus struct {
	Running     bool       `json:"running"`
	IntervalSec float64    `json:"interval_sec"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastMessage string     `json:"last_message,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// SchedulerService owns the periodic ETL loop as an explicit task handle:
// start/stop/status instead of ambient flags and a detached thread. It runs
// one cycle immediately on start, then one per tick. Analyses are never
// triggered from here.
type SchedulerService struct {
	etl      ETL
	log      *logger.Logger
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	status SchedulerStatus
}

func NewSchedulerService(etl ETL, log *logger.Logger, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = defaultETLInterval
	}
	return &SchedulerService{
		etl:      etl,
		log:      log,
		interval: interval,
		status:   SchedulerStatus{IntervalSec: interval.Seconds()},
	}
}

// Start launches the loop. Fails if it is already running.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.status.Running = true

	go s.run(ctx, s.done)
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (s *SchedulerService) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.status.Running = false
	s.mu.Unlock()
	return nil
}

// Status returns a copy of the current loop state.
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SchedulerService) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	// first cycle immediately, then on every tick
	s.runOnce(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	res, err := s.etl.RunCycle(ctx)

	s.mu.Lock()
	s.status.LastRunAt = &now
	if err != nil {
		s.status.LastMessage = ""
		s.status.LastError = err.Error()
	} else {
		s.status.LastMessage = res.Message
		s.status.LastError = ""
	}
	s.mu.Unlock()

	if s.log == nil {
		return
	}
	if err != nil {
		s.log.Errorw("etl_cycle_failed", "err", err)
		return
	}
	s.log.Infow("etl_cycle_done", "inserted", res.Inserted, "message", res.Message)
}
