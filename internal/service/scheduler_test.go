package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

// etlStub signals on a channel each time a cycle runs.
type etlStub struct {
	ran chan struct{}
	err error
}

func (e *etlStub) RunCycle(context.Context) (CycleResult, error) {
	select {
	case e.ran <- struct{}{}:
	default:
	}
	if e.err != nil {
		return CycleResult{}, e.err
	}
	return CycleResult{Inserted: 3, Message: "inserted 3 new records"}, nil
}

func waitForCycle(t *testing.T, ran chan struct{}) {
	t.Helper()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an ETL cycle")
	}
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	stub := &etlStub{ran: make(chan struct{}, 1)}
	s := NewSchedulerService(stub, nil, time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop() }()

	waitForCycle(t, stub.ran)

	st := s.Status()
	if !st.Running {
		t.Error("status must report running")
	}
	if st.IntervalSec != time.Hour.Seconds() {
		t.Errorf("interval: got %v", st.IntervalSec)
	}
}

func TestScheduler_DoubleStartConflicts(t *testing.T) {
	stub := &etlStub{ran: make(chan struct{}, 1)}
	s := NewSchedulerService(stub, nil, time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = s.Stop() }()

	if err := s.Start(); !errors.Is(err, ErrSchedulerRunning) {
		t.Fatalf("second Start: want ErrSchedulerRunning, got %v", err)
	}
}

func TestScheduler_StopWaitsAndIsIdempotentlyReported(t *testing.T) {
	stub := &etlStub{ran: make(chan struct{}, 1)}
	s := NewSchedulerService(stub, nil, time.Hour)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForCycle(t, stub.ran)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.Status().Running {
		t.Error("status must report stopped after Stop")
	}
	if err := s.Stop(); !errors.Is(err, ErrSchedulerStopped) {
		t.Fatalf("second Stop: want ErrSchedulerStopped, got %v", err)
	}

	// the loop can be started again after a stop
	if err := s.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	_ = s.Stop()
}

func TestScheduler_StatusCarriesLastCycleOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &etlStub{ran: make(chan struct{}, 1)}
		s := NewSchedulerService(stub, nil, time.Hour)
		if err := s.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		waitForCycle(t, stub.ran)
		_ = s.Stop()

		st := s.Status()
		if st.LastRunAt == nil {
			t.Error("last_run_at must be set after a cycle")
		}
		if st.LastMessage != "inserted 3 new records" || st.LastError != "" {
			t.Errorf("outcome: got message=%q err=%q", st.LastMessage, st.LastError)
		}
	})

	t.Run("failure", func(t *testing.T) {
		stub := &etlStub{ran: make(chan struct{}, 1), err: errors.New("feed unreachable")}
		s := NewSchedulerService(stub, nil, time.Hour)
		if err := s.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		waitForCycle(t, stub.ran)
		_ = s.Stop()

		st := s.Status()
		if st.LastError == "" || st.LastMessage != "" {
			t.Errorf("outcome: got message=%q err=%q", st.LastMessage, st.LastError)
		}
	})
}
