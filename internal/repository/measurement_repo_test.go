package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"smarthome_dw/internal/models"
)

func newMeasurementMock(t *testing.T) (*MeasurementSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewMeasurementSQLite(mockDB), mock, func() { _ = mockDB.Close() }
}

func measurementFixture() models.Measurement {
	return models.Measurement{
		CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EntryID:   sql.NullInt64{Int64: 7, Valid: true},
		PowerW:    sql.NullFloat64{Float64: 12.5, Valid: true},
		EnergyWh:  sql.NullFloat64{Float64: 3.5, Valid: true},
		Presence:  sql.NullInt64{Int64: 1, Valid: true},
		State:     sql.NullInt64{Int64: 0, Valid: true},
		TimeS:     sql.NullFloat64{}, // NULL
	}
}

func TestInsertBatch_CommitsAllRows(t *testing.T) {
	repo, mock, closeDB := newMeasurementMock(t)
	defer closeDB()

	row := measurementFixture()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertMeasurementSQL))
	prep.ExpectExec().
		WithArgs("2024-01-01 10:00:00", int64(7), 12.5, 3.5, int64(1), int64(0), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("2024-01-01 10:00:15", int64(8), nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	second := models.Measurement{
		CreatedAt: time.Date(2024, 1, 1, 10, 0, 15, 0, time.UTC),
		EntryID:   sql.NullInt64{Int64: 8, Valid: true},
	}

	n, err := repo.InsertBatch(context.Background(), []models.Measurement{row, second})
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted count: want 2, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertBatch_RollsBackOnExecError(t *testing.T) {
	repo, mock, closeDB := newMeasurementMock(t)
	defer closeDB()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertMeasurementSQL))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.InsertBatch(context.Background(), []models.Measurement{measurementFixture()})
	if err == nil {
		t.Fatal("expected insert error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestInsertBatch_EmptyIsNoOp(t *testing.T) {
	repo, mock, closeDB := newMeasurementMock(t)
	defer closeDB()

	n, err := repo.InsertBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if n != 0 {
		t.Errorf("inserted count: want 0, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no statements expected: %v", err)
	}
}

func TestLastTimestamp(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		repo, mock, closeDB := newMeasurementMock(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta(selectLastTimestampSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"MAX(created_at)"}).AddRow(nil))

		ts, err := repo.LastTimestamp(context.Background())
		if err != nil {
			t.Fatalf("LastTimestamp: %v", err)
		}
		if ts != nil {
			t.Errorf("want nil resume point, got %v", ts)
		}
	})

	t.Run("existing rows", func(t *testing.T) {
		repo, mock, closeDB := newMeasurementMock(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta(selectLastTimestampSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"MAX(created_at)"}).AddRow("2024-01-02 03:04:05"))

		ts, err := repo.LastTimestamp(context.Background())
		if err != nil {
			t.Fatalf("LastTimestamp: %v", err)
		}
		want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		if ts == nil || !ts.Equal(want) {
			t.Errorf("resume point: want %v, got %v", want, ts)
		}
	})

	t.Run("garbage timestamp", func(t *testing.T) {
		repo, mock, closeDB := newMeasurementMock(t)
		defer closeDB()

		mock.ExpectQuery(regexp.QuoteMeta(selectLastTimestampSQL)).
			WillReturnRows(sqlmock.NewRows([]string{"MAX(created_at)"}).AddRow("not-a-time"))

		if _, err := repo.LastTimestamp(context.Background()); err == nil {
			t.Fatal("expected parse error, got nil")
		}
	})
}

func TestListToday(t *testing.T) {
	repo, mock, closeDB := newMeasurementMock(t)
	defer closeDB()

	cols := []string{"created_at", "entry_id", "power_w", "energy_wh", "presence", "state", "time_s"}
	mock.ExpectQuery(regexp.QuoteMeta(selectTodaySQL)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("2024-01-01 10:00:00", int64(1), 12.5, nil, int64(1), int64(0), nil).
			AddRow("2024-01-01 10:00:15", int64(2), nil, 3.5, int64(0), int64(1), 0.5))

	rows, err := repo.ListToday(context.Background())
	if err != nil {
		t.Fatalf("ListToday: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want 2, got %d", len(rows))
	}

	first := rows[0]
	if !first.CreatedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at: got %v", first.CreatedAt)
	}
	if !first.PowerW.Valid || first.PowerW.Float64 != 12.5 {
		t.Errorf("power_w: got %+v", first.PowerW)
	}
	if first.EnergyWh.Valid {
		t.Errorf("energy_wh: want NULL, got %+v", first.EnergyWh)
	}
	if !rows[1].State.Valid || rows[1].State.Int64 != 1 {
		t.Errorf("state: got %+v", rows[1].State)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	repo, mock, closeDB := newMeasurementMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(selectTotalsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(int64(5), "2024-01-01 10:00:00"))
	mock.ExpectQuery(regexp.QuoteMeta(selectLatestRowSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"power_w", "energy_wh"}).AddRow(100.5, nil))
	mock.ExpectQuery(regexp.QuoteMeta(selectTodayCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	m, err := repo.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	if m.TotalRecords != 5 || m.TodayRecords != 3 {
		t.Errorf("counts: got total=%d today=%d", m.TotalRecords, m.TodayRecords)
	}
	if m.LastRecordAt == nil || !m.LastRecordAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("last record at: got %v", m.LastRecordAt)
	}
	if m.LastPowerW == nil || *m.LastPowerW != 100.5 {
		t.Errorf("last power: got %v", m.LastPowerW)
	}
	if m.LastEnergyWh != nil {
		t.Errorf("last energy: want nil, got %v", *m.LastEnergyWh)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMetrics_EmptyStore(t *testing.T) {
	repo, mock, closeDB := newMeasurementMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta(selectTotalsSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(int64(0), nil))
	mock.ExpectQuery(regexp.QuoteMeta(selectLatestRowSQL)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(selectTodayCountSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	m, err := repo.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.TotalRecords != 0 || m.LastRecordAt != nil || m.LastPowerW != nil || m.LastEnergyWh != nil {
		t.Errorf("empty store snapshot: got %+v", m)
	}
}
