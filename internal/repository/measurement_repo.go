package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"smarthome_dw/internal/models"
	"smarthome_dw/internal/repository/db"
)

type MeasurementSQLite struct {
	db *sql.DB
}

func NewMeasurementSQLite(database *sql.DB) *MeasurementSQLite {
	return &MeasurementSQLite{db: database}
}

// Ensure implementation of MeasurementRepo interface at compile time.
var _ MeasurementRepo = (*MeasurementSQLite)(nil)

const (
	insertMeasurementSQL = `
		INSERT INTO fact_measurement (
			created_at, entry_id, power_w, energy_wh,
			presence, state, time_s
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectLastTimestampSQL = `SELECT MAX(created_at) FROM fact_measurement`

	selectTodaySQL = `
		SELECT created_at, entry_id, power_w, energy_wh, presence, state, time_s
		FROM fact_measurement
		WHERE date(created_at, 'localtime') = date('now', 'localtime')
		ORDER BY created_at ASC
	`

	selectTotalsSQL    = `SELECT COUNT(*), MAX(created_at) FROM fact_measurement`
	selectLatestRowSQL = `
		SELECT power_w, energy_wh
		FROM fact_measurement
		ORDER BY created_at DESC
		LIMIT 1
	`
	selectTodayCountSQL = `
		SELECT COUNT(*)
		FROM fact_measurement
		WHERE date(created_at, 'localtime') = date('now', 'localtime')
	`
)

// InsertBatch appends rows in a single transaction. Either every row commits
// or none does; the inserted count is returned on success. An empty batch is a
// no-op success.
func (r *MeasurementSQLite) InsertBatch(ctx context.Context, rows []models.Measurement) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertMeasurementSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare measurement insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, m := range rows {
		if _, err := stmt.ExecContext(ctx,
			m.CreatedAt.UTC().Format(models.TimestampLayout),
			m.EntryID,
			m.PowerW,
			m.EnergyWh,
			m.Presence,
			m.State,
			m.TimeS,
		); err != nil {
			return 0, fmt.Errorf("insert measurement %d of %d: %w", i+1, len(rows), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit measurement batch: %w", err)
	}
	return len(rows), nil
}

// LastTimestamp returns the newest created_at in the fact table, or nil when
// the table is empty. This is the resume point for incremental fetches.
func (r *MeasurementSQLite) LastTimestamp(ctx context.Context) (*time.Time, error) {
	var raw sql.NullString
	if err := r.db.QueryRowContext(ctx, selectLastTimestampSQL).Scan(&raw); err != nil {
		return nil, fmt.Errorf("select last timestamp: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	ts, err := time.Parse(models.TimestampLayout, raw.String)
	if err != nil {
		return nil, fmt.Errorf("parse last timestamp %q: %w", raw.String, err)
	}
	ts = ts.UTC()
	return &ts, nil
}

// ListToday returns the current local calendar day's rows ordered by
// created_at ascending, the exact scan order the analyzers require.
func (r *MeasurementSQLite) ListToday(ctx context.Context) ([]models.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, selectTodaySQL)
	if err != nil {
		return nil, fmt.Errorf("select today's measurements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.Measurement, 0, 256)
	for rows.Next() {
		var (
			m  models.Measurement
			ts string
		)
		if err := rows.Scan(&ts, &m.EntryID, &m.PowerW, &m.EnergyWh, &m.Presence, &m.State, &m.TimeS); err != nil {
			return nil, fmt.Errorf("scan measurement row: %w", err)
		}
		m.CreatedAt, err = time.Parse(models.TimestampLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse measurement timestamp %q: %w", ts, err)
		}
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Metrics gathers the dashboard status snapshot: totals, today's count and the
// most recent power/energy readings.
func (r *MeasurementSQLite) Metrics(ctx context.Context) (models.StoreMetrics, error) {
	var (
		metrics models.StoreMetrics
		lastRaw sql.NullString
	)

	if err := r.db.QueryRowContext(ctx, selectTotalsSQL).Scan(&metrics.TotalRecords, &lastRaw); err != nil {
		return models.StoreMetrics{}, fmt.Errorf("select measurement totals: %w", err)
	}
	if lastRaw.Valid && lastRaw.String != "" {
		ts, err := time.Parse(models.TimestampLayout, lastRaw.String)
		if err != nil {
			return models.StoreMetrics{}, fmt.Errorf("parse last record timestamp %q: %w", lastRaw.String, err)
		}
		ts = ts.UTC()
		metrics.LastRecordAt = &ts
	}

	var power, energy sql.NullFloat64
	err := r.db.QueryRowContext(ctx, selectLatestRowSQL).Scan(&power, &energy)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// empty table; leave latest readings unset
	case err != nil:
		return models.StoreMetrics{}, fmt.Errorf("select latest readings: %w", err)
	default:
		if power.Valid {
			metrics.LastPowerW = &power.Float64
		}
		if energy.Valid {
			metrics.LastEnergyWh = &energy.Float64
		}
	}

	if err := r.db.QueryRowContext(ctx, selectTodayCountSQL).Scan(&metrics.TodayRecords); err != nil {
		return models.StoreMetrics{}, fmt.Errorf("select today's count: %w", err)
	}

	return metrics, nil
}

// Reset drops and recreates the fact table.
func (r *MeasurementSQLite) Reset(ctx context.Context) error {
	return db.ResetFactMeasurement(ctx, r.db)
}
