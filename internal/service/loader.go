package service

import (
	"database/sql"
	"errors"

	"smarthome_dw/internal/etl"
	"smarthome_dw/internal/models"
)

// ErrNoUsableData reports a normalized batch whose columns don't map to any
// storage measurement column. The batch is dropped whole; nothing is persisted.
var ErrNoUsableData = errors.New("no usable data: no normalized column maps to a storage column")

// frameColumnMap renames normalized (labelled) columns to fact table columns.
// Labels are the ones the telemetry channel publishes; a normalized column
// without an entry here is dropped.
var frameColumnMap = map[string]string{
	"created_at":     "created_at",
	"entry_id":       "entry_id",
	"Power (W)":      "power_w",
	"Energy(Wh)":     "energy_wh",
	"Presence (0/1)": "presence",
	"State (0/1)":    "state",
	"Time_s (s)":     "time_s",
}

// mapFrame converts a normalized frame into fact rows ready for insertion.
//
// Integer targets (presence, state) get null-safe integer conversion, real
// targets stay floats; conversion of a NULL stays NULL. When none of the
// frame's measurement columns map (only the created_at/entry_id envelope
// would remain), the whole batch is rejected with ErrNoUsableData.
func mapFrame(f etl.Frame) ([]models.Measurement, error) {
	if f.Empty() {
		return nil, nil
	}

	mapped := make(map[string]string, len(f.Fields))
	for _, col := range f.Fields {
		if target, ok := frameColumnMap[col]; ok {
			mapped[col] = target
		}
	}
	if len(mapped) == 0 {
		return nil, ErrNoUsableData
	}

	rows := make([]models.Measurement, 0, len(f.Rows))
	for _, r := range f.Rows {
		m := models.Measurement{
			CreatedAt: r.CreatedAt,
			EntryID:   sql.NullInt64{Int64: r.EntryID, Valid: true},
		}
		for col, target := range mapped {
			v := r.Values[col]
			switch target {
			case "power_w":
				m.PowerW = v
			case "energy_wh":
				m.EnergyWh = v
			case "presence":
				m.Presence = toNullInt(v)
			case "state":
				m.State = toNullInt(v)
			case "time_s":
				m.TimeS = v
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// toNullInt truncates a nullable float to a nullable integer, preserving NULL.
func toNullInt(v sql.NullFloat64) sql.NullInt64 {
	if !v.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v.Float64), Valid: true}
}
