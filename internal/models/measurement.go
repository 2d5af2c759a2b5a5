package models

import (
	"database/sql"
	"time"
)

// Measurement is one row of the fact_measurement table. Rows are append-only;
// every numeric field is nullable because the remote feed delivers values as
// strings and unparseable values are stored as NULL, never dropped.
type Measurement struct {
	ID        int64           `json:"id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	EntryID   sql.NullInt64   `json:"entry_id"`
	PowerW    sql.NullFloat64 `json:"power_w"`
	EnergyWh  sql.NullFloat64 `json:"energy_wh"`
	Presence  sql.NullInt64   `json:"presence"` // 0/1 flag
	State     sql.NullInt64   `json:"state"`    // 0/1 flag
	TimeS     sql.NullFloat64 `json:"time_s"`
}

// TimestampLayout is the canonical text form of created_at in storage and in
// the remote API's start parameter.
const TimestampLayout = "2006-01-02 15:04:05"
