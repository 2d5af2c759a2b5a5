package models

import "time"

// StoreMetrics is the dashboard status snapshot of the fact table.
type StoreMetrics struct {
	TotalRecords int64      `json:"total_records"`
	TodayRecords int64      `json:"today_records"`
	LastRecordAt *time.Time `json:"last_record_at,omitempty"`
	LastPowerW   *float64   `json:"last_power_w,omitempty"`
	LastEnergyWh *float64   `json:"last_energy_wh,omitempty"`
}
