package models

import "time"

// Analysis rule identifiers.
const (
	RuleWasteStreak     = "WASTE_STREAK"
	RuleHighConsumption = "HIGH_CONSUMPTION"
)

// Recommendation is one analysis finding. Message is the human-readable form
// shown by the dashboard; the structured fields let consumers avoid re-parsing
// the text.
type Recommendation struct {
	ID        string    `json:"id"`
	Rule      string    `json:"rule"` // WASTE_STREAK | HIGH_CONSUMPTION
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Value     float64   `json:"value"`     // measured value that triggered the rule
	Threshold float64   `json:"threshold"` // configured limit it was compared against
	Message   string    `json:"message"`
}

// ConsumptionReport is the result of a high-consumption analysis run.
// TotalWh depends on the policy: per-streak maxima summed (streak policy) or
// the whole day's energy sum (chunk policy).
type ConsumptionReport struct {
	Policy          string           `json:"policy"`
	TotalWh         float64          `json:"total_wh"`
	Recommendations []Recommendation `json:"recommendations"`
}
