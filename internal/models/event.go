package models

import "time"

// DisasterEvent is one historical disaster record after preparation.
// Nil pointers mean the source value was missing or unparseable.
type DisasterEvent struct {
	EventID int    `json:"event_id"`
	Country string `json:"country"`

	SourceID        string `json:"source_id,omitempty"` // "DisNo." in EM-DAT exports
	EventName       string `json:"event_name,omitempty"`
	Location        string `json:"location,omitempty"`
	DisasterType    string `json:"disaster_type"`
	DisasterSubtype string `json:"disaster_subtype,omitempty"`
	EventType       string `json:"event_type"`

	StartYear  *int       `json:"start_year"`
	StartMonth *int       `json:"start_month"`
	StartDay   *int       `json:"start_day"`
	EndYear    *int       `json:"end_year"`
	EndMonth   *int       `json:"end_month"`
	EndDay     *int       `json:"end_day"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`

	Year         *int   `json:"year"`
	Month        *int   `json:"month"`
	MonthName    string `json:"month_name,omitempty"`
	DurationDays *int   `json:"duration_days"`

	TotalDeaths   *float64 `json:"total_deaths"`
	NoInjured     *float64 `json:"no_injured"`
	NoAffected    *float64 `json:"no_affected"`
	NoHomeless    *float64 `json:"no_homeless"`
	TotalAffected *float64 `json:"total_affected"`

	TotalDamage000USD           *float64 `json:"total_damage_000usd"`
	TotalDamageAdjusted000USD   *float64 `json:"total_damage_adjusted_000usd"`
	InsuredDamage000USD         *float64 `json:"insured_damage_000usd"`
	InsuredDamageAdjusted000USD *float64 `json:"insured_damage_adjusted_000usd"`

	Severity                  float64 `json:"severity"`
	EconomicImpactMillionUSD  float64 `json:"economic_impact_million_usd"`
	TotalCasualties           float64 `json:"total_casualties"`
	ResponseTimeHours         float64 `json:"response_time_hours"`
	InfrastructureDamageScore float64 `json:"infrastructure_damage_score"`
}

// HasYear reports whether the start year is known and equal to y.
func (e *DisasterEvent) HasYear(y int) bool {
	return e.Year != nil && *e.Year == y
}

// Deaths returns total deaths with missing treated as zero.
func (e *DisasterEvent) Deaths() float64 {
	return valueOrZero(e.TotalDeaths)
}

// Affected returns total affected with missing treated as zero.
func (e *DisasterEvent) Affected() float64 {
	return valueOrZero(e.TotalAffected)
}

// InsuredDamageAdjusted returns the adjusted insured damage in thousands of USD, missing as zero.
func (e *DisasterEvent) InsuredDamageAdjusted() float64 {
	return valueOrZero(e.InsuredDamageAdjusted000USD)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
