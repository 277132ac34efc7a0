package models

import "time"

// Selection is the dashboard's current filter. Zero values mean "no constraint".
// It is passed by value; With* methods return modified copies.
type Selection struct {
	Country  string
	FromYear *int
	ToYear   *int
	Coverage Coverage
	Peril    string
	Month    *int
}

func (s Selection) WithCountry(country string) Selection {
	s.Country = country
	return s
}

func (s Selection) WithYears(from, to int) Selection {
	s.FromYear = &from
	s.ToYear = &to
	return s
}

func (s Selection) WithPeril(peril string) Selection {
	s.Peril = peril
	return s
}

func (s Selection) WithMonth(month int) Selection {
	s.Month = &month
	return s
}

func (s Selection) WithCoverage(c Coverage) Selection {
	s.Coverage = c
	return s
}

// Matches reports whether the event passes every constraint of the selection.
// Events with an unknown year fail any year bound, and an unknown month fails a month filter.
func (s Selection) Matches(e *DisasterEvent) bool {
	if s.Country != "" && e.Country != s.Country {
		return false
	}
	if s.FromYear != nil && (e.Year == nil || *e.Year < *s.FromYear) {
		return false
	}
	if s.ToYear != nil && (e.Year == nil || *e.Year > *s.ToYear) {
		return false
	}
	if !s.Coverage.Includes(e.EventType) {
		return false
	}
	if s.Peril != "" && e.EventType != s.Peril {
		return false
	}
	if s.Month != nil && (e.Month == nil || *e.Month != *s.Month) {
		return false
	}
	return true
}

// ReloadNotice announces that a new dataset snapshot is being served.
type ReloadNotice struct {
	LoadID     string    `json:"load_id"`
	InputHash  string    `json:"input_hash"`
	EventCount int       `json:"event_count"`
	Cached     bool      `json:"cached"`
	LoadedAt   time.Time `json:"loaded_at"`
}
