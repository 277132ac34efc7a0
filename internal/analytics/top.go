package analytics

import (
	"sort"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

// EventSummary is a compact row for the ranking tables.
type EventSummary struct {
	EventID        int      `json:"event_id"`
	Country        string   `json:"country"`
	EventType      string   `json:"event_type"`
	Year           *int     `json:"year"`
	Location       string   `json:"location,omitempty"`
	Deaths         *float64 `json:"deaths"`
	Affected       *float64 `json:"affected"`
	EconomicImpact float64  `json:"economic_impact_million_usd"`
	Severity       float64  `json:"severity"`
}

type TopEvents struct {
	Deadliest []EventSummary `json:"deadliest"`
	Costliest []EventSummary `json:"costliest"`
}

// Top ranks the n deadliest and n costliest events. Events with unknown deaths
// are not ranked by deaths; ties keep input order.
func Top(rows []models.MergedEvent, n int) TopEvents {
	var withDeaths []models.MergedEvent
	for _, r := range rows {
		if r.TotalDeaths != nil {
			withDeaths = append(withDeaths, r)
		}
	}

	return TopEvents{
		Deadliest: largest(withDeaths, n, func(r *models.MergedEvent) float64 { return *r.TotalDeaths }),
		Costliest: largest(rows, n, func(r *models.MergedEvent) float64 { return r.EconomicImpactMillionUSD }),
	}
}

func largest(rows []models.MergedEvent, n int, by func(*models.MergedEvent) float64) []EventSummary {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return by(&rows[idx[a]]) > by(&rows[idx[b]]) })
	if n >= 0 && len(idx) > n {
		idx = idx[:n]
	}

	out := make([]EventSummary, len(idx))
	for i, j := range idx {
		out[i] = summarizeEvent(&rows[j])
	}
	return out
}

func summarizeEvent(r *models.MergedEvent) EventSummary {
	return EventSummary{
		EventID:        r.EventID,
		Country:        r.Country,
		EventType:      r.EventType,
		Year:           r.Year,
		Location:       r.Location,
		Deaths:         r.TotalDeaths,
		Affected:       r.TotalAffected,
		EconomicImpact: r.EconomicImpactMillionUSD,
		Severity:       r.Severity,
	}
}

// SortBySeverity returns rows ordered by descending severity, ties in input order.
func SortBySeverity(rows []models.MergedEvent) []models.MergedEvent {
	out := append([]models.MergedEvent(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}
