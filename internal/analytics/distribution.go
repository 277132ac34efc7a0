package analytics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

type PerilCount struct {
	EventType string  `json:"event_type"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"`
}

// Distribution counts events per peril, most frequent first and ties by name.
func Distribution(rows []models.MergedEvent) []PerilCount {
	counts := lo.CountValuesBy(rows, func(r models.MergedEvent) string { return r.EventType })

	out := make([]PerilCount, 0, len(counts))
	for eventType, n := range counts {
		out = append(out, PerilCount{
			EventType: eventType,
			Count:     n,
			Share:     float64(n) / float64(len(rows)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}
