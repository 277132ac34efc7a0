package analytics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

type YearlyPoint struct {
	Year                  int     `json:"year"`
	EventCount            int     `json:"event_count"`
	AverageEconomicImpact float64 `json:"avg_economic_impact"`
}

// Trend is the yearly event count and mean economic impact. The change
// percentages compare the last year to the first and are nil with fewer
// than two years.
type Trend struct {
	Points             []YearlyPoint `json:"points"`
	FrequencyChangePct *float64      `json:"frequency_change_pct,omitempty"`
	CostChangePct      *float64      `json:"cost_change_pct,omitempty"`
}

func YearlyTrend(rows []models.MergedEvent) Trend {
	withYear := lo.Filter(rows, func(r models.MergedEvent, _ int) bool { return r.Year != nil })
	groups := lo.GroupBy(withYear, func(r models.MergedEvent) int { return *r.Year })

	points := make([]YearlyPoint, 0, len(groups))
	for year, group := range groups {
		points = append(points, YearlyPoint{
			Year:                  year,
			EventCount:            len(group),
			AverageEconomicImpact: mean(lo.Map(group, func(r models.MergedEvent, _ int) float64 { return r.EconomicImpactMillionUSD })),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	t := Trend{Points: points}
	if len(points) > 1 {
		first, last := points[0], points[len(points)-1]
		freq := pctChange(float64(first.EventCount), float64(last.EventCount))
		cost := pctChange(first.AverageEconomicImpact, last.AverageEconomicImpact)
		t.FrequencyChangePct = &freq
		t.CostChangePct = &cost
	}
	return t
}
