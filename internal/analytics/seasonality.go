package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

type SeasonalPoint struct {
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	EventType string  `json:"event_type"`
	Count     int     `json:"count"`
	Smoothed  float64 `json:"count_smooth"`
}

type Seasonality struct {
	Points []SeasonalPoint `json:"points"`
	Peak   *SeasonalPoint  `json:"peak,omitempty"`
}

// SeasonalityOf counts events per (month, peril) for the seasonal perils.
// Smoothed is a two-wide trailing mean over the months in which the peril
// occurs. Peak is the point with the highest raw count.
func SeasonalityOf(rows []models.MergedEvent) Seasonality {
	type key struct {
		month     int
		eventType string
	}
	counts := make(map[key]int)
	for _, r := range rows {
		if r.Month == nil || *r.Month < 1 || *r.Month > 12 || !lo.Contains(models.SeasonalPerils, r.EventType) {
			continue
		}
		counts[key{*r.Month, r.EventType}]++
	}

	points := make([]SeasonalPoint, 0, len(counts))
	for k, n := range counts {
		points = append(points, SeasonalPoint{
			Month:     k.month,
			MonthName: time.Month(k.month).String()[:3],
			EventType: k.eventType,
			Count:     n,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].EventType != points[j].EventType {
			return points[i].EventType < points[j].EventType
		}
		return points[i].Month < points[j].Month
	})

	for i := range points {
		points[i].Smoothed = float64(points[i].Count)
		if i > 0 && points[i-1].EventType == points[i].EventType {
			points[i].Smoothed = float64(points[i-1].Count+points[i].Count) / 2
		}
	}

	s := Seasonality{Points: points}
	for i := range points {
		if s.Peak == nil || points[i].Count > s.Peak.Count {
			s.Peak = &points[i]
		}
	}
	return s
}

// PerilMonthCounts is one row of a peril by month heatmap.
type PerilMonthCounts struct {
	EventType string  `json:"event_type"`
	Counts    [12]int `json:"counts"`
}

// Heatmap counts events per month for the n most frequent perils.
func Heatmap(rows []models.MergedEvent, n int) []PerilMonthCounts {
	top := Distribution(rows)
	if len(top) > n {
		top = top[:n]
	}

	out := make([]PerilMonthCounts, len(top))
	index := make(map[string]int, len(top))
	for i, p := range top {
		out[i].EventType = p.EventType
		index[p.EventType] = i
	}
	for _, r := range rows {
		i, ok := index[r.EventType]
		if !ok || r.Month == nil || *r.Month < 1 || *r.Month > 12 {
			continue
		}
		out[i].Counts[*r.Month-1]++
	}
	return out
}
