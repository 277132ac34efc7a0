// Package analytics computes the dashboard aggregations over the merged dataset.
package analytics

import (
	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

const (
	DefaultMinYear = 1950
	DefaultMaxYear = 2025
)

// Apply returns the rows matching the selection. The input is not modified.
func Apply(rows []models.MergedEvent, sel models.Selection) []models.MergedEvent {
	return lo.Filter(rows, func(r models.MergedEvent, _ int) bool {
		return sel.Matches(&r.DisasterEvent)
	})
}

// YearBounds returns the earliest and latest known year, falling back to
// DefaultMinYear and DefaultMaxYear when no row has a year.
func YearBounds(rows []models.MergedEvent) (int, int) {
	years := knownYears(rows)
	if len(years) == 0 {
		return DefaultMinYear, DefaultMaxYear
	}
	return lo.Min(years), lo.Max(years)
}

func knownYears(rows []models.MergedEvent) []int {
	years := make([]int, 0, len(rows))
	for _, r := range rows {
		if r.Year != nil {
			years = append(years, *r.Year)
		}
	}
	return years
}

// distinctYears counts the distinct known years.
func distinctYears(rows []models.MergedEvent) int {
	return len(lo.Uniq(knownYears(rows)))
}
