package analytics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

// Quadrants of the frequency/severity risk matrix.
const (
	QuadrantDangerZone    = "danger_zone"
	QuadrantChronic       = "chronic_headache"
	QuadrantSleepingGiant = "sleeping_giant"
	QuadrantNuisance      = "nuisance"
)

type PerilStats struct {
	EventType              string  `json:"event_type"`
	AverageSeverity        float64 `json:"severity"`
	EventCount             int     `json:"event_count"`
	AverageAnnualFrequency float64 `json:"average_annual_frequency"`
	AnnualPremium          float64 `json:"annual_premium_eur_million"`
	Quadrant               string  `json:"quadrant"`
}

type PerilMatrix struct {
	Perils        []PerilStats `json:"perils"`
	MeanFrequency float64      `json:"mean_frequency"`
	MeanSeverity  float64      `json:"mean_severity"`
}

// PerilMatrixOf places each peril by annual frequency (events over distinct
// years in rows) and mean severity. Premium is joined by event type, zero when
// the peril has none.
func PerilMatrixOf(rows []models.MergedEvent, premium []models.PremiumByPeril) PerilMatrix {
	years := distinctYears(rows)
	premiums := premiumIndex(premium)

	groups := lo.GroupBy(rows, func(r models.MergedEvent) string { return r.EventType })
	perils := make([]PerilStats, 0, len(groups))
	for eventType, group := range groups {
		perils = append(perils, perilStats(eventType, group, years, premiums))
	}
	sort.Slice(perils, func(i, j int) bool { return perils[i].EventType < perils[j].EventType })

	m := PerilMatrix{Perils: perils}
	m.MeanFrequency, m.MeanSeverity = classify(perils)
	return m
}

type YearlyPerilStats struct {
	Year int `json:"year"`
	PerilStats
}

type YearlyPerilMatrix struct {
	Points        []YearlyPerilStats `json:"points"`
	MeanFrequency float64            `json:"mean_frequency"`
	MeanSeverity  float64            `json:"mean_severity"`
}

// PerilMatrixByYear is PerilMatrixOf split per year. Frequencies still divide
// by the number of distinct years in rows; rows without a year are skipped.
func PerilMatrixByYear(rows []models.MergedEvent, premium []models.PremiumByPeril) YearlyPerilMatrix {
	years := distinctYears(rows)
	premiums := premiumIndex(premium)

	type key struct {
		year      int
		eventType string
	}
	withYear := lo.Filter(rows, func(r models.MergedEvent, _ int) bool { return r.Year != nil })
	groups := lo.GroupBy(withYear, func(r models.MergedEvent) key { return key{*r.Year, r.EventType} })

	flat := make([]PerilStats, 0, len(groups))
	keys := make([]key, 0, len(groups))
	for k, group := range groups {
		keys = append(keys, k)
		flat = append(flat, perilStats(k.eventType, group, years, premiums))
	}
	meanFreq, meanSev := classify(flat)

	points := make([]YearlyPerilStats, len(flat))
	for i := range flat {
		points[i] = YearlyPerilStats{Year: keys[i].year, PerilStats: flat[i]}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].EventType < points[j].EventType
	})

	return YearlyPerilMatrix{Points: points, MeanFrequency: meanFreq, MeanSeverity: meanSev}
}

func perilStats(eventType string, group []models.MergedEvent, years int, premiums map[string]float64) PerilStats {
	s := PerilStats{
		EventType:       eventType,
		AverageSeverity: mean(lo.Map(group, func(r models.MergedEvent, _ int) float64 { return r.Severity })),
		EventCount:      len(group),
		AnnualPremium:   premiums[eventType],
	}
	if years > 0 {
		s.AverageAnnualFrequency = float64(len(group)) / float64(years)
	}
	return s
}

// classify sets each quadrant against the matrix means and returns them.
func classify(perils []PerilStats) (float64, float64) {
	meanFreq := mean(lo.Map(perils, func(p PerilStats, _ int) float64 { return p.AverageAnnualFrequency }))
	meanSev := mean(lo.Map(perils, func(p PerilStats, _ int) float64 { return p.AverageSeverity }))

	for i := range perils {
		p := &perils[i]
		frequent := p.AverageAnnualFrequency >= meanFreq
		severe := p.AverageSeverity >= meanSev
		switch {
		case frequent && severe:
			p.Quadrant = QuadrantDangerZone
		case frequent:
			p.Quadrant = QuadrantChronic
		case severe:
			p.Quadrant = QuadrantSleepingGiant
		default:
			p.Quadrant = QuadrantNuisance
		}
	}
	return meanFreq, meanSev
}

// premiumIndex keeps the first premium listed for each peril.
func premiumIndex(premium []models.PremiumByPeril) map[string]float64 {
	out := make(map[string]float64, len(premium))
	for _, p := range premium {
		if _, ok := out[p.EventType]; !ok {
			out[p.EventType] = p.AnnualPremiumEURMillion
		}
	}
	return out
}
