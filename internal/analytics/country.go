package analytics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

const (
	minRadiusMeters = 20000.0
	maxRadiusMeters = 150000.0
)

// CountryStats is one bubble on the exposure map.
type CountryStats struct {
	models.PortfolioEntry

	AverageSeverity float64  `json:"average_severity"`
	TotalEvents     int      `json:"total_events"`
	TotalDeaths     float64  `json:"total_deaths"`
	TotalAffected   float64  `json:"total_affected"`
	EconomicImpact  float64  `json:"economic_impact_million_usd"`
	Centroid        Centroid `json:"centroid"`
	RadiusMeters    float64  `json:"radius_meters"`
	SeverityNormed  float64  `json:"severity_normalized"`
}

// ByCountry aggregates rows per country and joins the portfolio. Countries
// without a portfolio entry or a known centroid are left out. Bubble radius
// scales linearly with insured value between 20 and 150 km; severity is
// normalized to [0,1] across the result for coloring.
func ByCountry(rows []models.MergedEvent, portfolio []models.PortfolioEntry) []CountryStats {
	groups := lo.GroupBy(rows, func(r models.MergedEvent) string { return r.Country })
	entries := lo.SliceToMap(portfolio, func(p models.PortfolioEntry) (string, models.PortfolioEntry) { return p.Country, p })

	out := make([]CountryStats, 0, len(groups))
	for country, group := range groups {
		p, ok := entries[country]
		if !ok {
			continue
		}
		c, ok := CentroidFor(country)
		if !ok {
			continue
		}
		out = append(out, CountryStats{
			PortfolioEntry:  p,
			AverageSeverity: mean(lo.Map(group, func(r models.MergedEvent, _ int) float64 { return r.Severity })),
			TotalEvents:     len(group),
			TotalDeaths:     lo.SumBy(group, func(r models.MergedEvent) float64 { return r.Deaths() }),
			TotalAffected:   lo.SumBy(group, func(r models.MergedEvent) float64 { return r.Affected() }),
			EconomicImpact:  lo.SumBy(group, func(r models.MergedEvent) float64 { return r.EconomicImpactMillionUSD }),
			Centroid:        c,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })

	scaleBubbles(out)
	return out
}

func scaleBubbles(stats []CountryStats) {
	if len(stats) == 0 {
		return
	}

	minTIV := lo.MinBy(stats, func(a, b CountryStats) bool { return a.TotalInsuredValueEURBillion < b.TotalInsuredValueEURBillion }).TotalInsuredValueEURBillion
	maxTIV := lo.MaxBy(stats, func(a, b CountryStats) bool { return a.TotalInsuredValueEURBillion > b.TotalInsuredValueEURBillion }).TotalInsuredValueEURBillion
	minSev := lo.MinBy(stats, func(a, b CountryStats) bool { return a.AverageSeverity < b.AverageSeverity }).AverageSeverity
	maxSev := lo.MaxBy(stats, func(a, b CountryStats) bool { return a.AverageSeverity > b.AverageSeverity }).AverageSeverity

	for i := range stats {
		s := &stats[i]
		if maxTIV == minTIV {
			s.RadiusMeters = (minRadiusMeters + maxRadiusMeters) / 2
		} else {
			s.RadiusMeters = minRadiusMeters + (s.TotalInsuredValueEURBillion-minTIV)/(maxTIV-minTIV)*(maxRadiusMeters-minRadiusMeters)
		}
		if maxSev == minSev {
			s.SeverityNormed = 0.5
		} else {
			s.SeverityNormed = (s.AverageSeverity - minSev) / (maxSev - minSev)
		}
	}
}
