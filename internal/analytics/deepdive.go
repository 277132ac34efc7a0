package analytics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

// Recent window covered by the deep dive KPIs.
const (
	DeepDiveFromYear = 2020
	DeepDiveToYear   = 2025

	heatmapPerils = 5
	periodYears   = 20
)

type PerilImpact struct {
	EventType       string  `json:"event_type"`
	TotalImpact     float64 `json:"total_impact_million_usd"`
	AverageSeverity float64 `json:"avg_severity"`
}

type DamageYear struct {
	Year           int     `json:"year"`
	Deaths         float64 `json:"deaths"`
	Injured        float64 `json:"injured"`
	EconomicImpact float64 `json:"economic_impact_million_usd"`
}

type ResponsePoint struct {
	EventID                   int     `json:"event_id"`
	EventType                 string  `json:"event_type"`
	ResponseTimeHours         float64 `json:"response_time_hours"`
	InfrastructureDamageScore float64 `json:"infrastructure_damage_score"`
}

type HumanImpact struct {
	Deaths   float64 `json:"deaths"`
	Injured  float64 `json:"injured"`
	Affected float64 `json:"affected"`
}

// CountryProfile summarizes a country's whole history.
type CountryProfile struct {
	TotalEvents       int                `json:"total_events"`
	MostFrequentPeril string             `json:"most_frequent_peril,omitempty"`
	MostFrequentPct   float64            `json:"most_frequent_pct"`
	MostCostlyPeril   string             `json:"most_costly_peril,omitempty"`
	MostCostlyBillion float64            `json:"most_costly_billion_usd"`
	PeriodTrendPct    float64            `json:"period_trend_pct"`
	Heatmap           []PerilMonthCounts `json:"heatmap"`
	HumanImpact       HumanImpact        `json:"human_impact"`
	DamageByPeril     []PerilImpact      `json:"damage_by_peril"`
}

type DeepDiveReport struct {
	Country              string  `json:"country"`
	Peril                string  `json:"peril,omitempty"`
	FromYear             int     `json:"from_year"`
	ToYear               int     `json:"to_year"`
	TotalEvents          int     `json:"total_events"`
	TotalImpact          float64 `json:"total_impact_million_usd"`
	MarketSharePercent   float64 `json:"market_share_percent"`
	EstimatedInsuredLoss float64 `json:"estimated_insured_loss_million_usd"`
	MostSeverePeril      string  `json:"most_severe_peril,omitempty"`

	Perils   []PerilImpact   `json:"perils"`
	Yearly   []DamageYear    `json:"yearly"`
	Response []ResponsePoint `json:"response"`

	Profile CountryProfile `json:"profile"`
}

// DeepDive reports on one country. The KPIs and peril breakdown cover the
// recent window; the yearly damage and response series are further narrowed
// to peril when it is set. The profile covers every year.
func DeepDive(rows []models.MergedEvent, portfolio []models.PortfolioEntry, country, peril string) DeepDiveReport {
	inCountry := lo.Filter(rows, func(r models.MergedEvent, _ int) bool { return r.Country == country })
	recent := Apply(inCountry, models.Selection{}.WithYears(DeepDiveFromYear, DeepDiveToYear))

	narrowed := recent
	if peril != "" {
		narrowed = Apply(recent, models.Selection{}.WithPeril(peril))
	}

	d := DeepDiveReport{
		Country:     country,
		Peril:       peril,
		FromYear:    DeepDiveFromYear,
		ToYear:      DeepDiveToYear,
		TotalEvents: len(recent),
		TotalImpact: lo.SumBy(recent, func(r models.MergedEvent) float64 { return r.EconomicImpactMillionUSD }),
		Perils:      perilImpacts(recent),
		Yearly:      damageByYear(narrowed),
		Response:    lo.Map(narrowed, responsePoint),
		Profile:     profile(inCountry),
	}

	if p, ok := lo.Find(portfolio, func(p models.PortfolioEntry) bool { return p.Country == country }); ok {
		d.MarketSharePercent = p.MarketSharePercent
	}
	d.EstimatedInsuredLoss = d.TotalImpact * d.MarketSharePercent / 100

	if len(d.Perils) > 0 {
		d.MostSeverePeril = lo.MaxBy(d.Perils, func(a, b PerilImpact) bool { return a.AverageSeverity > b.AverageSeverity }).EventType
	}

	return d
}

// perilImpacts is ordered by total impact, largest first.
func perilImpacts(rows []models.MergedEvent) []PerilImpact {
	groups := lo.GroupBy(rows, func(r models.MergedEvent) string { return r.EventType })
	out := make([]PerilImpact, 0, len(groups))
	for eventType, group := range groups {
		out = append(out, PerilImpact{
			EventType:       eventType,
			TotalImpact:     lo.SumBy(group, func(r models.MergedEvent) float64 { return r.EconomicImpactMillionUSD }),
			AverageSeverity: mean(lo.Map(group, func(r models.MergedEvent, _ int) float64 { return r.Severity })),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalImpact != out[j].TotalImpact {
			return out[i].TotalImpact > out[j].TotalImpact
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

func responsePoint(r models.MergedEvent, _ int) ResponsePoint {
	return ResponsePoint{
		EventID:                   r.EventID,
		EventType:                 r.EventType,
		ResponseTimeHours:         r.ResponseTimeHours,
		InfrastructureDamageScore: r.InfrastructureDamageScore,
	}
}

func damageByYear(rows []models.MergedEvent) []DamageYear {
	withYear := lo.Filter(rows, func(r models.MergedEvent, _ int) bool { return r.Year != nil })
	groups := lo.GroupBy(withYear, func(r models.MergedEvent) int { return *r.Year })

	out := make([]DamageYear, 0, len(groups))
	for year, group := range groups {
		out = append(out, DamageYear{
			Year:           year,
			Deaths:         lo.SumBy(group, func(r models.MergedEvent) float64 { return r.Deaths() }),
			Injured:        lo.SumBy(group, func(r models.MergedEvent) float64 { return valueOr(r.NoInjured) }),
			EconomicImpact: lo.SumBy(group, func(r models.MergedEvent) float64 { return r.EconomicImpactMillionUSD }),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func profile(rows []models.MergedEvent) CountryProfile {
	human := HumanImpact{
		Deaths:   lo.SumBy(rows, func(r models.MergedEvent) float64 { return r.Deaths() }),
		Injured:  lo.SumBy(rows, func(r models.MergedEvent) float64 { return valueOr(r.NoInjured) }),
		Affected: lo.SumBy(rows, func(r models.MergedEvent) float64 { return valueOr(r.NoAffected) }),
	}
	p := CountryProfile{
		TotalEvents:   len(rows),
		Heatmap:       Heatmap(rows, heatmapPerils),
		HumanImpact:   human,
		DamageByPeril: perilImpacts(rows),
	}

	if dist := Distribution(rows); len(dist) > 0 {
		p.MostFrequentPeril = dist[0].EventType
		p.MostFrequentPct = dist[0].Share * 100
	}
	if len(p.DamageByPeril) > 0 {
		p.MostCostlyPeril = p.DamageByPeril[0].EventType
		p.MostCostlyBillion = p.DamageByPeril[0].TotalImpact / 1000
	}
	p.PeriodTrendPct = periodTrend(rows)

	return p
}

// periodTrend compares event counts of the last two 20-year periods that
// contain events.
func periodTrend(rows []models.MergedEvent) float64 {
	counts := lo.CountValuesBy(
		lo.Filter(rows, func(r models.MergedEvent, _ int) bool { return r.Year != nil }),
		func(r models.MergedEvent) int { return *r.Year / periodYears * periodYears },
	)
	if len(counts) < 2 {
		return 0
	}
	periods := lo.Keys(counts)
	sort.Ints(periods)
	recent, previous := counts[periods[len(periods)-1]], counts[periods[len(periods)-2]]
	return float64(recent-previous) / float64(previous) * 100
}
