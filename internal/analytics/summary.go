package analytics

import (
	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

// PortfolioTotals describes the whole book regardless of the selection.
type PortfolioTotals struct {
	Policies           int64   `json:"policies"`
	TotalInsuredValue  float64 `json:"total_insured_value_eur_billion"`
	AnnualPremium      float64 `json:"annual_premium_eur_million"`
	AverageMarketShare float64 `json:"average_market_share_percent"`
}

type Summary struct {
	TotalEvents              int      `json:"total_events"`
	AverageSeverity          float64  `json:"average_severity"`
	MedianSeverity           float64  `json:"median_severity"`
	AverageDurationDays      *float64 `json:"average_duration_days"`
	TotalDeaths              float64  `json:"total_deaths"`
	TotalAffected            float64  `json:"total_affected"`
	EconomicImpact           float64  `json:"economic_impact_million_usd"`
	InsuredDamageMillionUSD  float64  `json:"insured_damage_million_usd"`
	EconomicDamageBillionUSD float64  `json:"economic_damage_billion_usd"`
	InsurancePenetrationPct  float64  `json:"insurance_penetration_pct"`
	EventsPerYear            float64  `json:"events_per_year"`
	HighSeverityEvents       int      `json:"high_severity_events"`

	Portfolio PortfolioTotals `json:"portfolio"`
}

const highSeverity = 7.0

// Summarize computes the KPI cards for rows. Missing durations are left out
// of the mean duration, which is nil when no row has one.
func Summarize(rows []models.MergedEvent, portfolio []models.PortfolioEntry) Summary {
	severities := lo.Map(rows, func(r models.MergedEvent, _ int) float64 { return r.Severity })

	s := Summary{
		TotalEvents:     len(rows),
		AverageSeverity: mean(severities),
		MedianSeverity:  median(severities),
		TotalDeaths:     lo.SumBy(rows, func(r models.MergedEvent) float64 { return r.Deaths() }),
		TotalAffected:   lo.SumBy(rows, func(r models.MergedEvent) float64 { return r.Affected() }),
		EconomicImpact:  lo.SumBy(rows, func(r models.MergedEvent) float64 { return r.EconomicImpactMillionUSD }),
	}
	s.HighSeverityEvents = lo.CountBy(rows, func(r models.MergedEvent) bool { return r.Severity > highSeverity })

	var durations []float64
	for _, r := range rows {
		if r.DurationDays != nil {
			durations = append(durations, float64(*r.DurationDays))
		}
	}
	if len(durations) > 0 {
		d := mean(durations)
		s.AverageDurationDays = &d
	}

	insured := lo.SumBy(rows, func(r models.MergedEvent) float64 { return r.InsuredDamageAdjusted() })
	economic := lo.SumBy(rows, func(r models.MergedEvent) float64 { return valueOr(r.TotalDamageAdjusted000USD) })
	s.InsuredDamageMillionUSD = insured / 1000
	s.EconomicDamageBillionUSD = economic / 1_000_000
	if economic > 0 {
		s.InsurancePenetrationPct = insured / economic * 100
	}

	s.EventsPerYear = float64(len(rows)) / float64(max(1, distinctYears(rows)))

	s.Portfolio = PortfolioTotals{
		Policies:           lo.SumBy(portfolio, func(p models.PortfolioEntry) int64 { return p.PolicyCount }),
		TotalInsuredValue:  lo.SumBy(portfolio, func(p models.PortfolioEntry) float64 { return p.TotalInsuredValueEURBillion }),
		AnnualPremium:      lo.SumBy(portfolio, func(p models.PortfolioEntry) float64 { return p.AnnualPremiumEURMillion }),
		AverageMarketShare: mean(lo.Map(portfolio, func(p models.PortfolioEntry, _ int) float64 { return p.MarketSharePercent })),
	}

	return s
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
