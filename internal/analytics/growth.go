package analytics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

const (
	safeMarketMaxShare = 5.0
	safeMarketLimit    = 3
)

type GrowthMarket struct {
	models.PortfolioEntry

	TotalEvents     int     `json:"total_events"`
	AverageSeverity float64 `json:"severity"`
}

type Growth struct {
	Markets      []GrowthMarket `json:"markets"`
	MeanEvents   float64        `json:"mean_events"`
	MeanSeverity float64        `json:"mean_severity"`
	SafeMarkets  []GrowthMarket `json:"safe_markets"`
}

// GrowthOf joins per-country risk with the portfolio. Safe markets have fewer
// events and lower severity than the market means and a share under 5%; at
// most the three smallest shares are returned.
func GrowthOf(rows []models.MergedEvent, portfolio []models.PortfolioEntry) Growth {
	groups := lo.GroupBy(rows, func(r models.MergedEvent) string { return r.Country })
	entries := lo.SliceToMap(portfolio, func(p models.PortfolioEntry) (string, models.PortfolioEntry) { return p.Country, p })

	markets := make([]GrowthMarket, 0, len(groups))
	for country, group := range groups {
		p, ok := entries[country]
		if !ok {
			continue
		}
		markets = append(markets, GrowthMarket{
			PortfolioEntry:  p,
			TotalEvents:     len(group),
			AverageSeverity: mean(lo.Map(group, func(r models.MergedEvent, _ int) float64 { return r.Severity })),
		})
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].Country < markets[j].Country })

	g := Growth{
		Markets:      markets,
		MeanEvents:   mean(lo.Map(markets, func(m GrowthMarket, _ int) float64 { return float64(m.TotalEvents) })),
		MeanSeverity: mean(lo.Map(markets, func(m GrowthMarket, _ int) float64 { return m.AverageSeverity })),
	}

	safe := lo.Filter(markets, func(m GrowthMarket, _ int) bool {
		return float64(m.TotalEvents) < g.MeanEvents && m.AverageSeverity < g.MeanSeverity && m.MarketSharePercent < safeMarketMaxShare
	})
	sort.SliceStable(safe, func(i, j int) bool { return safe[i].MarketSharePercent < safe[j].MarketSharePercent })
	if len(safe) > safeMarketLimit {
		safe = safe[:safeMarketLimit]
	}
	g.SafeMarkets = safe

	return g
}
