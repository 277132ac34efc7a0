package models

// PortfolioEntry is the insurer's book of business in one country.
type PortfolioEntry struct {
	Country                     string  `json:"country"`
	PolicyCount                 int64   `json:"policy_count"`
	TotalInsuredValueEURBillion float64 `json:"total_insured_value_eur_billion"`
	AnnualPremiumEURMillion     float64 `json:"annual_premium_eur_million"`
	MarketSharePercent          float64 `json:"market_share_percent"`
}

// PremiumByPeril is the annual premium written against one peril.
type PremiumByPeril struct {
	EventType               string  `json:"event_type"`
	AnnualPremiumEURMillion float64 `json:"annual_premium_eur_million"`
}

// MergedEvent is a DisasterEvent joined with the PortfolioEntry of its country.
// Portfolio fields are flattened so the country key appears once.
type MergedEvent struct {
	DisasterEvent

	PolicyCount                 int64   `json:"policy_count"`
	TotalInsuredValueEURBillion float64 `json:"total_insured_value_eur_billion"`
	AnnualPremiumEURMillion     float64 `json:"annual_premium_eur_million"`
	MarketSharePercent          float64 `json:"market_share_percent"`
}

// Portfolio returns the portfolio side of the join.
func (m *MergedEvent) Portfolio() PortfolioEntry {
	return PortfolioEntry{
		Country:                     m.Country,
		PolicyCount:                 m.PolicyCount,
		TotalInsuredValueEURBillion: m.TotalInsuredValueEURBillion,
		AnnualPremiumEURMillion:     m.AnnualPremiumEURMillion,
		MarketSharePercent:          m.MarketSharePercent,
	}
}

// Dataset holds the four outputs of one preparation run.
type Dataset struct {
	Events         []DisasterEvent  `json:"events"`
	Portfolio      []PortfolioEntry `json:"portfolio"`
	PremiumByPeril []PremiumByPeril `json:"premium_by_peril"`
	Merged         []MergedEvent    `json:"merged"`
}

// PortfolioFor returns the entry for country, if any.
func (d *Dataset) PortfolioFor(country string) (PortfolioEntry, bool) {
	for _, p := range d.Portfolio {
		if p.Country == country {
			return p, true
		}
	}
	return PortfolioEntry{}, false
}
