package api

import (
	"github.com/mr1hm/go-climate-risk/internal/analytics"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON renders one point per country at its centroid.
func toGeoJSON(stats []analytics.CountryStats) FeatureCollection {
	features := make([]Feature, 0, len(stats))

	for _, s := range stats {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{s.Centroid.Lon, s.Centroid.Lat},
			},
			Properties: map[string]any{
				"country":                         s.Country,
				"average_severity":                s.AverageSeverity,
				"severity_normalized":             s.SeverityNormed,
				"total_events":                    s.TotalEvents,
				"total_deaths":                    s.TotalDeaths,
				"total_affected":                  s.TotalAffected,
				"economic_impact_million_usd":     s.EconomicImpact,
				"policy_count":                    s.PolicyCount,
				"total_insured_value_eur_billion": s.TotalInsuredValueEURBillion,
				"annual_premium_eur_million":      s.AnnualPremiumEURMillion,
				"market_share_percent":            s.MarketSharePercent,
				"radius_meters":                   s.RadiusMeters,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
