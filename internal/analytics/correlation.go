package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/mr1hm/go-climate-risk/internal/models"
)

// minCorrelationRows is the row count a selection must exceed before fits are computed.
const minCorrelationRows = 5

// Fit is an ordinary least squares line y = Intercept + Slope*x with its
// Pearson coefficient.
type Fit struct {
	N         int      `json:"n"`
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
	R         *float64 `json:"r"`
}

type Correlations struct {
	SeverityVsImpact   *Fit `json:"severity_vs_impact,omitempty"`
	DurationVsAffected *Fit `json:"duration_vs_affected,omitempty"`
}

// CorrelationsOf fits severity against economic impact, and duration against
// people affected over rows with a positive duration and a known affected count.
func CorrelationsOf(rows []models.MergedEvent) Correlations {
	var c Correlations
	if len(rows) <= minCorrelationRows {
		return c
	}

	xs := make([]float64, len(rows))
	ys := make([]float64, len(rows))
	for i, r := range rows {
		xs[i], ys[i] = r.Severity, r.EconomicImpactMillionUSD
	}
	c.SeverityVsImpact = fit(xs, ys)

	xs, ys = xs[:0], ys[:0]
	for _, r := range rows {
		if r.DurationDays == nil || *r.DurationDays <= 0 || r.TotalAffected == nil {
			continue
		}
		xs = append(xs, float64(*r.DurationDays))
		ys = append(ys, *r.TotalAffected)
	}
	c.DurationVsAffected = fit(xs, ys)

	return c
}

// fit returns nil when x has fewer than two points or no spread.
func fit(xs, ys []float64) *Fit {
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return nil
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return &Fit{
		N:         len(xs),
		Slope:     beta,
		Intercept: alpha,
		R:         finite(stat.Correlation(xs, ys, nil)),
	}
}
