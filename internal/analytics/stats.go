package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// mean returns 0 for an empty slice.
func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// median averages the two middle values when the length is even.
func median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// pctChange is the relative change from first to last, with first shifted by
// one so a zero baseline stays finite.
func pctChange(first, last float64) float64 {
	return (last - first) / (first + 1) * 100
}

// finite maps NaN and infinities to nil so results stay JSON encodable.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
