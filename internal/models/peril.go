package models

// Canonical event types.
const (
	EventTypeFlood      = "Flood"
	EventTypeHurricane  = "Hurricane"
	EventTypeHeatwave   = "Heatwave"
	EventTypeColdwave   = "Coldwave"
	EventTypeStorm      = "Storm"
	EventTypeWildfire   = "Wildfire"
	EventTypeDrought    = "Drought"
	EventTypeEarthquake = "Earthquake"
	EventTypeLandslide  = "Landslide"
	EventTypeVolcanic   = "Volcanic"
	EventTypeEpidemic   = "Epidemic"
)

type Coverage string

const (
	CoverageAll       Coverage = "all"
	CoverageCovered   Coverage = "covered"
	CoverageUncovered Coverage = "uncovered"
)

var (
	CoveredPerils   = []string{EventTypeFlood, EventTypeWildfire, EventTypeHurricane, EventTypeHeatwave, EventTypeColdwave, EventTypeStorm}
	UncoveredPerils = []string{EventTypeEarthquake, EventTypeDrought, EventTypeLandslide, EventTypeVolcanic}

	// SeasonalPerils are the climate-driven perils tracked month by month.
	SeasonalPerils = []string{EventTypeFlood, EventTypeHeatwave, EventTypeWildfire, EventTypeDrought, EventTypeHurricane}
)

// ParseCoverage maps a query value to a Coverage. Unknown values mean all perils.
func ParseCoverage(s string) Coverage {
	switch Coverage(s) {
	case CoverageCovered:
		return CoverageCovered
	case CoverageUncovered:
		return CoverageUncovered
	default:
		return CoverageAll
	}
}

// Includes reports whether eventType belongs to the coverage class.
func (c Coverage) Includes(eventType string) bool {
	switch c {
	case CoverageCovered:
		return contains(CoveredPerils, eventType)
	case CoverageUncovered:
		return contains(UncoveredPerils, eventType)
	default:
		return true
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
