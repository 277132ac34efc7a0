package pipeline

import "github.com/mr1hm/go-climate-risk/internal/models"

var disasterTypeMapping = map[string]string{
	"Flood":               models.EventTypeFlood,
	"Storm":               models.EventTypeHurricane,
	"Extreme temperature": models.EventTypeHeatwave,
	"Wildfire":            models.EventTypeWildfire,
	"Drought":             models.EventTypeDrought,
	"Earthquake":          models.EventTypeEarthquake,
	"Mass movement (wet)": models.EventTypeLandslide,
	"Mass movement (dry)": models.EventTypeLandslide,
	"Volcanic activity":   models.EventTypeVolcanic,
	"Epidemic":            models.EventTypeEpidemic,
	"Landslide":           models.EventTypeLandslide,
}

// EventType maps a source disaster type to its canonical peril. Unknown types pass through.
func EventType(disasterType string) string {
	if t, ok := disasterTypeMapping[disasterType]; ok {
		return t
	}
	return disasterType
}
