package analytics

type Centroid struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

var centroids = map[string]Centroid{
	"Germany":        {51.1657, 10.4515},
	"France":         {46.2276, 2.2137},
	"Italy":          {41.8719, 12.5674},
	"Spain":          {40.4637, -3.7492},
	"Netherlands":    {52.1326, 5.2913},
	"Poland":         {51.9194, 19.1451},
	"Belgium":        {50.5039, 4.4699},
	"Sweden":         {60.1282, 18.6435},
	"Austria":        {47.5162, 14.5501},
	"Greece":         {39.0742, 21.8243},
	"Portugal":       {39.3999, -8.2245},
	"Ireland":        {53.1424, -7.6921},
	"Denmark":        {56.2639, 9.5018},
	"Finland":        {61.9241, 25.7482},
	"Norway":         {60.4720, 8.4689},
	"Switzerland":    {46.8182, 8.2275},
	"Czech Republic": {49.8175, 15.4730},
	"Romania":        {45.9432, 24.9668},
	"Hungary":        {47.1625, 19.5033},
	"United Kingdom": {55.3781, -3.4360},
	"Czechia":        {49.8175, 15.4730},

	"United Kingdom of Great Britain and Northern Ireland": {55.3781, -3.4360},
}

// CentroidFor returns the map position of a country.
func CentroidFor(country string) (Centroid, bool) {
	c, ok := centroids[country]
	return c, ok
}
