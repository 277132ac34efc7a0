package pipeline

// countryAliases maps source spellings to the portfolio vocabulary. An alias is
// only applied when the raw name is not itself a portfolio country.
var countryAliases = map[string][]string{
	"United Kingdom of Great Britain and Northern Ireland": {"United Kingdom"},

	"United Kingdom":               {"United Kingdom of Great Britain and Northern Ireland"},
	"Czechia":                      {"Czech Republic"},
	"Czech Republic":               {"Czechia"},
	"Netherlands (Kingdom of the)": {"Netherlands"},
	"Türkiye":                      {"Turkey"},
}

func canonicalCountry(raw string, known map[string]int) (string, bool) {
	if _, ok := known[raw]; ok {
		return raw, true
	}
	for _, alias := range countryAliases[raw] {
		if _, ok := known[alias]; ok {
			return alias, true
		}
	}
	return raw, false
}
