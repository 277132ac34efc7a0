// Package pipeline turns the three raw input tables into the analysis-ready dataset.
package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-climate-risk/internal/models"
	"github.com/mr1hm/go-climate-risk/internal/table"
)

const (
	deathsWeight   = 3.0
	affectedWeight = 3.0
	damageWeight   = 4.0

	maxSeverity = 10.0

	secondsPerDay = 24 * 60 * 60
)

// Prepare cleans, derives and joins the inputs. It never fails: missing columns
// disable the features that depend on them and malformed cells read as missing.
// The input tables are not modified.
func Prepare(events, portfolio, premium table.Table) *models.Dataset {
	ds := &models.Dataset{
		Portfolio:      parsePortfolio(portfolio),
		PremiumByPeril: parsePremium(premium),
	}

	known := make(map[string]int, len(ds.Portfolio))
	for i, p := range ds.Portfolio {
		if _, dup := known[p.Country]; !dup && p.Country != "" {
			known[p.Country] = i
		}
	}

	parsed := parseEvents(events)
	score(parsed)

	ds.Events = make([]models.DisasterEvent, 0, len(parsed))
	for i := range parsed {
		country, ok := canonicalCountry(parsed[i].Country, known)
		if !ok {
			continue
		}
		e := parsed[i]
		e.Country = country
		e.EventID = len(ds.Events)
		ds.Events = append(ds.Events, e)
	}

	ds.Merged = make([]models.MergedEvent, 0, len(ds.Events))
	for _, e := range ds.Events {
		idx, ok := known[e.Country]
		if !ok {
			continue
		}
		p := ds.Portfolio[idx]
		ds.Merged = append(ds.Merged, models.MergedEvent{
			DisasterEvent:               e,
			PolicyCount:                 p.PolicyCount,
			TotalInsuredValueEURBillion: p.TotalInsuredValueEURBillion,
			AnnualPremiumEURMillion:     p.AnnualPremiumEURMillion,
			MarketSharePercent:          p.MarketSharePercent,
		})
	}

	return ds
}

type eventColumns struct {
	deaths, injured, affected, homeless, totalAffected int
	damage, damageAdj, insured, insuredAdj             int
	startY, startM, startD, endY, endM, endD           int
	disasterType, subtype, country                     int
	sourceID, name, location                           int
}

func parseEvents(t table.Table) []models.DisasterEvent {
	c := eventColumns{
		deaths:        t.Index(colTotalDeaths),
		injured:       t.Index(colNoInjured),
		affected:      t.Index(colNoAffected),
		homeless:      t.Index(colNoHomeless),
		totalAffected: t.Index(colTotalAffected),
		damage:        t.Index(colTotalDamage),
		damageAdj:     t.Index(colTotalDamageAdjusted),
		insured:       t.Index(colInsuredDamage),
		insuredAdj:    t.Index(colInsuredDamageAdjusted),
		startY:        t.Index(colStartYear),
		startM:        t.Index(colStartMonth),
		startD:        t.Index(colStartDay),
		endY:          t.Index(colEndYear),
		endM:          t.Index(colEndMonth),
		endD:          t.Index(colEndDay),
		disasterType:  t.Index(colDisasterType),
		subtype:       t.Index(colDisasterSubtype),
		country:       t.Index(colCountry),
		sourceID:      t.Index(colSourceID),
		name:          t.Index(colEventName),
		location:      t.Index(colLocation),
	}

	out := make([]models.DisasterEvent, t.Len())
	for i := range out {
		e := &out[i]
		text := func(col int) string { return strings.TrimSpace(t.Cell(i, col)) }
		num := func(col int) *float64 { return parseNumber(t.Cell(i, col)) }
		whole := func(col int) *int { return parseWhole(t.Cell(i, col)) }

		e.Country = text(c.country)
		e.SourceID = text(c.sourceID)
		e.EventName = text(c.name)
		e.Location = text(c.location)
		e.DisasterType = text(c.disasterType)
		e.DisasterSubtype = text(c.subtype)
		e.EventType = EventType(e.DisasterType)

		e.TotalDeaths = num(c.deaths)
		e.NoInjured = num(c.injured)
		e.NoAffected = num(c.affected)
		e.NoHomeless = num(c.homeless)
		e.TotalAffected = num(c.totalAffected)
		e.TotalDamage000USD = num(c.damage)
		e.TotalDamageAdjusted000USD = num(c.damageAdj)
		e.InsuredDamage000USD = num(c.insured)
		e.InsuredDamageAdjusted000USD = num(c.insuredAdj)

		e.StartYear, e.StartMonth, e.StartDay = whole(c.startY), whole(c.startM), whole(c.startD)
		e.EndYear, e.EndMonth, e.EndDay = whole(c.endY), whole(c.endM), whole(c.endD)

		e.StartDate = assembleDate(e.StartYear, e.StartMonth, e.StartDay)
		e.EndDate = assembleDate(e.EndYear, e.EndMonth, e.EndDay)
		e.Year = e.StartYear
		e.Month = e.StartMonth
		if e.StartDate != nil {
			e.MonthName = e.StartDate.Month().String()
		}
		if e.StartDate != nil && e.EndDate != nil {
			d := int((e.EndDate.Unix() - e.StartDate.Unix()) / secondsPerDay)
			e.DurationDays = &d
		}

		e.TotalCasualties = zero(e.TotalDeaths) + zero(e.NoInjured)
		e.ResponseTimeHours = 1
		if e.DurationDays != nil {
			e.ResponseTimeHours = math.Max(1, float64(*e.DurationDays)*24)
		}
		e.EconomicImpactMillionUSD = zero(e.TotalDamageAdjusted000USD) / 1000
	}
	return out
}

// score sets severity and infrastructure damage. The normalizing maxima are
// taken over every input row, before any country filtering.
func score(events []models.DisasterEvent) {
	maxDeaths := denominator(events, func(e *models.DisasterEvent) *float64 { return e.TotalDeaths })
	maxAffected := denominator(events, func(e *models.DisasterEvent) *float64 { return e.TotalAffected })
	maxDamage := denominator(events, func(e *models.DisasterEvent) *float64 { return e.TotalDamageAdjusted000USD })

	for i := range events {
		e := &events[i]
		e.Severity = Severity(zero(e.TotalDeaths)/maxDeaths, zero(e.TotalAffected)/maxAffected, zero(e.TotalDamageAdjusted000USD)/maxDamage)
		e.InfrastructureDamageScore = zero(e.TotalDamageAdjusted000USD) / maxDamage * 10
	}
}

// Severity combines normalized mortality, population affected and economic
// damage (each in [0,1]) into a 0-10 score weighted 30/30/40.
func Severity(deaths, affected, damage float64) float64 {
	s := deathsWeight*deaths + affectedWeight*affected + damageWeight*damage
	return math.Min(maxSeverity, math.Max(0, s))
}

func denominator(events []models.DisasterEvent, field func(*models.DisasterEvent) *float64) float64 {
	found := false
	top := 0.0
	for i := range events {
		v := field(&events[i])
		if v == nil {
			continue
		}
		if !found || *v > top {
			top = *v
			found = true
		}
	}
	if !found || top <= 0 {
		return 1
	}
	return top
}

// assembleDate builds a UTC date. A missing year means no date; a missing month
// or day defaults to 1. Components that do not form a real date yield no date.
func assembleDate(year, month, day *int) *time.Time {
	if year == nil {
		return nil
	}
	m, d := 1, 1
	if month != nil {
		m = *month
	}
	if day != nil {
		d = *day
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil
	}
	t := time.Date(*year, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != *year || int(t.Month()) != m || t.Day() != d {
		return nil
	}
	return &t
}

func parsePortfolio(t table.Table) []models.PortfolioEntry {
	country := t.Index(colPortfolioCountry)
	policies := t.Index(colPolicyCount)
	value := t.Index(colInsuredValue)
	premium := t.Index(colAnnualPremium)
	share := t.Index(colMarketShare)

	out := make([]models.PortfolioEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, models.PortfolioEntry{
			Country:                     strings.TrimSpace(t.Cell(i, country)),
			PolicyCount:                 int64(zero(parseNumber(t.Cell(i, policies)))),
			TotalInsuredValueEURBillion: zero(parseNumber(t.Cell(i, value))),
			AnnualPremiumEURMillion:     zero(parseNumber(t.Cell(i, premium))),
			MarketSharePercent:          zero(parseNumber(t.Cell(i, share))),
		})
	}
	return out
}

func parsePremium(t table.Table) []models.PremiumByPeril {
	eventType := t.Index(colEventType)
	premium := t.Index(colAnnualPremium)

	out := make([]models.PremiumByPeril, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, models.PremiumByPeril{
			EventType:               strings.TrimSpace(t.Cell(i, eventType)),
			AnnualPremiumEURMillion: zero(parseNumber(t.Cell(i, premium))),
		})
	}
	return out
}

// parseNumber returns nil for empty, unparseable, NaN or infinite values.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseWhole accepts integral numbers written either as "7" or "7.0".
func parseWhole(s string) *int {
	v := parseNumber(s)
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil
	}
	n := int(*v)
	return &n
}

func zero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
