package pipeline

// Event source columns, as headed in EM-DAT exports.
const (
	colTotalDeaths           = "Total Deaths"
	colNoInjured             = "No. Injured"
	colNoAffected            = "No. Affected"
	colNoHomeless            = "No. Homeless"
	colTotalAffected         = "Total Affected"
	colTotalDamage           = "Total Damage ('000 US$)"
	colTotalDamageAdjusted   = "Total Damage, Adjusted ('000 US$)"
	colInsuredDamage         = "Insured Damage ('000 US$)"
	colInsuredDamageAdjusted = "Insured Damage, Adjusted ('000 US$)"
	colStartYear             = "Start Year"
	colStartMonth            = "Start Month"
	colStartDay              = "Start Day"
	colEndYear               = "End Year"
	colEndMonth              = "End Month"
	colEndDay                = "End Day"
	colDisasterType          = "Disaster Type"
	colDisasterSubtype       = "Disaster Subtype"
	colCountry               = "Country"
	colSourceID              = "DisNo."
	colEventName             = "Event Name"
	colLocation              = "Location"
)

// Portfolio and premium columns.
const (
	colPortfolioCountry = "country"
	colPolicyCount      = "policy_count"
	colInsuredValue     = "total_insured_value_eur_billion"
	colAnnualPremium    = "annual_premium_eur_million"
	colMarketShare      = "market_share_percent"
	colEventType        = "event_type"
)
