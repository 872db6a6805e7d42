package valuation

import "strings"

// cityTier buckets cities by market size. Rates are conservative floors, not
// market averages; the last-resort tier of the chain should under-promise.
type cityTier int

const (
	tierMetro cityTier = iota + 1
	tierLarge
	tierMid
)

// cityTiers maps known city names (lower-cased) to their market tier.
var cityTiers = map[string]cityTier{
	"mumbai":    tierMetro,
	"delhi":     tierMetro,
	"bangalore": tierMetro,
	"bengaluru": tierMetro,
	"gurgaon":   tierMetro,
	"gurugram":  tierMetro,

	"pune":      tierLarge,
	"hyderabad": tierLarge,
	"chennai":   tierLarge,
	"kolkata":   tierLarge,
	"noida":     tierLarge,
	"ahmedabad": tierLarge,

	"jaipur":        tierMid,
	"lucknow":       tierMid,
	"chandigarh":    tierMid,
	"indore":        tierMid,
	"kochi":         tierMid,
	"coimbatore":    tierMid,
	"nagpur":        tierMid,
	"bhubaneswar":   tierMid,
	"visakhapatnam": tierMid,
}

// tierRates holds conservative price-per-area figures by tier and kind.
var tierRates = map[cityTier]map[string]float64{
	tierMetro: {
		"residential": 8500,
		"commercial":  12000,
		"land":        5000,
	},
	tierLarge: {
		"residential": 5500,
		"commercial":  8000,
		"land":        3200,
	},
	tierMid: {
		"residential": 3500,
		"commercial":  5000,
		"land":        2000,
	},
}

// cityFallbackRate returns the static conservative price-per-area for a city
// and property kind, or false when the city is not in the table.
func cityFallbackRate(city, kind string) (float64, bool) {
	tier, ok := cityTiers[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return 0, false
	}
	rate, ok := tierRates[tier][kind]
	return rate, ok
}
