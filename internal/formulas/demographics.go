package formulas

import (
	"fmt"
	"math"
	"strings"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// QuotaType selects census-representative or evenly split quotas.
type QuotaType string

const (
	QuotaCensus QuotaType = "census"
	QuotaEqual  QuotaType = "equal"
)

// DefaultCountry is used when a country has no census profile.
const DefaultCountry = "turkey"

// AgeBand is one age bracket of a census profile.
type AgeBand struct {
	Label string
	Pct   float64
}

// CensusProfile is the adult gender and age distribution of a country.
type CensusProfile struct {
	Country   string
	Name      string
	MalePct   float64
	FemalePct float64
	AgeBands  [3]AgeBand
}

// CensusProfiles holds the built-in census distributions, keyed by country code.
var CensusProfiles = map[string]CensusProfile{
	"turkey": {
		Country: "turkey", Name: "Turkey", MalePct: 50, FemalePct: 50,
		AgeBands: [3]AgeBand{{"18-34", 35}, {"35-54", 38}, {"55+", 27}},
	},
	"uk": {
		Country: "uk", Name: "United Kingdom", MalePct: 49, FemalePct: 51,
		AgeBands: [3]AgeBand{{"18-34", 28}, {"35-54", 34}, {"55+", 38}},
	},
	"usa": {
		Country: "usa", Name: "United States", MalePct: 49, FemalePct: 51,
		AgeBands: [3]AgeBand{{"18-34", 30}, {"35-54", 33}, {"55+", 37}},
	},
	"germany": {
		Country: "germany", Name: "Germany", MalePct: 49, FemalePct: 51,
		AgeBands: [3]AgeBand{{"18-34", 25}, {"35-54", 33}, {"55+", 42}},
	},
	"france": {
		Country: "france", Name: "France", MalePct: 48, FemalePct: 52,
		AgeBands: [3]AgeBand{{"18-34", 26}, {"35-54", 33}, {"55+", 41}},
	},
}

// CensusFor returns the profile for country. Unknown countries get the
// default profile and ok=false so callers can report the fallback.
func CensusFor(country string) (CensusProfile, bool) {
	if p, ok := CensusProfiles[strings.ToLower(strings.TrimSpace(country))]; ok {
		return p, true
	}
	return CensusProfiles[DefaultCountry], false
}

// equalSplit replaces census figures with an even split.
func (p CensusProfile) equalSplit() CensusProfile {
	p.MalePct, p.FemalePct = 50, 50
	p.AgeBands[0].Pct = 33
	p.AgeBands[1].Pct = 33
	p.AgeBands[2].Pct = 34
	return p
}

// DemographicsInput holds the inputs of the quota planner.
type DemographicsInput struct {
	TotalSample float64
	Country     string
	QuotaType   QuotaType
}

func quotaCount(total, pct float64) float64 {
	return math.Round(total * pct / 100)
}

// Demographics allocates gender and age quotas for a total sample.
func Demographics(in DemographicsInput) (types.ToolResult, error) {
	if in.TotalSample <= 0 {
		return types.ToolResult{}, invalid("totalSample", "must be greater than zero, got %v", in.TotalSample)
	}

	profile, known := CensusFor(in.Country)
	quotaType := in.QuotaType
	if quotaType != QuotaEqual {
		quotaType = QuotaCensus
	}
	if quotaType == QuotaEqual {
		profile = profile.equalSplit()
	}

	male := quotaCount(in.TotalSample, profile.MalePct)
	female := quotaCount(in.TotalSample, profile.FemalePct)

	details := []types.DetailRow{
		{Label: "Total Sample", Value: formatInt(in.TotalSample), Highlight: true},
		{Label: fmt.Sprintf("Male (%.0f%%)", profile.MalePct), Value: formatInt(male)},
		{Label: fmt.Sprintf("Female (%.0f%%)", profile.FemalePct), Value: formatInt(female)},
	}
	metrics := map[string]float64{
		"totalSample": in.TotalSample,
		"male":        male,
		"female":      female,
	}
	for i, band := range profile.AgeBands {
		n := quotaCount(in.TotalSample, band.Pct)
		details = append(details, types.DetailRow{
			Label: fmt.Sprintf("Age %s (%.0f%%)", band.Label, band.Pct),
			Value: formatInt(n),
		})
		metrics[fmt.Sprintf("age%d", i+1)] = n
	}

	recs := []string{
		"Apply soft quotas during fieldwork and weight the final data to the targets.",
	}
	if !known {
		recs = append([]string{fmt.Sprintf("No census profile for %q, so %s figures were used.", in.Country, profile.Name)}, recs...)
	}
	if in.TotalSample < 300 {
		recs = append(recs, "Cells below 100 respondents are too small for reliable subgroup reads.")
	}

	return types.ToolResult{
		Tool: types.ToolDemographics,
		Summary: fmt.Sprintf("Quota plan for %s respondents in %s using %s distribution.",
			bold(formatInt(in.TotalSample)), profile.Name, quotaType),
		Details:         details,
		Recommendations: recs,
		Quality:         types.QualityGood,
		Metrics:         metrics,
	}, nil
}
