package formulas

import (
	"fmt"
	"math"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// dailyCompletes is the fielding capacity per country per day at 100% incidence.
const dailyCompletes = 50

// FeasibilityInput holds the project parameters to score.
type FeasibilityInput struct {
	SampleSize    float64
	Countries     float64
	LOI           float64
	Timeline      float64 // days
	IncidenceRate float64 // percent
}

// Verdict is the traffic-light outcome of a feasibility check.
type Verdict struct {
	Color string
	Label string
}

var (
	VerdictGreen  = Verdict{Color: "green", Label: "ACHIEVABLE"}
	VerdictYellow = Verdict{Color: "yellow", Label: "PROCEED WITH CAUTION"}
	VerdictRed    = Verdict{Color: "red", Label: "HIGH RISK"}
)

// FeasibilityScores are the five sub-scores on a 100-point scale.
type FeasibilityScores struct {
	Sample    float64
	LOI       float64
	Timeline  float64
	Incidence float64
	Country   float64
}

// Overall weights the sub-scores into one rounded score.
func (s FeasibilityScores) Overall() float64 {
	return math.Round(s.Sample*0.25 + s.LOI*0.20 + s.Timeline*0.25 + s.Incidence*0.20 + s.Country*0.10)
}

// ScoreFeasibility applies the fixed breakpoints to each parameter.
func ScoreFeasibility(in FeasibilityInput) FeasibilityScores {
	return FeasibilityScores{
		Sample:    stepDown(in.SampleSize, 500, 1000, 2000),
		LOI:       stepDown(in.LOI, 10, 15, 20),
		Timeline:  stepUp(in.Timeline, 14, 10, 7),
		Incidence: stepUp(in.IncidenceRate, 80, 50, 30),
		Country:   stepDown(in.Countries, 1, 3, 5),
	}
}

// stepDown scores lower values higher: ≤a 100, ≤b 80, ≤c 60, else 40.
func stepDown(v, a, b, c float64) float64 {
	switch {
	case v <= a:
		return 100
	case v <= b:
		return 80
	case v <= c:
		return 60
	default:
		return 40
	}
}

// stepUp scores higher values higher: ≥a 100, ≥b 80, ≥c 60, else 40.
func stepUp(v, a, b, c float64) float64 {
	switch {
	case v >= a:
		return 100
	case v >= b:
		return 80
	case v >= c:
		return 60
	default:
		return 40
	}
}

// FeasibilityVerdict maps an overall score to a verdict.
func FeasibilityVerdict(score float64) Verdict {
	switch {
	case score >= 70:
		return VerdictGreen
	case score >= 50:
		return VerdictYellow
	default:
		return VerdictRed
	}
}

func (v Verdict) quality() types.Quality {
	switch v {
	case VerdictGreen:
		return types.QualityExcellent
	case VerdictYellow:
		return types.QualityAcceptable
	default:
		return types.QualityPoor
	}
}

// EstimatedFieldDays models fielding at dailyCompletes per country-day scaled by incidence.
func EstimatedFieldDays(sampleSize, countries, incidenceRate float64) float64 {
	return math.Ceil(sampleSize * countries / (dailyCompletes * incidenceRate / 100))
}

// Feasibility scores a project and estimates its fielding time.
func Feasibility(in FeasibilityInput) (types.ToolResult, error) {
	if in.SampleSize <= 0 {
		return types.ToolResult{}, invalid("sampleSize", "must be greater than zero, got %v", in.SampleSize)
	}
	if in.Countries <= 0 {
		return types.ToolResult{}, invalid("countries", "must be at least one, got %v", in.Countries)
	}
	if in.IncidenceRate <= 0 {
		return types.ToolResult{}, invalid("incidenceRate", "must be greater than zero, got %v", in.IncidenceRate)
	}

	scores := ScoreFeasibility(in)
	overall := scores.Overall()
	verdict := FeasibilityVerdict(overall)
	days := EstimatedFieldDays(in.SampleSize, in.Countries, in.IncidenceRate)

	details := []types.DetailRow{
		{Label: "Feasibility Score", Value: fmt.Sprintf("%s/100", formatInt(overall)), Highlight: true},
		{Label: "Verdict", Value: verdict.Label},
		{Label: "Sample Score", Value: formatInt(scores.Sample)},
		{Label: "LOI Score", Value: formatInt(scores.LOI)},
		{Label: "Timeline Score", Value: formatInt(scores.Timeline)},
		{Label: "Incidence Score", Value: formatInt(scores.Incidence)},
		{Label: "Country Score", Value: formatInt(scores.Country)},
		{Label: "Estimated Field Days", Value: formatInt(days)},
	}

	var recs []string
	if days > in.Timeline {
		recs = append(recs, fmt.Sprintf("Fielding needs about %s days against a %s-day timeline, so extend the timeline or reduce the sample.",
			formatInt(days), formatInt(in.Timeline)))
	}
	if in.IncidenceRate < 30 {
		recs = append(recs, "Low incidence will slow fielding and raise cost, so consider broader screening criteria or a specialist panel.")
	}
	if in.LOI > 15 {
		recs = append(recs, "A long interview raises dropout, so consider trimming the questionnaire below 15 minutes.")
	}
	if len(recs) == 0 {
		recs = append(recs, "Project parameters look achievable within the requested timeline.")
	}

	return types.ToolResult{
		Tool:            types.ToolFeasibility,
		Summary:         fmt.Sprintf("Overall feasibility score is %s: %s.", bold(formatInt(overall)+"/100"), verdict.Label),
		Details:         details,
		Recommendations: recs,
		Quality:         verdict.quality(),
		Metrics: map[string]float64{
			"overallScore":   overall,
			"sampleScore":    scores.Sample,
			"loiScore":       scores.LOI,
			"timelineScore":  scores.Timeline,
			"incidenceScore": scores.Incidence,
			"countryScore":   scores.Country,
			"estimatedDays":  days,
		},
	}, nil
}
