package formulas

import (
	"fmt"
	"math"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// Seconds budgeted per question type.
const (
	secondsSingleChoice   = 15
	secondsMultipleChoice = 30
	secondsMatrixRow      = 9
	secondsOpenEnd        = 90
	secondsOverhead       = 60

	// panelCostPerMinute is the indicative per-complete panel cost.
	panelCostPerMinute = 1.5
)

// SurveyLengthInput holds question counts. Every count defaults to zero when
// omitted; MatrixRows applies to each matrix question.
type SurveyLengthInput struct {
	SingleChoice    float64
	MultipleChoice  float64
	MatrixQuestions float64
	MatrixRows      float64
	OpenEnds        float64
}

// DropoutRisk is the expected abandonment level for a survey length.
type DropoutRisk string

const (
	DropoutLow    DropoutRisk = "low"
	DropoutMedium DropoutRisk = "medium"
	DropoutHigh   DropoutRisk = "high"
)

// CostTier maps an LOI in minutes to a pricing band.
func CostTier(loi float64) string {
	switch {
	case loi <= 5:
		return "Low"
	case loi <= 10:
		return "Standard"
	case loi <= 15:
		return "Medium"
	case loi <= 20:
		return "High"
	default:
		return "Premium"
	}
}

// SurveyDropoutRisk maps an LOI in minutes to a dropout risk.
func SurveyDropoutRisk(loi float64) DropoutRisk {
	switch {
	case loi > 20:
		return DropoutHigh
	case loi > 15:
		return DropoutMedium
	default:
		return DropoutLow
	}
}

func (d DropoutRisk) quality() types.Quality {
	switch d {
	case DropoutHigh:
		return types.QualityPoor
	case DropoutMedium:
		return types.QualityAcceptable
	default:
		return types.QualityExcellent
	}
}

// SurveyLength estimates the length of interview from question counts.
func SurveyLength(in SurveyLengthInput) (types.ToolResult, error) {
	in.SingleChoice = math.Max(in.SingleChoice, 0)
	in.MultipleChoice = math.Max(in.MultipleChoice, 0)
	in.MatrixQuestions = math.Max(in.MatrixQuestions, 0)
	in.MatrixRows = math.Max(in.MatrixRows, 0)
	in.OpenEnds = math.Max(in.OpenEnds, 0)

	total := in.SingleChoice*secondsSingleChoice +
		in.MultipleChoice*secondsMultipleChoice +
		in.MatrixQuestions*in.MatrixRows*secondsMatrixRow +
		in.OpenEnds*secondsOpenEnd +
		secondsOverhead

	loi := math.Round(total / 60)
	low := math.Max(1, math.Round(loi*0.8))
	high := math.Max(1, math.Round(loi*1.3))
	tier := CostTier(loi)
	risk := SurveyDropoutRisk(loi)
	cost := loi * panelCostPerMinute

	details := []types.DetailRow{
		{Label: "Estimated LOI", Value: fmt.Sprintf("%s min", formatInt(loi)), Highlight: true},
		{Label: "Expected Range", Value: fmt.Sprintf("%s-%s min", formatInt(low), formatInt(high))},
		{Label: "Total Time Budget", Value: fmt.Sprintf("%s sec", formatInt(total))},
		{Label: "Cost Tier", Value: tier},
		{Label: "Dropout Risk", Value: string(risk)},
	}

	var recs []string
	if risk == DropoutHigh {
		recs = append(recs, "Shorten the survey below 20 minutes to limit dropout and speeding.")
	}
	if in.OpenEnds > 3 {
		recs = append(recs, "Reduce open-ended questions to 3 or fewer to protect completion rates.")
	}
	if in.MatrixQuestions > 5 {
		recs = append(recs, "Split large matrix batteries across screens to reduce straight-lining.")
	}
	recs = append(recs, fmt.Sprintf("Estimated panel cost is about $%.2f per complete.", cost))

	return types.ToolResult{
		Tool:            types.ToolSurveyLength,
		Summary:         fmt.Sprintf("Estimated length of interview is %s (%s cost tier).", bold(formatInt(loi)+" minutes"), tier),
		Details:         details,
		Recommendations: recs,
		Quality:         risk.quality(),
		Metrics: map[string]float64{
			"totalSeconds": total,
			"estimatedLOI": loi,
			"rangeLow":     low,
			"rangeHigh":    high,
			"panelCost":    cost,
		},
	}, nil
}
