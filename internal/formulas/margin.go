package formulas

import (
	"fmt"
	"math"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// MarginOfErrorInput holds the inputs of the margin-of-error calculator.
type MarginOfErrorInput struct {
	SampleSize      float64
	ConfidenceLevel float64
	// PopulationSize enables the finite population correction when set.
	PopulationSize *float64
}

// MarginOfError computes the worst-case (p=0.5) margin of error in percent.
//
// The raw value is corrected for a finite population (when one is given and
// larger than the sample) and only then rounded once to one decimal.
func MarginOfError(in MarginOfErrorInput) (types.ToolResult, error) {
	if in.SampleSize <= 0 {
		return types.ToolResult{}, invalid("sampleSize", "must be greater than zero, got %v", in.SampleSize)
	}

	z := ZScore(in.ConfidenceLevel)
	conf := effectiveConfidence(in.ConfidenceLevel)
	moe := z * math.Sqrt(0.25/in.SampleSize) * 100

	fpcApplied := false
	if in.PopulationSize != nil && in.SampleSize < *in.PopulationSize {
		pop := *in.PopulationSize
		if pop <= 1 {
			return types.ToolResult{}, invalid("populationSize", "must be greater than one, got %v", pop)
		}
		fpc := math.Sqrt((pop - in.SampleSize) / (pop - 1))
		if math.IsNaN(fpc) || math.IsInf(fpc, 0) {
			return types.ToolResult{}, invalid("populationSize", "gives an undefined correction for %v", pop)
		}
		moe *= fpc
		fpcApplied = true
	}
	moe = round1(moe)

	quality := MarginQuality(moe)

	details := []types.DetailRow{
		{Label: "Margin of Error", Value: "±" + formatPct(moe), Highlight: true},
		{Label: "Sample Size", Value: formatInt(in.SampleSize)},
		{Label: "Confidence Level", Value: fmt.Sprintf("%.0f%%", conf)},
		{Label: "Z-Score", Value: fmt.Sprintf("%.3f", z)},
	}
	if in.PopulationSize != nil {
		details = append(details, types.DetailRow{Label: "Population Size", Value: formatInt(*in.PopulationSize)})
		fpc := "Not applied"
		if fpcApplied {
			fpc = "Applied"
		}
		details = append(details, types.DetailRow{Label: "Finite Population Correction", Value: fpc})
	}

	var recs []string
	if moe > 5 {
		target := math.Ceil(384 * math.Pow(z/1.96, 2))
		recs = append(recs,
			fmt.Sprintf("Increase the sample to at least %s respondents to reach a ±5%% margin of error.", formatInt(target)),
			"Treat subgroup differences with caution at this level of precision.",
		)
	} else {
		recs = append(recs,
			"Current precision is adequate for most research objectives.",
			fmt.Sprintf("You can analyze up to %d subgroups of 100 respondents each.", int(math.Floor(in.SampleSize/100))),
		)
	}

	return types.ToolResult{
		Tool:            types.ToolMarginOfError,
		Summary:         fmt.Sprintf("With %s respondents at %.0f%% confidence, the margin of error is %s.", formatInt(in.SampleSize), conf, bold("±"+formatPct(moe))),
		Details:         details,
		Recommendations: recs,
		Quality:         quality,
		Metrics: map[string]float64{
			"marginOfError":   moe,
			"zScore":          z,
			"confidenceLevel": conf,
			"sampleSize":      in.SampleSize,
		},
	}, nil
}

// MarginQuality maps a rounded margin of error to its quality tier.
func MarginQuality(moe float64) types.Quality {
	switch {
	case moe <= 3:
		return types.QualityExcellent
	case moe <= 5:
		return types.QualityGood
	case moe <= 7:
		return types.QualityAcceptable
	default:
		return types.QualityPoor
	}
}
