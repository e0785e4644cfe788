package formulas

import (
	"fmt"
	"math"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// SampleSizeInput holds the inputs of the required-sample-size calculator.
type SampleSizeInput struct {
	// MarginOfError is the target precision in percent, e.g. 3 for ±3%.
	MarginOfError   float64
	ConfidenceLevel float64
	PopulationSize  *float64
}

// screeningBuffer inflates the required sample for quality-control removals.
const screeningBuffer = 1.15

// RequiredSampleSize computes the completes needed to hit a target margin of error.
func RequiredSampleSize(in SampleSizeInput) (types.ToolResult, error) {
	if in.MarginOfError <= 0 {
		return types.ToolResult{}, invalid("marginOfError", "must be greater than zero, got %v", in.MarginOfError)
	}
	if in.PopulationSize != nil && *in.PopulationSize <= 0 {
		return types.ToolResult{}, invalid("populationSize", "must be greater than zero, got %v", *in.PopulationSize)
	}

	z := ZScore(in.ConfidenceLevel)
	conf := effectiveConfidence(in.ConfidenceLevel)
	e := in.MarginOfError / 100
	n := math.Ceil(z * z * 0.25 / (e * e))
	if in.PopulationSize != nil {
		pop := *in.PopulationSize
		n = math.Ceil(n * pop / (n + pop - 1))
	}
	buffered := math.Ceil(n * screeningBuffer)

	details := []types.DetailRow{
		{Label: "Required Sample", Value: formatInt(n), Highlight: true},
		{Label: "Target Margin of Error", Value: "±" + formatPct(in.MarginOfError)},
		{Label: "Confidence Level", Value: fmt.Sprintf("%.0f%%", conf)},
	}
	if in.PopulationSize != nil {
		details = append(details, types.DetailRow{Label: "Population Size", Value: formatInt(*in.PopulationSize)})
	}
	details = append(details, types.DetailRow{Label: "Recommended with Buffer", Value: formatInt(buffered)})

	recs := []string{
		fmt.Sprintf("Plan for %s completes to leave a 10-15%% buffer for quality screening.", formatInt(buffered)),
	}
	if in.PopulationSize != nil && n >= *in.PopulationSize/2 {
		recs = append(recs, "The sample covers at least half of the population, so consider a census approach.")
	}
	if in.MarginOfError < 2 {
		recs = append(recs, "Precision tighter than ±2% rarely changes decisions and raises fieldwork cost sharply.")
	}

	return types.ToolResult{
		Tool:            types.ToolSampleSize,
		Summary:         fmt.Sprintf("To reach ±%s at %.0f%% confidence you need %s completes.", formatPct(in.MarginOfError), conf, bold(formatInt(n))),
		Details:         details,
		Recommendations: recs,
		Metrics: map[string]float64{
			"requiredSample":  n,
			"bufferedSample":  buffered,
			"zScore":          z,
			"confidenceLevel": conf,
		},
	}, nil
}
