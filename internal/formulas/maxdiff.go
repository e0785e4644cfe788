package formulas

import (
	"fmt"
	"math"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// MaxDiffInput holds the inputs of the MaxDiff design calculator.
type MaxDiffInput struct {
	NumAttributes float64
	NumShown      float64
	SampleSize    float64
}

// Reliability is the expected stability of MaxDiff utilities.
type Reliability string

const (
	ReliabilityHigh   Reliability = "high"
	ReliabilityMedium Reliability = "medium"
	ReliabilityLow    Reliability = "low"
)

// MaxDiffReliability classifies a design by exposure and sample size.
func MaxDiffReliability(timesShown, sampleSize float64) Reliability {
	switch {
	case timesShown >= 3 && sampleSize >= 200:
		return ReliabilityHigh
	case timesShown >= 2 && sampleSize >= 100:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}

func (r Reliability) quality() types.Quality {
	switch r {
	case ReliabilityHigh:
		return types.QualityExcellent
	case ReliabilityMedium:
		return types.QualityGood
	default:
		return types.QualityPoor
	}
}

// MaxDiff recommends a task count so each attribute is seen about three times.
func MaxDiff(in MaxDiffInput) (types.ToolResult, error) {
	if in.NumAttributes <= 0 {
		return types.ToolResult{}, invalid("numAttributes", "must be greater than zero, got %v", in.NumAttributes)
	}
	if in.NumShown <= 0 {
		return types.ToolResult{}, invalid("numShown", "must be greater than zero, got %v", in.NumShown)
	}
	if in.SampleSize < 0 {
		return types.ToolResult{}, invalid("sampleSize", "must not be negative, got %v", in.SampleSize)
	}

	tasks := math.Ceil(3 * in.NumAttributes / in.NumShown)
	timesShown := tasks * in.NumShown / in.NumAttributes
	comparisons := tasks * (in.NumShown - 1) * 2
	reliability := MaxDiffReliability(timesShown, in.SampleSize)

	details := []types.DetailRow{
		{Label: "Recommended Tasks", Value: formatInt(tasks), Highlight: true},
		{Label: "Attributes per Task", Value: formatInt(in.NumShown)},
		{Label: "Times Each Attribute Is Shown", Value: fmt.Sprintf("%.1f", timesShown)},
		{Label: "Comparisons per Respondent", Value: formatInt(comparisons)},
		{Label: "Sample Size", Value: formatInt(in.SampleSize)},
		{Label: "Reliability", Value: string(reliability)},
	}

	var recs []string
	if in.NumShown > in.NumAttributes {
		recs = append(recs, "Each task shows more items than exist, so reduce the items per task.")
	}
	if in.NumShown < 3 || in.NumShown > 5 {
		recs = append(recs, "Show 4 to 5 items per task to balance information and respondent effort.")
	}
	if in.SampleSize < 200 {
		recs = append(recs, "Increase the sample to at least 200 for stable individual-level utilities.")
	}
	if tasks > 15 {
		recs = append(recs, "The exercise is long, so consider splitting attributes across design versions.")
	}
	if reliability == ReliabilityHigh && len(recs) == 0 {
		recs = append(recs, "This design supports reliable individual-level scores.")
	}

	return types.ToolResult{
		Tool: types.ToolMaxDiff,
		Summary: fmt.Sprintf("Each respondent should complete %s showing %s of %s attributes.",
			bold(formatInt(tasks)+" tasks"), formatInt(in.NumShown), formatInt(in.NumAttributes)),
		Details:         details,
		Recommendations: recs,
		Quality:         reliability.quality(),
		Metrics: map[string]float64{
			"recommendedTasks": tasks,
			"timesShown":       timesShown,
			"totalComparisons": comparisons,
		},
	}, nil
}
