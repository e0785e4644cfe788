package formulas

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

func ptr(f float64) *float64 { return &f }

func highlighted(t *testing.T, r types.ToolResult) types.DetailRow {
	t.Helper()
	var rows []types.DetailRow
	for _, d := range r.Details {
		if d.Highlight {
			rows = append(rows, d)
		}
	}
	require.Len(t, rows, 1, "exactly one highlighted row expected")
	return rows[0]
}

func TestZScore(t *testing.T) {
	tests := []struct {
		conf float64
		want float64
	}{
		{90, 1.645},
		{95, 1.96},
		{99, 2.576},
		{80, 1.96},
		{0, 1.96},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ZScore(tt.conf), "confidence %v", tt.conf)
	}
}

func TestMarginOfError_Scenario(t *testing.T) {
	r, err := MarginOfError(MarginOfErrorInput{SampleSize: 384, ConfidenceLevel: 95})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, r.Metrics["marginOfError"], 0.1)
	assert.Equal(t, types.QualityGood, r.Quality)
	assert.Equal(t, types.ToolMarginOfError, r.Tool)
	assert.Equal(t, "±5.0%", highlighted(t, r).Value)
	assert.Contains(t, r.Summary, "**±5.0%**")
	assert.Equal(t, "Current precision is adequate for most research objectives.", r.Recommendations[0])
	assert.Contains(t, r.Recommendations[1], "3 subgroups")
}

func TestMarginOfError_LargeMarginSuggestsSample(t *testing.T) {
	r, err := MarginOfError(MarginOfErrorInput{SampleSize: 100, ConfidenceLevel: 99})
	require.NoError(t, err)

	// 2.576 * sqrt(0.25/100) * 100 = 12.88
	assert.Equal(t, 12.9, r.Metrics["marginOfError"])
	assert.Equal(t, types.QualityPoor, r.Quality)
	// ceil(384 * (2.576/1.96)^2) = 664
	assert.Contains(t, r.Recommendations[0], "664")
}

func TestMarginOfError_FinitePopulation(t *testing.T) {
	without, err := MarginOfError(MarginOfErrorInput{SampleSize: 400, ConfidenceLevel: 95})
	require.NoError(t, err)
	with, err := MarginOfError(MarginOfErrorInput{SampleSize: 400, ConfidenceLevel: 95, PopulationSize: ptr(1000)})
	require.NoError(t, err)

	assert.Less(t, with.Metrics["marginOfError"], without.Metrics["marginOfError"])

	// FPC is applied before the single rounding step.
	raw := 1.96 * math.Sqrt(0.25/400) * 100 * math.Sqrt(600.0/999.0)
	assert.Equal(t, math.Round(raw*10)/10, with.Metrics["marginOfError"])

	var fpc string
	for _, d := range with.Details {
		if d.Label == "Finite Population Correction" {
			fpc = d.Value
		}
	}
	assert.Equal(t, "Applied", fpc)
}

func TestMarginOfError_PopulationNotLargerThanSample(t *testing.T) {
	r, err := MarginOfError(MarginOfErrorInput{SampleSize: 500, ConfidenceLevel: 95, PopulationSize: ptr(500)})
	require.NoError(t, err)

	plain, _ := MarginOfError(MarginOfErrorInput{SampleSize: 500, ConfidenceLevel: 95})
	assert.Equal(t, plain.Metrics["marginOfError"], r.Metrics["marginOfError"])
}

func TestMarginOfError_InvalidSample(t *testing.T) {
	for _, n := range []float64{0, -10} {
		_, err := MarginOfError(MarginOfErrorInput{SampleSize: n, ConfidenceLevel: 95})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}

	// Populations at or below one make the finite population correction undefined.
	for _, pop := range []float64{0.8, 1} {
		_, err := MarginOfError(MarginOfErrorInput{SampleSize: 0.3, ConfidenceLevel: 95, PopulationSize: ptr(pop)})
		assert.ErrorIs(t, err, ErrInvalidInput, "population %v", pop)
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5.0%"},
		{10, "10.0%"},
		{3.1, "3.1%"},
		{0, "0.0%"},
		{1234.5, "1,234.5%"},
		{-0.4, "-0.4%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatPct(tt.in), "input %v", tt.in)
	}
}

func TestPercentagesKeepOneDecimal(t *testing.T) {
	r, err := MarginOfError(MarginOfErrorInput{SampleSize: 96, ConfidenceLevel: 95})
	require.NoError(t, err)
	assert.Equal(t, "±10.0%", highlighted(t, r).Value)

	r, err = RequiredSampleSize(SampleSizeInput{MarginOfError: 5, ConfidenceLevel: 95})
	require.NoError(t, err)
	var target string
	for _, d := range r.Details {
		if d.Label == "Target Margin of Error" {
			target = d.Value
		}
	}
	assert.Equal(t, "±5.0%", target)
	assert.Contains(t, r.Summary, "±5.0%")
}

func TestMarginOfError_Monotonic(t *testing.T) {
	prev := math.Inf(1)
	for _, n := range []float64{50, 100, 200, 400, 800, 1600, 3200} {
		r, err := MarginOfError(MarginOfErrorInput{SampleSize: n, ConfidenceLevel: 95})
		require.NoError(t, err)
		moe := r.Metrics["marginOfError"]
		assert.Less(t, moe, prev, "sample %v", n)
		prev = moe
	}
}

func TestMarginQuality_Boundaries(t *testing.T) {
	tests := []struct {
		moe  float64
		want types.Quality
	}{
		{1, types.QualityExcellent},
		{3.0, types.QualityExcellent},
		{3.01, types.QualityGood},
		{5.0, types.QualityGood},
		{5.01, types.QualityAcceptable},
		{7.0, types.QualityAcceptable},
		{7.01, types.QualityPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarginQuality(tt.moe), "moe %v", tt.moe)
	}
}

func TestRequiredSampleSize_Scenario(t *testing.T) {
	r, err := RequiredSampleSize(SampleSizeInput{MarginOfError: 3, ConfidenceLevel: 95})
	require.NoError(t, err)

	// ceil(1.96^2 * 0.25 / 0.03^2) = ceil(1067.11)
	assert.Equal(t, 1068.0, r.Metrics["requiredSample"])
	assert.Equal(t, math.Ceil(1068*1.15), r.Metrics["bufferedSample"])
	assert.Equal(t, "1,068", highlighted(t, r).Value)
	assert.Contains(t, r.Summary, "**1,068**")
	assert.Empty(t, r.Quality)
}

func TestRequiredSampleSize_FinitePopulation(t *testing.T) {
	r, err := RequiredSampleSize(SampleSizeInput{MarginOfError: 5, ConfidenceLevel: 95, PopulationSize: ptr(300)})
	require.NoError(t, err)

	n := math.Ceil(1.96 * 1.96 * 0.25 / (0.05 * 0.05))
	want := math.Ceil(n * 300 / (n + 299))
	assert.Equal(t, want, r.Metrics["requiredSample"])
	assert.True(t, containsAny(r.Recommendations, "census"))
}

func TestRequiredSampleSize_Invalid(t *testing.T) {
	_, err := RequiredSampleSize(SampleSizeInput{MarginOfError: 0, ConfidenceLevel: 95})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = RequiredSampleSize(SampleSizeInput{MarginOfError: 3, ConfidenceLevel: 95, PopulationSize: ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRequiredSampleSize_Monotonic(t *testing.T) {
	prev := math.Inf(1)
	for _, moe := range []float64{1, 2, 3, 4, 5, 7, 10} {
		r, err := RequiredSampleSize(SampleSizeInput{MarginOfError: moe, ConfidenceLevel: 95})
		require.NoError(t, err)
		n := r.Metrics["requiredSample"]
		assert.Less(t, n, prev, "moe %v", moe)
		prev = n
	}
}

func TestSampleSizeRoundTrip(t *testing.T) {
	for _, conf := range []float64{90, 95, 99} {
		for _, target := range []float64{1.5, 2, 2.5, 3, 4, 5, 8} {
			req, err := RequiredSampleSize(SampleSizeInput{MarginOfError: target, ConfidenceLevel: conf})
			require.NoError(t, err)

			back, err := MarginOfError(MarginOfErrorInput{SampleSize: req.Metrics["requiredSample"], ConfidenceLevel: conf})
			require.NoError(t, err)
			assert.LessOrEqual(t, back.Metrics["marginOfError"], target, "conf %v target %v", conf, target)
		}
	}
}

func TestMaxDiff_Scenario(t *testing.T) {
	r, err := MaxDiff(MaxDiffInput{NumAttributes: 12, NumShown: 4, SampleSize: 300})
	require.NoError(t, err)

	assert.Equal(t, 9.0, r.Metrics["recommendedTasks"])
	assert.Equal(t, 3.0, r.Metrics["timesShown"])
	assert.Equal(t, 54.0, r.Metrics["totalComparisons"])
	assert.Equal(t, types.QualityExcellent, r.Quality)
	assert.Equal(t, "9", highlighted(t, r).Value)
	assert.Contains(t, r.Summary, "**9 tasks**")
}

func TestMaxDiff_Recommendations(t *testing.T) {
	r, err := MaxDiff(MaxDiffInput{NumAttributes: 40, NumShown: 2, SampleSize: 80})
	require.NoError(t, err)

	assert.Equal(t, types.QualityPoor, r.Quality)
	assert.True(t, containsAny(r.Recommendations, "4 to 5 items"))
	assert.True(t, containsAny(r.Recommendations, "at least 200"))
	assert.True(t, containsAny(r.Recommendations, "design versions"))
}

func TestMaxDiff_Invalid(t *testing.T) {
	tests := []MaxDiffInput{
		{NumAttributes: 0, NumShown: 4, SampleSize: 100},
		{NumAttributes: 10, NumShown: 0, SampleSize: 100},
		{NumAttributes: 10, NumShown: 4, SampleSize: -1},
	}
	for _, in := range tests {
		_, err := MaxDiff(in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestMaxDiffReliability(t *testing.T) {
	assert.Equal(t, ReliabilityHigh, MaxDiffReliability(3, 200))
	assert.Equal(t, ReliabilityMedium, MaxDiffReliability(2.99, 200))
	assert.Equal(t, ReliabilityMedium, MaxDiffReliability(2, 100))
	assert.Equal(t, ReliabilityLow, MaxDiffReliability(2, 99))
	assert.Equal(t, ReliabilityLow, MaxDiffReliability(1.5, 1000))
}

func TestSurveyLength_Scenario(t *testing.T) {
	r, err := SurveyLength(SurveyLengthInput{
		SingleChoice:    10,
		MultipleChoice:  5,
		MatrixQuestions: 2,
		MatrixRows:      5,
		OpenEnds:        1,
	})
	require.NoError(t, err)

	assert.Equal(t, 540.0, r.Metrics["totalSeconds"])
	assert.Equal(t, 9.0, r.Metrics["estimatedLOI"])
	assert.Equal(t, 7.0, r.Metrics["rangeLow"])
	assert.Equal(t, 12.0, r.Metrics["rangeHigh"])
	assert.Equal(t, types.QualityExcellent, r.Quality)
	assert.Equal(t, "9 min", highlighted(t, r).Value)

	var tier, risk string
	for _, d := range r.Details {
		switch d.Label {
		case "Cost Tier":
			tier = d.Value
		case "Dropout Risk":
			risk = d.Value
		}
	}
	assert.Equal(t, "Standard", tier)
	assert.Equal(t, "low", risk)
	assert.Equal(t, "Estimated panel cost is about $13.50 per complete.", r.Recommendations[len(r.Recommendations)-1])
}

func TestSurveyLength_EmptySurvey(t *testing.T) {
	r, err := SurveyLength(SurveyLengthInput{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, r.Metrics["estimatedLOI"])
	assert.Equal(t, 1.0, r.Metrics["rangeLow"])
	assert.Equal(t, 1.0, r.Metrics["rangeHigh"])
}

func TestSurveyLength_LongSurvey(t *testing.T) {
	r, err := SurveyLength(SurveyLengthInput{SingleChoice: 40, OpenEnds: 6, MatrixQuestions: 6, MatrixRows: 8})
	require.NoError(t, err)

	assert.Equal(t, types.QualityPoor, r.Quality)
	assert.True(t, containsAny(r.Recommendations, "Shorten the survey"))
	assert.True(t, containsAny(r.Recommendations, "open-ended"))
	assert.True(t, containsAny(r.Recommendations, "matrix"))
}

func TestSurveyTiers_Boundaries(t *testing.T) {
	tiers := []struct {
		loi  float64
		want string
	}{
		{5, "Low"}, {6, "Standard"}, {10, "Standard"}, {11, "Medium"},
		{15, "Medium"}, {16, "High"}, {20, "High"}, {21, "Premium"},
	}
	for _, tt := range tiers {
		assert.Equal(t, tt.want, CostTier(tt.loi), "loi %v", tt.loi)
	}

	assert.Equal(t, DropoutLow, SurveyDropoutRisk(15))
	assert.Equal(t, DropoutMedium, SurveyDropoutRisk(16))
	assert.Equal(t, DropoutMedium, SurveyDropoutRisk(20))
	assert.Equal(t, DropoutHigh, SurveyDropoutRisk(21))
}

func TestDemographics_SumsToTotal(t *testing.T) {
	countries := []string{"turkey", "uk", "usa", "germany", "france", "atlantis"}
	quotaTypes := []QuotaType{QuotaCensus, QuotaEqual}
	totals := []float64{1, 7, 99, 250, 1000, 1333}

	for _, c := range countries {
		for _, q := range quotaTypes {
			for _, total := range totals {
				r, err := Demographics(DemographicsInput{TotalSample: total, Country: c, QuotaType: q})
				require.NoError(t, err)

				gender := r.Metrics["male"] + r.Metrics["female"]
				assert.LessOrEqual(t, math.Abs(gender-total), 2.0, "%s/%s/%v gender", c, q, total)

				age := r.Metrics["age1"] + r.Metrics["age2"] + r.Metrics["age3"]
				assert.LessOrEqual(t, math.Abs(age-total), 3.0, "%s/%s/%v age", c, q, total)

				assert.Equal(t, types.QualityGood, r.Quality)
			}
		}
	}
}

func TestDemographics_CensusAndEqual(t *testing.T) {
	census, err := Demographics(DemographicsInput{TotalSample: 1000, Country: "germany", QuotaType: QuotaCensus})
	require.NoError(t, err)
	assert.Equal(t, 490.0, census.Metrics["male"])
	assert.Equal(t, 510.0, census.Metrics["female"])
	assert.Equal(t, 250.0, census.Metrics["age1"])
	assert.Equal(t, 420.0, census.Metrics["age3"])

	equal, err := Demographics(DemographicsInput{TotalSample: 1000, Country: "germany", QuotaType: QuotaEqual})
	require.NoError(t, err)
	assert.Equal(t, 500.0, equal.Metrics["male"])
	assert.Equal(t, 330.0, equal.Metrics["age1"])
	assert.Equal(t, 340.0, equal.Metrics["age3"])
	assert.Equal(t, "1,000", highlighted(t, equal).Value)
}

func TestDemographics_UnknownCountryFallsBack(t *testing.T) {
	r, err := Demographics(DemographicsInput{TotalSample: 1000, Country: "Atlantis"})
	require.NoError(t, err)

	turkey, _ := Demographics(DemographicsInput{TotalSample: 1000, Country: "turkey"})
	assert.Equal(t, turkey.Metrics, r.Metrics)
	assert.Contains(t, r.Recommendations[0], "Atlantis")

	p, ok := CensusFor("  UK ")
	assert.True(t, ok)
	assert.Equal(t, "United Kingdom", p.Name)
	_, ok = CensusFor("mars")
	assert.False(t, ok)
}

func TestDemographics_Invalid(t *testing.T) {
	_, err := Demographics(DemographicsInput{TotalSample: 0, Country: "uk"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeasibility_Scenario(t *testing.T) {
	r, err := Feasibility(FeasibilityInput{SampleSize: 1000, Countries: 2, LOI: 12, Timeline: 14, IncidenceRate: 60})
	require.NoError(t, err)

	assert.Equal(t, 80.0, r.Metrics["sampleScore"])
	assert.Equal(t, 80.0, r.Metrics["loiScore"])
	assert.Equal(t, 100.0, r.Metrics["timelineScore"])
	assert.Equal(t, 80.0, r.Metrics["incidenceScore"])
	assert.Equal(t, 80.0, r.Metrics["countryScore"])
	assert.Equal(t, 85.0, r.Metrics["overallScore"])
	assert.Equal(t, 67.0, r.Metrics["estimatedDays"])
	assert.Equal(t, types.QualityExcellent, r.Quality)
	assert.Contains(t, r.Summary, "ACHIEVABLE")
	assert.Equal(t, "85/100", highlighted(t, r).Value)
	assert.True(t, containsAny(r.Recommendations, "67 days"))
}

func TestFeasibility_AllClear(t *testing.T) {
	r, err := Feasibility(FeasibilityInput{SampleSize: 300, Countries: 1, LOI: 10, Timeline: 14, IncidenceRate: 100})
	require.NoError(t, err)

	assert.Equal(t, 100.0, r.Metrics["overallScore"])
	assert.Equal(t, []string{"Project parameters look achievable within the requested timeline."}, r.Recommendations)
}

func TestFeasibility_HighRisk(t *testing.T) {
	r, err := Feasibility(FeasibilityInput{SampleSize: 5000, Countries: 8, LOI: 25, Timeline: 5, IncidenceRate: 10})
	require.NoError(t, err)

	assert.Equal(t, 40.0, r.Metrics["overallScore"])
	assert.Equal(t, types.QualityPoor, r.Quality)
	assert.Contains(t, r.Summary, "HIGH RISK")
	assert.Len(t, r.Recommendations, 3)
}

func TestFeasibilityVerdict_Boundaries(t *testing.T) {
	assert.Equal(t, VerdictGreen, FeasibilityVerdict(70))
	assert.Equal(t, VerdictYellow, FeasibilityVerdict(69))
	assert.Equal(t, VerdictYellow, FeasibilityVerdict(50))
	assert.Equal(t, VerdictRed, FeasibilityVerdict(49))
}

func TestFeasibility_Invalid(t *testing.T) {
	tests := []FeasibilityInput{
		{SampleSize: 0, Countries: 1, IncidenceRate: 50},
		{SampleSize: 100, Countries: 0, IncidenceRate: 50},
		{SampleSize: 100, Countries: 1, IncidenceRate: 0},
	}
	for _, in := range tests {
		_, err := Feasibility(in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestIdempotence(t *testing.T) {
	calls := []func() (types.ToolResult, error){
		func() (types.ToolResult, error) {
			return MarginOfError(MarginOfErrorInput{SampleSize: 523, ConfidenceLevel: 99, PopulationSize: ptr(4000)})
		},
		func() (types.ToolResult, error) {
			return RequiredSampleSize(SampleSizeInput{MarginOfError: 2.5, ConfidenceLevel: 90})
		},
		func() (types.ToolResult, error) {
			return MaxDiff(MaxDiffInput{NumAttributes: 17, NumShown: 5, SampleSize: 150})
		},
		func() (types.ToolResult, error) {
			return SurveyLength(SurveyLengthInput{SingleChoice: 22, MatrixQuestions: 3, MatrixRows: 7})
		},
		func() (types.ToolResult, error) {
			return Demographics(DemographicsInput{TotalSample: 777, Country: "france"})
		},
		func() (types.ToolResult, error) {
			return Feasibility(FeasibilityInput{SampleSize: 1500, Countries: 3, LOI: 18, Timeline: 9, IncidenceRate: 35})
		},
	}
	for _, call := range calls {
		a, err := call()
		require.NoError(t, err)
		b, err := call()
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestPresentationShape(t *testing.T) {
	results := []types.ToolResult{}
	add := func(r types.ToolResult, err error) {
		require.NoError(t, err)
		results = append(results, r)
	}
	add(MarginOfError(MarginOfErrorInput{SampleSize: 1000, ConfidenceLevel: 95}))
	add(RequiredSampleSize(SampleSizeInput{MarginOfError: 1.5, ConfidenceLevel: 99, PopulationSize: ptr(2000)}))
	add(MaxDiff(MaxDiffInput{NumAttributes: 6, NumShown: 7, SampleSize: 50}))
	add(SurveyLength(SurveyLengthInput{SingleChoice: 100}))
	add(Demographics(DemographicsInput{TotalSample: 120, Country: "nowhere", QuotaType: QuotaEqual}))
	add(Feasibility(FeasibilityInput{SampleSize: 2500, Countries: 4, LOI: 16, Timeline: 8, IncidenceRate: 20}))

	for _, r := range results {
		highlighted(t, r)
		assert.Regexp(t, `\*\*[^*]+\*\*`, r.Summary, "%s summary", r.Tool)
		assert.NotContains(t, r.Summary, "\n")
		for _, rec := range r.Recommendations {
			assert.NotContains(t, rec, "**", "%s recommendation has markup", r.Tool)
			assert.NotEmpty(t, rec)
		}
	}
}

func containsAny(lines []string, sub string) bool {
	for _, l := range lines {
		if strings.Contains(l, sub) {
			return true
		}
	}
	return false
}
