package tools

import (
	"go.uber.org/zap"

	"github.com/ashutoshrp06/propcalc/internal/formulas"
	"github.com/ashutoshrp06/propcalc/internal/types"
)

// calculator adapts a formula to the Tool interface.
type calculator struct {
	config  types.ToolConfiguration
	compute func(values types.FormValues) (types.ToolResult, error)
}

func (c *calculator) ID() types.ToolID                       { return c.config.ID }
func (c *calculator) Configuration() types.ToolConfiguration { return c.config }
func (c *calculator) Compute(values types.FormValues) (types.ToolResult, error) {
	return c.compute(values)
}

// optional returns a pointer to the numeric value of name, or nil when the
// field was left empty.
func optional(values types.FormValues, name string) *float64 {
	if f, ok := values.Float(name); ok {
		return &f
	}
	return nil
}

// RegisterCalculators registers every built-in calculator using the
// configurations from catalog.
func RegisterCalculators(registry *Registry, catalog *Catalog, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	computes := map[types.ToolID]func(types.FormValues) (types.ToolResult, error){
		types.ToolMarginOfError: func(v types.FormValues) (types.ToolResult, error) {
			return formulas.MarginOfError(formulas.MarginOfErrorInput{
				SampleSize:      v.FloatOr("sampleSize", 0),
				ConfidenceLevel: v.FloatOr("confidenceLevel", 95),
				PopulationSize:  optional(v, "populationSize"),
			})
		},
		types.ToolSampleSize: func(v types.FormValues) (types.ToolResult, error) {
			return formulas.RequiredSampleSize(formulas.SampleSizeInput{
				MarginOfError:   v.FloatOr("marginOfError", 0),
				ConfidenceLevel: v.FloatOr("confidenceLevel", 95),
				PopulationSize:  optional(v, "populationSize"),
			})
		},
		types.ToolMaxDiff: func(v types.FormValues) (types.ToolResult, error) {
			return formulas.MaxDiff(formulas.MaxDiffInput{
				NumAttributes: v.FloatOr("numAttributes", 0),
				NumShown:      v.FloatOr("numShown", 0),
				SampleSize:    v.FloatOr("sampleSize", 0),
			})
		},
		types.ToolSurveyLength: func(v types.FormValues) (types.ToolResult, error) {
			return formulas.SurveyLength(formulas.SurveyLengthInput{
				SingleChoice:    v.FloatOr("singleChoice", 0),
				MultipleChoice:  v.FloatOr("multipleChoice", 0),
				MatrixQuestions: v.FloatOr("matrixQuestions", 0),
				MatrixRows:      v.FloatOr("matrixRows", 5),
				OpenEnds:        v.FloatOr("openEnds", 0),
			})
		},
		types.ToolDemographics: func(v types.FormValues) (types.ToolResult, error) {
			country := v.Text("country")
			if _, known := formulas.CensusFor(country); !known {
				logger.Warn("No census profile for country, using default",
					zap.String("country", country),
					zap.String("fallback", formulas.DefaultCountry))
			}
			return formulas.Demographics(formulas.DemographicsInput{
				TotalSample: v.FloatOr("totalSample", 0),
				Country:     country,
				QuotaType:   formulas.QuotaType(v.Text("quotaType")),
			})
		},
		types.ToolFeasibility: func(v types.FormValues) (types.ToolResult, error) {
			return formulas.Feasibility(formulas.FeasibilityInput{
				SampleSize:    v.FloatOr("sampleSize", 0),
				Countries:     v.FloatOr("countries", 1),
				LOI:           v.FloatOr("loi", 0),
				Timeline:      v.FloatOr("timeline", 0),
				IncidenceRate: v.FloatOr("incidenceRate", 100),
			})
		},
	}

	for _, cfg := range catalog.Configurations() {
		compute, ok := computes[cfg.ID]
		if !ok {
			continue
		}
		if err := registry.Register(&calculator{config: cfg, compute: compute}); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultRegistry returns a registry holding every built-in calculator.
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	registry := NewRegistry()
	if err := RegisterCalculators(registry, DefaultCatalog(), logger); err != nil {
		panic(err)
	}
	return registry
}
