package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

var boldRegexp = regexp.MustCompile(`\*\*[^*]+\*\*`)

// ResultValidator checks that a result can be shown by the generic result card.
type ResultValidator struct{}

func NewResultValidator() *ResultValidator {
	return &ResultValidator{}
}

func (v *ResultValidator) Validate(result types.ToolResult) error {
	if !result.Tool.Valid() {
		return fmt.Errorf("unknown tool %q", result.Tool)
	}

	if result.Summary == "" {
		return fmt.Errorf("%s: missing summary", result.Tool)
	}

	if strings.Contains(result.Summary, "\n") {
		return fmt.Errorf("%s: summary must be a single line", result.Tool)
	}

	if !boldRegexp.MatchString(result.Summary) {
		return fmt.Errorf("%s: summary has no bold headline", result.Tool)
	}

	highlights := 0
	for i, d := range result.Details {
		if d.Label == "" {
			return fmt.Errorf("%s: detail row %d has no label", result.Tool, i)
		}
		if d.Highlight {
			highlights++
		}
	}
	if highlights != 1 {
		return fmt.Errorf("%s: expected one highlighted detail row, found %d", result.Tool, highlights)
	}

	for i, rec := range result.Recommendations {
		if strings.Contains(rec, "**") {
			return fmt.Errorf("%s: recommendation %d contains markup", result.Tool, i)
		}
	}

	switch result.Quality {
	case "", types.QualityExcellent, types.QualityGood, types.QualityAcceptable, types.QualityPoor:
	default:
		return fmt.Errorf("%s: unknown quality %q", result.Tool, result.Quality)
	}

	return nil
}
