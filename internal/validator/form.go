package validator

import (
	"fmt"
	"strings"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// FieldError is a validation message attached to one form field.
type FieldError struct {
	Field   string `json:"field"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// FieldErrors collects every field that failed validation, in form order.
type FieldErrors struct {
	Tool   types.ToolID `json:"tool"`
	Errors []FieldError `json:"errors"`
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s %s", fe.Label, fe.Message))
	}
	return fmt.Sprintf("%s: %s", e.Tool, strings.Join(parts, "; "))
}

// Map returns the errors keyed by field name.
func (e *FieldErrors) Map() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// Has reports whether field failed validation.
func (e *FieldErrors) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// ValidateForm checks resolved values against a tool's field definitions.
// It returns nil when every field is acceptable.
func ValidateForm(config types.ToolConfiguration, values types.FormValues) *FieldErrors {
	errs := &FieldErrors{Tool: config.ID}
	add := func(f types.ToolFieldDefinition, format string, args ...any) {
		errs.Errors = append(errs.Errors, FieldError{
			Field:   f.Name,
			Label:   f.Label,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, f := range config.Fields {
		v, present := values[f.Name]
		if !present || v.Empty() {
			if f.Required {
				add(f, "is required")
			}
			continue
		}

		switch f.Kind {
		case types.FieldNumeric:
			n, ok := v.Float()
			if !ok {
				add(f, "must be a number")
				continue
			}
			if f.Min != nil && n < *f.Min {
				add(f, "must be at least %g", *f.Min)
			} else if f.Max != nil && n > *f.Max {
				add(f, "must be at most %g", *f.Max)
			}
		case types.FieldChoice:
			if !f.AllowOther && !f.HasChoice(v.Text()) {
				add(f, "must be one of %s", strings.Join(choiceValues(f), ", "))
			}
		}
	}

	if len(errs.Errors) == 0 {
		return nil
	}
	return errs
}

func choiceValues(f types.ToolFieldDefinition) []string {
	out := make([]string, 0, len(f.Choices))
	for _, c := range f.Choices {
		out = append(out, c.Value)
	}
	return out
}
