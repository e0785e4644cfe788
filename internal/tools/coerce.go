package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// Coerce converts raw user text into a typed value for field. Select fields
// accept either a choice value or its label, in any case.
func Coerce(field types.ToolFieldDefinition, raw string) (types.Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.String(""), nil
	}

	switch field.Kind {
	case types.FieldNumeric:
		f, ok := types.String(raw).Float()
		if !ok {
			return types.Value{}, fmt.Errorf("%s must be a number, got %q", field.Label, raw)
		}
		return types.Number(f), nil
	case types.FieldChoice:
		for _, c := range field.Choices {
			if strings.EqualFold(c.Value, raw) || strings.EqualFold(c.Label, raw) {
				return types.String(c.Value), nil
			}
		}
		if field.AllowOther {
			return types.String(strings.ToLower(raw)), nil
		}
		values := make([]string, 0, len(field.Choices))
		for _, c := range field.Choices {
			values = append(values, c.Value)
		}
		return types.Value{}, fmt.Errorf("%s must be one of %s, got %q", field.Label, strings.Join(values, ", "), raw)
	default:
		return types.String(raw), nil
	}
}

// CoerceAny converts a decoded JSON argument into a typed value for field.
func CoerceAny(field types.ToolFieldDefinition, raw any) (types.Value, error) {
	switch v := raw.(type) {
	case nil:
		return types.String(""), nil
	case float64:
		if field.Kind == types.FieldNumeric {
			return types.Number(v), nil
		}
		return Coerce(field, strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return CoerceAny(field, float64(v))
	case int64:
		return CoerceAny(field, float64(v))
	case string:
		return Coerce(field, v)
	case bool:
		return types.Value{}, fmt.Errorf("%s does not accept a boolean", field.Label)
	default:
		return Coerce(field, fmt.Sprint(v))
	}
}

// CoerceAll converts raw text values for config's fields. Unknown names
// are reported as errors.
func CoerceAll(config types.ToolConfiguration, raw map[string]string) (types.FormValues, error) {
	values := make(types.FormValues, len(raw))
	for name, text := range raw {
		field, ok := config.Field(name)
		if !ok {
			return nil, fmt.Errorf("%s has no field %q", config.ID, name)
		}
		v, err := Coerce(field, text)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	return values, nil
}

// ParseAssignments splits "name=value" pairs.
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected name=value", p)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
