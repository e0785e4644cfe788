package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a form value: either a number or a string.
type Value struct {
	num   float64
	str   string
	isNum bool
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{num: f, isNum: true} }

// String returns a string value.
func String(s string) Value { return Value{str: s} }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.isNum }

// Float returns the numeric form of v. String values are parsed leniently
// so "95" and " 95 " both yield 95.
func (v Value) Float() (float64, bool) {
	if v.isNum {
		return v.num, true
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.str), "%"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text returns the string form of v.
func (v Value) Text() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Empty reports whether v carries no usable content.
func (v Value) Empty() bool {
	return !v.isNum && strings.TrimSpace(v.str) == ""
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Text() }

// MarshalJSON encodes numbers as JSON numbers and strings as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("form value must be a number or string: %w", err)
	}
	*v = String(s)
	return nil
}

// FormValues maps field names to values.
type FormValues map[string]Value

// Clone returns a copy; a nil map stays nil.
func (fv FormValues) Clone() FormValues {
	if fv == nil {
		return nil
	}
	out := make(FormValues, len(fv))
	for k, v := range fv {
		out[k] = v
	}
	return out
}

// Float returns the numeric value of name.
func (fv FormValues) Float(name string) (float64, bool) {
	v, ok := fv[name]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// FloatOr returns the numeric value of name, or def when absent or unparsable.
func (fv FormValues) FloatOr(name string, def float64) float64 {
	if f, ok := fv.Float(name); ok {
		return f
	}
	return def
}

// Text returns the string value of name, or "" when absent.
func (fv FormValues) Text(name string) string {
	v, ok := fv[name]
	if !ok {
		return ""
	}
	return v.Text()
}

// MergeValues layers value sets in increasing priority: later layers win.
// Empty values never overwrite a lower layer.
func MergeValues(layers ...FormValues) FormValues {
	out := make(FormValues)
	for _, layer := range layers {
		for k, v := range layer {
			if v.Empty() {
				continue
			}
			out[k] = v
		}
	}
	return out
}
