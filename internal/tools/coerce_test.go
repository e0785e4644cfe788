package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

func TestCoerce(t *testing.T) {
	moe := Configuration(types.ToolMarginOfError)
	sample, _ := moe.Field("sampleSize")
	conf, _ := moe.Field("confidenceLevel")
	country, _ := Configuration(types.ToolDemographics).Field("country")
	quota, _ := Configuration(types.ToolDemographics).Field("quotaType")

	tests := []struct {
		name    string
		field   types.ToolFieldDefinition
		raw     string
		want    string
		wantErr bool
	}{
		{"plain number", sample, "400", "400", false},
		{"thousands separator", sample, "1,200", "1200", false},
		{"not a number", sample, "lots", "", true},
		{"choice value", conf, "99", "99", false},
		{"choice label", conf, "90%", "90", false},
		{"bad choice", conf, "80", "", true},
		{"label any case", country, "united kingdom", "uk", false},
		{"other country allowed", country, "Spain", "spain", false},
		{"quota case", quota, "EQUAL", "equal", false},
		{"empty", sample, "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.field, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Text())
		})
	}
}

func TestCoerce_NumericIsTyped(t *testing.T) {
	sample, _ := Configuration(types.ToolMarginOfError).Field("sampleSize")
	v, err := Coerce(sample, "385")
	require.NoError(t, err)
	assert.True(t, v.IsNumber())
}

func TestCoerceAny(t *testing.T) {
	cfg := Configuration(types.ToolMarginOfError)
	sample, _ := cfg.Field("sampleSize")
	conf, _ := cfg.Field("confidenceLevel")

	v, err := CoerceAny(sample, float64(500))
	require.NoError(t, err)
	assert.True(t, v.IsNumber())

	v, err = CoerceAny(conf, float64(99))
	require.NoError(t, err)
	assert.Equal(t, "99", v.Text())

	v, err = CoerceAny(sample, 12)
	require.NoError(t, err)
	assert.Equal(t, "12", v.Text())

	_, err = CoerceAny(sample, true)
	assert.Error(t, err)

	v, err = CoerceAny(sample, nil)
	require.NoError(t, err)
	assert.True(t, v.Empty())
}

func TestCoerceAll(t *testing.T) {
	cfg := Configuration(types.ToolFeasibility)

	values, err := CoerceAll(cfg, map[string]string{"sampleSize": "1000", "loi": "12"})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, values.FloatOr("sampleSize", 0))

	_, err = CoerceAll(cfg, map[string]string{"budget": "10"})
	assert.ErrorContains(t, err, "budget")
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"sampleSize=400", " country = uk ", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sampleSize": "400", "country": "uk", "note": "a=b"}, got)

	_, err = ParseAssignments([]string{"novalue"})
	assert.Error(t, err)

	_, err = ParseAssignments([]string{"=5"})
	assert.Error(t, err)
}
