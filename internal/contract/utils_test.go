package contract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainMarginLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"negative margin", -0.01, LossValue},
		{"zero margin", 0, ThinValue},
		{"just below threshold", 9.99, ThinValue},
		{"exactly threshold", ThinMarginThreshold, HealthyValue},
		{"large margin", 63.64, HealthyValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainMarginLabel(tt.input))
		})
	}
}

func TestGetColorMarginLabel(t *testing.T) {
	tests := []struct {
		name   string
		margin float64
		label  string
	}{
		{"loss", -5, LossValue},
		{"thin", 5, ThinValue},
		{"healthy", 50, HealthyValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Should contain the plain label
			assert.Contains(t, GetColorMarginLabel(tt.margin), tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		max   int
		want  string
	}{
		{"short label unchanged", "Ada Lovelace", 20, "Ada Lovelace"},
		{"exactly at limit", "abcdefghijklmnopqrst", 20, "abcdefghijklmnopqrst"},
		{"one over limit", "abcdefghijklmnopqrstu", 20, "abcdefghijklmnopqrst..."},
		{"multibyte runes", strings.Repeat("é", 25), 20, strings.Repeat("é", 20) + "..."},
		{"non-positive limit disables", "anything", 0, "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateLabel(tt.label, tt.max))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("sometimes")
	assert.Error(t, err)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		want    schema.RangeSelector
		wantErr bool
	}{
		{"", schema.Range6Months, false},
		{"3 months", schema.Range3Months, false},
		{"6 Months", schema.Range6Months, false},
		{"12   months", schema.Range12Months, false},
		{"12m", schema.Range12Months, false},
		{"3 month", schema.Range3Months, false},
		{"all", schema.RangeAll, false},
		{"All Time", schema.RangeAll, false},
		{"5 months", "", true},
		{"24 months", "", true},
		{"six months", "", true},
		{"1 year", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRange))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeToMonths(t *testing.T) {
	sel, months, err := RangeToMonths("all")
	require.NoError(t, err)
	assert.Equal(t, schema.RangeAll, sel)
	assert.Equal(t, 120, months)

	_, _, err = RangeToMonths("bogus")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDBFilePathsDiffer(t *testing.T) {
	assert.NotEqual(t, GetStoreDBFilePath(), GetAuditDBFilePath())
	assert.True(t, strings.HasSuffix(GetStoreDBFilePath(), ".pmpulse.db"))
}
