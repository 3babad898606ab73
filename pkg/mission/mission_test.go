package mission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Mission
		expectError bool
	}{
		{
			name:     "upper case rego",
			input:    "REGO",
			expected: REGO,
		},
		{
			name:     "lower case themis",
			input:    "themis",
			expected: THEMIS,
		},
		{
			name:     "mixed case with whitespace",
			input:    " ThEmIs ",
			expected: THEMIS,
		},
		{
			name:        "unknown array",
			input:       "TREX",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownMission)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, m)
			}
		})
	}
}

func TestStreamPath(t *testing.T) {
	day := time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)
	assert.Equal(t, "stream0/2017/04/13/", REGO.StreamPath(day))
}

func TestStreamPathNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	day := time.Date(2017, 4, 12, 22, 0, 0, 0, loc) // 2017-04-13 05:00 UTC
	assert.Equal(t, "stream0/2017/04/13/", THEMIS.StreamPath(day))
}

func TestHourDir(t *testing.T) {
	assert.Equal(t, "ut05/", HourDir(time.Date(2017, 4, 13, 5, 10, 0, 0, time.UTC)))
	assert.Equal(t, "ut23/", HourDir(time.Date(2017, 4, 13, 23, 59, 0, 0, time.UTC)))
}

func TestMinuteStamp(t *testing.T) {
	assert.Equal(t, "20170413_0510", MinuteStamp(time.Date(2017, 4, 13, 5, 10, 30, 0, time.UTC)))
}

func TestDir(t *testing.T) {
	assert.Equal(t, "rego", REGO.Dir())
	assert.Equal(t, "themis", THEMIS.Dir())
}

func TestSkymapPath(t *testing.T) {
	assert.Equal(t, "skymap/luck/", REGO.SkymapPath("LUCK"))
}
