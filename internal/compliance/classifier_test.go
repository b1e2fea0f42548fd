package compliance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		category   string
		alertLevel string
	}{
		{"zero balance", 0, CategoryCritical, AlertZeroBalance},
		{"just below 1000", 999.99, CategoryCritical, AlertCritical},
		{"exactly 1000", 1000, CategoryNonCompliant, AlertWarning},
		{"just below minimum", 2999.99, CategoryNonCompliant, AlertWarning},
		{"exactly minimum", 3000, CategoryCompliant, AlertSufficient},
		{"just below excellent", 4999.99, CategoryCompliant, AlertSufficient},
		{"exactly excellent", 5000, CategoryExcellent, AlertSufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(tt.balance)
			require.NoError(t, err)
			assert.Equal(t, tt.category, c.Category)
			assert.Equal(t, tt.alertLevel, c.AlertLevel)
			assert.Equal(t, statusColors[tt.alertLevel], c.StatusColor)
		})
	}
}

func TestClassify_ShortfallAndProgress(t *testing.T) {
	for _, b := range []float64{0, 1, 500, 999.99, 1000, 1250, 2999.99, 3000, 4500, 5000, 125000} {
		c, err := Classify(b)
		require.NoError(t, err)

		wantShortfall := math.Max(0, MinimumRequiredBalance-b)
		assert.Equal(t, wantShortfall, c.Shortfall, "shortfall for balance %v", b)

		wantPct := math.Min(100, b/MinimumRequiredBalance*100)
		assert.InDelta(t, wantPct, c.PercentageComplete, 0.005, "progress for balance %v", b)
		assert.LessOrEqual(t, c.PercentageComplete, 100.0)
	}
}

func TestClassify_ProgressRounding(t *testing.T) {
	c, err := Classify(1250)
	require.NoError(t, err)
	assert.Equal(t, 41.67, c.PercentageComplete)
	assert.Equal(t, 1750.0, c.Shortfall)
	assert.Equal(t, CategoryNonCompliant, c.Category)
	assert.Equal(t, AlertWarning, c.AlertLevel)
	assert.False(t, c.IsCompliant)
}

func TestClassify_InvalidBalance(t *testing.T) {
	for _, b := range []float64{-1, -0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Classify(b)
		assert.ErrorIs(t, err, ErrInvalidBalance, "balance %v", b)
	}
}

func TestClassify_ExactlyOneCategoryAndLevel(t *testing.T) {
	categories := map[string]bool{
		CategoryCritical:     true,
		CategoryNonCompliant: true,
		CategoryCompliant:    true,
		CategoryExcellent:    true,
	}
	levels := map[string]bool{
		AlertZeroBalance: true,
		AlertCritical:    true,
		AlertWarning:     true,
		AlertSufficient:  true,
	}
	for b := 0.0; b <= 6000; b += 13.7 {
		c, err := Classify(b)
		require.NoError(t, err)
		assert.True(t, categories[c.Category], "unknown category %q for %v", c.Category, b)
		assert.True(t, levels[c.AlertLevel], "unknown alert level %q for %v", c.AlertLevel, b)
		assert.NotEmpty(t, c.StatusColor)
	}
}
