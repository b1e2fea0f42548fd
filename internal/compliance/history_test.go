package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructHistory_FullAndPartialYears(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	records := ReconstructHistory(3300, now)
	require.Len(t, records, 6)

	var full, partial int
	var sum float64
	for _, r := range records {
		sum += r.Amount
		switch r.Status {
		case "completed":
			full++
			assert.Equal(t, float64(YearlyFee), r.Amount)
			assert.Equal(t, time.June, r.Date.Month())
			assert.Equal(t, 15, r.Date.Day())
		case "partial":
			partial++
			assert.Equal(t, 300.0, r.Amount)
			assert.Equal(t, time.January, r.Date.Month())
			assert.Equal(t, 2026, r.Year)
		default:
			t.Fatalf("unexpected status %q", r.Status)
		}
		assert.Equal(t, "reconstructed", r.Source)
	}
	assert.Equal(t, 5, full)
	assert.Equal(t, 1, partial)
	assert.LessOrEqual(t, sum, 3300.0)

	// newest first
	for i := 1; i < len(records); i++ {
		assert.False(t, records[i].Date.After(records[i-1].Date),
			"records out of order at %d", i)
	}
	assert.Equal(t, 2026, records[0].Year)
}

func TestReconstructHistory_SumNeverExceedsBalance(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for _, b := range []float64{0, 1, 599.99, 600, 601, 1250, 5999, 6000, 6001, 50000} {
		var sum float64
		for _, r := range ReconstructHistory(b, now) {
			sum += r.Amount
		}
		assert.LessOrEqual(t, sum, b, "balance %v", b)
	}
}

func TestReconstructHistory_ZeroAndNegative(t *testing.T) {
	now := time.Now()
	assert.Empty(t, ReconstructHistory(0, now))
	assert.Empty(t, ReconstructHistory(-100, now))
}

func TestReconstructHistory_CapAtTenYears(t *testing.T) {
	now := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	records := ReconstructHistory(50000, now)

	var full int
	for _, r := range records {
		if r.Status == "completed" {
			full++
		}
	}
	assert.Equal(t, 10, full)

	oldest := records[len(records)-1]
	assert.Equal(t, 2017, oldest.Year)
}
