// Package compliance holds the pure computation rules for member compliance:
// balance classification, tribal section assignment, and synthetic payment
// history reconstruction. Everything here is deterministic and side-effect
// free so the query pipeline and statement service share one source of truth.
package compliance

import (
	"errors"
	"math"
)

// MinimumRequiredBalance is the lifetime balance a member must reach to be
// compliant, in SAR.
const MinimumRequiredBalance = 3000

// Category values.
const (
	CategoryExcellent    = "excellent"
	CategoryCompliant    = "compliant"
	CategoryNonCompliant = "nonCompliant"
	CategoryCritical     = "critical"
)

// Alert levels, ordered by severity.
const (
	AlertZeroBalance = "ZERO_BALANCE"
	AlertCritical    = "CRITICAL"
	AlertWarning     = "WARNING"
	AlertSufficient  = "SUFFICIENT"
)

// statusColors maps alert level to the hex color used by clients.
var statusColors = map[string]string{
	AlertZeroBalance: "#991B1B",
	AlertCritical:    "#DC2626",
	AlertWarning:     "#F59E0B",
	AlertSufficient:  "#10B981",
}

// ErrInvalidBalance is returned for negative or non-finite balances.
var ErrInvalidBalance = errors.New("balance must be a non-negative finite number")

// Classification is the full compliance verdict for one balance.
type Classification struct {
	Balance            float64 `json:"balance"`
	Category           string  `json:"category"`
	AlertLevel         string  `json:"alertLevel"`
	StatusColor        string  `json:"statusColor"`
	IsCompliant        bool    `json:"isCompliant"`
	Shortfall          float64 `json:"shortfall"`
	PercentageComplete float64 `json:"percentageComplete"`
}

// Classify computes the category, alert level, color, shortfall and progress
// for a lifetime balance. The category and alert ladders are separate scales:
// a balance of 500 is both nonCompliant by category bands and CRITICAL by
// alert bands.
func Classify(balance float64) (Classification, error) {
	if balance < 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
		return Classification{}, ErrInvalidBalance
	}

	var category string
	switch {
	case balance >= 5000:
		category = CategoryExcellent
	case balance >= MinimumRequiredBalance:
		category = CategoryCompliant
	case balance < 1000:
		category = CategoryCritical
	default:
		category = CategoryNonCompliant
	}

	var alert string
	switch {
	case balance == 0:
		alert = AlertZeroBalance
	case balance < 1000:
		alert = AlertCritical
	case balance < MinimumRequiredBalance:
		alert = AlertWarning
	default:
		alert = AlertSufficient
	}

	shortfall := MinimumRequiredBalance - balance
	if shortfall < 0 {
		shortfall = 0
	}

	pct := balance / MinimumRequiredBalance * 100
	if pct > 100 {
		pct = 100
	}
	pct = math.Round(pct*100) / 100

	return Classification{
		Balance:            balance,
		Category:           category,
		AlertLevel:         alert,
		StatusColor:        statusColors[alert],
		IsCompliant:        balance >= MinimumRequiredBalance,
		Shortfall:          shortfall,
		PercentageComplete: pct,
	}, nil
}

// StatusColor returns the client color for an alert level, empty for unknown
// levels.
func StatusColor(alertLevel string) string {
	return statusColors[alertLevel]
}
