package compliance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"alshuail-fund/internal/domain"
)

// YearlyFee is the annual subscription amount in SAR used when reconstructing
// history from a lifetime balance.
const YearlyFee = 600

// maxReconstructedYears caps how far back reconstruction reaches.
const maxReconstructedYears = 10

// ReconstructHistory synthesizes an approximate payment history from a
// lifetime balance for members without real payment rows. One full-year
// record per paid year, dated June 15, counting back from the current year
// inclusive; any remainder becomes a partial record dated January 1 of the
// current year. Records come back newest first, every record is tagged
// reconstructed, and the amounts never sum to more than the balance.
func ReconstructHistory(balance float64, now time.Time) []domain.TransactionRecord {
	if balance <= 0 {
		return []domain.TransactionRecord{}
	}

	fullYears := int(math.Floor(balance / YearlyFee))
	if fullYears > maxReconstructedYears {
		fullYears = maxReconstructedYears
	}
	remainder := balance - float64(fullYears)*YearlyFee

	records := make([]domain.TransactionRecord, 0, fullYears+1)
	currentYear := now.Year()

	for i := 0; i < fullYears; i++ {
		y := currentYear - i
		records = append(records, domain.TransactionRecord{
			Year:        y,
			Date:        time.Date(y, time.June, 15, 0, 0, 0, 0, time.UTC),
			Amount:      YearlyFee,
			Description: fmt.Sprintf("اشتراك سنوي %d", y),
			Status:      "completed",
			Source:      "reconstructed",
		})
	}
	if remainder > 0 {
		records = append(records, domain.TransactionRecord{
			Year:        currentYear,
			Date:        time.Date(currentYear, time.January, 1, 0, 0, 0, 0, time.UTC),
			Amount:      remainder,
			Description: fmt.Sprintf("دفعة جزئية %d", currentYear),
			Status:      "partial",
			Source:      "reconstructed",
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records
}
