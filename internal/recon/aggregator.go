package recon

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

// Aggregate rolls the full pair sequence and its disputes into the
// reconciliation entity that gets persisted. matched + disputed always
// equals len(pairs): every pair is either matched or produced a dispute.
func Aggregate(
	restaurantOrgID, supplierOrgID uuid.UUID,
	periodStart, periodEnd time.Time,
	pairs []MatchPair,
	disputes []models.DisputeRecord,
	elapsed time.Duration,
) *models.Reconciliation {
	rec := &models.Reconciliation{
		RestaurantOrgID:  restaurantOrgID,
		SupplierOrgID:    supplierOrgID,
		PeriodStart:      periodStart,
		PeriodEnd:        periodEnd,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Disputes:         disputes,
	}

	for _, pair := range pairs {
		if pair.Status == enums.MatchStatusMatched {
			rec.MatchedItems++
			rec.TotalMatchedAmountCents += pair.Order.LineTotalCents
		}
	}
	rec.DisputedItems = len(disputes)
	for _, dispute := range disputes {
		rec.TotalDisputedAmountCents += dispute.AmountAtRiskCents
	}
	return rec
}

// Efficiency reports matched items as a percentage of all items. An empty
// run counts as fully reconciled rather than dividing by zero.
func Efficiency(matched, disputed int) float64 {
	total := matched + disputed
	if total == 0 {
		return 100.0
	}
	return float64(matched) / float64(total) * 100.0
}
