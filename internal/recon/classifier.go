package recon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

// Classifier turns non-matched pairs into dispute records. It is a pure
// function of the pair and the configured severity thresholds.
type Classifier struct {
	mediumCents int64
	highCents   int64
}

// NewClassifier builds a classifier with severity thresholds in cents.
func NewClassifier(mediumCents, highCents int64) *Classifier {
	return &Classifier{mediumCents: mediumCents, highCents: highCents}
}

// Classify returns nil for matched pairs and exactly one open dispute record
// for every other status. The record is not persisted here; the result store
// commits it together with its parent reconciliation.
func (c *Classifier) Classify(pair MatchPair) *models.DisputeRecord {
	if !pair.Status.IsDisputed() {
		return nil
	}

	kind, err := enums.DisputeKindForStatus(pair.Status)
	if err != nil {
		return nil
	}

	amountAtRisk := absCents(pair.DiscrepancyCents)
	expected, actual := c.snapshots(pair)

	return &models.DisputeRecord{
		SKU:               pair.SKU,
		Kind:              kind,
		ExpectedValue:     expected,
		ActualValue:       actual,
		AmountAtRiskCents: amountAtRisk,
		Severity:          c.severity(amountAtRisk),
		SuggestedAction:   suggestedAction(pair.Status),
		Status:            enums.DisputeStatusOpen,
	}
}

// suggestedAction gives the resolution workflow a starting point per status.
func suggestedAction(status enums.MatchStatus) string {
	switch status {
	case enums.MatchStatusPriceMismatch:
		return "verify invoiced unit price against the agreed price list"
	case enums.MatchStatusQuantityMismatch:
		return "confirm received quantity against the delivery note"
	case enums.MatchStatusMissingOnInvoice:
		return "request a corrected invoice or credit note from the supplier"
	case enums.MatchStatusMissingOnOrder:
		return "verify the delivery was ordered before approving payment"
	default:
		return ""
	}
}

func (c *Classifier) severity(amountAtRiskCents int64) enums.DisputeSeverity {
	switch {
	case amountAtRiskCents >= c.highCents:
		return enums.DisputeSeverityHigh
	case amountAtRiskCents >= c.mediumCents:
		return enums.DisputeSeverityMedium
	default:
		return enums.DisputeSeverityLow
	}
}

// snapshots captures operator-facing expected/actual values. Expected is
// always the order side (what the restaurant committed to), actual the
// invoice side (what the supplier billed).
func (c *Classifier) snapshots(pair MatchPair) (string, string) {
	switch pair.Status {
	case enums.MatchStatusPriceMismatch:
		return formatCents(pair.Order.UnitPriceCents), formatCents(pair.Invoice.UnitPriceCents)
	case enums.MatchStatusQuantityMismatch:
		return pair.Order.Quantity.String(), pair.Invoice.Quantity.String()
	case enums.MatchStatusMissingOnInvoice:
		return formatLine(pair.Order), "absent"
	case enums.MatchStatusMissingOnOrder:
		return "absent", formatLine(pair.Invoice)
	default:
		return "", ""
	}
}

func formatLine(line *Line) string {
	return fmt.Sprintf("%s x %s", line.Quantity.String(), formatCents(line.UnitPriceCents))
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
