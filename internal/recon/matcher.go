package recon

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

// Line is the side-agnostic view of one order or invoice line item the
// matcher operates on.
type Line struct {
	ID             uuid.UUID
	SKU            string
	Description    string
	Quantity       decimal.Decimal
	UnitPriceCents int64
	LineTotalCents int64
	Date           time.Time
}

// MatchPair associates one order line with one invoice line for the same SKU.
// Exactly one side may be nil when the other side has no counterpart.
// DiscrepancyCents is signed invoice-minus-order.
type MatchPair struct {
	SKU              string
	Order            *Line
	Invoice          *Line
	Status           enums.MatchStatus
	DiscrepancyCents int64
}

// Tolerances bound how far two paired lines may drift and still match.
// Zero values require exact equality.
type Tolerances struct {
	PriceCents int64
	Quantity   decimal.Decimal
}

// MatchLines pairs order lines against invoice lines by SKU and compares each
// pair. Pairing is deterministic: SKU groups are processed in sorted key
// order and lines within a group pair index-for-index after sorting by
// ascending date then ascending line id, so identical input always produces
// an identical pairing regardless of input order.
func MatchLines(orders, invoices []Line, tol Tolerances) []MatchPair {
	orderGroups := groupBySKU(orders)
	invoiceGroups := groupBySKU(invoices)

	skus := make([]string, 0, len(orderGroups)+len(invoiceGroups))
	seen := make(map[string]bool, len(orderGroups)+len(invoiceGroups))
	for sku := range orderGroups {
		if !seen[sku] {
			seen[sku] = true
			skus = append(skus, sku)
		}
	}
	for sku := range invoiceGroups {
		if !seen[sku] {
			seen[sku] = true
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)

	var pairs []MatchPair
	for _, sku := range skus {
		orderSide := sortGroup(orderGroups[sku])
		invoiceSide := sortGroup(invoiceGroups[sku])

		paired := len(orderSide)
		if len(invoiceSide) < paired {
			paired = len(invoiceSide)
		}

		for i := 0; i < paired; i++ {
			pairs = append(pairs, comparePair(sku, orderSide[i], invoiceSide[i], tol))
		}
		for i := paired; i < len(orderSide); i++ {
			line := orderSide[i]
			pairs = append(pairs, MatchPair{
				SKU:              sku,
				Order:            line,
				Status:           enums.MatchStatusMissingOnInvoice,
				DiscrepancyCents: -line.LineTotalCents,
			})
		}
		for i := paired; i < len(invoiceSide); i++ {
			line := invoiceSide[i]
			pairs = append(pairs, MatchPair{
				SKU:              sku,
				Invoice:          line,
				Status:           enums.MatchStatusMissingOnOrder,
				DiscrepancyCents: line.LineTotalCents,
			})
		}
	}
	return pairs
}

func comparePair(sku string, order, invoice *Line, tol Tolerances) MatchPair {
	pair := MatchPair{SKU: sku, Order: order, Invoice: invoice}

	qtyDelta := invoice.Quantity.Sub(order.Quantity)
	priceDelta := invoice.UnitPriceCents - order.UnitPriceCents

	qtyAgrees := qtyDelta.Abs().LessThanOrEqual(tol.Quantity)
	priceAgrees := absCents(priceDelta) <= tol.PriceCents

	switch {
	case qtyAgrees && priceAgrees:
		pair.Status = enums.MatchStatusMatched

	case qtyAgrees:
		pair.Status = enums.MatchStatusPriceMismatch
		pair.DiscrepancyCents = decimal.NewFromInt(priceDelta).
			Mul(invoice.Quantity).
			Round(0).
			IntPart()

	case priceAgrees:
		pair.Status = enums.MatchStatusQuantityMismatch
		pair.DiscrepancyCents = qtyDelta.
			Mul(decimal.NewFromInt(order.UnitPriceCents)).
			Round(0).
			IntPart()

	default:
		// Both differ: price takes precedence for reporting, and the
		// discrepancy covers the full line-total delta.
		pair.Status = enums.MatchStatusPriceMismatch
		pair.DiscrepancyCents = invoice.LineTotalCents - order.LineTotalCents
	}
	return pair
}

func groupBySKU(lines []Line) map[string][]*Line {
	groups := make(map[string][]*Line)
	for i := range lines {
		line := &lines[i]
		groups[line.SKU] = append(groups[line.SKU], line)
	}
	return groups
}

func sortGroup(group []*Line) []*Line {
	sorted := make([]*Line, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return sorted
}

func absCents(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
