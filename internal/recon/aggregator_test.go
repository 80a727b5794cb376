package recon

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

func TestAggregateTotals(t *testing.T) {
	restaurantID := uuid.New()
	supplierID := uuid.New()
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	matchedA := testLine("TOMATO-1KG", "10", 350, 1)
	matchedB := testLine("ONION-5KG", "2", 1200, 2)
	disputedOrder := testLine("BEEF-RIB", "4", 2500, 3)
	disputedInvoice := testLine("BEEF-RIB", "4", 2650, 3)

	pairs := []MatchPair{
		{SKU: matchedA.SKU, Order: &matchedA, Invoice: &matchedA, Status: enums.MatchStatusMatched},
		{SKU: matchedB.SKU, Order: &matchedB, Invoice: &matchedB, Status: enums.MatchStatusMatched},
		{SKU: disputedOrder.SKU, Order: &disputedOrder, Invoice: &disputedInvoice, Status: enums.MatchStatusPriceMismatch, DiscrepancyCents: 600},
	}
	disputes := []models.DisputeRecord{
		{SKU: disputedOrder.SKU, Kind: enums.DisputeKindPrice, AmountAtRiskCents: 600},
	}

	rec := Aggregate(restaurantID, supplierID, periodStart, periodEnd, pairs, disputes, 135*time.Millisecond)

	if rec.RestaurantOrgID != restaurantID || rec.SupplierOrgID != supplierID {
		t.Fatal("organization ids not carried through")
	}
	if !rec.PeriodStart.Equal(periodStart) || !rec.PeriodEnd.Equal(periodEnd) {
		t.Fatal("period not carried through")
	}
	if rec.MatchedItems != 2 {
		t.Fatalf("expected 2 matched items, got %d", rec.MatchedItems)
	}
	if rec.DisputedItems != 1 {
		t.Fatalf("expected 1 disputed item, got %d", rec.DisputedItems)
	}
	// 10*350 + 2*1200 ordered value for matched lines.
	if rec.TotalMatchedAmountCents != 5900 {
		t.Fatalf("expected matched total 5900, got %d", rec.TotalMatchedAmountCents)
	}
	if rec.TotalDisputedAmountCents != 600 {
		t.Fatalf("expected disputed total 600, got %d", rec.TotalDisputedAmountCents)
	}
	if rec.ProcessingTimeMs != 135 {
		t.Fatalf("expected 135ms, got %d", rec.ProcessingTimeMs)
	}
	if rec.MatchedItems+rec.DisputedItems != len(pairs) {
		t.Fatal("matched + disputed must cover every pair")
	}
	if len(rec.Disputes) != 1 {
		t.Fatalf("expected dispute children attached, got %d", len(rec.Disputes))
	}
}

func TestAggregateEmptyRun(t *testing.T) {
	rec := Aggregate(uuid.New(), uuid.New(), time.Now(), time.Now(), nil, nil, 0)

	if rec.MatchedItems != 0 || rec.DisputedItems != 0 {
		t.Fatalf("expected zero counts, got %d/%d", rec.MatchedItems, rec.DisputedItems)
	}
	if rec.TotalMatchedAmountCents != 0 || rec.TotalDisputedAmountCents != 0 {
		t.Fatal("expected zero totals")
	}
}

func TestEfficiency(t *testing.T) {
	cases := []struct {
		name     string
		matched  int
		disputed int
		want     float64
	}{
		{"empty run is fully reconciled", 0, 0, 100.0},
		{"all matched", 10, 0, 100.0},
		{"all disputed", 0, 4, 0.0},
		{"mixed", 3, 1, 75.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Efficiency(tc.matched, tc.disputed); got != tc.want {
				t.Fatalf("expected %.1f, got %.1f", tc.want, got)
			}
		})
	}
}
