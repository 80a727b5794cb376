package recon

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

func testLine(sku, qty string, priceCents int64, day int) Line {
	quantity := decimal.RequireFromString(qty)
	return Line{
		ID:             uuid.New(),
		SKU:            sku,
		Description:    sku,
		Quantity:       quantity,
		UnitPriceCents: priceCents,
		LineTotalCents: quantity.Mul(decimal.NewFromInt(priceCents)).Round(0).IntPart(),
		Date:           time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestMatchLinesPerfectMatch(t *testing.T) {
	orders := []Line{
		testLine("TOMATO-1KG", "10", 350, 1),
		testLine("ONION-5KG", "2", 1200, 2),
	}
	invoices := []Line{
		testLine("ONION-5KG", "2", 1200, 2),
		testLine("TOMATO-1KG", "10", 350, 1),
	}

	pairs := MatchLines(orders, invoices, Tolerances{})

	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	for _, pair := range pairs {
		if pair.Status != enums.MatchStatusMatched {
			t.Fatalf("pair %s: expected matched, got %s", pair.SKU, pair.Status)
		}
		if pair.DiscrepancyCents != 0 {
			t.Fatalf("pair %s: expected zero discrepancy, got %d", pair.SKU, pair.DiscrepancyCents)
		}
	}
	// SKU groups come back in sorted key order.
	if pairs[0].SKU != "ONION-5KG" || pairs[1].SKU != "TOMATO-1KG" {
		t.Fatalf("unexpected pair order: %s, %s", pairs[0].SKU, pairs[1].SKU)
	}
}

func TestMatchLinesPriceMismatch(t *testing.T) {
	orders := []Line{testLine("BEEF-RIB", "4", 2500, 1)}
	invoices := []Line{testLine("BEEF-RIB", "4", 2650, 1)}

	pairs := MatchLines(orders, invoices, Tolerances{})

	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	pair := pairs[0]
	if pair.Status != enums.MatchStatusPriceMismatch {
		t.Fatalf("expected price mismatch, got %s", pair.Status)
	}
	// (2650-2500)*4 invoiced units.
	if pair.DiscrepancyCents != 600 {
		t.Fatalf("expected discrepancy 600, got %d", pair.DiscrepancyCents)
	}
}

func TestMatchLinesQuantityMismatch(t *testing.T) {
	orders := []Line{testLine("MILK-1L", "24", 180, 1)}
	invoices := []Line{testLine("MILK-1L", "20", 180, 1)}

	pairs := MatchLines(orders, invoices, Tolerances{})

	pair := pairs[0]
	if pair.Status != enums.MatchStatusQuantityMismatch {
		t.Fatalf("expected quantity mismatch, got %s", pair.Status)
	}
	// (20-24)*180 at the ordered unit price.
	if pair.DiscrepancyCents != -720 {
		t.Fatalf("expected discrepancy -720, got %d", pair.DiscrepancyCents)
	}
}

func TestMatchLinesBothDifferReportsPrice(t *testing.T) {
	orders := []Line{testLine("FLOUR-25KG", "3", 4000, 1)}
	invoices := []Line{testLine("FLOUR-25KG", "4", 4200, 1)}

	pairs := MatchLines(orders, invoices, Tolerances{})

	pair := pairs[0]
	if pair.Status != enums.MatchStatusPriceMismatch {
		t.Fatalf("expected price mismatch to take precedence, got %s", pair.Status)
	}
	// Full line-total delta: 4*4200 - 3*4000.
	if pair.DiscrepancyCents != 4800 {
		t.Fatalf("expected discrepancy 4800, got %d", pair.DiscrepancyCents)
	}
}

func TestMatchLinesMissingSides(t *testing.T) {
	orders := []Line{
		testLine("EGGS-TRAY", "5", 900, 1),
		testLine("EGGS-TRAY", "5", 900, 2),
	}
	invoices := []Line{
		testLine("EGGS-TRAY", "5", 900, 1),
		testLine("NAPKINS", "10", 150, 3),
	}

	pairs := MatchLines(orders, invoices, Tolerances{})

	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}

	byStatus := map[enums.MatchStatus]MatchPair{}
	for _, pair := range pairs {
		byStatus[pair.Status] = pair
	}

	missing, ok := byStatus[enums.MatchStatusMissingOnInvoice]
	if !ok {
		t.Fatal("expected a missing-on-invoice pair")
	}
	if missing.SKU != "EGGS-TRAY" || missing.Invoice != nil {
		t.Fatalf("unexpected missing-on-invoice pair: %+v", missing)
	}
	if missing.DiscrepancyCents != -4500 {
		t.Fatalf("expected discrepancy -4500, got %d", missing.DiscrepancyCents)
	}

	extra, ok := byStatus[enums.MatchStatusMissingOnOrder]
	if !ok {
		t.Fatal("expected a missing-on-order pair")
	}
	if extra.SKU != "NAPKINS" || extra.Order != nil {
		t.Fatalf("unexpected missing-on-order pair: %+v", extra)
	}
	if extra.DiscrepancyCents != 1500 {
		t.Fatalf("expected discrepancy 1500, got %d", extra.DiscrepancyCents)
	}
}

func TestMatchLinesTolerances(t *testing.T) {
	orders := []Line{testLine("OIL-5L", "10", 3000, 1)}
	invoices := []Line{testLine("OIL-5L", "10.2", 3010, 1)}

	tol := Tolerances{PriceCents: 10, Quantity: decimal.RequireFromString("0.25")}
	pairs := MatchLines(orders, invoices, tol)

	if pairs[0].Status != enums.MatchStatusMatched {
		t.Fatalf("expected matched within tolerance, got %s", pairs[0].Status)
	}

	// Just outside the quantity tolerance flips to a quantity mismatch.
	invoices[0].Quantity = decimal.RequireFromString("10.3")
	pairs = MatchLines(orders, invoices, tol)
	if pairs[0].Status != enums.MatchStatusQuantityMismatch {
		t.Fatalf("expected quantity mismatch outside tolerance, got %s", pairs[0].Status)
	}
}

func TestMatchLinesEmptyInputs(t *testing.T) {
	if pairs := MatchLines(nil, nil, Tolerances{}); len(pairs) != 0 {
		t.Fatalf("expected no pairs for empty inputs, got %d", len(pairs))
	}
}

func TestMatchLinesDeterministicUnderReordering(t *testing.T) {
	var orders, invoices []Line
	for day := 1; day <= 5; day++ {
		orders = append(orders, testLine("TOMATO-1KG", "10", 350, day))
		invoices = append(invoices, testLine("TOMATO-1KG", "10", 355, day))
		orders = append(orders, testLine("ONION-5KG", "2", 1200, day))
		invoices = append(invoices, testLine("ONION-5KG", "3", 1200, day))
	}

	baseline := MatchLines(orders, invoices, Tolerances{})

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffledOrders := append([]Line(nil), orders...)
		shuffledInvoices := append([]Line(nil), invoices...)
		rng.Shuffle(len(shuffledOrders), func(i, j int) {
			shuffledOrders[i], shuffledOrders[j] = shuffledOrders[j], shuffledOrders[i]
		})
		rng.Shuffle(len(shuffledInvoices), func(i, j int) {
			shuffledInvoices[i], shuffledInvoices[j] = shuffledInvoices[j], shuffledInvoices[i]
		})

		got := MatchLines(shuffledOrders, shuffledInvoices, Tolerances{})
		if len(got) != len(baseline) {
			t.Fatalf("trial %d: expected %d pairs, got %d", trial, len(baseline), len(got))
		}
		for i := range got {
			if got[i].SKU != baseline[i].SKU ||
				got[i].Status != baseline[i].Status ||
				got[i].DiscrepancyCents != baseline[i].DiscrepancyCents {
				t.Fatalf("trial %d: pair %d diverged: got %+v want %+v", trial, i, got[i], baseline[i])
			}
			if !pairLinesEqual(got[i].Order, baseline[i].Order) || !pairLinesEqual(got[i].Invoice, baseline[i].Invoice) {
				t.Fatalf("trial %d: pair %d paired different lines", trial, i)
			}
		}
	}
}

func pairLinesEqual(a, b *Line) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(*a, *b)
}
