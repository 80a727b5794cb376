package recon

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	pkgpagination "github.com/Tsaitung/Orderly-sub008/pkg/pagination"
)

// ProcessInput identifies one reconciliation run. The engine is pure with
// respect to these arguments; nothing is read from ambient session state.
type ProcessInput struct {
	RestaurantOrgID uuid.UUID `json:"restaurant_org_id" validate:"required"`
	SupplierOrgID   uuid.UUID `json:"supplier_org_id" validate:"required"`
	PeriodStart     time.Time `json:"period_start" validate:"required"`
	PeriodEnd       time.Time `json:"period_end" validate:"required"`
}

// Performance carries the run timing callers surface in their payloads.
type Performance struct {
	ProcessingTimeMs  int64   `json:"processing_time_ms"`
	EfficiencyPercent float64 `json:"efficiency_percent"`
}

// Result is what the engine hands back after a committed run.
type Result struct {
	Reconciliation *models.Reconciliation `json:"reconciliation"`
	Performance    Performance            `json:"performance"`
}

// ListParams scopes a listing of past runs.
type ListParams struct {
	RestaurantOrgID uuid.UUID
	SupplierOrgID   uuid.UUID
	pkgpagination.Params
}

// ListResult is one page of past runs.
type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor"`
}

// ListItem is the summary view of one past run.
type ListItem struct {
	ID                       uuid.UUID `json:"id"`
	RestaurantOrgID          uuid.UUID `json:"restaurant_org_id"`
	SupplierOrgID            uuid.UUID `json:"supplier_org_id"`
	PeriodStart              time.Time `json:"period_start"`
	PeriodEnd                time.Time `json:"period_end"`
	MatchedItems             int       `json:"matched_items"`
	DisputedItems            int       `json:"disputed_items"`
	TotalMatchedAmountCents  int64     `json:"total_matched_amount_cents"`
	TotalDisputedAmountCents int64     `json:"total_disputed_amount_cents"`
	EfficiencyPercent        float64   `json:"efficiency_percent"`
	ProcessingTimeMs         int64     `json:"processing_time_ms"`
	CreatedAt                time.Time `json:"created_at"`
}

func toListItem(m models.Reconciliation) ListItem {
	return ListItem{
		ID:                       m.ID,
		RestaurantOrgID:          m.RestaurantOrgID,
		SupplierOrgID:            m.SupplierOrgID,
		PeriodStart:              m.PeriodStart,
		PeriodEnd:                m.PeriodEnd,
		MatchedItems:             m.MatchedItems,
		DisputedItems:            m.DisputedItems,
		TotalMatchedAmountCents:  m.TotalMatchedAmountCents,
		TotalDisputedAmountCents: m.TotalDisputedAmountCents,
		EfficiencyPercent:        Efficiency(m.MatchedItems, m.DisputedItems),
		ProcessingTimeMs:         m.ProcessingTimeMs,
		CreatedAt:                m.CreatedAt,
	}
}
