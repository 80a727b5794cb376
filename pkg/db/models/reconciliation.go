package models

import (
	"time"

	"github.com/google/uuid"
)

// Reconciliation is the persisted outcome of one engine run. Entities are
// append-only: a rerun over an overlapping period produces a new row.
type Reconciliation struct {
	ID                       uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantOrgID          uuid.UUID       `gorm:"column:restaurant_org_id;type:uuid;not null;index"`
	SupplierOrgID            uuid.UUID       `gorm:"column:supplier_org_id;type:uuid;not null;index"`
	PeriodStart              time.Time       `gorm:"column:period_start;not null"`
	PeriodEnd                time.Time       `gorm:"column:period_end;not null"`
	MatchedItems             int             `gorm:"column:matched_items;not null"`
	DisputedItems            int             `gorm:"column:disputed_items;not null"`
	TotalMatchedAmountCents  int64           `gorm:"column:total_matched_amount_cents;not null"`
	TotalDisputedAmountCents int64           `gorm:"column:total_disputed_amount_cents;not null"`
	ProcessingTimeMs         int64           `gorm:"column:processing_time_ms;not null"`
	Disputes                 []DisputeRecord `gorm:"foreignKey:ReconciliationID;constraint:OnDelete:CASCADE"`
	CreatedAt                time.Time       `gorm:"column:created_at;autoCreateTime"`
}
