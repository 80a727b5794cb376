package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
)

// DisputeRecord flags one discrepancy found during a reconciliation run. The
// engine creates records in the open state; the downstream resolution
// workflow owns later status transitions.
type DisputeRecord struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReconciliationID  uuid.UUID             `gorm:"column:reconciliation_id;type:uuid;not null;index"`
	SKU               string                `gorm:"column:sku;not null"`
	Kind              enums.DisputeKind     `gorm:"column:kind;type:text;not null"`
	ExpectedValue     string                `gorm:"column:expected_value;not null"`
	ActualValue       string                `gorm:"column:actual_value;not null"`
	AmountAtRiskCents int64                 `gorm:"column:amount_at_risk_cents;not null"`
	Severity          enums.DisputeSeverity `gorm:"column:severity;type:text;not null"`
	SuggestedAction   string                `gorm:"column:suggested_action;not null"`
	Status            enums.DisputeStatus   `gorm:"column:status;type:text;not null;default:'open'"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
}
