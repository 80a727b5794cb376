package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceLine captures one product row on a supplier's invoice or delivery
// note. Same shape as OrderLine; read-only input to the engine.
type InvoiceLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	SKU            string          `gorm:"column:sku;not null;index"`
	Description    string          `gorm:"column:description;not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	UnitPriceCents int64           `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64           `gorm:"column:line_total_cents;not null"`
	InvoiceDate    time.Time       `gorm:"column:invoice_date;not null;index"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
