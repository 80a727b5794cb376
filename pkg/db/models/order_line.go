package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine captures one product row on a restaurant's purchase order.
// Lines are immutable once created; the engine treats them as read-only input.
type OrderLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID       `gorm:"column:organization_id;type:uuid;not null;index"`
	SKU            string          `gorm:"column:sku;not null;index"`
	Description    string          `gorm:"column:description;not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	UnitPriceCents int64           `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64           `gorm:"column:line_total_cents;not null"`
	OrderDate      time.Time       `gorm:"column:order_date;not null;index"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
