package recon

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	"github.com/Tsaitung/Orderly-sub008/pkg/enums"
	pkgerrors "github.com/Tsaitung/Orderly-sub008/pkg/errors"
)

// LineReader loads the line items for one side of a reconciliation, ordered
// by sku then date then id for deterministic downstream pairing.
type LineReader interface {
	LoadLines(ctx context.Context, orgID uuid.UUID, role enums.LineRole, from, to time.Time) ([]Line, error)
}

type lineRepository struct {
	db *gorm.DB
}

// NewLineRepository builds a line reader bound to the provided DB. Reads are
// idempotent and never mutate the underlying rows.
func NewLineRepository(db *gorm.DB) LineReader {
	return &lineRepository{db: db}
}

func (r *lineRepository) LoadLines(ctx context.Context, orgID uuid.UUID, role enums.LineRole, from, to time.Time) ([]Line, error) {
	switch role {
	case enums.LineRoleOrder:
		return r.loadOrderLines(ctx, orgID, from, to)
	case enums.LineRoleInvoice:
		return r.loadInvoiceLines(ctx, orgID, from, to)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown line role").
			WithDetails(map[string]string{"role": role.String()})
	}
}

func (r *lineRepository) loadOrderLines(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]Line, error) {
	var rows []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Where("order_date >= ? AND order_date <= ?", from, to).
		Order("sku ASC").
		Order("order_date ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapLoadError(err, enums.LineRoleOrder)
	}

	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = Line{
			ID:             row.ID,
			SKU:            row.SKU,
			Description:    row.Description,
			Quantity:       row.Quantity,
			UnitPriceCents: row.UnitPriceCents,
			LineTotalCents: row.LineTotalCents,
			Date:           row.OrderDate,
		}
	}
	return lines, nil
}

func (r *lineRepository) loadInvoiceLines(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]Line, error) {
	var rows []models.InvoiceLine
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Where("invoice_date >= ? AND invoice_date <= ?", from, to).
		Order("sku ASC").
		Order("invoice_date ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapLoadError(err, enums.LineRoleInvoice)
	}

	lines := make([]Line, len(rows))
	for i, row := range rows {
		lines[i] = Line{
			ID:             row.ID,
			SKU:            row.SKU,
			Description:    row.Description,
			Quantity:       row.Quantity,
			UnitPriceCents: row.UnitPriceCents,
			LineTotalCents: row.LineTotalCents,
			Date:           row.InvoiceDate,
		}
	}
	return lines, nil
}

// wrapLoadError maps storage failures and deadline expiry to the retryable
// data-unavailable code callers expect from the loader.
func wrapLoadError(err error, role enums.LineRole) error {
	return pkgerrors.Wrap(pkgerrors.CodeDataUnavailable, err, "loading "+role.String()+" lines")
}
