package recon

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
	pkgpagination "github.com/Tsaitung/Orderly-sub008/pkg/pagination"
)

// Repository persists reconciliation results and serves read-backs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rec *models.Reconciliation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reconciliation, error)
	List(ctx context.Context, opts ListQuery) ([]models.Reconciliation, error)
}

// ListQuery scopes a reconciliation listing to an org pair.
type ListQuery struct {
	RestaurantOrgID uuid.UUID
	SupplierOrgID   uuid.UUID
	Limit           int
	Cursor          *pkgpagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reconciliation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the reconciliation and its dispute children in one write.
// Callers wrap this in a transaction so the commit is all-or-nothing.
func (r *repository) Create(ctx context.Context, rec *models.Reconciliation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reconciliation, error) {
	var rec models.Reconciliation
	err := r.db.WithContext(ctx).
		Preload("Disputes").
		Where("id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns past runs for the org pair using cursor pagination.
func (r *repository) List(ctx context.Context, opts ListQuery) ([]models.Reconciliation, error) {
	query := r.db.WithContext(ctx).Model(&models.Reconciliation{}).
		Where("restaurant_org_id = ?", opts.RestaurantOrgID).
		Where("supplier_org_id = ?", opts.SupplierOrgID)

	if opts.Cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.Cursor.CreatedAt, opts.Cursor.CreatedAt, opts.Cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.Limit)

	var rows []models.Reconciliation
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
