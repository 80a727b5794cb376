package organizations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Tsaitung/Orderly-sub008/internal/repo"
	"github.com/Tsaitung/Orderly-sub008/pkg/db/models"
)

// Repository reads organization records for run preconditions.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an organizations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.DB(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
