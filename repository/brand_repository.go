package repository

import (
	"context"

	"github.com/brandaion/platform/models"
	"gorm.io/gorm"
)

// BrandRepositoryImpl implements the BrandRepository interface
type BrandRepositoryImpl struct {
	*BaseRepository[models.Brand, models.BrandFilter]
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &BrandRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Brand, models.BrandFilter](db),
	}
}

// ListByOrganizationID retrieves all brands of an organization
func (r *BrandRepositoryImpl) ListByOrganizationID(ctx context.Context, organizationID uint) ([]*models.Brand, error) {
	filter := models.BrandFilter{OrganizationID: &organizationID}
	return r.ByFilter(ctx, filter, "name ASC", 0, 0)
}

// ByFilter retrieves brands based on filter criteria
func (r *BrandRepositoryImpl) ByFilter(ctx context.Context, filter models.BrandFilter, orderBy string, limit, offset int) ([]*models.Brand, error) {
	db := r.getDB(ctx)

	var brands []*models.Brand
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&brands).Error
	if err != nil {
		return nil, err
	}

	return brands, nil
}

// Count returns the number of brands matching the filter
func (r *BrandRepositoryImpl) Count(ctx context.Context, filter models.BrandFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Brand{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any brand matching the filter exists
func (r *BrandRepositoryImpl) Exists(ctx context.Context, filter models.BrandFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *BrandRepositoryImpl) applyFilter(db *gorm.DB, filter models.BrandFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}

	return db
}
