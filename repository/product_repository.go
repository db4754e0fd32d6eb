package repository

import (
	"context"

	"github.com/brandaion/platform/models"
	"gorm.io/gorm"
)

// ProductRepositoryImpl implements the ProductRepository interface
type ProductRepositoryImpl struct {
	*BaseRepository[models.Product, models.ProductFilter]
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &ProductRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Product, models.ProductFilter](db),
	}
}

// ListByBrandID retrieves all products of a brand
func (r *ProductRepositoryImpl) ListByBrandID(ctx context.Context, brandID uint) ([]*models.Product, error) {
	filter := models.ProductFilter{BrandID: &brandID}
	return r.ByFilter(ctx, filter, "name ASC", 0, 0)
}

// ListByBrandIDs retrieves all products of the given brands
func (r *ProductRepositoryImpl) ListByBrandIDs(ctx context.Context, brandIDs []uint) ([]*models.Product, error) {
	if len(brandIDs) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var products []*models.Product
	err := db.Where("brand_id IN ?", brandIDs).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

// ByFilter retrieves products based on filter criteria
func (r *ProductRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductFilter, orderBy string, limit, offset int) ([]*models.Product, error) {
	db := r.getDB(ctx)

	var products []*models.Product
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

	err := query.Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Count returns the number of products matching the filter
func (r *ProductRepositoryImpl) Count(ctx context.Context, filter models.ProductFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Product{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any product matching the filter exists
func (r *ProductRepositoryImpl) Exists(ctx context.Context, filter models.ProductFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ProductRepositoryImpl) applyFilter(db *gorm.DB, filter models.ProductFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.BrandID != nil {
		db = db.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}

	return db
}
