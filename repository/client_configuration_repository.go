package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClientConfigurationRepositoryImpl implements the ClientConfigurationRepository interface
type ClientConfigurationRepositoryImpl struct {
	*BaseRepository[models.ClientConfiguration, models.ClientConfigurationFilter]
}

// NewClientConfigurationRepository creates a new client configuration repository
func NewClientConfigurationRepository(db *gorm.DB) ClientConfigurationRepository {
	return &ClientConfigurationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ClientConfiguration, models.ClientConfigurationFilter](db),
	}
}

// CurrentByCustomerID retrieves the customer's current configuration. Each
// customer keeps at most one row; the latest wins if historical rows exist.
func (r *ClientConfigurationRepositoryImpl) CurrentByCustomerID(ctx context.Context, customerID uint) (*models.ClientConfiguration, error) {
	db := r.getDB(ctx)

	var configuration models.ClientConfiguration
	err := db.Where("customer_id = ?", customerID).
		Order("id DESC").
		First(&configuration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &configuration, nil
}

// UpsertByCustomerID inserts or overwrites the customer's single
// configuration row. The conflict target is the unique customer id so
// repeated selection changes converge on one row; created_at keeps the
// original insert time.
func (r *ClientConfigurationRepositoryImpl) UpsertByCustomerID(ctx context.Context, configuration *models.ClientConfiguration) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"brand_id", "product_id",
			"organization_name", "brand_name", "product_name",
			"persona_name", "audience_name", "market_name",
			"organization_json_ld", "brand_json_ld", "product_json_ld",
			"persona_json_ld", "audience_json_ld", "market_json_ld",
			"updated_at",
		}),
	}).Create(configuration).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves configurations based on filter criteria
func (r *ClientConfigurationRepositoryImpl) ByFilter(ctx context.Context, filter models.ClientConfigurationFilter, orderBy string, limit, offset int) ([]*models.ClientConfiguration, error) {
	db := r.getDB(ctx)

	var configurations []*models.ClientConfiguration
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

	err := query.Find(&configurations).Error
	if err != nil {
		return nil, err
	}

	return configurations, nil
}

// Count returns the number of configurations matching the filter
func (r *ClientConfigurationRepositoryImpl) Count(ctx context.Context, filter models.ClientConfigurationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.ClientConfiguration{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any configuration matching the filter exists
func (r *ClientConfigurationRepositoryImpl) Exists(ctx context.Context, filter models.ClientConfigurationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ClientConfigurationRepositoryImpl) applyFilter(db *gorm.DB, filter models.ClientConfigurationFilter) *gorm.DB {
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BrandID != nil {
		db = db.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}

	return db
}
