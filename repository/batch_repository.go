package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchRepositoryImpl implements the BatchRepository interface
type BatchRepositoryImpl struct {
	*BaseRepository[models.Batch, models.BatchFilter]
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &BatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Batch, models.BatchFilter](db),
	}
}

// ByBatchID retrieves a published batch by its unique batch id
func (r *BatchRepositoryImpl) ByBatchID(ctx context.Context, batchID uuid.UUID) (*models.Batch, error) {
	db := r.getDB(ctx)

	var batch models.Batch
	err := db.Where("batch_id = ?", batchID).Last(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &batch, nil
}

// UpsertByBatchID inserts or overwrites the batch keyed by batch id.
// The conflict target is the unique batch id so repeated assembly runs
// converge on one row.
func (r *BatchRepositoryImpl) UpsertByBatchID(ctx context.Context, batch *models.Batch) error {
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

	now := utils.UTCNow()
	batch.UpdatedAt = &now

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "batch_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"organization_name", "brand_name", "product_name", "audience_name",
			"document", "updated_at",
		}),
	}).Create(batch).Error
	if err != nil {
		return err
	}

	return nil
}

// Publish moves a generated batch to published. Returns false when no
// generated batch exists under the id.
func (r *BatchRepositoryImpl) Publish(ctx context.Context, batchID uuid.UUID) (bool, error) {
	db := r.getDB(ctx)

	result := db.Model(&models.Batch{}).
		Where("batch_id = ? AND status = ?", batchID, models.BatchStatusGenerated).
		Updates(map[string]any{
			"status":     models.BatchStatusPublished,
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ListByProductNames retrieves published batches for the given products.
// Used by brand-level enrichment, which aggregates by product name.
func (r *BatchRepositoryImpl) ListByProductNames(ctx context.Context, productNames []string) ([]*models.Batch, error) {
	if len(productNames) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var batches []*models.Batch
	err := db.Where("product_name IN ? AND status = ?", productNames, models.BatchStatusPublished).
		Order("created_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}

	return batches, nil
}

// ListPublishedByCustomerID retrieves a customer's published batches
func (r *BatchRepositoryImpl) ListPublishedByCustomerID(ctx context.Context, customerID uint) ([]*models.Batch, error) {
	status := models.BatchStatusPublished
	filter := models.BatchFilter{CustomerID: &customerID, Status: &status}
	return r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
}

// ByFilter retrieves batches based on filter criteria
func (r *BatchRepositoryImpl) ByFilter(ctx context.Context, filter models.BatchFilter, orderBy string, limit, offset int) ([]*models.Batch, error) {
	db := r.getDB(ctx)

	var batches []*models.Batch
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

	err := query.Find(&batches).Error
	if err != nil {
		return nil, err
	}

	return batches, nil
}

// Count returns the number of batches matching the filter
func (r *BatchRepositoryImpl) Count(ctx context.Context, filter models.BatchFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Batch{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any batch matching the filter exists
func (r *BatchRepositoryImpl) Exists(ctx context.Context, filter models.BatchFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *BatchRepositoryImpl) applyFilter(db *gorm.DB, filter models.BatchFilter) *gorm.DB {
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.BatchClusterID != nil {
		db = db.Where("batch_cluster_id = ?", *filter.BatchClusterID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.ProductName != nil {
		db = db.Where("product_name = ?", *filter.ProductName)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
