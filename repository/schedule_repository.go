package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleRepositoryImpl implements the ScheduleRepository interface
type ScheduleRepositoryImpl struct {
	*BaseRepository[models.Schedule, models.ScheduleFilter]
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &ScheduleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Schedule, models.ScheduleFilter](db),
	}
}

// ByBatchID retrieves a schedule by its unique batch id
func (r *ScheduleRepositoryImpl) ByBatchID(ctx context.Context, batchID uuid.UUID) (*models.Schedule, error) {
	db := r.getDB(ctx)

	var schedule models.Schedule
	err := db.Where("batch_id = ?", batchID).Last(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &schedule, nil
}

// ListPendingByCustomerID retrieves the customer's schedules not yet
// consumed by the configuration merger, oldest dispatch first
func (r *ScheduleRepositoryImpl) ListPendingByCustomerID(ctx context.Context, customerID uint) ([]*models.Schedule, error) {
	sent := false
	filter := models.ScheduleFilter{CustomerID: &customerID, SentForProcessing: &sent}
	return r.ByFilter(ctx, filter, "dispatch_date ASC", 0, 0)
}

// ListByClusterID retrieves all schedules in one cluster in dispatch order
func (r *ScheduleRepositoryImpl) ListByClusterID(ctx context.Context, clusterID uuid.UUID) ([]*models.Schedule, error) {
	filter := models.ScheduleFilter{BatchClusterID: &clusterID}
	return r.ByFilter(ctx, filter, "dispatch_date ASC", 0, 0)
}

// ClaimForProcessing flips sent_for_processing false->true on the given
// rows. The WHERE on the pre-transition value makes two concurrent merger
// runs split the rows instead of both consuming them.
func (r *ScheduleRepositoryImpl) ClaimForProcessing(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.getDB(ctx)

	result := db.Model(&models.Schedule{}).
		Where("id IN ? AND sent_for_processing = false", ids).
		Update("sent_for_processing", true)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// ByFilter retrieves schedules based on filter criteria
func (r *ScheduleRepositoryImpl) ByFilter(ctx context.Context, filter models.ScheduleFilter, orderBy string, limit, offset int) ([]*models.Schedule, error) {
	db := r.getDB(ctx)

	var schedules []*models.Schedule
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

	err := query.Find(&schedules).Error
	if err != nil {
		return nil, err
	}

	return schedules, nil
}

// Count returns the number of schedules matching the filter
func (r *ScheduleRepositoryImpl) Count(ctx context.Context, filter models.ScheduleFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Schedule{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any schedule matching the filter exists
func (r *ScheduleRepositoryImpl) Exists(ctx context.Context, filter models.ScheduleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ScheduleRepositoryImpl) applyFilter(db *gorm.DB, filter models.ScheduleFilter) *gorm.DB {
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.OrganizationID != nil {
		db = db.Where("organization_id = ?", *filter.OrganizationID)
	}
	if filter.InvoiceID != nil {
		db = db.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.BatchClusterID != nil {
		db = db.Where("batch_cluster_id = ?", *filter.BatchClusterID)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.SentForProcessing != nil {
		db = db.Where("sent_for_processing = ?", *filter.SentForProcessing)
	}
	if filter.DispatchAfter != nil {
		db = db.Where("dispatch_date >= ?", *filter.DispatchAfter)
	}
	if filter.DispatchBefore != nil {
		db = db.Where("dispatch_date < ?", *filter.DispatchBefore)
	}

	return db
}
