package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"gorm.io/gorm"
)

// BillingEventRepositoryImpl implements the BillingEventRepository interface
type BillingEventRepositoryImpl struct {
	*BaseRepository[models.BillingEvent, models.BillingEventFilter]
}

// NewBillingEventRepository creates a new billing event repository
func NewBillingEventRepository(db *gorm.DB) BillingEventRepository {
	return &BillingEventRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BillingEvent, models.BillingEventFilter](db),
	}
}

// ByEventID retrieves a billing event by the provider's event id
func (r *BillingEventRepositoryImpl) ByEventID(ctx context.Context, eventID string) (*models.BillingEvent, error) {
	db := r.getDB(ctx)

	var event models.BillingEvent
	err := db.Where("event_id = ?", eventID).Last(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

// ListUnprocessed retrieves events awaiting materialization, oldest first
func (r *BillingEventRepositoryImpl) ListUnprocessed(ctx context.Context, limit int) ([]*models.BillingEvent, error) {
	filter := models.BillingEventFilter{Processed: boolPtr(false)}
	return r.ByFilter(ctx, filter, "created_at ASC", limit, 0)
}

// MarkProcessed flips processed false->true as one conditional update
func (r *BillingEventRepositoryImpl) MarkProcessed(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	result := db.Model(&models.BillingEvent{}).
		Where("id = ? AND processed = false", id).
		Update("processed", true)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ByFilter retrieves billing events based on filter criteria
func (r *BillingEventRepositoryImpl) ByFilter(ctx context.Context, filter models.BillingEventFilter, orderBy string, limit, offset int) ([]*models.BillingEvent, error) {
	db := r.getDB(ctx)

	var events []*models.BillingEvent
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

	err := query.Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}

// Count returns the number of billing events matching the filter
func (r *BillingEventRepositoryImpl) Count(ctx context.Context, filter models.BillingEventFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.BillingEvent{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any billing event matching the filter exists
func (r *BillingEventRepositoryImpl) Exists(ctx context.Context, filter models.BillingEventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *BillingEventRepositoryImpl) applyFilter(db *gorm.DB, filter models.BillingEventFilter) *gorm.DB {
	if filter.EventID != nil {
		db = db.Where("event_id = ?", *filter.EventID)
	}
	if filter.EventType != nil {
		db = db.Where("event_type = ?", *filter.EventType)
	}
	if filter.Processed != nil {
		db = db.Where("processed = ?", *filter.Processed)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}

func boolPtr(b bool) *bool {
	return &b
}
