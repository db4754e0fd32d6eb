package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FAQConstructRepositoryImpl implements the FAQConstructRepository interface
type FAQConstructRepositoryImpl struct {
	*BaseRepository[models.FAQConstruct, models.FAQConstructFilter]
}

// NewFAQConstructRepository creates a new construct repository
func NewFAQConstructRepository(db *gorm.DB) FAQConstructRepository {
	return &FAQConstructRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FAQConstruct, models.FAQConstructFilter](db),
	}
}

// ByBatchID retrieves a construct by its unique batch id
func (r *FAQConstructRepositoryImpl) ByBatchID(ctx context.Context, batchID uuid.UUID) (*models.FAQConstruct, error) {
	db := r.getDB(ctx)

	var construct models.FAQConstruct
	err := db.Where("batch_id = ?", batchID).Last(&construct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &construct, nil
}

// ListPendingGeneration retrieves constructs awaiting question generation.
// Constructs with a stored AI response are excluded even if their status
// was not advanced, so a crashed tick never re-invokes the model.
// A generating_questions row whose claim went stale (no update within
// GenerationStaleAfter, worker crashed mid-generation) is listed again.
func (r *FAQConstructRepositoryImpl) ListPendingGeneration(ctx context.Context, limit int) ([]*models.FAQConstruct, error) {
	db := r.getDB(ctx)

	cutoff := utils.UTCNow().Add(-utils.GenerationStaleAfter)
	var constructs []*models.FAQConstruct
	query := db.Where("ai_response IS NULL AND (status = ? OR (status = ? AND updated_at < ?))",
		models.GenerationStatusPending, models.GenerationStatusGeneratingQuestions, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&constructs).Error
	if err != nil {
		return nil, err
	}

	return constructs, nil
}

// ClaimGenerating moves pending -> generating_questions conditionally.
// A stale generating_questions claim is taken over in place; refreshing
// updated_at fences out other workers for another GenerationStaleAfter.
func (r *FAQConstructRepositoryImpl) ClaimGenerating(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	cutoff := utils.UTCNow().Add(-utils.GenerationStaleAfter)
	result := db.Model(&models.FAQConstruct{}).
		Where("id = ? AND (status = ? OR (status = ? AND updated_at < ?))",
			id, models.GenerationStatusPending, models.GenerationStatusGeneratingQuestions, cutoff).
		Updates(map[string]any{
			"status":     models.GenerationStatusGeneratingQuestions,
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// CompleteGeneration persists the raw model exchange and advances the status
func (r *FAQConstructRepositoryImpl) CompleteGeneration(ctx context.Context, id uint, request, response string) error {
	db := r.getDB(ctx)

	return db.Model(&models.FAQConstruct{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.GenerationStatusQuestionsGenerated,
			"ai_request":    request,
			"ai_response":   response,
			"error_message": nil,
			"updated_at":    utils.UTCNow(),
		}).Error
}

// FailGeneration marks the construct terminally failed with the error message
func (r *FAQConstructRepositoryImpl) FailGeneration(ctx context.Context, id uint, request, errorMessage string) error {
	db := r.getDB(ctx)

	return db.Model(&models.FAQConstruct{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.GenerationStatusFailed,
			"ai_request":    request,
			"error_message": errorMessage,
			"updated_at":    utils.UTCNow(),
		}).Error
}

// ByFilter retrieves constructs based on filter criteria
func (r *FAQConstructRepositoryImpl) ByFilter(ctx context.Context, filter models.FAQConstructFilter, orderBy string, limit, offset int) ([]*models.FAQConstruct, error) {
	db := r.getDB(ctx)

	var constructs []*models.FAQConstruct
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

	err := query.Find(&constructs).Error
	if err != nil {
		return nil, err
	}

	return constructs, nil
}

// Count returns the number of constructs matching the filter
func (r *FAQConstructRepositoryImpl) Count(ctx context.Context, filter models.FAQConstructFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.FAQConstruct{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any construct matching the filter exists
func (r *FAQConstructRepositoryImpl) Exists(ctx context.Context, filter models.FAQConstructFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *FAQConstructRepositoryImpl) applyFilter(db *gorm.DB, filter models.FAQConstructFilter) *gorm.DB {
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
	if filter.HasAIResponse != nil {
		if *filter.HasAIResponse {
			db = db.Where("ai_response IS NOT NULL")
		} else {
			db = db.Where("ai_response IS NULL")
		}
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
