package repository

import (
	"context"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionRepositoryImpl implements the QuestionRepository interface
type QuestionRepositoryImpl struct {
	*BaseRepository[models.Question, models.QuestionFilter]
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &QuestionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Question, models.QuestionFilter](db),
	}
}

// ListByBatchID retrieves all questions of a batch in creation order
func (r *QuestionRepositoryImpl) ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]*models.Question, error) {
	filter := models.QuestionFilter{BatchID: &batchID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// ListAnsweredByBatchID retrieves a batch's answered questions in creation order
func (r *QuestionRepositoryImpl) ListAnsweredByBatchID(ctx context.Context, batchID uuid.UUID) ([]*models.Question, error) {
	status := models.AnswerStatusCompleted
	filter := models.QuestionFilter{BatchID: &batchID, AnswerStatus: &status}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// ListUnansweredApproved retrieves approved or edited questions of a batch
// still awaiting an answer
func (r *QuestionRepositoryImpl) ListUnansweredApproved(ctx context.Context, batchID uuid.UUID) ([]*models.Question, error) {
	db := r.getDB(ctx)

	var questions []*models.Question
	err := db.Where("batch_id = ? AND answer_status <> ? AND review_status IN ?",
		batchID, models.AnswerStatusCompleted,
		[]models.ReviewStatus{models.ReviewStatusApproved, models.ReviewStatusEdited}).
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return questions, nil
}

// ListBatchesAwaitingAnswers returns batch ids that are fully approved but
// still carry unanswered questions. Feeds the periodic answer worker tick.
func (r *QuestionRepositoryImpl) ListBatchesAwaitingAnswers(ctx context.Context, limit int) ([]uuid.UUID, error) {
	db := r.getDB(ctx)

	var batchIDs []uuid.UUID
	query := db.Model(&models.Question{}).
		Select("batch_id").
		Group("batch_id").
		Having("COUNT(*) FILTER (WHERE review_status = 'pending') = 0").
		Having("COUNT(*) FILTER (WHERE answer_status <> 'completed') > 0")
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Scan(&batchIDs).Error
	if err != nil {
		return nil, err
	}

	return batchIDs, nil
}

// UpdateText overwrites the question text and marks it edited
func (r *QuestionRepositoryImpl) UpdateText(ctx context.Context, id uint, text string) error {
	db := r.getDB(ctx)

	return db.Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"question_text": text,
			"review_status": models.ReviewStatusEdited,
			"updated_at":    utils.UTCNow(),
		}).Error
}

// ApproveMany marks the selected questions of a batch approved and returns
// how many rows changed
func (r *QuestionRepositoryImpl) ApproveMany(ctx context.Context, batchID uuid.UUID, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db := r.getDB(ctx)

	result := db.Model(&models.Question{}).
		Where("batch_id = ? AND id IN ?", batchID, ids).
		Updates(map[string]any{
			"review_status": models.ReviewStatusApproved,
			"updated_at":    utils.UTCNow(),
		})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// CompleteAnswer stores the generated answer and completes the status
func (r *QuestionRepositoryImpl) CompleteAnswer(ctx context.Context, id uint, answer string, topic *string) error {
	db := r.getDB(ctx)

	updates := map[string]any{
		"answer_text":   answer,
		"answer_status": models.AnswerStatusCompleted,
		"error_message": nil,
		"updated_at":    utils.UTCNow(),
	}
	if topic != nil {
		updates["topic"] = *topic
	}

	return db.Model(&models.Question{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// RecordAnswerError keeps the question pending and records the failure
// for operator visibility
func (r *QuestionRepositoryImpl) RecordAnswerError(ctx context.Context, id uint, errorMessage string) error {
	db := r.getDB(ctx)

	return db.Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"error_message": errorMessage,
			"updated_at":    utils.UTCNow(),
		}).Error
}

// CountByBatchID counts all questions in a batch
func (r *QuestionRepositoryImpl) CountByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	filter := models.QuestionFilter{BatchID: &batchID}
	return r.Count(ctx, filter)
}

// CountApprovedByBatchID counts a batch's approved or edited questions
func (r *QuestionRepositoryImpl) CountApprovedByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Question{}).
		Where("batch_id = ? AND review_status IN ?", batchID,
			[]models.ReviewStatus{models.ReviewStatusApproved, models.ReviewStatusEdited}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ByFilter retrieves questions based on filter criteria
func (r *QuestionRepositoryImpl) ByFilter(ctx context.Context, filter models.QuestionFilter, orderBy string, limit, offset int) ([]*models.Question, error) {
	db := r.getDB(ctx)

	var questions []*models.Question
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

	err := query.Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return questions, nil
}

// Count returns the number of questions matching the filter
func (r *QuestionRepositoryImpl) Count(ctx context.Context, filter models.QuestionFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Question{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any question matching the filter exists
func (r *QuestionRepositoryImpl) Exists(ctx context.Context, filter models.QuestionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *QuestionRepositoryImpl) applyFilter(db *gorm.DB, filter models.QuestionFilter) *gorm.DB {
	if filter.ConstructID != nil {
		db = db.Where("construct_id = ?", *filter.ConstructID)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.AnswerStatus != nil {
		db = db.Where("answer_status = ?", *filter.AnswerStatus)
	}
	if filter.ReviewStatus != nil {
		db = db.Where("review_status = ?", *filter.ReviewStatus)
	}

	return db
}
