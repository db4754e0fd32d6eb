// Package businessflow contains the core business logic and use cases for the question review gate
package businessflow

import (
	"context"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
)

// AnswerTrigger kicks off answer generation for a fully approved batch.
// Implementations must be non-blocking and idempotent against reruns.
type AnswerTrigger interface {
	TriggerBatch(batchID uuid.UUID)
}

// ReviewFlow handles the human review gate between question and answer generation
type ReviewFlow interface {
	ListQuestions(ctx context.Context, customerID uint, batchID string, metadata *ClientMetadata) (*dto.ListQuestionsResponse, error)
	UpdateQuestion(ctx context.Context, customerID uint, questionID uint, req *dto.UpdateQuestionRequest, metadata *ClientMetadata) (*dto.UpdateQuestionResponse, error)
	ApproveQuestions(ctx context.Context, customerID uint, batchID string, req *dto.ApproveQuestionsRequest, metadata *ClientMetadata) (*dto.ApproveQuestionsResponse, error)
}

// ReviewFlowImpl implements the review gate business flow
type ReviewFlowImpl struct {
	questionRepo  repository.QuestionRepository
	constructRepo repository.FAQConstructRepository
	answerTrigger AnswerTrigger
}

// NewReviewFlow creates a new review flow instance
func NewReviewFlow(
	questionRepo repository.QuestionRepository,
	constructRepo repository.FAQConstructRepository,
	answerTrigger AnswerTrigger,
) ReviewFlow {
	return &ReviewFlowImpl{
		questionRepo:  questionRepo,
		constructRepo: constructRepo,
		answerTrigger: answerTrigger,
	}
}

// getOwnedConstruct loads the construct behind a batch id and checks ownership
func (r *ReviewFlowImpl) getOwnedConstruct(ctx context.Context, customerID uint, batchID string) (*models.FAQConstruct, uuid.UUID, error) {
	parsedBatchID, err := utils.ParseUUID(batchID)
	if err != nil {
		return nil, uuid.Nil, ErrBatchNotFound
	}

	construct, err := r.constructRepo.ByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if construct == nil {
		return nil, uuid.Nil, ErrBatchNotFound
	}
	if construct.CustomerID != customerID {
		return nil, uuid.Nil, ErrBatchAccessDenied
	}

	return construct, parsedBatchID, nil
}

// ListQuestions returns the questions of one batch in creation order
func (r *ReviewFlowImpl) ListQuestions(ctx context.Context, customerID uint, batchID string, metadata *ClientMetadata) (*dto.ListQuestionsResponse, error) {
	_, parsedBatchID, err := r.getOwnedConstruct(ctx, customerID, batchID)
	if err != nil {
		return nil, reviewError(err)
	}

	questions, err := r.questionRepo.ListByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to list questions", err)
	}
	approved, err := r.questionRepo.CountApprovedByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to count approved questions", err)
	}

	resp := &dto.ListQuestionsResponse{
		BatchID:   parsedBatchID.String(),
		Total:     int64(len(questions)),
		Approved:  approved,
		Questions: make([]dto.QuestionDTO, 0, len(questions)),
	}
	for _, question := range questions {
		resp.Questions = append(resp.Questions, ToQuestionDTO(*question))
	}

	return resp, nil
}

// UpdateQuestion overwrites one question's text and marks it edited.
// Edits carry no versioning; the previous text is gone.
func (r *ReviewFlowImpl) UpdateQuestion(ctx context.Context, customerID uint, questionID uint, req *dto.UpdateQuestionRequest, metadata *ClientMetadata) (*dto.UpdateQuestionResponse, error) {
	question, err := r.questionRepo.ByID(ctx, questionID)
	if err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to load question", err)
	}
	if question == nil {
		return nil, NewBusinessError("QUESTION_NOT_FOUND", "Question not found", ErrQuestionNotFound)
	}

	if _, _, err := r.getOwnedConstruct(ctx, customerID, question.BatchID.String()); err != nil {
		return nil, reviewError(err)
	}

	if err := r.questionRepo.UpdateText(ctx, questionID, req.QuestionText); err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to update question", err)
	}

	updated, err := r.questionRepo.ByID(ctx, questionID)
	if err != nil || updated == nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to reload question", err)
	}

	return &dto.UpdateQuestionResponse{Question: ToQuestionDTO(*updated)}, nil
}

// ApproveQuestions approves the selected questions of a batch. When the
// whole batch is approved, answer generation is triggered fire-and-forget.
func (r *ReviewFlowImpl) ApproveQuestions(ctx context.Context, customerID uint, batchID string, req *dto.ApproveQuestionsRequest, metadata *ClientMetadata) (*dto.ApproveQuestionsResponse, error) {
	_, parsedBatchID, err := r.getOwnedConstruct(ctx, customerID, batchID)
	if err != nil {
		return nil, reviewError(err)
	}

	total, err := r.questionRepo.CountByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to count questions", err)
	}
	if total == 0 {
		return nil, NewBusinessError("QUESTIONS_NOT_GENERATED", "Batch has no questions to approve yet", ErrQuestionNotFound)
	}
	if len(req.QuestionIDs) == 0 {
		return nil, NewBusinessError("NO_QUESTIONS_SELECTED", "No questions selected", ErrNoQuestionsSelected)
	}

	approvedNow, err := r.questionRepo.ApproveMany(ctx, parsedBatchID, req.QuestionIDs)
	if err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to approve questions", err)
	}

	approvedTotal, err := r.questionRepo.CountApprovedByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("REVIEW_FAILED", "Failed to count approved questions", err)
	}

	resp := &dto.ApproveQuestionsResponse{
		Approved:      approvedNow,
		FullyApproved: approvedTotal == total,
	}
	if resp.FullyApproved && r.answerTrigger != nil {
		r.answerTrigger.TriggerBatch(parsedBatchID)
		resp.AnswersTriggered = true
	}

	return resp, nil
}

// reviewError maps shared sentinels to business errors for review handlers
func reviewError(err error) error {
	switch {
	case IsBatchNotFound(err):
		return NewBusinessError("BATCH_NOT_FOUND", "Batch not found", err)
	case IsBatchAccessDenied(err):
		return NewBusinessError("BATCH_ACCESS_DENIED", "Batch access denied", err)
	default:
		return NewBusinessError("REVIEW_FAILED", "Review operation failed", err)
	}
}
