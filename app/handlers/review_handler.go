package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/brandaion/platform/app/dto"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ReviewHandlerInterface defines the contract for review handlers
type ReviewHandlerInterface interface {
	ListQuestions(c fiber.Ctx) error
	UpdateQuestion(c fiber.Ctx) error
	ApproveQuestions(c fiber.Ctx) error
}

// ReviewHandler handles question review HTTP requests
type ReviewHandler struct {
	reviewFlow businessflow.ReviewFlow
	validator  *validator.Validate
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewFlow businessflow.ReviewFlow) *ReviewHandler {
	return &ReviewHandler{
		reviewFlow: reviewFlow,
		validator:  validator.New(),
	}
}

func (h *ReviewHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ReviewHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *ReviewHandler) customerID(c fiber.Ctx) (uint, bool) {
	customerID, ok := c.Locals("customer_id").(uint)
	return customerID, ok && customerID != 0
}

// ListQuestions lists a batch's questions for review
// @Summary List Questions
// @Description List the generated questions of one batch with approval progress
// @Tags Review
// @Produce json
// @Param batch_id path string true "Batch ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListQuestionsResponse} "Questions"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/batches/{batch_id}/questions [get]
func (h *ReviewHandler) ListQuestions(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.reviewFlow.ListQuestions(h.createRequestContext(c, "/api/v1/batches/:batch_id/questions"), customerID, c.Params("batch_id"), metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) || businessflow.IsBatchAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}

		log.Println("List questions failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list questions", "LIST_QUESTIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Questions retrieved", result)
}

// UpdateQuestion edits a question's text before approval
// @Summary Update Question
// @Description Edit a question's text; the edit is tracked in review status
// @Tags Review
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body dto.UpdateQuestionRequest true "New question text"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateQuestionResponse} "Question updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Question not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/questions/{id} [put]
func (h *ReviewHandler) UpdateQuestion(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	questionID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || questionID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid question ID", "INVALID_QUESTION_ID", nil)
	}

	var req dto.UpdateQuestionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.reviewFlow.UpdateQuestion(h.createRequestContext(c, "/api/v1/questions/:id"), customerID, uint(questionID), &req, metadata)
	if err != nil {
		if businessflow.IsQuestionNotFound(err) || businessflow.IsQuestionAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Question not found", "QUESTION_NOT_FOUND", nil)
		}

		log.Println("Update question failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update question", "UPDATE_QUESTION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Question updated", result)
}

// ApproveQuestions approves a set of questions in one batch
// @Summary Approve Questions
// @Description Approve questions; full approval triggers answer generation
// @Tags Review
// @Accept json
// @Produce json
// @Param batch_id path string true "Batch ID"
// @Param request body dto.ApproveQuestionsRequest true "Question IDs to approve"
// @Success 200 {object} dto.APIResponse{data=dto.ApproveQuestionsResponse} "Questions approved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 422 {object} dto.APIResponse "Questions not generated yet"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/batches/{batch_id}/approve [post]
func (h *ReviewHandler) ApproveQuestions(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ApproveQuestionsRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.reviewFlow.ApproveQuestions(h.createRequestContext(c, "/api/v1/batches/:batch_id/approve"), customerID, c.Params("batch_id"), &req, metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) || businessflow.IsBatchAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsQuestionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Questions have not been generated for this batch", "QUESTIONS_NOT_GENERATED", nil)
		}
		if businessflow.IsNoQuestionsSelected(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No questions selected", "NO_QUESTIONS_SELECTED", nil)
		}

		log.Println("Approve questions failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to approve questions", "APPROVE_QUESTIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Questions approved", result)
}

func (h *ReviewHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ReviewHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
