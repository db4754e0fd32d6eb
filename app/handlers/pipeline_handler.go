package handlers

import (
	"context"
	"log"
	"time"

	"github.com/brandaion/platform/app/dto"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PipelineHandlerInterface defines the contract for pipeline handlers
type PipelineHandlerInterface interface {
	GenerateSchedules(c fiber.Ctx) error
	ProcessSchedules(c fiber.Ctx) error
	AssembleBatch(c fiber.Ctx) error
	PublishBatch(c fiber.Ctx) error
	ListBatches(c fiber.Ctx) error
}

// PipelineHandler handles schedule, construct, and batch HTTP requests
type PipelineHandler struct {
	scheduleFlow  businessflow.ScheduleFlow
	constructFlow businessflow.ConstructFlow
	assemblyFlow  businessflow.AssemblyFlow
	validator     *validator.Validate
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(
	scheduleFlow businessflow.ScheduleFlow,
	constructFlow businessflow.ConstructFlow,
	assemblyFlow businessflow.AssemblyFlow,
) *PipelineHandler {
	return &PipelineHandler{
		scheduleFlow:  scheduleFlow,
		constructFlow: constructFlow,
		assemblyFlow:  assemblyFlow,
		validator:     validator.New(),
	}
}

func (h *PipelineHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PipelineHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *PipelineHandler) customerID(c fiber.Ctx) (uint, bool) {
	customerID, ok := c.Locals("customer_id").(uint)
	return customerID, ok && customerID != 0
}

// GenerateSchedules derives the dispatch plan for a paid invoice
// @Summary Generate Schedules
// @Description Split the invoice's billing period into four dispatch dates
// @Tags Pipeline
// @Produce json
// @Param uuid path string true "Invoice UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateSchedulesResponse} "Schedules created"
// @Failure 400 {object} dto.APIResponse "Billing period too short"
// @Failure 404 {object} dto.APIResponse "Invoice not found"
// @Failure 409 {object} dto.APIResponse "Invoice already scheduled"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/invoices/{uuid}/schedules [post]
func (h *PipelineHandler) GenerateSchedules(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.GenerateSchedulesRequest{InvoiceUUID: c.Params("uuid")}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.scheduleFlow.GenerateSchedules(h.createRequestContext(c, "/api/v1/invoices/:uuid/schedules"), customerID, &req, metadata)
	if err != nil {
		if businessflow.IsInvoiceNotFound(err) || businessflow.IsInvoiceAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Invoice not found", "INVOICE_NOT_FOUND", nil)
		}
		if businessflow.IsInvoiceAlreadyScheduled(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Invoice was already dispatched to scheduling", "INVOICE_ALREADY_SCHEDULED", nil)
		}
		if businessflow.IsBillingPeriodInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Billing period is too short to schedule", "BILLING_PERIOD_INVALID", nil)
		}
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No organization configured for customer", "ORGANIZATION_NOT_FOUND", nil)
		}

		log.Println("Generate schedules failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate schedules", "GENERATE_SCHEDULES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Schedules created", result)
}

// ProcessSchedules merges pending schedules with the current configuration
// @Summary Process Schedules
// @Description Claim pending schedules and create FAQ constructs from them
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param request body dto.ProcessSchedulesRequest false "Optional schedule ID filter"
// @Success 200 {object} dto.APIResponse{data=dto.ProcessSchedulesResponse} "Constructs created"
// @Failure 422 {object} dto.APIResponse "No configuration"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/schedules/process [post]
func (h *PipelineHandler) ProcessSchedules(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ProcessSchedulesRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.constructFlow.ProcessSchedules(h.createRequestContext(c, "/api/v1/schedules/process"), customerID, &req, metadata)
	if err != nil {
		if businessflow.IsCustomerNotFound(err) || businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Account is not available", "ACCOUNT_INACTIVE", nil)
		}
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Customer has no configuration to merge", "CONFIGURATION_NOT_FOUND", nil)
		}

		log.Println("Process schedules failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to process schedules", "PROCESS_SCHEDULES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Schedules processed", result)
}

// AssembleBatch builds the publishable FAQ document for a batch
// @Summary Assemble Batch
// @Description Assemble the JSON-LD FAQ document from the batch's answered questions
// @Tags Pipeline
// @Produce json
// @Param batch_id path string true "Batch ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssembleBatchResponse} "Batch assembled"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 422 {object} dto.APIResponse "Batch incomplete"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/batches/{batch_id}/assemble [post]
func (h *PipelineHandler) AssembleBatch(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.assemblyFlow.AssembleBatch(h.createRequestContext(c, "/api/v1/batches/:batch_id/assemble"), customerID, c.Params("batch_id"), metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) || businessflow.IsBatchAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsBatchIncomplete(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Batch does not have a full set of answered questions", "BATCH_INCOMPLETE", nil)
		}

		log.Println("Assemble batch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assemble batch", "ASSEMBLE_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch assembled", result)
}

// PublishBatch marks an assembled batch as published
// @Summary Publish Batch
// @Description Publish an assembled batch; publishing is one-way
// @Tags Pipeline
// @Produce json
// @Param batch_id path string true "Batch ID"
// @Success 200 {object} dto.APIResponse{data=dto.PublishBatchResponse} "Batch published"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Failure 409 {object} dto.APIResponse "Batch already published"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/batches/{batch_id}/publish [post]
func (h *PipelineHandler) PublishBatch(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.assemblyFlow.PublishBatch(h.createRequestContext(c, "/api/v1/batches/:batch_id/publish"), customerID, c.Params("batch_id"), metadata)
	if err != nil {
		if businessflow.IsBatchNotFound(err) || businessflow.IsBatchAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Batch not found", "BATCH_NOT_FOUND", nil)
		}
		if businessflow.IsBatchAlreadyPublished(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Batch is already published", "BATCH_ALREADY_PUBLISHED", nil)
		}

		log.Println("Publish batch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to publish batch", "PUBLISH_BATCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batch published", result)
}

// ListBatches lists the customer's assembled and published batches
// @Summary List Batches
// @Description List the customer's batches, newest first
// @Tags Pipeline
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListBatchesResponse} "Batches"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/batches [get]
func (h *PipelineHandler) ListBatches(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.assemblyFlow.ListBatches(h.createRequestContext(c, "/api/v1/batches"), customerID, metadata)
	if err != nil {
		log.Println("List batches failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list batches", "LIST_BATCHES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Batches retrieved", result)
}

func (h *PipelineHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PipelineHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
