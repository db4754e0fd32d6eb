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

// WebhookSignatureHeader carries the provider's "t=<unix>,v1=<hex>" signature
const WebhookSignatureHeader = "Webhook-Signature"

// BillingHandlerInterface defines the contract for billing handlers
type BillingHandlerInterface interface {
	Webhook(c fiber.Ctx) error
	MaterializeInvoices(c fiber.Ctx) error
	ListInvoices(c fiber.Ctx) error
}

// BillingHandler handles billing-related HTTP requests
type BillingHandler struct {
	billingFlow businessflow.BillingFlow
	validator   *validator.Validate
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingFlow businessflow.BillingFlow) *BillingHandler {
	return &BillingHandler{
		billingFlow: billingFlow,
		validator:   validator.New(),
	}
}

func (h *BillingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *BillingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Webhook ingests a billing event from the payment provider
// @Summary Billing Webhook
// @Description Receive and durably store a signed billing event
// @Tags Billing
// @Accept json
// @Produce json
// @Param Webhook-Signature header string true "Signature header t=<unix>,v1=<hex>"
// @Success 200 {object} dto.APIResponse{data=dto.WebhookAckResponse} "Event stored"
// @Failure 400 {object} dto.APIResponse "Invalid signature or payload"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /webhooks/billing [post]
func (h *BillingHandler) Webhook(c fiber.Ctx) error {
	// The signature covers the raw body bytes; do not bind before verifying
	body := c.Body()
	signature := c.Get(WebhookSignatureHeader)

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.billingFlow.IngestWebhook(h.createRequestContext(c, "/webhooks/billing"), signature, body, metadata)
	if err != nil {
		if businessflow.IsWebhookSignatureInvalid(err) || businessflow.IsWebhookTimestampExpired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Webhook signature verification failed", "WEBHOOK_REJECTED", nil)
		}
		if businessflow.IsWebhookPayloadInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Webhook payload is not valid JSON", "WEBHOOK_REJECTED", nil)
		}

		log.Println("Webhook ingestion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Webhook ingestion failed", "WEBHOOK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Event received", result)
}

// MaterializeInvoices converts stored billing events into invoices
// @Summary Materialize Invoices
// @Description Scan unprocessed billing events and create invoices
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.MaterializeInvoicesRequest false "Scan limit"
// @Success 200 {object} dto.APIResponse{data=dto.MaterializeInvoicesResponse} "Materialization report"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/billing/materialize [post]
func (h *BillingHandler) MaterializeInvoices(c fiber.Ctx) error {
	var req dto.MaterializeInvoicesRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.billingFlow.MaterializeInvoices(h.createRequestContextWithTimeout(c, "/api/v1/billing/materialize", 2*time.Minute), &req, metadata)
	if err != nil {
		log.Println("Invoice materialization failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Invoice materialization failed", "MATERIALIZE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Materialization completed", result)
}

// ListInvoices lists the authenticated customer's invoices
// @Summary List Invoices
// @Description List the customer's invoices, newest first
// @Tags Billing
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListInvoicesResponse} "Invoices"
// @Failure 400 {object} dto.APIResponse "Invalid pagination"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/invoices [get]
func (h *BillingHandler) ListInvoices(c fiber.Ctx) error {
	customerID, ok := c.Locals("customer_id").(uint)
	if !ok || customerID == 0 {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	req := dto.ListInvoicesRequest{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.billingFlow.ListInvoices(h.createRequestContext(c, "/api/v1/invoices"), customerID, &req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List invoices failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list invoices", "LIST_INVOICES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Invoices retrieved", result)
}

// queryInt parses an integer query parameter with a default
func queryInt(c fiber.Ctx, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (h *BillingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *BillingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
