package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/brandaion/platform/app/dto"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/utils"
	"github.com/gofiber/fiber/v3"
)

// EnrichmentHandlerInterface defines the contract for enrichment handlers
type EnrichmentHandlerInterface interface {
	EnrichOrganization(c fiber.Ctx) error
	EnrichBrand(c fiber.Ctx) error
}

// EnrichmentHandler handles JSON-LD enrichment HTTP requests
type EnrichmentHandler struct {
	enrichmentFlow businessflow.EnrichmentFlow
}

// NewEnrichmentHandler creates a new enrichment handler
func NewEnrichmentHandler(enrichmentFlow businessflow.EnrichmentFlow) *EnrichmentHandler {
	return &EnrichmentHandler{enrichmentFlow: enrichmentFlow}
}

func (h *EnrichmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *EnrichmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *EnrichmentHandler) customerID(c fiber.Ctx) (uint, bool) {
	customerID, ok := c.Locals("customer_id").(uint)
	return customerID, ok && customerID != 0
}

// EnrichOrganization rebuilds the organization-level enrichment snapshot
// @Summary Enrich Organization
// @Description Aggregate brand and FAQ data into the organization's JSON-LD snapshot
// @Tags Enrichment
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.OrganizationEnrichmentResponse} "Snapshot refreshed"
// @Failure 404 {object} dto.APIResponse "Organization not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/enrichment/organization [post]
func (h *EnrichmentHandler) EnrichOrganization(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.enrichmentFlow.EnrichOrganization(h.createRequestContext(c, "/api/v1/enrichment/organization"), customerID, metadata)
	if err != nil {
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORGANIZATION_NOT_FOUND", nil)
		}

		log.Println("Organization enrichment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enrich organization", "ENRICHMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Organization snapshot refreshed", result)
}

// EnrichBrand rebuilds a brand-level enrichment snapshot
// @Summary Enrich Brand
// @Description Aggregate product and FAQ batch data into the brand's JSON-LD snapshot
// @Tags Enrichment
// @Produce json
// @Param id path int true "Brand ID"
// @Success 200 {object} dto.APIResponse{data=dto.BrandEnrichmentResponse} "Snapshot refreshed"
// @Failure 404 {object} dto.APIResponse "Brand not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/enrichment/brands/{id} [post]
func (h *EnrichmentHandler) EnrichBrand(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	brandID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || brandID == 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid brand ID", "INVALID_BRAND_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.enrichmentFlow.EnrichBrand(h.createRequestContext(c, "/api/v1/enrichment/brands/:id"), customerID, uint(brandID), metadata)
	if err != nil {
		if businessflow.IsOrganizationNotFound(err) || businessflow.IsBrandNotFound(err) || businessflow.IsBrandNotInOrganization(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Brand not found", "BRAND_NOT_FOUND", nil)
		}

		log.Println("Brand enrichment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enrich brand", "ENRICHMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Brand snapshot refreshed", result)
}

func (h *EnrichmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *EnrichmentHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
