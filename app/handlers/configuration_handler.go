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

// ConfigurationHandlerInterface defines the contract for configuration handlers
type ConfigurationHandlerInterface interface {
	GetConfiguration(c fiber.Ctx) error
	UpdateConfiguration(c fiber.Ctx) error
}

// ConfigurationHandler handles client configuration HTTP requests
type ConfigurationHandler struct {
	configurationFlow businessflow.ConfigurationFlow
	validator         *validator.Validate
}

// NewConfigurationHandler creates a new configuration handler
func NewConfigurationHandler(configurationFlow businessflow.ConfigurationFlow) *ConfigurationHandler {
	return &ConfigurationHandler{
		configurationFlow: configurationFlow,
		validator:         validator.New(),
	}
}

func (h *ConfigurationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ConfigurationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *ConfigurationHandler) customerID(c fiber.Ctx) (uint, bool) {
	customerID, ok := c.Locals("customer_id").(uint)
	return customerID, ok && customerID != 0
}

// GetConfiguration returns the customer's current configuration
// @Summary Get Configuration
// @Description Return the customer's current brand/product/persona selection
// @Tags Configuration
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.GetConfigurationResponse} "Configuration"
// @Failure 404 {object} dto.APIResponse "No configuration"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/configuration [get]
func (h *ConfigurationHandler) GetConfiguration(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.configurationFlow.GetConfiguration(h.createRequestContext(c, "/api/v1/configuration"), customerID, metadata)
	if err != nil {
		if businessflow.IsConfigurationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No configuration found", "CONFIGURATION_NOT_FOUND", nil)
		}

		log.Println("Get configuration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get configuration", "GET_CONFIGURATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Configuration retrieved", result)
}

// UpdateConfiguration replaces the customer's current configuration
// @Summary Update Configuration
// @Description Set the brand/product selection; entity names are resolved server-side
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body dto.UpdateConfigurationRequest true "Configuration selection"
// @Success 200 {object} dto.APIResponse{data=dto.GetConfigurationResponse} "Configuration updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Entity not found"
// @Failure 422 {object} dto.APIResponse "Ownership mismatch"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/configuration [put]
func (h *ConfigurationHandler) UpdateConfiguration(c fiber.Ctx) error {
	customerID, ok := h.customerID(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.UpdateConfigurationRequest
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

	result, err := h.configurationFlow.UpdateConfiguration(h.createRequestContext(c, "/api/v1/configuration"), customerID, &req, metadata)
	if err != nil {
		if businessflow.IsOrganizationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Organization not found", "ORGANIZATION_NOT_FOUND", nil)
		}
		if businessflow.IsBrandNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Brand not found", "BRAND_NOT_FOUND", nil)
		}
		if businessflow.IsProductNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		if businessflow.IsBrandNotInOrganization(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Brand does not belong to the organization", "BRAND_NOT_IN_ORGANIZATION", nil)
		}
		if businessflow.IsProductNotInBrand(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Product does not belong to the brand", "PRODUCT_NOT_IN_BRAND", nil)
		}

		log.Println("Update configuration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update configuration", "UPDATE_CONFIGURATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Configuration updated", result)
}

func (h *ConfigurationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ConfigurationHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
