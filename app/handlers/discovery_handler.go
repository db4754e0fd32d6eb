package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/brandaion/platform/app/dto"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/gofiber/fiber/v3"
)

// DiscoveryHandlerInterface defines the contract for discovery handlers
type DiscoveryHandlerInterface interface {
	GetFile(c fiber.Ctx) error
	RefreshFile(c fiber.Ctx) error
}

// DiscoveryHandler serves cached discovery files. GetFile is public so
// crawlers can fetch JSON-LD without credentials.
type DiscoveryHandler struct {
	discoveryFlow businessflow.DiscoveryFlow
	freshness     time.Duration
}

// NewDiscoveryHandler creates a new discovery handler. The freshness
// window drives the Cache-Control max-age on served files.
func NewDiscoveryHandler(discoveryFlow businessflow.DiscoveryFlow, freshness time.Duration) *DiscoveryHandler {
	if freshness <= 0 {
		freshness = utils.DiscoveryFreshness
	}
	return &DiscoveryHandler{discoveryFlow: discoveryFlow, freshness: freshness}
}

func (h *DiscoveryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// GetFile serves one discovery file with its stored content type
// @Summary Get Discovery File
// @Description Serve a cached discovery file (index or JSON-LD) for an entity
// @Tags Discovery
// @Produce json
// @Param entity_type path string true "Entity type" Enums(organization, brand)
// @Param entity_id path int true "Entity ID"
// @Param file_type path string true "File type" Enums(index, jsonld)
// @Param force query bool false "Force regeneration"
// @Success 200 {string} string "File content"
// @Failure 404 {object} dto.APIResponse "File not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /discovery/{entity_type}/{entity_id}/{file_type} [get]
func (h *DiscoveryHandler) GetFile(c fiber.Ctx) error {
	file, err := h.loadFile(c, c.Query("force") == "true")
	if file == nil {
		// error response already written
		return err
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderCacheControl, h.cacheControl(file))
	return c.Status(fiber.StatusOK).SendString(file.Content)
}

// RefreshFile force-regenerates one discovery file and returns it with
// the regeneration timestamp
// @Summary Refresh Discovery File
// @Description Regenerate a discovery file from the latest enrichment snapshot
// @Tags Discovery
// @Produce json
// @Param entity_type path string true "Entity type" Enums(organization, brand)
// @Param entity_id path int true "Entity ID"
// @Param file_type path string true "File type" Enums(index, jsonld)
// @Success 200 {object} dto.APIResponse{data=dto.RefreshDiscoveryFileResponse} "File regenerated"
// @Failure 404 {object} dto.APIResponse "Snapshot missing"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/discovery/{entity_type}/{entity_id}/{file_type}/refresh [post]
func (h *DiscoveryHandler) RefreshFile(c fiber.Ctx) error {
	file, err := h.loadFile(c, true)
	if file == nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Discovery file regenerated",
		Data: dto.RefreshDiscoveryFileResponse{
			File: dto.DiscoveryFileDTO{
				FilePath:      file.FilePath,
				EntityType:    file.EntityType,
				EntityID:      file.EntityID,
				FileType:      file.FileType,
				Content:       file.Content,
				ContentType:   file.ContentType,
				LastGenerated: file.LastGenerated,
			},
		},
	})
}

func (h *DiscoveryHandler) loadFile(c fiber.Ctx, force bool) (*models.DiscoveryFile, error) {
	entityID, err := strconv.ParseUint(c.Params("entity_id"), 10, 64)
	if err != nil || entityID == 0 {
		return nil, h.ErrorResponse(c, fiber.StatusNotFound, "Discovery file not found", "DISCOVERY_FILE_NOT_FOUND", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	file, err := h.discoveryFlow.GetFile(
		h.createRequestContext(c, "/discovery/:entity_type/:entity_id/:file_type"),
		c.Params("entity_type"),
		uint(entityID),
		c.Params("file_type"),
		force,
		metadata,
	)
	if err != nil {
		if businessflow.IsDiscoveryFileNotFound(err) || businessflow.IsSnapshotNotFound(err) {
			return nil, h.ErrorResponse(c, fiber.StatusNotFound, "Discovery file not found", "DISCOVERY_FILE_NOT_FOUND", nil)
		}

		log.Println("Discovery file lookup failed", err)
		return nil, h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to serve discovery file", "DISCOVERY_FAILED", nil)
	}

	return file, nil
}

// cacheControl caps downstream caching at the file's remaining
// freshness so caches expire in step with the regeneration deadline
func (h *DiscoveryHandler) cacheControl(file *models.DiscoveryFile) string {
	remaining := h.freshness - utils.UTCNow().Sub(file.LastGenerated)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("public, max-age=%d", int(remaining.Seconds()))
}

func (h *DiscoveryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *DiscoveryHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
