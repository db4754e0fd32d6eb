// Package businessflow contains the core business logic and use cases for configuration management
package businessflow

import (
	"context"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// ConfigurationFlow manages the customer's current pipeline selection
type ConfigurationFlow interface {
	GetConfiguration(ctx context.Context, customerID uint, metadata *ClientMetadata) (*dto.GetConfigurationResponse, error)
	UpdateConfiguration(ctx context.Context, customerID uint, req *dto.UpdateConfigurationRequest, metadata *ClientMetadata) (*dto.GetConfigurationResponse, error)
}

// ConfigurationFlowImpl implements the configuration business flow
type ConfigurationFlowImpl struct {
	organizationRepo  repository.OrganizationRepository
	brandRepo         repository.BrandRepository
	productRepo       repository.ProductRepository
	configurationRepo repository.ClientConfigurationRepository
	db                *gorm.DB
}

// NewConfigurationFlow creates a new configuration flow instance
func NewConfigurationFlow(
	organizationRepo repository.OrganizationRepository,
	brandRepo repository.BrandRepository,
	productRepo repository.ProductRepository,
	configurationRepo repository.ClientConfigurationRepository,
	db *gorm.DB,
) ConfigurationFlow {
	return &ConfigurationFlowImpl{
		organizationRepo:  organizationRepo,
		brandRepo:         brandRepo,
		productRepo:       productRepo,
		configurationRepo: configurationRepo,
		db:                db,
	}
}

// GetConfiguration returns the customer's current selection
func (c *ConfigurationFlowImpl) GetConfiguration(ctx context.Context, customerID uint, metadata *ClientMetadata) (*dto.GetConfigurationResponse, error) {
	configuration, err := c.configurationRepo.CurrentByCustomerID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("CONFIGURATION_FAILED", "Failed to load configuration", err)
	}
	if configuration == nil {
		return nil, NewBusinessError("CONFIGURATION_NOT_FOUND", "Client configuration not found", ErrConfigurationNotFound)
	}

	return &dto.GetConfigurationResponse{Configuration: ToConfigurationDTO(*configuration)}, nil
}

// UpdateConfiguration replaces the current selection. Entity names and
// linked data come from the resolved rows, not from the request, so a
// caller cannot smuggle foreign content into later snapshots.
func (c *ConfigurationFlowImpl) UpdateConfiguration(ctx context.Context, customerID uint, req *dto.UpdateConfigurationRequest, metadata *ClientMetadata) (*dto.GetConfigurationResponse, error) {
	organization, err := getOrganization(ctx, c.organizationRepo, customerID)
	if err != nil {
		if IsOrganizationNotFound(err) {
			return nil, NewBusinessError("ORGANIZATION_NOT_FOUND", "Organization not found", err)
		}
		return nil, NewBusinessError("CONFIGURATION_FAILED", "Failed to resolve organization", err)
	}

	brand, err := c.brandRepo.ByID(ctx, req.BrandID)
	if err != nil {
		return nil, NewBusinessError("CONFIGURATION_FAILED", "Failed to load brand", err)
	}
	if brand == nil {
		return nil, NewBusinessError("BRAND_NOT_FOUND", "Brand not found", ErrBrandNotFound)
	}
	if brand.OrganizationID != organization.ID {
		return nil, NewBusinessError("BRAND_NOT_IN_ORGANIZATION", "Brand does not belong to the organization", ErrBrandNotInOrganization)
	}

	product, err := c.productRepo.ByID(ctx, req.ProductID)
	if err != nil {
		return nil, NewBusinessError("CONFIGURATION_FAILED", "Failed to load product", err)
	}
	if product == nil {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}
	if product.BrandID != brand.ID {
		return nil, NewBusinessError("PRODUCT_NOT_IN_BRAND", "Product does not belong to the brand", ErrProductNotInBrand)
	}

	now := utils.UTCNow()
	configuration := &models.ClientConfiguration{
		CustomerID:         customerID,
		BrandID:            brand.ID,
		ProductID:          product.ID,
		OrganizationName:   organization.Name,
		BrandName:          brand.Name,
		ProductName:        product.Name,
		PersonaName:        req.PersonaName,
		AudienceName:       req.AudienceName,
		MarketName:         req.MarketName,
		OrganizationJSONLD: organization.JSONLD,
		BrandJSONLD:        brand.JSONLD,
		ProductJSONLD:      product.JSONLD,
		PersonaJSONLD:      req.PersonaJSONLD,
		AudienceJSONLD:     req.AudienceJSONLD,
		MarketJSONLD:       req.MarketJSONLD,
		UpdatedAt:          &now,
	}

	if err := c.configurationRepo.UpsertByCustomerID(ctx, configuration); err != nil {
		return nil, NewBusinessError("CONFIGURATION_FAILED", "Failed to save configuration", err)
	}

	return &dto.GetConfigurationResponse{Configuration: ToConfigurationDTO(*configuration)}, nil
}
