package dto

import (
	"encoding/json"
	"time"
)

// ConfigurationDTO represents the customer's current pipeline configuration
type ConfigurationDTO struct {
	BrandID   uint `json:"brand_id" example:"2"`
	ProductID uint `json:"product_id" example:"9"`

	OrganizationName string `json:"organization_name" example:"Acme Corp"`
	BrandName        string `json:"brand_name" example:"Acme Cloud"`
	ProductName      string `json:"product_name" example:"Acme Cloud Backup"`
	PersonaName      string `json:"persona_name" example:"pragmatic sysadmin"`
	AudienceName     string `json:"audience_name" example:"IT managers"`
	MarketName       string `json:"market_name" example:"EU mid-market"`

	OrganizationJSONLD json.RawMessage `json:"organization_jsonld,omitempty"`
	BrandJSONLD        json.RawMessage `json:"brand_jsonld,omitempty"`
	ProductJSONLD      json.RawMessage `json:"product_jsonld,omitempty"`
	PersonaJSONLD      json.RawMessage `json:"persona_jsonld,omitempty"`
	AudienceJSONLD     json.RawMessage `json:"audience_jsonld,omitempty"`
	MarketJSONLD       json.RawMessage `json:"market_jsonld,omitempty"`

	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UpdateConfigurationRequest represents a change to the current selection.
// Brand and product are resolved against the caller's organization; their
// names and linked data are copied from the entity rows, never trusted
// from the request.
type UpdateConfigurationRequest struct {
	BrandID   uint `json:"brand_id" validate:"required" example:"2"`
	ProductID uint `json:"product_id" validate:"required" example:"9"`

	PersonaName  string `json:"persona_name" validate:"required,max=255" example:"pragmatic sysadmin"`
	AudienceName string `json:"audience_name" validate:"required,max=255" example:"IT managers"`
	MarketName   string `json:"market_name" validate:"required,max=255" example:"EU mid-market"`

	PersonaJSONLD  json.RawMessage `json:"persona_jsonld,omitempty" validate:"omitempty"`
	AudienceJSONLD json.RawMessage `json:"audience_jsonld,omitempty" validate:"omitempty"`
	MarketJSONLD   json.RawMessage `json:"market_jsonld,omitempty" validate:"omitempty"`
}

// GetConfigurationResponse wraps the current configuration
type GetConfigurationResponse struct {
	Configuration ConfigurationDTO `json:"configuration"`
}
