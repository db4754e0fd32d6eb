package models

import (
	"encoding/json"
	"time"

	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// ClientConfiguration is the customer's current brand/product/persona/
// market/audience selection. It is mutable; the merger copies it onto
// constructs as a snapshot and nothing downstream reads it live.
type ClientConfiguration struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CustomerID uint `gorm:"not null;uniqueIndex:uk_client_configurations_customer_id" json:"customer_id"`
	BrandID    uint `gorm:"not null" json:"brand_id"`
	ProductID  uint `gorm:"not null" json:"product_id"`

	OrganizationName string `gorm:"size:255;not null" json:"organization_name"`
	BrandName        string `gorm:"size:255;not null" json:"brand_name"`
	ProductName      string `gorm:"size:255;not null" json:"product_name"`
	PersonaName      string `gorm:"size:255;not null" json:"persona_name"`
	AudienceName     string `gorm:"size:255;not null" json:"audience_name"`
	MarketName       string `gorm:"size:255;not null" json:"market_name"`

	OrganizationJSONLD json.RawMessage `gorm:"type:jsonb" json:"organization_jsonld,omitempty"`
	BrandJSONLD        json.RawMessage `gorm:"type:jsonb" json:"brand_jsonld,omitempty"`
	ProductJSONLD      json.RawMessage `gorm:"type:jsonb" json:"product_jsonld,omitempty"`
	PersonaJSONLD      json.RawMessage `gorm:"type:jsonb" json:"persona_jsonld,omitempty"`
	AudienceJSONLD     json.RawMessage `gorm:"type:jsonb" json:"audience_jsonld,omitempty"`
	MarketJSONLD       json.RawMessage `gorm:"type:jsonb" json:"market_jsonld,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (ClientConfiguration) TableName() string {
	return "client_configurations"
}

// BeforeCreate is called before creating a new record
func (c *ClientConfiguration) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ToSnapshot copies the current selection into an immutable snapshot
func (c *ClientConfiguration) ToSnapshot() ConfigSnapshot {
	return ConfigSnapshot{
		OrganizationName:   c.OrganizationName,
		BrandName:          c.BrandName,
		ProductName:        c.ProductName,
		PersonaName:        c.PersonaName,
		AudienceName:       c.AudienceName,
		MarketName:         c.MarketName,
		OrganizationJSONLD: cloneRawMessage(c.OrganizationJSONLD),
		BrandJSONLD:        cloneRawMessage(c.BrandJSONLD),
		ProductJSONLD:      cloneRawMessage(c.ProductJSONLD),
		PersonaJSONLD:      cloneRawMessage(c.PersonaJSONLD),
		AudienceJSONLD:     cloneRawMessage(c.AudienceJSONLD),
		MarketJSONLD:       cloneRawMessage(c.MarketJSONLD),
	}
}

// cloneRawMessage deep-copies a raw JSON blob so snapshot bytes cannot
// alias the live configuration row
func cloneRawMessage(src json.RawMessage) json.RawMessage {
	if src == nil {
		return nil
	}
	dst := make(json.RawMessage, len(src))
	copy(dst, src)
	return dst
}

// ClientConfigurationFilter represents filter criteria for configurations
type ClientConfigurationFilter struct {
	CustomerID *uint `json:"customer_id,omitempty"`
	BrandID    *uint `json:"brand_id,omitempty"`
	ProductID  *uint `json:"product_id,omitempty"`
}
