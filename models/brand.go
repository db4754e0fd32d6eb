package models

import (
	"encoding/json"
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand belongs to an organization and owns products
type Brand struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_brands_uuid" json:"uuid"`
	OrganizationID uint            `gorm:"not null;index:idx_brands_organization_id" json:"organization_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	URL            *string         `gorm:"size:512" json:"url,omitempty"`
	JSONLD         json.RawMessage `gorm:"type:jsonb" json:"jsonld,omitempty"`
	CreatedAt      time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
	Products     []Product     `gorm:"foreignKey:BrandID" json:"products,omitempty"`
}

// TableName returns the table name for the model
func (Brand) TableName() string {
	return "brands"
}

// BeforeCreate is called before creating a new record
func (b *Brand) BeforeCreate(tx *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BrandFilter represents filter criteria for brands
type BrandFilter struct {
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	OrganizationID *uint      `json:"organization_id,omitempty"`
	Name           *string    `json:"name,omitempty"`
}
