package models

import (
	"encoding/json"
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product belongs to a brand; published FAQ batches reference it by name
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_products_uuid" json:"uuid"`
	BrandID   uint            `gorm:"not null;index:idx_products_brand_id" json:"brand_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	URL       *string         `gorm:"size:512" json:"url,omitempty"`
	JSONLD    json.RawMessage `gorm:"type:jsonb" json:"jsonld,omitempty"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Brand *Brand `gorm:"foreignKey:BrandID;references:ID" json:"brand,omitempty"`
}

// TableName returns the table name for the model
func (Product) TableName() string {
	return "products"
}

// BeforeCreate is called before creating a new record
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ProductFilter represents filter criteria for products
type ProductFilter struct {
	UUID    *uuid.UUID `json:"uuid,omitempty"`
	BrandID *uint      `json:"brand_id,omitempty"`
	Name    *string    `json:"name,omitempty"`
}
