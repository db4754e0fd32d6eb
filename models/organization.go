package models

import (
	"encoding/json"
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the top-level onboarded entity owning brands and products
type Organization struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UUID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_organizations_uuid" json:"uuid"`
	CustomerID uint            `gorm:"not null;index:idx_organizations_customer_id" json:"customer_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	URL        *string         `gorm:"size:512" json:"url,omitempty"`
	Industry   *string         `gorm:"size:255" json:"industry,omitempty"`
	JSONLD     json.RawMessage `gorm:"type:jsonb" json:"jsonld,omitempty"`
	CreatedAt  time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Brands []Brand `gorm:"foreignKey:OrganizationID" json:"brands,omitempty"`
}

// TableName returns the table name for the model
func (Organization) TableName() string {
	return "organizations"
}

// BeforeCreate is called before creating a new record
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = utils.UTCNow()
	}
	return nil
}

// OrganizationFilter represents filter criteria for organizations
type OrganizationFilter struct {
	UUID       *uuid.UUID `json:"uuid,omitempty"`
	CustomerID *uint      `json:"customer_id,omitempty"`
	Name       *string    `json:"name,omitempty"`
}
