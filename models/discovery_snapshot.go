package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SnapshotOwnerType identifies which entity level an enriched snapshot covers
type SnapshotOwnerType string

const (
	SnapshotOwnerOrganization SnapshotOwnerType = "organization"
	SnapshotOwnerBrand        SnapshotOwnerType = "brand"
)

// Valid checks if the owner type is valid
func (t SnapshotOwnerType) Valid() bool {
	return t == SnapshotOwnerOrganization || t == SnapshotOwnerBrand
}

// Scan implements the sql.Scanner interface for SnapshotOwnerType
func (t *SnapshotOwnerType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = SnapshotOwnerType(v)
	case []byte:
		*t = SnapshotOwnerType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SnapshotOwnerType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SnapshotOwnerType
func (t SnapshotOwnerType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid SnapshotOwnerType: %s", t)
	}
	return string(t), nil
}

// DiscoverySnapshot is the cached enriched linked-data aggregate for an
// organization or brand. Rebuilt wholesale on every enrichment run; its
// content is a pure function of the child rows at rebuild time.
type DiscoverySnapshot struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	OwnerType    SnapshotOwnerType `gorm:"type:snapshot_owner_type;not null;uniqueIndex:uk_discovery_snapshots_owner,priority:1" json:"owner_type"`
	OwnerID      uint              `gorm:"not null;uniqueIndex:uk_discovery_snapshots_owner,priority:2" json:"owner_id"`
	Document     json.RawMessage   `gorm:"type:jsonb;not null" json:"document"`
	ChildNames   pq.StringArray    `gorm:"type:text[]" json:"child_names,omitempty"`
	BrandCount   int               `gorm:"not null;default:0" json:"brand_count"`
	ProductCount int               `gorm:"not null;default:0" json:"product_count"`
	FAQCount     int               `gorm:"not null;default:0" json:"faq_count"`
	EnrichedAt   time.Time         `gorm:"not null" json:"enriched_at"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (DiscoverySnapshot) TableName() string {
	return "discovery_snapshots"
}

// BeforeCreate is called before creating a new record
func (s *DiscoverySnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.EnrichedAt.IsZero() {
		s.EnrichedAt = utils.UTCNow()
	}
	return nil
}

// DiscoverySnapshotFilter represents filter criteria for snapshots
type DiscoverySnapshotFilter struct {
	OwnerType     *SnapshotOwnerType `json:"owner_type,omitempty"`
	OwnerID       *uint              `json:"owner_id,omitempty"`
	EnrichedAfter *time.Time         `json:"enriched_after,omitempty"`
}
