package models

import (
	"time"

	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// Discovery file types
const (
	DiscoveryFileTypeIndex  = "index"
	DiscoveryFileTypeJSONLD = "jsonld"
)

// DiscoveryFile is one cached discovery document keyed by a stable file
// path. Served verbatim while fresh, regenerated on miss, staleness, or
// explicit force refresh.
type DiscoveryFile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FilePath      string    `gorm:"size:512;not null;uniqueIndex:uk_discovery_files_file_path" json:"file_path"`
	EntityType    string    `gorm:"size:50;not null;index:idx_discovery_files_entity" json:"entity_type"`
	EntityID      uint      `gorm:"not null;index:idx_discovery_files_entity" json:"entity_id"`
	FileType      string    `gorm:"size:50;not null" json:"file_type"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ContentType   string    `gorm:"size:100;not null" json:"content_type"`
	LastGenerated time.Time `gorm:"not null" json:"last_generated"`
}

// TableName returns the table name for the model
func (DiscoveryFile) TableName() string {
	return "discovery_files"
}

// BeforeCreate is called before creating a new record
func (f *DiscoveryFile) BeforeCreate(tx *gorm.DB) error {
	if f.LastGenerated.IsZero() {
		f.LastGenerated = utils.UTCNow()
	}
	return nil
}

// IsFresh reports whether the cached content may be served verbatim
func (f *DiscoveryFile) IsFresh(now time.Time, freshness time.Duration) bool {
	return now.Sub(f.LastGenerated) < freshness
}

// DiscoveryFileFilter represents filter criteria for discovery files
type DiscoveryFileFilter struct {
	FilePath   *string `json:"file_path,omitempty"`
	EntityType *string `json:"entity_type,omitempty"`
	EntityID   *uint   `json:"entity_id,omitempty"`
	FileType   *string `json:"file_type,omitempty"`
}
