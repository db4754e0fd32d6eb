package dto

import "time"

// DiscoveryFileDTO describes one regenerated discovery file, including
// the timestamp the refresh produced
type DiscoveryFileDTO struct {
	FilePath      string    `json:"file_path" example:"/discovery/organization/4/jsonld"`
	EntityType    string    `json:"entity_type" example:"organization"`
	EntityID      uint      `json:"entity_id" example:"4"`
	FileType      string    `json:"file_type" example:"jsonld"`
	Content       string    `json:"content"`
	ContentType   string    `json:"content_type" example:"application/ld+json"`
	LastGenerated time.Time `json:"last_generated"`
}

// RefreshDiscoveryFileResponse wraps a force-regenerated discovery file
type RefreshDiscoveryFileResponse struct {
	File DiscoveryFileDTO `json:"file"`
}
