package dto

import (
	"encoding/json"
	"time"
)

// SnapshotDTO represents an enriched discovery snapshot
type SnapshotDTO struct {
	OwnerType    string          `json:"owner_type" example:"organization"`
	OwnerID      uint            `json:"owner_id" example:"4"`
	ChildNames   []string        `json:"child_names,omitempty" example:"Acme Cloud,Acme Labs"`
	BrandCount   int             `json:"brand_count" example:"2"`
	ProductCount int             `json:"product_count" example:"5"`
	FAQCount     int             `json:"faq_count" example:"40"`
	EnrichedAt   time.Time       `json:"enriched_at"`
	Document     json.RawMessage `json:"document,omitempty"`
}

// OrganizationEnrichmentResponse represents the result of an organization-level enrichment run
type OrganizationEnrichmentResponse struct {
	Snapshot SnapshotDTO `json:"snapshot"`
}

// BrandEnrichmentResponse represents the result of a brand-level enrichment run
type BrandEnrichmentResponse struct {
	Snapshot SnapshotDTO `json:"snapshot"`
}
