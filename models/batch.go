package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchStatus represents the publication state of an assembled batch
type BatchStatus string

const (
	BatchStatusGenerated BatchStatus = "generated"
	BatchStatusPublished BatchStatus = "published"
)

// Valid checks if the status is valid
func (s BatchStatus) Valid() bool {
	return s == BatchStatusGenerated || s == BatchStatusPublished
}

// Scan implements the sql.Scanner interface for BatchStatus
func (s *BatchStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = BatchStatus(v)
	case []byte:
		*s = BatchStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into BatchStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for BatchStatus
func (s BatchStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid BatchStatus: %s", s)
	}
	return string(s), nil
}

// FAQPair is one question-answer triple in an assembled batch document
type FAQPair struct {
	Topic    string `json:"topic,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQPairsDocument is the assembled, client-facing FAQ document with
// embedded linked data. Content is a pure function of the underlying
// questions and snapshot, so reassembly is deterministic.
type FAQPairsDocument struct {
	Context      string          `json:"@context"`
	Type         string          `json:"@type"`
	BatchID      string          `json:"batchID"`
	Pairs        []FAQPair       `json:"faqPairs"`
	Organization json.RawMessage `json:"organization,omitempty"`
	Product      json.RawMessage `json:"product,omitempty"`
	Persona      json.RawMessage `json:"persona,omitempty"`
}

// Value implements the driver.Valuer interface for FAQPairsDocument
func (d FAQPairsDocument) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for FAQPairsDocument
func (d *FAQPairsDocument) Scan(value any) error {
	if value == nil {
		*d = FAQPairsDocument{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into FAQPairsDocument", value)
	}

	return json.Unmarshal(bytes, d)
}

// Batch is the terminal published artifact for one dispatch, upserted
// by batch id so reassembly never duplicates rows
type Batch struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	CustomerID       uint             `gorm:"not null;index:idx_batches_customer_id" json:"customer_id"`
	BatchID          uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_batches_batch_id" json:"batch_id"`
	BatchClusterID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_batches_batch_cluster_id" json:"batch_cluster_id"`
	OrganizationName string           `gorm:"size:255;not null" json:"organization_name"`
	BrandName        string           `gorm:"size:255;not null" json:"brand_name"`
	ProductName      string           `gorm:"size:255;not null" json:"product_name"`
	AudienceName     string           `gorm:"size:255" json:"audience_name"`
	Document         FAQPairsDocument `gorm:"type:jsonb;not null" json:"document"`
	Status           BatchStatus      `gorm:"type:batch_status;not null;default:'generated';index:idx_batches_status" json:"status"`
	CreatedAt        time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt        *time.Time       `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (Batch) TableName() string {
	return "faq_batches"
}

// BeforeCreate is called before creating a new record
func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BatchStatusGenerated
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BatchFilter represents filter criteria for published batches
type BatchFilter struct {
	CustomerID     *uint        `json:"customer_id,omitempty"`
	BatchID        *uuid.UUID   `json:"batch_id,omitempty"`
	BatchClusterID *uuid.UUID   `json:"batch_cluster_id,omitempty"`
	Status         *BatchStatus `json:"status,omitempty"`
	ProductName    *string      `json:"product_name,omitempty"`
	CreatedAfter   *time.Time   `json:"created_after,omitempty"`
	CreatedBefore  *time.Time   `json:"created_before,omitempty"`
}
