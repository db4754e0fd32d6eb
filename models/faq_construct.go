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

// GenerationStatus represents the question-generation state of a construct
type GenerationStatus string

const (
	GenerationStatusPending             GenerationStatus = "pending"
	GenerationStatusGeneratingQuestions GenerationStatus = "generating_questions"
	GenerationStatusQuestionsGenerated  GenerationStatus = "questions_generated"
	GenerationStatusFailed              GenerationStatus = "failed"
)

// String returns the string representation of the status
func (s GenerationStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s GenerationStatus) Valid() bool {
	switch s {
	case GenerationStatusPending, GenerationStatusGeneratingQuestions,
		GenerationStatusQuestionsGenerated, GenerationStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for GenerationStatus
func (s *GenerationStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = GenerationStatus(v)
	case []byte:
		*s = GenerationStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into GenerationStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for GenerationStatus
func (s GenerationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid GenerationStatus: %s", s)
	}
	return string(s), nil
}

// ConfigSnapshot holds the configuration copied onto a construct at merge
// time. The snapshot is immune to later edits of the client configuration.
type ConfigSnapshot struct {
	OrganizationName string `json:"organization_name"`
	BrandName        string `json:"brand_name"`
	ProductName      string `json:"product_name"`
	PersonaName      string `json:"persona_name"`
	AudienceName     string `json:"audience_name"`
	MarketName       string `json:"market_name"`

	OrganizationJSONLD json.RawMessage `json:"organization_jsonld,omitempty"`
	BrandJSONLD        json.RawMessage `json:"brand_jsonld,omitempty"`
	ProductJSONLD      json.RawMessage `json:"product_jsonld,omitempty"`
	PersonaJSONLD      json.RawMessage `json:"persona_jsonld,omitempty"`
	AudienceJSONLD     json.RawMessage `json:"audience_jsonld,omitempty"`
	MarketJSONLD       json.RawMessage `json:"market_jsonld,omitempty"`
}

// Value implements the driver.Valuer interface for ConfigSnapshot
func (s ConfigSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface for ConfigSnapshot
func (s *ConfigSnapshot) Scan(value any) error {
	if value == nil {
		*s = ConfigSnapshot{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConfigSnapshot", value)
	}

	return json.Unmarshal(bytes, s)
}

// FAQConstruct is one unit of work driving question and answer generation
// for a single scheduled batch. Terminal on questions_generated or failed;
// rows are never deleted.
type FAQConstruct struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	CustomerID     uint             `gorm:"not null;index:idx_faq_constructs_customer_id" json:"customer_id"`
	BatchID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_faq_constructs_batch_id" json:"batch_id"`
	BatchClusterID uuid.UUID        `gorm:"type:uuid;not null;index:idx_faq_constructs_batch_cluster_id" json:"batch_cluster_id"`
	DispatchDate   time.Time        `gorm:"not null" json:"dispatch_date"`
	PairCount      int              `gorm:"not null" json:"pair_count"`
	Snapshot       ConfigSnapshot   `gorm:"type:jsonb;not null" json:"snapshot"`
	Status         GenerationStatus `gorm:"type:generation_status;not null;default:'pending';index:idx_faq_constructs_status" json:"status"`
	AIRequest      *string          `gorm:"type:text" json:"ai_request,omitempty"`
	AIResponse     *string          `gorm:"type:text" json:"ai_response,omitempty"`
	ErrorMessage   *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time        `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt      *time.Time       `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (FAQConstruct) TableName() string {
	return "faq_constructs"
}

// BeforeCreate is called before creating a new record
func (c *FAQConstruct) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = GenerationStatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *FAQConstruct) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// CanTransitionTo checks if the construct can transition to the given status
func (c *FAQConstruct) CanTransitionTo(newStatus GenerationStatus) bool {
	switch c.Status {
	case GenerationStatusPending:
		return newStatus == GenerationStatusGeneratingQuestions ||
			newStatus == GenerationStatusFailed
	case GenerationStatusGeneratingQuestions:
		return newStatus == GenerationStatusQuestionsGenerated ||
			newStatus == GenerationStatusFailed
	default:
		return false
	}
}

// IsTerminal reports whether the construct reached a terminal state
func (c *FAQConstruct) IsTerminal() bool {
	return c.Status == GenerationStatusQuestionsGenerated ||
		c.Status == GenerationStatusFailed
}

// FAQConstructFilter represents filter criteria for constructs
type FAQConstructFilter struct {
	CustomerID     *uint             `json:"customer_id,omitempty"`
	BatchID        *uuid.UUID        `json:"batch_id,omitempty"`
	BatchClusterID *uuid.UUID        `json:"batch_cluster_id,omitempty"`
	Status         *GenerationStatus `json:"status,omitempty"`
	HasAIResponse  *bool             `json:"has_ai_response,omitempty"`
	CreatedAfter   *time.Time        `json:"created_after,omitempty"`
	CreatedBefore  *time.Time        `json:"created_before,omitempty"`
}
