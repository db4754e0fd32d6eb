package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnswerStatus represents the answer-generation state of a question
type AnswerStatus string

const (
	AnswerStatusPending   AnswerStatus = "pending"
	AnswerStatusCompleted AnswerStatus = "completed"
)

// Valid checks if the status is valid
func (s AnswerStatus) Valid() bool {
	return s == AnswerStatusPending || s == AnswerStatusCompleted
}

// Scan implements the sql.Scanner interface for AnswerStatus
func (s *AnswerStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AnswerStatus(v)
	case []byte:
		*s = AnswerStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AnswerStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AnswerStatus
func (s AnswerStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AnswerStatus: %s", s)
	}
	return string(s), nil
}

// ReviewStatus represents the human-review state of a question
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusEdited   ReviewStatus = "edited"
)

// Valid checks if the status is valid
func (s ReviewStatus) Valid() bool {
	return s == ReviewStatusPending || s == ReviewStatusApproved || s == ReviewStatusEdited
}

// Scan implements the sql.Scanner interface for ReviewStatus
func (s *ReviewStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ReviewStatus(v)
	case []byte:
		*s = ReviewStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ReviewStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ReviewStatus
func (s ReviewStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ReviewStatus: %s", s)
	}
	return string(s), nil
}

// Question is one reviewable FAQ question split out of a construct's
// raw completion response
type Question struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	ConstructID  uint         `gorm:"not null;index:idx_questions_construct_id" json:"construct_id"`
	BatchID      uuid.UUID    `gorm:"type:uuid;not null;index:idx_questions_batch_id" json:"batch_id"`
	QuestionText string       `gorm:"type:text;not null" json:"question_text"`
	AnswerText   *string      `gorm:"type:text" json:"answer_text,omitempty"`
	Topic        *string      `gorm:"size:255" json:"topic,omitempty"`
	AnswerStatus AnswerStatus `gorm:"type:answer_status;not null;default:'pending';index:idx_questions_answer_status" json:"answer_status"`
	ReviewStatus ReviewStatus `gorm:"type:review_status;not null;default:'pending';index:idx_questions_review_status" json:"review_status"`
	ErrorMessage *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time    `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`

	// Relations
	Construct *FAQConstruct `gorm:"foreignKey:ConstructID;references:ID" json:"construct,omitempty"`
}

// TableName returns the table name for the model
func (Question) TableName() string {
	return "questions"
}

// BeforeCreate is called before creating a new record
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.AnswerStatus == "" {
		q.AnswerStatus = AnswerStatusPending
	}
	if q.ReviewStatus == "" {
		q.ReviewStatus = ReviewStatusPending
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (q *Question) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	q.UpdatedAt = &now
	return nil
}

// IsAnswered reports whether an answer has been generated and stored
func (q *Question) IsAnswered() bool {
	return q.AnswerStatus == AnswerStatusCompleted && q.AnswerText != nil
}

// QuestionFilter represents filter criteria for questions
type QuestionFilter struct {
	ConstructID  *uint         `json:"construct_id,omitempty"`
	BatchID      *uuid.UUID    `json:"batch_id,omitempty"`
	AnswerStatus *AnswerStatus `json:"answer_status,omitempty"`
	ReviewStatus *ReviewStatus `json:"review_status,omitempty"`
}
