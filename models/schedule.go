package models

import (
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Schedule is one planned batch dispatch spawned from a paid invoice.
// A cluster groups the dispatches generated together from one invoice.
type Schedule struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CustomerID        uint      `gorm:"not null;index:idx_schedules_customer_id" json:"customer_id"`
	OrganizationID    uint      `gorm:"not null;index:idx_schedules_organization_id" json:"organization_id"`
	InvoiceID         uint      `gorm:"not null;index:idx_schedules_invoice_id" json:"invoice_id"`
	BatchClusterID    uuid.UUID `gorm:"type:uuid;not null;index:idx_schedules_batch_cluster_id" json:"batch_cluster_id"`
	BatchID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_schedules_batch_id" json:"batch_id"`
	DispatchDate      time.Time `gorm:"not null;index:idx_schedules_dispatch_date" json:"dispatch_date"`
	FAQPairsPerBatch  int       `gorm:"not null" json:"faq_pairs_per_batch"`
	TotalFAQPairs     int       `gorm:"not null" json:"total_faq_pairs"`
	SentForProcessing bool      `gorm:"not null;default:false;index:idx_schedules_sent_for_processing" json:"sent_for_processing"`
	CreatedAt         time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (Schedule) TableName() string {
	return "schedules"
}

// BeforeCreate is called before creating a new record
func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.BatchID == uuid.Nil {
		s.BatchID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ScheduleFilter represents filter criteria for schedules
type ScheduleFilter struct {
	CustomerID        *uint      `json:"customer_id,omitempty"`
	OrganizationID    *uint      `json:"organization_id,omitempty"`
	InvoiceID         *uint      `json:"invoice_id,omitempty"`
	BatchClusterID    *uuid.UUID `json:"batch_cluster_id,omitempty"`
	BatchID           *uuid.UUID `json:"batch_id,omitempty"`
	SentForProcessing *bool      `json:"sent_for_processing,omitempty"`
	DispatchAfter     *time.Time `json:"dispatch_after,omitempty"`
	DispatchBefore    *time.Time `json:"dispatch_before,omitempty"`
}
