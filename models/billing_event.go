package models

import (
	"encoding/json"
	"time"

	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// Billing event types delivered by the payment provider.
// Types outside this set are stored but never materialized.
const (
	BillingEventInvoicePaid       = "invoice.paid"
	BillingEventCheckoutCompleted = "checkout.session.completed"
)

// BillingEvent is the immutable record of one payment-provider webhook delivery
type BillingEvent struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   string          `gorm:"size:255;not null;uniqueIndex:uk_billing_events_event_id" json:"event_id"`
	EventType string          `gorm:"size:100;not null;index:idx_billing_events_event_type" json:"event_type"`
	Payload   json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	Processed bool            `gorm:"not null;default:false;index:idx_billing_events_processed" json:"processed"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (BillingEvent) TableName() string {
	return "billing_events"
}

// BeforeCreate is called before creating a new record
func (e *BillingEvent) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsMaterializable reports whether the event type produces an invoice
func (e *BillingEvent) IsMaterializable() bool {
	return e.EventType == BillingEventInvoicePaid || e.EventType == BillingEventCheckoutCompleted
}

// BillingEventFilter represents filter criteria for billing events
type BillingEventFilter struct {
	EventID       *string    `json:"event_id,omitempty"`
	EventType     *string    `json:"event_type,omitempty"`
	Processed     *bool      `json:"processed,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
