package models

import (
	"time"

	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is one billing period's paid entitlement for a customer
type Invoice struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UUID               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_invoices_uuid" json:"uuid"`
	CustomerID         uint      `gorm:"not null;index:idx_invoices_customer_id" json:"customer_id"`
	ProviderInvoiceID  string    `gorm:"size:255;not null;index:idx_invoices_provider_invoice_id" json:"provider_invoice_id"`
	CustomerEmail      string    `gorm:"size:255;not null" json:"customer_email"`
	AmountPaid         int64     `gorm:"not null" json:"amount_paid"`
	PackageTier        string    `gorm:"size:100;not null;default:'starter'" json:"package_tier"`
	FAQPairsPerMonth   int       `gorm:"not null;default:20" json:"faq_pairs_per_month"`
	FAQPerBatch        int       `gorm:"not null;default:5" json:"faq_per_batch"`
	BillingPeriodStart time.Time `gorm:"not null" json:"billing_period_start"`
	BillingPeriodEnd   time.Time `gorm:"not null" json:"billing_period_end"`
	PaidAt             time.Time `gorm:"not null" json:"paid_at"`
	SentToSchedule     bool      `gorm:"not null;default:false;index:idx_invoices_sent_to_schedule" json:"sent_to_schedule"`
	CreatedAt          time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
}

// TableName returns the table name for the model
func (Invoice) TableName() string {
	return "invoices"
}

// BeforeCreate is called before creating a new record
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.UUID == uuid.Nil {
		i.UUID = uuid.New()
	}
	if i.FAQPairsPerMonth == 0 {
		i.FAQPairsPerMonth = utils.DefaultFAQPairsPerMonth
	}
	if i.FAQPerBatch == 0 {
		i.FAQPerBatch = utils.DefaultFAQPerBatch
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	return nil
}

// PeriodDays returns the floored number of days in the billing period
func (i *Invoice) PeriodDays() int {
	return utils.DaysBetween(i.BillingPeriodStart, i.BillingPeriodEnd)
}

// InvoiceFilter represents filter criteria for invoices
type InvoiceFilter struct {
	UUID              *uuid.UUID `json:"uuid,omitempty"`
	CustomerID        *uint      `json:"customer_id,omitempty"`
	ProviderInvoiceID *string    `json:"provider_invoice_id,omitempty"`
	SentToSchedule    *bool      `json:"sent_to_schedule,omitempty"`
	PaidAfter         *time.Time `json:"paid_after,omitempty"`
	PaidBefore        *time.Time `json:"paid_before,omitempty"`
}
