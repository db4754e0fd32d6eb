package dto

import "time"

// Materialization outcomes per scanned billing event
const (
	EventOutcomeCreated   = "created"
	EventOutcomeDuplicate = "duplicate"
	EventOutcomeSkipped   = "skipped"
	EventOutcomeFailed    = "failed"
)

// WebhookAckResponse acknowledges a recorded billing webhook delivery
type WebhookAckResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id" example:"evt_1PqX8y2eZvKYlo2C"`
	Duplicate bool   `json:"duplicate" example:"false"`
}

// MaterializeInvoicesRequest represents the request to materialize unprocessed billing events
type MaterializeInvoicesRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=500" example:"100"`
}

// EventResultDTO reports the materialization outcome of one billing event
type EventResultDTO struct {
	EventID     string `json:"event_id" example:"evt_1PqX8y2eZvKYlo2C"`
	EventType   string `json:"event_type" example:"invoice.paid"`
	Outcome     string `json:"outcome" example:"created"`
	InvoiceUUID string `json:"invoice_uuid,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Error       string `json:"error,omitempty"`
}

// MaterializeInvoicesResponse summarizes one materializer run
type MaterializeInvoicesResponse struct {
	Scanned    int              `json:"scanned" example:"12"`
	Created    int              `json:"created" example:"9"`
	Duplicates int              `json:"duplicates" example:"1"`
	Skipped    int              `json:"skipped" example:"1"`
	Failed     int              `json:"failed" example:"1"`
	Results    []EventResultDTO `json:"results"`
}

// InvoiceDTO represents an invoice in API responses
type InvoiceDTO struct {
	UUID               string    `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ProviderInvoiceID  string    `json:"provider_invoice_id" example:"in_1PqX8y2eZvKYlo2C"`
	CustomerEmail      string    `json:"customer_email" example:"owner@acme.example"`
	AmountPaid         int64     `json:"amount_paid" example:"49900"`
	PackageTier        string    `json:"package_tier" example:"growth"`
	FAQPairsPerMonth   int       `json:"faq_pairs_per_month" example:"20"`
	FAQPerBatch        int       `json:"faq_per_batch" example:"5"`
	BillingPeriodStart time.Time `json:"billing_period_start"`
	BillingPeriodEnd   time.Time `json:"billing_period_end"`
	PaidAt             time.Time `json:"paid_at"`
	SentToSchedule     bool      `json:"sent_to_schedule" example:"false"`
}

// ListInvoicesRequest represents pagination for invoice listing
type ListInvoicesRequest struct {
	Page     int `json:"page" validate:"omitempty,min=1" example:"1"`
	PageSize int `json:"page_size" validate:"omitempty,min=1,max=100" example:"20"`
}

// ListInvoicesResponse represents a page of invoices
type ListInvoicesResponse struct {
	Invoices []InvoiceDTO `json:"invoices"`
	Total    int64        `json:"total" example:"42"`
}
