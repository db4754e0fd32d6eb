package dto

import "time"

// GenerateSchedulesRequest represents the request to fan an invoice out into schedules
type GenerateSchedulesRequest struct {
	InvoiceUUID string `json:"invoice_uuid" validate:"required,uuid4" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ScheduleDTO represents one planned batch dispatch
type ScheduleDTO struct {
	ID                uint      `json:"id" example:"7"`
	InvoiceID         uint      `json:"invoice_id" example:"3"`
	BatchID           string    `json:"batch_id" example:"0b9cf2a1-5a7e-4a41-9be1-2f6b9a1a77aa"`
	BatchClusterID    string    `json:"batch_cluster_id" example:"7f3c1d40-02c6-4f0f-8f4e-6f2f0a4f21bb"`
	DispatchDate      time.Time `json:"dispatch_date"`
	FAQPairsPerBatch  int       `json:"faq_pairs_per_batch" example:"5"`
	TotalFAQPairs     int       `json:"total_faq_pairs" example:"20"`
	SentForProcessing bool      `json:"sent_for_processing" example:"false"`
}

// GenerateSchedulesResponse represents the schedules spawned from one invoice
type GenerateSchedulesResponse struct {
	InvoiceUUID    string        `json:"invoice_uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	BatchClusterID string        `json:"batch_cluster_id" example:"7f3c1d40-02c6-4f0f-8f4e-6f2f0a4f21bb"`
	Schedules      []ScheduleDTO `json:"schedules"`
}

// ProcessSchedulesRequest represents the request to merge configuration onto pending schedules
type ProcessSchedulesRequest struct {
	ScheduleIDs []uint `json:"schedule_ids" validate:"omitempty,min=1" example:"7,8"`
}

// FAQConstructDTO represents one generation unit of work
type FAQConstructDTO struct {
	ID             uint      `json:"id" example:"11"`
	BatchID        string    `json:"batch_id" example:"0b9cf2a1-5a7e-4a41-9be1-2f6b9a1a77aa"`
	BatchClusterID string    `json:"batch_cluster_id" example:"7f3c1d40-02c6-4f0f-8f4e-6f2f0a4f21bb"`
	DispatchDate   time.Time `json:"dispatch_date"`
	PairCount      int       `json:"pair_count" example:"5"`
	Status         string    `json:"status" example:"pending"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
}

// ProcessSchedulesResponse summarizes one merger run
type ProcessSchedulesResponse struct {
	Claimed    int64             `json:"claimed" example:"4"`
	Constructs []FAQConstructDTO `json:"constructs"`
}

// BatchDTO represents an assembled FAQ batch
type BatchDTO struct {
	BatchID          string    `json:"batch_id" example:"0b9cf2a1-5a7e-4a41-9be1-2f6b9a1a77aa"`
	BatchClusterID   string    `json:"batch_cluster_id" example:"7f3c1d40-02c6-4f0f-8f4e-6f2f0a4f21bb"`
	OrganizationName string    `json:"organization_name" example:"Acme Corp"`
	BrandName        string    `json:"brand_name" example:"Acme Cloud"`
	ProductName      string    `json:"product_name" example:"Acme Cloud Backup"`
	AudienceName     string    `json:"audience_name" example:"IT managers"`
	Status           string    `json:"status" example:"generated"`
	PairCount        int       `json:"pair_count" example:"5"`
	CreatedAt        time.Time `json:"created_at"`
}

// AssembleBatchResponse represents the batch produced by assembly
type AssembleBatchResponse struct {
	Batch BatchDTO `json:"batch"`
}

// PublishBatchResponse represents the publication result
type PublishBatchResponse struct {
	BatchID string `json:"batch_id" example:"0b9cf2a1-5a7e-4a41-9be1-2f6b9a1a77aa"`
	Status  string `json:"status" example:"published"`
}

// ListBatchesResponse represents a customer's published batches
type ListBatchesResponse struct {
	Batches []BatchDTO `json:"batches"`
}
