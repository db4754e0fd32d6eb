// Package businessflow contains the core business logic and use cases for billing workflows
package businessflow

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/config"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// BillingFlow handles webhook ingestion and invoice materialization
type BillingFlow interface {
	IngestWebhook(ctx context.Context, signatureHeader string, body []byte, metadata *ClientMetadata) (*dto.WebhookAckResponse, error)
	MaterializeInvoices(ctx context.Context, req *dto.MaterializeInvoicesRequest, metadata *ClientMetadata) (*dto.MaterializeInvoicesResponse, error)
	ListInvoices(ctx context.Context, customerID uint, req *dto.ListInvoicesRequest, metadata *ClientMetadata) (*dto.ListInvoicesResponse, error)
}

// BillingFlowImpl implements the billing business flow
type BillingFlowImpl struct {
	billingEventRepo repository.BillingEventRepository
	invoiceRepo      repository.InvoiceRepository
	customerRepo     repository.CustomerRepository
	db               *gorm.DB

	billingCfg config.BillingConfig
}

// NewBillingFlow creates a new billing flow instance
func NewBillingFlow(
	billingEventRepo repository.BillingEventRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	db *gorm.DB,
	billingCfg config.BillingConfig,
) BillingFlow {
	return &BillingFlowImpl{
		billingEventRepo: billingEventRepo,
		invoiceRepo:      invoiceRepo,
		customerRepo:     customerRepo,
		db:               db,
		billingCfg:       billingCfg,
	}
}

// webhookEnvelope is the provider's outer event shape
type webhookEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// billingObject is the payload object carried by materializable events
type billingObject struct {
	ID              string            `json:"id"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	AmountPaid  int64             `json:"amount_paid"`
	AmountTotal int64             `json:"amount_total"`
	PeriodStart int64             `json:"period_start"`
	PeriodEnd   int64             `json:"period_end"`
	Metadata    map[string]string `json:"metadata"`
}

func (o *billingObject) email() string {
	if o.CustomerEmail != "" {
		return o.CustomerEmail
	}
	return o.CustomerDetails.Email
}

// VerifyWebhookSignature checks a "t=<unix>,v1=<hex>" header against the
// HMAC-SHA256 of "<t>.<raw body>" under the shared secret. The timestamp
// must fall inside the tolerance window in either direction.
func VerifyWebhookSignature(header string, body []byte, secret string, now time.Time, tolerance time.Duration) error {
	var timestampPart, signaturePart string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			timestampPart = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			signaturePart = strings.TrimPrefix(part, "v1=")
		}
	}
	if timestampPart == "" || signaturePart == "" {
		return ErrWebhookSignatureInvalid
	}

	timestamp, err := strconv.ParseInt(timestampPart, 10, 64)
	if err != nil {
		return ErrWebhookSignatureInvalid
	}
	delta := now.Sub(time.Unix(timestamp, 0).UTC())
	if delta > tolerance || delta < -tolerance {
		return ErrWebhookTimestampExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestampPart))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signaturePart)) {
		return ErrWebhookSignatureInvalid
	}

	return nil
}

// IngestWebhook verifies and records one provider delivery. Replays of a
// known event id are acknowledged without a second row.
func (b *BillingFlowImpl) IngestWebhook(ctx context.Context, signatureHeader string, body []byte, metadata *ClientMetadata) (*dto.WebhookAckResponse, error) {
	if err := VerifyWebhookSignature(signatureHeader, body, b.billingCfg.WebhookSecret, utils.UTCNow(), b.billingCfg.TimestampTolerance); err != nil {
		return nil, NewBusinessError("WEBHOOK_REJECTED", "Webhook rejected", err)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewBusinessError("WEBHOOK_REJECTED", "Webhook rejected", ErrWebhookPayloadInvalid)
	}
	if envelope.ID == "" || envelope.Type == "" {
		return nil, NewBusinessError("WEBHOOK_REJECTED", "Webhook rejected", ErrWebhookPayloadInvalid)
	}

	existing, err := b.billingEventRepo.ByEventID(ctx, envelope.ID)
	if err != nil {
		return nil, NewBusinessError("WEBHOOK_FAILED", "Failed to record webhook", err)
	}
	if existing != nil {
		return &dto.WebhookAckResponse{Received: true, EventID: envelope.ID, Duplicate: true}, nil
	}

	event := &models.BillingEvent{
		EventID:   envelope.ID,
		EventType: envelope.Type,
		Payload:   json.RawMessage(body),
	}
	if err := b.billingEventRepo.Save(ctx, event); err != nil {
		return nil, NewBusinessError("WEBHOOK_FAILED", "Failed to record webhook", err)
	}

	return &dto.WebhookAckResponse{Received: true, EventID: envelope.ID}, nil
}

// MaterializeInvoices scans unprocessed events and creates invoices for
// the paid ones. Per-event failures go into the result array and never
// abort the scan.
func (b *BillingFlowImpl) MaterializeInvoices(ctx context.Context, req *dto.MaterializeInvoicesRequest, metadata *ClientMetadata) (*dto.MaterializeInvoicesResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}

	events, err := b.billingEventRepo.ListUnprocessed(ctx, limit)
	if err != nil {
		return nil, NewBusinessError("MATERIALIZE_FAILED", "Failed to list unprocessed events", err)
	}

	resp := &dto.MaterializeInvoicesResponse{Scanned: len(events), Results: make([]dto.EventResultDTO, 0, len(events))}
	for _, event := range events {
		result := b.materializeEvent(ctx, event)
		switch result.Outcome {
		case dto.EventOutcomeCreated:
			resp.Created++
		case dto.EventOutcomeDuplicate:
			resp.Duplicates++
		case dto.EventOutcomeSkipped:
			resp.Skipped++
		default:
			resp.Failed++
		}
		resp.Results = append(resp.Results, result)
	}

	return resp, nil
}

// materializeEvent handles one event. Skipped events keep processed=false
// so a later release handling their type can still pick them up.
func (b *BillingFlowImpl) materializeEvent(ctx context.Context, event *models.BillingEvent) dto.EventResultDTO {
	result := dto.EventResultDTO{EventID: event.EventID, EventType: event.EventType}

	if !event.IsMaterializable() {
		result.Outcome = dto.EventOutcomeSkipped
		return result
	}

	invoice, err := b.buildInvoice(ctx, event)
	if err != nil {
		result.Outcome = dto.EventOutcomeFailed
		result.Error = err.Error()
		return result
	}

	duplicate := false
	err = repository.WithTransaction(ctx, b.db, func(txCtx context.Context) error {
		existing, err := b.invoiceRepo.ByProviderInvoiceID(txCtx, invoice.ProviderInvoiceID)
		if err != nil {
			return err
		}
		if existing != nil {
			// Returning an error here would roll back the processed flag
			// and the event would be rescanned forever, so the duplicate
			// branch must commit.
			duplicate = true
			invoice = existing
			_, err := b.billingEventRepo.MarkProcessed(txCtx, event.ID)
			return err
		}

		if err := b.invoiceRepo.Save(txCtx, invoice); err != nil {
			return err
		}

		claimed, err := b.billingEventRepo.MarkProcessed(txCtx, event.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrEventAlreadyProcessed
		}

		return nil
	})

	switch {
	case err == nil && duplicate:
		result.Outcome = dto.EventOutcomeDuplicate
		result.InvoiceUUID = invoice.UUID.String()
	case err == nil:
		result.Outcome = dto.EventOutcomeCreated
		result.InvoiceUUID = invoice.UUID.String()
	case IsEventAlreadyProcessed(err):
		result.Outcome = dto.EventOutcomeDuplicate
		result.InvoiceUUID = invoice.UUID.String()
	default:
		result.Outcome = dto.EventOutcomeFailed
		result.Error = err.Error()
	}

	return result
}

// buildInvoice maps one materializable event to an unsaved invoice row
func (b *BillingFlowImpl) buildInvoice(ctx context.Context, event *models.BillingEvent) (*models.Invoice, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, ErrWebhookPayloadInvalid
	}
	var object billingObject
	if err := json.Unmarshal(envelope.Data.Object, &object); err != nil {
		return nil, ErrWebhookPayloadInvalid
	}

	email := object.email()
	if email == "" {
		return nil, fmt.Errorf("event %s carries no customer email: %w", event.EventID, ErrWebhookPayloadInvalid)
	}
	customer, err := b.customerRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("no customer for email %s: %w", email, ErrCustomerNotFound)
	}

	invoice := &models.Invoice{
		CustomerID:        customer.ID,
		ProviderInvoiceID: object.ID,
		CustomerEmail:     email,
		PackageTier:       object.Metadata["package_tier"],
		FAQPairsPerMonth:  metadataInt(object.Metadata, "faq_pairs_per_month", utils.DefaultFAQPairsPerMonth),
		FAQPerBatch:       metadataInt(object.Metadata, "faq_per_batch", utils.DefaultFAQPerBatch),
	}
	if invoice.ProviderInvoiceID == "" {
		invoice.ProviderInvoiceID = event.EventID
	}
	if invoice.PackageTier == "" {
		invoice.PackageTier = "starter"
	}

	switch event.EventType {
	case models.BillingEventInvoicePaid:
		if object.PeriodStart == 0 || object.PeriodEnd <= object.PeriodStart {
			return nil, ErrBillingPeriodInvalid
		}
		invoice.AmountPaid = object.AmountPaid
		invoice.BillingPeriodStart = time.Unix(object.PeriodStart, 0).UTC()
		invoice.BillingPeriodEnd = time.Unix(object.PeriodEnd, 0).UTC()
		invoice.PaidAt = invoice.BillingPeriodStart
	case models.BillingEventCheckoutCompleted:
		paidAt := utils.UTCNow()
		if envelope.Created > 0 {
			paidAt = time.Unix(envelope.Created, 0).UTC()
		}
		invoice.AmountPaid = object.AmountTotal
		invoice.PaidAt = paidAt
		invoice.BillingPeriodStart = paidAt
		invoice.BillingPeriodEnd = paidAt.Add(utils.SyntheticBillingPeriod)
	}

	return invoice, nil
}

// ListInvoices returns one page of the customer's invoices
func (b *BillingFlowImpl) ListInvoices(ctx context.Context, customerID uint, req *dto.ListInvoicesRequest, metadata *ClientMetadata) (*dto.ListInvoicesResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid invoice filter", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_FILTER", "Invalid invoice filter", ErrInvalidPageSize)
	}

	invoices, err := b.invoiceRepo.ListByCustomerID(ctx, customerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_INVOICES_FAILED", "Failed to list invoices", err)
	}
	total, err := b.invoiceRepo.Count(ctx, models.InvoiceFilter{CustomerID: &customerID})
	if err != nil {
		return nil, NewBusinessError("LIST_INVOICES_FAILED", "Failed to count invoices", err)
	}

	resp := &dto.ListInvoicesResponse{Invoices: make([]dto.InvoiceDTO, 0, len(invoices)), Total: total}
	for _, invoice := range invoices {
		resp.Invoices = append(resp.Invoices, ToInvoiceDTO(*invoice))
	}

	return resp, nil
}

// metadataInt reads a positive integer from provider metadata, falling
// back to the package default
func metadataInt(metadata map[string]string, key string, fallback int) int {
	raw, ok := metadata[key]
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
