// Package businessflow contains the core business logic and use cases for schedule generation
package businessflow

import (
	"context"
	"time"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleFlow fans a paid invoice out into planned batch dispatches
type ScheduleFlow interface {
	GenerateSchedules(ctx context.Context, customerID uint, req *dto.GenerateSchedulesRequest, metadata *ClientMetadata) (*dto.GenerateSchedulesResponse, error)
}

// ScheduleFlowImpl implements the schedule generation business flow
type ScheduleFlowImpl struct {
	invoiceRepo      repository.InvoiceRepository
	scheduleRepo     repository.ScheduleRepository
	organizationRepo repository.OrganizationRepository
	db               *gorm.DB
}

// NewScheduleFlow creates a new schedule flow instance
func NewScheduleFlow(
	invoiceRepo repository.InvoiceRepository,
	scheduleRepo repository.ScheduleRepository,
	organizationRepo repository.OrganizationRepository,
	db *gorm.DB,
) ScheduleFlow {
	return &ScheduleFlowImpl{
		invoiceRepo:      invoiceRepo,
		scheduleRepo:     scheduleRepo,
		organizationRepo: organizationRepo,
		db:               db,
	}
}

// GenerateSchedules creates exactly SchedulesPerInvoice schedule rows with
// evenly spaced dispatch dates across the invoice's billing period. The
// invoice is claimed with a conditional update so a second invocation
// fails instead of duplicating schedules.
func (s *ScheduleFlowImpl) GenerateSchedules(ctx context.Context, customerID uint, req *dto.GenerateSchedulesRequest, metadata *ClientMetadata) (*dto.GenerateSchedulesResponse, error) {
	invoice, err := s.invoiceRepo.ByUUID(ctx, req.InvoiceUUID)
	if err != nil {
		return nil, NewBusinessError("SCHEDULE_GENERATION_FAILED", "Failed to load invoice", err)
	}
	if invoice == nil {
		return nil, NewBusinessError("INVOICE_NOT_FOUND", "Invoice not found", ErrInvoiceNotFound)
	}
	if invoice.CustomerID != customerID {
		return nil, NewBusinessError("INVOICE_ACCESS_DENIED", "Invoice access denied", ErrInvoiceAccessDenied)
	}
	if invoice.SentToSchedule {
		return nil, NewBusinessError("INVOICE_ALREADY_SCHEDULED", "Invoice already sent to schedule", ErrInvoiceAlreadyScheduled)
	}

	organization, err := getOrganization(ctx, s.organizationRepo, invoice.CustomerID)
	if err != nil {
		if IsOrganizationNotFound(err) {
			return nil, NewBusinessError("ORGANIZATION_NOT_FOUND", "Organization not found", err)
		}
		return nil, NewBusinessError("SCHEDULE_GENERATION_FAILED", "Failed to resolve organization", err)
	}

	periodDays := invoice.PeriodDays()
	intervalDays := periodDays / utils.SchedulesPerInvoice
	if intervalDays < 1 {
		return nil, NewBusinessError("BILLING_PERIOD_INVALID", "Billing period too short to schedule", ErrBillingPeriodInvalid)
	}

	clusterID := uuid.New()
	schedules := make([]*models.Schedule, 0, utils.SchedulesPerInvoice)
	for i := 0; i < utils.SchedulesPerInvoice; i++ {
		schedules = append(schedules, &models.Schedule{
			CustomerID:       invoice.CustomerID,
			OrganizationID:   organization.ID,
			InvoiceID:        invoice.ID,
			BatchClusterID:   clusterID,
			BatchID:          uuid.New(),
			DispatchDate:     invoice.BillingPeriodStart.Add(time.Duration(i*intervalDays) * 24 * time.Hour),
			FAQPairsPerBatch: invoice.FAQPerBatch,
			TotalFAQPairs:    invoice.FAQPairsPerMonth,
		})
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		claimed, err := s.invoiceRepo.ClaimForScheduling(txCtx, invoice.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrInvoiceAlreadyScheduled
		}

		return s.scheduleRepo.SaveBatch(txCtx, schedules)
	})
	if err != nil {
		if IsInvoiceAlreadyScheduled(err) {
			return nil, NewBusinessError("INVOICE_ALREADY_SCHEDULED", "Invoice already sent to schedule", err)
		}
		return nil, NewBusinessError("SCHEDULE_GENERATION_FAILED", "Failed to generate schedules", err)
	}

	resp := &dto.GenerateSchedulesResponse{
		InvoiceUUID:    invoice.UUID.String(),
		BatchClusterID: clusterID.String(),
		Schedules:      make([]dto.ScheduleDTO, 0, len(schedules)),
	}
	for _, schedule := range schedules {
		resp.Schedules = append(resp.Schedules, ToScheduleDTO(*schedule))
	}

	return resp, nil
}
