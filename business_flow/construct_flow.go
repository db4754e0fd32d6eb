// Package businessflow contains the core business logic and use cases for configuration merging
package businessflow

import (
	"context"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"gorm.io/gorm"
)

// ConstructFlow merges the current client configuration onto pending
// schedules, producing generation units of work
type ConstructFlow interface {
	ProcessSchedules(ctx context.Context, customerID uint, req *dto.ProcessSchedulesRequest, metadata *ClientMetadata) (*dto.ProcessSchedulesResponse, error)
}

// ConstructFlowImpl implements the configuration merger business flow
type ConstructFlowImpl struct {
	customerRepo      repository.CustomerRepository
	configurationRepo repository.ClientConfigurationRepository
	scheduleRepo      repository.ScheduleRepository
	constructRepo     repository.FAQConstructRepository
	db                *gorm.DB
}

// NewConstructFlow creates a new construct flow instance
func NewConstructFlow(
	customerRepo repository.CustomerRepository,
	configurationRepo repository.ClientConfigurationRepository,
	scheduleRepo repository.ScheduleRepository,
	constructRepo repository.FAQConstructRepository,
	db *gorm.DB,
) ConstructFlow {
	return &ConstructFlowImpl{
		customerRepo:      customerRepo,
		configurationRepo: configurationRepo,
		scheduleRepo:      scheduleRepo,
		constructRepo:     constructRepo,
		db:                db,
	}
}

// ProcessSchedules creates one pending construct per unclaimed schedule
// row, snapshotting the configuration at merge time. Each schedule is
// claimed with a conditional update verified by rows-affected, so two
// concurrent runs over the same rows cannot double-insert constructs;
// rows lost to a concurrent run are skipped, not failed.
func (c *ConstructFlowImpl) ProcessSchedules(ctx context.Context, customerID uint, req *dto.ProcessSchedulesRequest, metadata *ClientMetadata) (*dto.ProcessSchedulesResponse, error) {
	if _, err := getCustomer(ctx, c.customerRepo, customerID); err != nil {
		if IsCustomerNotFound(err) || IsAccountInactive(err) {
			return nil, NewBusinessError("CUSTOMER_NOT_FOUND", "Customer not found", err)
		}
		return nil, NewBusinessError("MERGE_FAILED", "Failed to load customer", err)
	}

	configuration, err := c.configurationRepo.CurrentByCustomerID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("MERGE_FAILED", "Failed to load configuration", err)
	}
	if configuration == nil {
		return nil, NewBusinessError("CONFIGURATION_NOT_FOUND", "Client configuration not found", ErrConfigurationNotFound)
	}

	schedules, err := c.scheduleRepo.ListPendingByCustomerID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("MERGE_FAILED", "Failed to list pending schedules", err)
	}
	if len(req.ScheduleIDs) > 0 {
		schedules = filterSchedules(schedules, req.ScheduleIDs)
	}

	resp := &dto.ProcessSchedulesResponse{Constructs: make([]dto.FAQConstructDTO, 0, len(schedules))}
	if len(schedules) == 0 {
		return resp, nil
	}

	var constructs []*models.FAQConstruct
	err = repository.WithTransaction(ctx, c.db, func(txCtx context.Context) error {
		snapshot := configuration.ToSnapshot()
		for _, schedule := range schedules {
			claimed, err := c.scheduleRepo.ClaimForProcessing(txCtx, []uint{schedule.ID})
			if err != nil {
				return err
			}
			if claimed != 1 {
				continue
			}

			constructs = append(constructs, &models.FAQConstruct{
				CustomerID:     schedule.CustomerID,
				BatchID:        schedule.BatchID,
				BatchClusterID: schedule.BatchClusterID,
				DispatchDate:   schedule.DispatchDate,
				PairCount:      schedule.FAQPairsPerBatch,
				Snapshot:       snapshot,
				Status:         models.GenerationStatusPending,
			})
		}

		if len(constructs) == 0 {
			return nil
		}
		return c.constructRepo.SaveBatch(txCtx, constructs)
	})
	if err != nil {
		return nil, NewBusinessError("MERGE_FAILED", "Failed to merge configuration onto schedules", err)
	}

	resp.Claimed = int64(len(constructs))
	for _, construct := range constructs {
		resp.Constructs = append(resp.Constructs, ToFAQConstructDTO(*construct))
	}

	return resp, nil
}

// filterSchedules keeps only the requested schedule ids
func filterSchedules(schedules []*models.Schedule, ids []uint) []*models.Schedule {
	wanted := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	filtered := make([]*models.Schedule, 0, len(schedules))
	for _, schedule := range schedules {
		if _, ok := wanted[schedule.ID]; ok {
			filtered = append(filtered, schedule)
		}
	}
	return filtered
}
