// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/brandaion/platform/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// BillingEventRepository defines operations for payment-provider webhook events
type BillingEventRepository interface {
	Repository[models.BillingEvent, models.BillingEventFilter]
	ByEventID(ctx context.Context, eventID string) (*models.BillingEvent, error)
	ListUnprocessed(ctx context.Context, limit int) ([]*models.BillingEvent, error)
	// MarkProcessed flips processed false->true. Returns false when the
	// event was already claimed by a concurrent materializer run.
	MarkProcessed(ctx context.Context, id uint) (bool, error)
}

// InvoiceRepository defines operations for invoices
type InvoiceRepository interface {
	Repository[models.Invoice, models.InvoiceFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Invoice, error)
	ByProviderInvoiceID(ctx context.Context, providerInvoiceID string) (*models.Invoice, error)
	ListByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]*models.Invoice, error)
	// ClaimForScheduling flips sent_to_schedule false->true as a single
	// conditional update. Returns false when the invoice was already
	// dispatched, which callers treat as AlreadyProcessed.
	ClaimForScheduling(ctx context.Context, id uint) (bool, error)
}

// ScheduleRepository defines operations for planned batch dispatches
type ScheduleRepository interface {
	Repository[models.Schedule, models.ScheduleFilter]
	ByBatchID(ctx context.Context, batchID uuid.UUID) (*models.Schedule, error)
	ListPendingByCustomerID(ctx context.Context, customerID uint) ([]*models.Schedule, error)
	ListByClusterID(ctx context.Context, clusterID uuid.UUID) ([]*models.Schedule, error)
	// ClaimForProcessing flips sent_for_processing false->true on the given
	// rows and returns how many were actually claimed. Concurrent merger
	// runs racing on the same rows observe a reduced count.
	ClaimForProcessing(ctx context.Context, ids []uint) (int64, error)
}

// FAQConstructRepository defines operations for generation units of work
type FAQConstructRepository interface {
	Repository[models.FAQConstruct, models.FAQConstructFilter]
	ByBatchID(ctx context.Context, batchID uuid.UUID) (*models.FAQConstruct, error)
	ListPendingGeneration(ctx context.Context, limit int) ([]*models.FAQConstruct, error)
	// ClaimGenerating moves pending -> generating_questions conditionally.
	// Returns false when another worker tick already claimed the construct.
	// Claims older than utils.GenerationStaleAfter are treated as orphaned
	// and can be taken over.
	ClaimGenerating(ctx context.Context, id uint) (bool, error)
	CompleteGeneration(ctx context.Context, id uint, request, response string) error
	FailGeneration(ctx context.Context, id uint, request, errorMessage string) error
}

// QuestionRepository defines operations for reviewable questions
type QuestionRepository interface {
	Repository[models.Question, models.QuestionFilter]
	ListByBatchID(ctx context.Context, batchID uuid.UUID) ([]*models.Question, error)
	ListAnsweredByBatchID(ctx context.Context, batchID uuid.UUID) ([]*models.Question, error)
	ListUnansweredApproved(ctx context.Context, batchID uuid.UUID) ([]*models.Question, error)
	ListBatchesAwaitingAnswers(ctx context.Context, limit int) ([]uuid.UUID, error)
	UpdateText(ctx context.Context, id uint, text string) error
	ApproveMany(ctx context.Context, batchID uuid.UUID, ids []uint) (int64, error)
	CompleteAnswer(ctx context.Context, id uint, answer string, topic *string) error
	RecordAnswerError(ctx context.Context, id uint, errorMessage string) error
	CountByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error)
	CountApprovedByBatchID(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// BatchRepository defines operations for published FAQ batches
type BatchRepository interface {
	Repository[models.Batch, models.BatchFilter]
	ByBatchID(ctx context.Context, batchID uuid.UUID) (*models.Batch, error)
	// UpsertByBatchID inserts or overwrites the batch keyed by batch id,
	// keeping assembly idempotent.
	UpsertByBatchID(ctx context.Context, batch *models.Batch) error
	Publish(ctx context.Context, batchID uuid.UUID) (bool, error)
	ListByProductNames(ctx context.Context, productNames []string) ([]*models.Batch, error)
	ListPublishedByCustomerID(ctx context.Context, customerID uint) ([]*models.Batch, error)
}

// OrganizationRepository defines operations for organizations
type OrganizationRepository interface {
	Repository[models.Organization, models.OrganizationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Organization, error)
	ByCustomerID(ctx context.Context, customerID uint) (*models.Organization, error)
}

// BrandRepository defines operations for brands
type BrandRepository interface {
	Repository[models.Brand, models.BrandFilter]
	ListByOrganizationID(ctx context.Context, organizationID uint) ([]*models.Brand, error)
}

// ProductRepository defines operations for products
type ProductRepository interface {
	Repository[models.Product, models.ProductFilter]
	ListByBrandID(ctx context.Context, brandID uint) ([]*models.Product, error)
	ListByBrandIDs(ctx context.Context, brandIDs []uint) ([]*models.Product, error)
}

// ClientConfigurationRepository defines operations for customer configurations
type ClientConfigurationRepository interface {
	Repository[models.ClientConfiguration, models.ClientConfigurationFilter]
	CurrentByCustomerID(ctx context.Context, customerID uint) (*models.ClientConfiguration, error)
	// UpsertByCustomerID inserts or overwrites the customer's single
	// configuration row keyed by the unique customer id.
	UpsertByCustomerID(ctx context.Context, configuration *models.ClientConfiguration) error
}

// DiscoverySnapshotRepository defines operations for enriched snapshots
type DiscoverySnapshotRepository interface {
	Repository[models.DiscoverySnapshot, models.DiscoverySnapshotFilter]
	ByOwner(ctx context.Context, ownerType models.SnapshotOwnerType, ownerID uint) (*models.DiscoverySnapshot, error)
	UpsertByOwner(ctx context.Context, snapshot *models.DiscoverySnapshot) error
}

// DiscoveryFileRepository defines operations for cached discovery files
type DiscoveryFileRepository interface {
	Repository[models.DiscoveryFile, models.DiscoveryFileFilter]
	ByPath(ctx context.Context, filePath string) (*models.DiscoveryFile, error)
	UpsertByPath(ctx context.Context, file *models.DiscoveryFile) error
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByEmail(ctx context.Context, email string) (*models.Customer, error)
	ByUUID(ctx context.Context, uuid string) (*models.Customer, error)
}

// CustomerSessionRepository defines operations for customer sessions
type CustomerSessionRepository interface {
	Repository[models.CustomerSession, models.CustomerSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.CustomerSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.CustomerSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
}
