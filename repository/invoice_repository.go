package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// InvoiceRepositoryImpl implements the InvoiceRepository interface
type InvoiceRepositoryImpl struct {
	*BaseRepository[models.Invoice, models.InvoiceFilter]
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &InvoiceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Invoice, models.InvoiceFilter](db),
	}
}

// ByUUID retrieves an invoice by UUID
func (r *InvoiceRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Invoice, error) {
	parsedUUID, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}

	filter := models.InvoiceFilter{UUID: &parsedUUID}
	invoices, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(invoices) == 0 {
		return nil, nil
	}

	return invoices[0], nil
}

// ByProviderInvoiceID retrieves an invoice by the payment provider's id.
// Used as the idempotency probe before materializing an event.
func (r *InvoiceRepositoryImpl) ByProviderInvoiceID(ctx context.Context, providerInvoiceID string) (*models.Invoice, error) {
	db := r.getDB(ctx)

	var invoice models.Invoice
	err := db.Where("provider_invoice_id = ?", providerInvoiceID).Last(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &invoice, nil
}

// ListByCustomerID retrieves invoices by customer ID with pagination
func (r *InvoiceRepositoryImpl) ListByCustomerID(ctx context.Context, customerID uint, limit, offset int) ([]*models.Invoice, error) {
	filter := models.InvoiceFilter{CustomerID: &customerID}
	return r.ByFilter(ctx, filter, "paid_at DESC", limit, offset)
}

// ClaimForScheduling flips sent_to_schedule false->true conditionally.
// The rows-affected check is the mutual-exclusion mechanism against a
// concurrent generator run on the same invoice.
func (r *InvoiceRepositoryImpl) ClaimForScheduling(ctx context.Context, id uint) (bool, error) {
	db := r.getDB(ctx)

	result := db.Model(&models.Invoice{}).
		Where("id = ? AND sent_to_schedule = false", id).
		Update("sent_to_schedule", true)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

// ByFilter retrieves invoices based on filter criteria
func (r *InvoiceRepositoryImpl) ByFilter(ctx context.Context, filter models.InvoiceFilter, orderBy string, limit, offset int) ([]*models.Invoice, error) {
	db := r.getDB(ctx)

	var invoices []*models.Invoice
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	return invoices, nil
}

// Count returns the number of invoices matching the filter
func (r *InvoiceRepositoryImpl) Count(ctx context.Context, filter models.InvoiceFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.Invoice{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any invoice matching the filter exists
func (r *InvoiceRepositoryImpl) Exists(ctx context.Context, filter models.InvoiceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *InvoiceRepositoryImpl) applyFilter(db *gorm.DB, filter models.InvoiceFilter) *gorm.DB {
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProviderInvoiceID != nil {
		db = db.Where("provider_invoice_id = ?", *filter.ProviderInvoiceID)
	}
	if filter.SentToSchedule != nil {
		db = db.Where("sent_to_schedule = ?", *filter.SentToSchedule)
	}
	if filter.PaidAfter != nil {
		db = db.Where("paid_at >= ?", *filter.PaidAfter)
	}
	if filter.PaidBefore != nil {
		db = db.Where("paid_at < ?", *filter.PaidBefore)
	}

	return db
}
