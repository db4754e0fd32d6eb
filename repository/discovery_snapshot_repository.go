package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DiscoverySnapshotRepositoryImpl implements the DiscoverySnapshotRepository interface
type DiscoverySnapshotRepositoryImpl struct {
	*BaseRepository[models.DiscoverySnapshot, models.DiscoverySnapshotFilter]
}

// NewDiscoverySnapshotRepository creates a new discovery snapshot repository
func NewDiscoverySnapshotRepository(db *gorm.DB) DiscoverySnapshotRepository {
	return &DiscoverySnapshotRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DiscoverySnapshot, models.DiscoverySnapshotFilter](db),
	}
}

// ByOwner retrieves the enrichment snapshot of an organization or brand
func (r *DiscoverySnapshotRepositoryImpl) ByOwner(ctx context.Context, ownerType models.SnapshotOwnerType, ownerID uint) (*models.DiscoverySnapshot, error) {
	db := r.getDB(ctx)

	var snapshot models.DiscoverySnapshot
	err := db.Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Last(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &snapshot, nil
}

// UpsertByOwner inserts or overwrites the snapshot keyed by owner. Re-running
// an enrichment replaces the previous document for the same owner.
func (r *DiscoverySnapshotRepositoryImpl) UpsertByOwner(ctx context.Context, snapshot *models.DiscoverySnapshot) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	now := utils.UTCNow()
	snapshot.UpdatedAt = &now

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_type"}, {Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"document", "child_names", "brand_count", "product_count", "faq_count",
			"enriched_at", "updated_at",
		}),
	}).Create(snapshot).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves snapshots based on filter criteria
func (r *DiscoverySnapshotRepositoryImpl) ByFilter(ctx context.Context, filter models.DiscoverySnapshotFilter, orderBy string, limit, offset int) ([]*models.DiscoverySnapshot, error) {
	db := r.getDB(ctx)

	var snapshots []*models.DiscoverySnapshot
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

	err := query.Find(&snapshots).Error
	if err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Count returns the number of snapshots matching the filter
func (r *DiscoverySnapshotRepositoryImpl) Count(ctx context.Context, filter models.DiscoverySnapshotFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.DiscoverySnapshot{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any snapshot matching the filter exists
func (r *DiscoverySnapshotRepositoryImpl) Exists(ctx context.Context, filter models.DiscoverySnapshotFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *DiscoverySnapshotRepositoryImpl) applyFilter(db *gorm.DB, filter models.DiscoverySnapshotFilter) *gorm.DB {
	if filter.OwnerType != nil {
		db = db.Where("owner_type = ?", *filter.OwnerType)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.EnrichedAfter != nil {
		db = db.Where("enriched_at >= ?", *filter.EnrichedAfter)
	}

	return db
}
