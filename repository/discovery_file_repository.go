package repository

import (
	"context"
	"errors"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DiscoveryFileRepositoryImpl implements the DiscoveryFileRepository interface
type DiscoveryFileRepositoryImpl struct {
	*BaseRepository[models.DiscoveryFile, models.DiscoveryFileFilter]
}

// NewDiscoveryFileRepository creates a new discovery file repository
func NewDiscoveryFileRepository(db *gorm.DB) DiscoveryFileRepository {
	return &DiscoveryFileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DiscoveryFile, models.DiscoveryFileFilter](db),
	}
}

// ByPath retrieves a cached discovery file by its serving path
func (r *DiscoveryFileRepositoryImpl) ByPath(ctx context.Context, filePath string) (*models.DiscoveryFile, error) {
	db := r.getDB(ctx)

	var file models.DiscoveryFile
	err := db.Where("file_path = ?", filePath).Last(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &file, nil
}

// UpsertByPath inserts or refreshes the cached file keyed by serving path
func (r *DiscoveryFileRepositoryImpl) UpsertByPath(ctx context.Context, file *models.DiscoveryFile) error {
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

	if file.LastGenerated.IsZero() {
		file.LastGenerated = utils.UTCNow()
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "content_type", "last_generated",
		}),
	}).Create(file).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves discovery files based on filter criteria
func (r *DiscoveryFileRepositoryImpl) ByFilter(ctx context.Context, filter models.DiscoveryFileFilter, orderBy string, limit, offset int) ([]*models.DiscoveryFile, error) {
	db := r.getDB(ctx)

	var files []*models.DiscoveryFile
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

	err := query.Find(&files).Error
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Count returns the number of discovery files matching the filter
func (r *DiscoveryFileRepositoryImpl) Count(ctx context.Context, filter models.DiscoveryFileFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := r.applyFilter(db.Model(&models.DiscoveryFile{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any discovery file matching the filter exists
func (r *DiscoveryFileRepositoryImpl) Exists(ctx context.Context, filter models.DiscoveryFileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *DiscoveryFileRepositoryImpl) applyFilter(db *gorm.DB, filter models.DiscoveryFileFilter) *gorm.DB {
	if filter.FilePath != nil {
		db = db.Where("file_path = ?", *filter.FilePath)
	}
	if filter.EntityType != nil {
		db = db.Where("entity_type = ?", *filter.EntityType)
	}
	if filter.EntityID != nil {
		db = db.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.FileType != nil {
		db = db.Where("file_type = ?", *filter.FileType)
	}

	return db
}
