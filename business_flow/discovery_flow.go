// Package businessflow contains the core business logic and use cases for the discovery file cache
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"github.com/redis/go-redis/v9"
)

// Discovery entity types servable from the cache
const (
	DiscoveryEntityOrganization = "organization"
	DiscoveryEntityBrand        = "brand"
)

// DiscoveryFlow serves cached discovery files with a redis hot layer in
// front of the DB cache row. Both layers honor the same freshness window.
type DiscoveryFlow interface {
	GetFile(ctx context.Context, entityType string, entityID uint, fileType string, force bool, metadata *ClientMetadata) (*models.DiscoveryFile, error)
}

// DiscoveryFlowImpl implements the discovery cache business flow
type DiscoveryFlowImpl struct {
	fileRepo     repository.DiscoveryFileRepository
	snapshotRepo repository.DiscoverySnapshotRepository
	redisClient  *redis.Client
	freshness    time.Duration
}

// NewDiscoveryFlow creates a new discovery flow instance. The redis
// client may be nil, in which case only the DB cache row is used.
func NewDiscoveryFlow(
	fileRepo repository.DiscoveryFileRepository,
	snapshotRepo repository.DiscoverySnapshotRepository,
	redisClient *redis.Client,
	freshness time.Duration,
) DiscoveryFlow {
	if freshness <= 0 {
		freshness = utils.DiscoveryFreshness
	}
	return &DiscoveryFlowImpl{
		fileRepo:     fileRepo,
		snapshotRepo: snapshotRepo,
		redisClient:  redisClient,
		freshness:    freshness,
	}
}

// cachedFile is the redis representation of a discovery file. The
// generation time travels with the payload so the hot layer enforces
// the same freshness window as the DB row.
type cachedFile struct {
	Content       string    `json:"content"`
	ContentType   string    `json:"content_type"`
	LastGenerated time.Time `json:"last_generated"`
}

// remainingFreshness is how much of the freshness window a file has
// left. Zero or negative means stale.
func remainingFreshness(lastGenerated, now time.Time, freshness time.Duration) time.Duration {
	return freshness - now.Sub(lastGenerated)
}

// DiscoveryFilePath builds the stable cache key for one discovery file
func DiscoveryFilePath(entityType string, entityID uint, fileType string) string {
	return fmt.Sprintf("/discovery/%s/%d/%s", entityType, entityID, fileType)
}

// GetFile serves the cached file while fresh and regenerates it on miss,
// staleness, or force refresh. Regeneration failure is surfaced rather
// than papered over with stale content.
func (d *DiscoveryFlowImpl) GetFile(ctx context.Context, entityType string, entityID uint, fileType string, force bool, metadata *ClientMetadata) (*models.DiscoveryFile, error) {
	if entityType != DiscoveryEntityOrganization && entityType != DiscoveryEntityBrand {
		return nil, NewBusinessError("DISCOVERY_FILE_NOT_FOUND", "Discovery file not found", ErrDiscoveryFileNotFound)
	}
	if fileType != models.DiscoveryFileTypeIndex && fileType != models.DiscoveryFileTypeJSONLD {
		return nil, NewBusinessError("DISCOVERY_FILE_NOT_FOUND", "Discovery file not found", ErrDiscoveryFileNotFound)
	}

	filePath := DiscoveryFilePath(entityType, entityID, fileType)
	now := utils.UTCNow()

	if !force {
		if file := d.fromRedis(ctx, filePath); file != nil {
			return file, nil
		}

		file, err := d.fileRepo.ByPath(ctx, filePath)
		if err != nil {
			return nil, NewBusinessError("DISCOVERY_FAILED", "Failed to read cached file", err)
		}
		if file != nil && file.IsFresh(now, d.freshness) {
			d.toRedis(ctx, filePath, file)
			return file, nil
		}
	}

	file, err := d.regenerate(ctx, entityType, entityID, fileType, filePath)
	if err != nil {
		return nil, err
	}

	d.toRedis(ctx, filePath, file)
	return file, nil
}

// regenerate rebuilds the file from the owner's enrichment snapshot and
// refreshes the DB cache row
func (d *DiscoveryFlowImpl) regenerate(ctx context.Context, entityType string, entityID uint, fileType, filePath string) (*models.DiscoveryFile, error) {
	ownerType := models.SnapshotOwnerOrganization
	if entityType == DiscoveryEntityBrand {
		ownerType = models.SnapshotOwnerBrand
	}

	snapshot, err := d.snapshotRepo.ByOwner(ctx, ownerType, entityID)
	if err != nil {
		return nil, NewBusinessError("DISCOVERY_FAILED", "Failed to load snapshot", err)
	}
	if snapshot == nil {
		return nil, NewBusinessError("SNAPSHOT_NOT_FOUND", "No enrichment snapshot for entity", ErrSnapshotNotFound)
	}

	var content, contentType string
	switch fileType {
	case models.DiscoveryFileTypeJSONLD:
		content = string(snapshot.Document)
		contentType = "application/ld+json"
	case models.DiscoveryFileTypeIndex:
		index, err := json.Marshal(map[string]any{
			"ownerType":  snapshot.OwnerType,
			"ownerId":    snapshot.OwnerID,
			"children":   []string(snapshot.ChildNames),
			"faqCount":   snapshot.FAQCount,
			"enrichedAt": snapshot.EnrichedAt,
		})
		if err != nil {
			return nil, NewBusinessError("DISCOVERY_FAILED", "Failed to build index file", err)
		}
		content = string(index)
		contentType = "application/json"
	}

	file := &models.DiscoveryFile{
		FilePath:      filePath,
		EntityType:    entityType,
		EntityID:      entityID,
		FileType:      fileType,
		Content:       content,
		ContentType:   contentType,
		LastGenerated: utils.UTCNow(),
	}
	if err := d.fileRepo.UpsertByPath(ctx, file); err != nil {
		return nil, NewBusinessError("DISCOVERY_FAILED", "Failed to store regenerated file", err)
	}

	return file, nil
}

// fromRedis reads the hot layer; any redis failure falls through to the
// DB. Entries past the freshness window are ignored even if the TTL has
// not fired yet.
func (d *DiscoveryFlowImpl) fromRedis(ctx context.Context, filePath string) *models.DiscoveryFile {
	if d.redisClient == nil {
		return nil
	}

	raw, err := d.redisClient.Get(ctx, "discovery:"+filePath).Result()
	if err != nil {
		return nil
	}

	var cached cachedFile
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	if remainingFreshness(cached.LastGenerated, utils.UTCNow(), d.freshness) <= 0 {
		return nil
	}

	return &models.DiscoveryFile{
		FilePath:      filePath,
		Content:       cached.Content,
		ContentType:   cached.ContentType,
		LastGenerated: cached.LastGenerated,
	}
}

// toRedis best-effort populates the hot layer. The TTL is the file's
// remaining freshness, not the full window, so a row cached late in its
// life cannot outlive the regeneration deadline.
func (d *DiscoveryFlowImpl) toRedis(ctx context.Context, filePath string, file *models.DiscoveryFile) {
	if d.redisClient == nil {
		return
	}

	ttl := remainingFreshness(file.LastGenerated, utils.UTCNow(), d.freshness)
	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(cachedFile{
		Content:       file.Content,
		ContentType:   file.ContentType,
		LastGenerated: file.LastGenerated,
	})
	if err != nil {
		return
	}
	_ = d.redisClient.Set(ctx, "discovery:"+filePath, raw, ttl).Err()
}
