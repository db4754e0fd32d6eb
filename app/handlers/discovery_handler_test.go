package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDiscoveryFlow returns a canned file and records the force flag
type stubDiscoveryFlow struct {
	file      *models.DiscoveryFile
	err       error
	lastForce bool
}

func (s *stubDiscoveryFlow) GetFile(ctx context.Context, entityType string, entityID uint, fileType string, force bool, metadata *businessflow.ClientMetadata) (*models.DiscoveryFile, error) {
	s.lastForce = force
	if s.err != nil {
		return nil, s.err
	}
	return s.file, nil
}

func newDiscoveryTestApp(flow businessflow.DiscoveryFlow) *fiber.App {
	handler := NewDiscoveryHandler(flow, time.Hour)
	app := fiber.New()
	app.Get("/discovery/:entity_type/:entity_id/:file_type", handler.GetFile)
	app.Post("/discovery/:entity_type/:entity_id/:file_type/refresh", handler.RefreshFile)
	return app
}

func TestDiscoveryHandlerGetFile(t *testing.T) {
	stub := &stubDiscoveryFlow{
		file: &models.DiscoveryFile{
			FilePath:      "/discovery/organization/4/jsonld",
			EntityType:    "organization",
			EntityID:      4,
			FileType:      models.DiscoveryFileTypeJSONLD,
			Content:       `{"@context":"https://schema.org","@type":"Organization","name":"Acme Corp"}`,
			ContentType:   "application/ld+json",
			LastGenerated: utils.UTCNow(),
		},
	}
	app := newDiscoveryTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/discovery/organization/4/jsonld", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.False(t, stub.lastForce)
	assert.Equal(t, "application/ld+json", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, stub.file.Content, string(body))
}

func TestDiscoveryHandlerCacheControl(t *testing.T) {
	t.Run("fresh file gets the full window", func(t *testing.T) {
		stub := &stubDiscoveryFlow{
			file: &models.DiscoveryFile{
				Content:       "{}",
				ContentType:   "application/ld+json",
				LastGenerated: utils.UTCNow(),
			},
		}
		app := newDiscoveryTestApp(stub)

		resp, err := app.Test(httptest.NewRequest("GET", "/discovery/organization/4/jsonld", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Regexp(t, `^public, max-age=3(5[0-9]{2}|600)$`, resp.Header.Get(fiber.HeaderCacheControl))
	})

	t.Run("aging file gets only the remainder", func(t *testing.T) {
		stub := &stubDiscoveryFlow{
			file: &models.DiscoveryFile{
				Content:       "{}",
				ContentType:   "application/ld+json",
				LastGenerated: utils.UTCNow().Add(-50 * time.Minute),
			},
		}
		app := newDiscoveryTestApp(stub)

		resp, err := app.Test(httptest.NewRequest("GET", "/discovery/organization/4/jsonld", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		// ten minutes of the hour remain
		assert.Regexp(t, `^public, max-age=(59[0-9]|600)$`, resp.Header.Get(fiber.HeaderCacheControl))
	})
}

func TestDiscoveryHandlerRefreshFile(t *testing.T) {
	generated := utils.UTCNow()
	stub := &stubDiscoveryFlow{
		file: &models.DiscoveryFile{
			FilePath:      "/discovery/brand/3/index",
			EntityType:    "brand",
			EntityID:      3,
			FileType:      models.DiscoveryFileTypeIndex,
			Content:       `{"ownerId":3}`,
			ContentType:   "application/json",
			LastGenerated: generated,
		},
	}
	app := newDiscoveryTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("POST", "/discovery/brand/3/index/refresh", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, stub.lastForce)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			File struct {
				FilePath      string    `json:"file_path"`
				Content       string    `json:"content"`
				LastGenerated time.Time `json:"last_generated"`
			} `json:"file"`
		} `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "/discovery/brand/3/index", envelope.Data.File.FilePath)
	assert.Equal(t, `{"ownerId":3}`, envelope.Data.File.Content)
	// the refresh response carries the regeneration timestamp
	assert.WithinDuration(t, generated, envelope.Data.File.LastGenerated, time.Second)
}

func TestDiscoveryHandlerNotFound(t *testing.T) {
	stub := &stubDiscoveryFlow{err: businessflow.NewBusinessError("SNAPSHOT_NOT_FOUND", "No enrichment snapshot for entity", businessflow.ErrSnapshotNotFound)}
	app := newDiscoveryTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/discovery/organization/4/jsonld", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// a non-numeric entity id never reaches the flow
	resp, err = app.Test(httptest.NewRequest("GET", "/discovery/organization/abc/jsonld", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
