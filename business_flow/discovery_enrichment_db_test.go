// Package businessflow_test contains integration tests for the business flows
package businessflow_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	testingutil "github.com/brandaion/platform/testing"
	"github.com/brandaion/platform/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichmentFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		enrichmentFlow := businessflow.NewEnrichmentFlow(
			repository.NewOrganizationRepository(testDB.DB),
			repository.NewBrandRepository(testDB.DB),
			repository.NewProductRepository(testDB.DB),
			repository.NewBatchRepository(testDB.DB),
			repository.NewDiscoverySnapshotRepository(testDB.DB),
		)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		organization, err := fixtures.CreateTestOrganization(customer.ID)
		require.NoError(t, err)
		brand, err := fixtures.CreateTestBrand(organization.ID, "Acme")
		require.NoError(t, err)
		_, err = fixtures.CreateTestProduct(brand.ID, "Acme Widgets")
		require.NoError(t, err)
		_, err = fixtures.CreateTestProduct(brand.ID, "Acme Gadgets")
		require.NoError(t, err)

		// one published batch of two pairs feeds the FAQ counters
		_, err = fixtures.CreateTestBatch(customer.ID, models.BatchStatusPublished, "Acme Widgets")
		require.NoError(t, err)

		t.Run("EnrichOrganization", func(t *testing.T) {
			result, err := enrichmentFlow.EnrichOrganization(ctx, customer.ID, metadata)
			require.NoError(t, err)

			snapshot := result.Snapshot
			assert.Equal(t, string(models.SnapshotOwnerOrganization), snapshot.OwnerType)
			assert.Equal(t, organization.ID, snapshot.OwnerID)
			assert.Equal(t, []string{"Acme"}, snapshot.ChildNames)
			assert.Equal(t, 1, snapshot.BrandCount)
			assert.Equal(t, 2, snapshot.ProductCount)
			assert.Equal(t, 2, snapshot.FAQCount)

			var document map[string]any
			require.NoError(t, json.Unmarshal(snapshot.Document, &document))
			assert.Equal(t, "Organization", document["@type"])
			assert.Equal(t, float64(1), document["brandCount"])
			assert.Equal(t, float64(2), document["faqCount"])
			brands, ok := document["brands"].([]any)
			require.True(t, ok)
			assert.Len(t, brands, 1)
		})

		t.Run("EnrichBrandEmbedsPublishedBatches", func(t *testing.T) {
			result, err := enrichmentFlow.EnrichBrand(ctx, customer.ID, brand.ID, metadata)
			require.NoError(t, err)

			snapshot := result.Snapshot
			assert.Equal(t, string(models.SnapshotOwnerBrand), snapshot.OwnerType)
			assert.Equal(t, brand.ID, snapshot.OwnerID)
			assert.ElementsMatch(t, []string{"Acme Widgets", "Acme Gadgets"}, snapshot.ChildNames)
			assert.Equal(t, 2, snapshot.ProductCount)
			assert.Equal(t, 2, snapshot.FAQCount)

			var document map[string]any
			require.NoError(t, json.Unmarshal(snapshot.Document, &document))
			products, ok := document["products"].([]any)
			require.True(t, ok)
			require.Len(t, products, 2)

			withBatches := 0
			for _, entry := range products {
				if _, has := entry.(map[string]any)["faqBatches"]; has {
					withBatches++
				}
			}
			assert.Equal(t, 1, withBatches)
		})

		t.Run("ReenrichmentOverwritesSnapshot", func(t *testing.T) {
			_, err := enrichmentFlow.EnrichOrganization(ctx, customer.ID, metadata)
			require.NoError(t, err)
			_, err = enrichmentFlow.EnrichOrganization(ctx, customer.ID, metadata)
			require.NoError(t, err)

			var count int64
			require.NoError(t, testDB.DB.Model(&models.DiscoverySnapshot{}).
				Where("owner_type = ? AND owner_id = ?", models.SnapshotOwnerOrganization, organization.ID).
				Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("EnrichForeignBrand", func(t *testing.T) {
			otherCustomer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)
			otherOrganization, err := fixtures.CreateTestOrganization(otherCustomer.ID)
			require.NoError(t, err)
			foreignBrand, err := fixtures.CreateTestBrand(otherOrganization.ID, "Not Yours")
			require.NoError(t, err)

			_, err = enrichmentFlow.EnrichBrand(ctx, customer.ID, foreignBrand.ID, metadata)
			assert.True(t, businessflow.IsBrandNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDiscoveryFlowCache(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fileRepo := repository.NewDiscoveryFileRepository(testDB.DB)
		discoveryFlow := businessflow.NewDiscoveryFlow(
			fileRepo,
			repository.NewDiscoverySnapshotRepository(testDB.DB),
			nil,
			time.Hour,
		)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		snapshot := &models.DiscoverySnapshot{
			OwnerType:  models.SnapshotOwnerOrganization,
			OwnerID:    42,
			Document:   json.RawMessage(`{"@context":"https://schema.org","@type":"Organization","name":"Acme Corp"}`),
			ChildNames: []string{"Acme"},
			BrandCount: 1,
			FAQCount:   2,
		}
		require.NoError(t, testDB.DB.Create(snapshot).Error)

		t.Run("GeneratesJSONLDFromSnapshot", func(t *testing.T) {
			file, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeJSONLD, false, metadata)
			require.NoError(t, err)

			assert.Equal(t, "/discovery/organization/42/jsonld", file.FilePath)
			assert.Equal(t, "application/ld+json", file.ContentType)
			assert.JSONEq(t, string(snapshot.Document), file.Content)
		})

		t.Run("GeneratesIndexFile", func(t *testing.T) {
			file, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeIndex, false, metadata)
			require.NoError(t, err)

			assert.Equal(t, "application/json", file.ContentType)

			var index map[string]any
			require.NoError(t, json.Unmarshal([]byte(file.Content), &index))
			assert.Equal(t, float64(42), index["ownerId"])
			assert.Equal(t, float64(2), index["faqCount"])
			assert.Equal(t, []any{"Acme"}, index["children"])
		})

		t.Run("ServesFreshCacheRow", func(t *testing.T) {
			first, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeJSONLD, false, metadata)
			require.NoError(t, err)

			second, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeJSONLD, false, metadata)
			require.NoError(t, err)
			// the second read serves the cached row instead of regenerating
			assert.WithinDuration(t, first.LastGenerated, second.LastGenerated, time.Second)
		})

		t.Run("RegeneratesStaleRow", func(t *testing.T) {
			stale := utils.UTCNow().Add(-2 * time.Hour)
			require.NoError(t, testDB.DB.Model(&models.DiscoveryFile{}).
				Where("file_path = ?", "/discovery/organization/42/jsonld").
				Update("last_generated", stale).Error)

			file, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeJSONLD, false, metadata)
			require.NoError(t, err)

			// the window elapsed, so a plain GET regenerates the file
			assert.True(t, file.LastGenerated.After(stale.Add(time.Hour)))
		})

		t.Run("ForceRegenerates", func(t *testing.T) {
			before, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeJSONLD, false, metadata)
			require.NoError(t, err)

			after, err := discoveryFlow.GetFile(ctx, "organization", 42, models.DiscoveryFileTypeJSONLD, true, metadata)
			require.NoError(t, err)
			assert.False(t, after.LastGenerated.Before(before.LastGenerated))

			// only one cache row per path even after regeneration
			var count int64
			require.NoError(t, testDB.DB.Model(&models.DiscoveryFile{}).
				Where("file_path = ?", "/discovery/organization/42/jsonld").
				Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("UnknownEntityOrFileType", func(t *testing.T) {
			_, err := discoveryFlow.GetFile(ctx, "customer", 42, models.DiscoveryFileTypeJSONLD, false, metadata)
			assert.True(t, businessflow.IsDiscoveryFileNotFound(err))

			_, err = discoveryFlow.GetFile(ctx, "organization", 42, "sitemap", false, metadata)
			assert.True(t, businessflow.IsDiscoveryFileNotFound(err))
		})

		t.Run("MissingSnapshot", func(t *testing.T) {
			_, err := discoveryFlow.GetFile(ctx, "brand", 999, models.DiscoveryFileTypeJSONLD, false, metadata)
			assert.True(t, businessflow.IsSnapshotNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestReportFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		reportFlow := businessflow.NewReportFlow(repository.NewBatchRepository(testDB.DB))
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		t.Run("ExportWithoutBatches", func(t *testing.T) {
			content, filename, err := reportFlow.ExportPublishedBatches(ctx, customer.ID, metadata)
			require.NoError(t, err)
			assert.NotEmpty(t, content)
			assert.True(t, strings.HasSuffix(filename, ".xlsx"), filename)
		})

		t.Run("ExportPublishedOnly", func(t *testing.T) {
			_, err := fixtures.CreateTestBatch(customer.ID, models.BatchStatusPublished, "Acme Widgets")
			require.NoError(t, err)
			_, err = fixtures.CreateTestBatch(customer.ID, models.BatchStatusGenerated, "Acme Gadgets")
			require.NoError(t, err)

			content, filename, err := reportFlow.ExportPublishedBatches(ctx, customer.ID, metadata)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(filename, ".xlsx"), filename)
			// xlsx files are zip archives
			assert.True(t, bytes.HasPrefix(content, []byte("PK")))
		})

		return nil
	})
	require.NoError(t, err)
}
