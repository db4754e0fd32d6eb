// Package businessflow_test contains integration tests for the business flows
package businessflow_test

import (
	"encoding/json"
	"testing"

	"github.com/brandaion/platform/app/dto"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	testingutil "github.com/brandaion/platform/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		configurationFlow := businessflow.NewConfigurationFlow(
			repository.NewOrganizationRepository(testDB.DB),
			repository.NewBrandRepository(testDB.DB),
			repository.NewProductRepository(testDB.DB),
			repository.NewClientConfigurationRepository(testDB.DB),
			testDB.DB,
		)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		organization, err := fixtures.CreateTestOrganization(customer.ID)
		require.NoError(t, err)
		brand, err := fixtures.CreateTestBrand(organization.ID, "Acme")
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct(brand.ID, "Acme Widgets")
		require.NoError(t, err)

		t.Run("GetBeforeAnySelection", func(t *testing.T) {
			_, err := configurationFlow.GetConfiguration(ctx, customer.ID, metadata)
			assert.True(t, businessflow.IsConfigurationNotFound(err))
		})

		t.Run("UpdateResolvesEntitiesServerSide", func(t *testing.T) {
			result, err := configurationFlow.UpdateConfiguration(ctx, customer.ID, &dto.UpdateConfigurationRequest{
				BrandID:       brand.ID,
				ProductID:     product.ID,
				PersonaName:   "Support Expert",
				AudienceName:  "Developers",
				MarketName:    "Global",
				PersonaJSONLD: json.RawMessage(`{"@type":"Person","name":"Support Expert"}`),
			}, metadata)
			require.NoError(t, err)

			configuration := result.Configuration
			assert.Equal(t, brand.ID, configuration.BrandID)
			assert.Equal(t, product.ID, configuration.ProductID)
			// names come from the entity rows, not the request
			assert.Equal(t, organization.Name, configuration.OrganizationName)
			assert.Equal(t, brand.Name, configuration.BrandName)
			assert.Equal(t, product.Name, configuration.ProductName)
			assert.Equal(t, "Support Expert", configuration.PersonaName)
			assert.JSONEq(t, string(brand.JSONLD), string(configuration.BrandJSONLD))
		})

		t.Run("UpdateOverwritesExistingRow", func(t *testing.T) {
			secondBrand, err := fixtures.CreateTestBrand(organization.ID, "Acme Labs")
			require.NoError(t, err)
			secondProduct, err := fixtures.CreateTestProduct(secondBrand.ID, "Acme Gadgets")
			require.NoError(t, err)

			result, err := configurationFlow.UpdateConfiguration(ctx, customer.ID, &dto.UpdateConfigurationRequest{
				BrandID:      secondBrand.ID,
				ProductID:    secondProduct.ID,
				PersonaName:  "Sales Expert",
				AudienceName: "Buyers",
				MarketName:   "EU",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Acme Labs", result.Configuration.BrandName)

			fetched, err := configurationFlow.GetConfiguration(ctx, customer.ID, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Acme Gadgets", fetched.Configuration.ProductName)
			assert.Equal(t, "Sales Expert", fetched.Configuration.PersonaName)

			// the update lands on the existing row, not a second insert
			var count int64
			require.NoError(t, testDB.DB.Model(&models.ClientConfiguration{}).
				Where("customer_id = ?", customer.ID).
				Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})

		t.Run("RejectsForeignBrand", func(t *testing.T) {
			otherCustomer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)
			otherOrganization, err := fixtures.CreateTestOrganization(otherCustomer.ID)
			require.NoError(t, err)
			foreignBrand, err := fixtures.CreateTestBrand(otherOrganization.ID, "Not Yours")
			require.NoError(t, err)

			_, err = configurationFlow.UpdateConfiguration(ctx, customer.ID, &dto.UpdateConfigurationRequest{
				BrandID:      foreignBrand.ID,
				ProductID:    product.ID,
				PersonaName:  "x",
				AudienceName: "y",
				MarketName:   "z",
			}, metadata)
			assert.True(t, businessflow.IsBrandNotInOrganization(err))
		})

		t.Run("RejectsProductOutsideBrand", func(t *testing.T) {
			strayBrand, err := fixtures.CreateTestBrand(organization.ID, "Acme Stray")
			require.NoError(t, err)

			_, err = configurationFlow.UpdateConfiguration(ctx, customer.ID, &dto.UpdateConfigurationRequest{
				BrandID:      strayBrand.ID,
				ProductID:    product.ID,
				PersonaName:  "x",
				AudienceName: "y",
				MarketName:   "z",
			}, metadata)
			assert.True(t, businessflow.IsProductNotInBrand(err))
		})

		t.Run("RejectsUnknownEntities", func(t *testing.T) {
			_, err := configurationFlow.UpdateConfiguration(ctx, customer.ID, &dto.UpdateConfigurationRequest{
				BrandID:      99999,
				ProductID:    product.ID,
				PersonaName:  "x",
				AudienceName: "y",
				MarketName:   "z",
			}, metadata)
			assert.True(t, businessflow.IsBrandNotFound(err))

			_, err = configurationFlow.UpdateConfiguration(ctx, customer.ID, &dto.UpdateConfigurationRequest{
				BrandID:      brand.ID,
				ProductID:    99999,
				PersonaName:  "x",
				AudienceName: "y",
				MarketName:   "z",
			}, metadata)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
