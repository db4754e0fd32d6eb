// Package businessflow_test contains integration tests for the business flows
package businessflow_test

import (
	"testing"
	"time"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/app/services"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/repository"
	testingutil "github.com/brandaion/platform/testing"
	"github.com/brandaion/platform/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.LoginFlow {
	t.Helper()

	tokenService, err := services.NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience", "test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	return businessflow.NewLoginFlow(
		repository.NewCustomerRepository(testDB.DB),
		repository.NewCustomerSessionRepository(testDB.DB),
		tokenService,
		testDB.DB,
	)
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		loginFlow := newLoginFlow(t, testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SuccessfulLogin", func(t *testing.T) {
			customer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)

			result, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    customer.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, customer.ID, result.Customer.ID)
			assert.Equal(t, customer.Email, result.Customer.Email)
			assert.True(t, utils.IsTrue(result.Customer.IsActive))
			assert.NotEmpty(t, result.Session.SessionToken)
			assert.NotEmpty(t, result.Session.RefreshToken)
			assert.Equal(t, "Bearer", result.Session.TokenType)
			assert.Positive(t, result.Session.ExpiresIn)
		})

		t.Run("EmailIsNormalized", func(t *testing.T) {
			customer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)

			result, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "  " + customer.Email + "  ",
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, customer.ID, result.Customer.ID)
		})

		t.Run("CustomerNotFound", func(t *testing.T) {
			_, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: testingutil.TestPassword,
			}, metadata)
			assert.True(t, businessflow.IsCustomerNotFound(err))
		})

		t.Run("IncorrectPassword", func(t *testing.T) {
			customer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    customer.Email,
				Password: "WrongPass456!",
			}, metadata)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			customer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(customer).Update("is_active", false).Error)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    customer.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("RefreshTokenRotation", func(t *testing.T) {
			customer, err := fixtures.CreateTestCustomer()
			require.NoError(t, err)

			login, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    customer.Email,
				Password: testingutil.TestPassword,
			}, metadata)
			require.NoError(t, err)

			refreshed, err := loginFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: login.Session.RefreshToken,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, customer.ID, refreshed.Customer.ID)
			assert.NotEqual(t, login.Session.RefreshToken, refreshed.Session.RefreshToken)

			// the rotated-out token must be unusable
			_, err = loginFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: login.Session.RefreshToken,
			}, metadata)
			assert.Error(t, err)
		})

		t.Run("RefreshUnknownToken", func(t *testing.T) {
			_, err := loginFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: "nonsense-token",
			}, metadata)
			assert.True(t, businessflow.IsSessionNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
