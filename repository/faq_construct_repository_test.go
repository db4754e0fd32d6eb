package repository_test

import (
	"testing"
	"time"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	testingutil "github.com/brandaion/platform/testing"
	"github.com/brandaion/platform/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFAQConstructStaleClaimReclaim(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		constructRepo := repository.NewFAQConstructRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		// claimed half an hour ago by a worker that never finished
		stuck, err := fixtures.CreateTestConstruct(customer.ID, models.GenerationStatusGeneratingQuestions, 2)
		require.NoError(t, err)
		require.NoError(t, testDB.DB.Model(&models.FAQConstruct{}).
			Where("id = ?", stuck.ID).
			Update("updated_at", utils.UTCNow().Add(-2*utils.GenerationStaleAfter)).Error)

		// claimed just now, still being worked on
		fresh, err := fixtures.CreateTestConstruct(customer.ID, models.GenerationStatusGeneratingQuestions, 2)
		require.NoError(t, err)

		pending, err := fixtures.CreateTestConstruct(customer.ID, models.GenerationStatusPending, 2)
		require.NoError(t, err)

		t.Run("ListIncludesStaleClaims", func(t *testing.T) {
			constructs, err := constructRepo.ListPendingGeneration(ctx, 0)
			require.NoError(t, err)

			ids := make([]uint, 0, len(constructs))
			for _, construct := range constructs {
				ids = append(ids, construct.ID)
			}
			assert.ElementsMatch(t, []uint{stuck.ID, pending.ID}, ids)
		})

		t.Run("ReclaimsStaleClaim", func(t *testing.T) {
			claimed, err := constructRepo.ClaimGenerating(ctx, stuck.ID)
			require.NoError(t, err)
			assert.True(t, claimed)

			// the takeover refreshed updated_at, so a second claim loses
			claimed, err = constructRepo.ClaimGenerating(ctx, stuck.ID)
			require.NoError(t, err)
			assert.False(t, claimed)
		})

		t.Run("FreshClaimStaysFenced", func(t *testing.T) {
			claimed, err := constructRepo.ClaimGenerating(ctx, fresh.ID)
			require.NoError(t, err)
			assert.False(t, claimed)
		})

		t.Run("CompletedConstructNotListed", func(t *testing.T) {
			done, err := fixtures.CreateTestConstruct(customer.ID, models.GenerationStatusGeneratingQuestions, 2)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(&models.FAQConstruct{}).
				Where("id = ?", done.ID).
				Updates(map[string]any{
					"ai_response": `{"questions":[]}`,
					"updated_at":  utils.UTCNow().Add(-time.Hour),
				}).Error)

			constructs, err := constructRepo.ListPendingGeneration(ctx, 0)
			require.NoError(t, err)
			for _, construct := range constructs {
				assert.NotEqual(t, done.ID, construct.ID)
			}
		})

		return nil
	})
	require.NoError(t, err)
}
