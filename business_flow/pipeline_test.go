// Package businessflow_test contains integration tests for the business flows
package businessflow_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brandaion/platform/app/dto"
	businessflow "github.com/brandaion/platform/business_flow"
	"github.com/brandaion/platform/config"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	testingutil "github.com/brandaion/platform/testing"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineWebhookSecret = "whsec_pipeline_test"

func testBillingConfig() config.BillingConfig {
	return config.BillingConfig{
		WebhookSecret:      pipelineWebhookSecret,
		TimestampTolerance: utils.WebhookTimestampTolerance,
	}
}

func newBillingFlow(testDB *testingutil.TestDB) businessflow.BillingFlow {
	return businessflow.NewBillingFlow(
		repository.NewBillingEventRepository(testDB.DB),
		repository.NewInvoiceRepository(testDB.DB),
		repository.NewCustomerRepository(testDB.DB),
		testDB.DB,
		testBillingConfig(),
	)
}

func TestBillingFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		billingFlow := newBillingFlow(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)

		periodStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		periodEnd := periodStart.Add(28 * 24 * time.Hour)

		t.Run("IngestAndMaterialize", func(t *testing.T) {
			body := testingutil.BuildWebhookPayload("evt_paid_1", models.BillingEventInvoicePaid, customer.Email, periodStart.Unix(), periodEnd.Unix())
			header := testingutil.SignWebhook(body, pipelineWebhookSecret, utils.UTCNow())

			ack, err := billingFlow.IngestWebhook(ctx, header, body, metadata)
			require.NoError(t, err)
			assert.True(t, ack.Received)
			assert.Equal(t, "evt_paid_1", ack.EventID)
			assert.False(t, ack.Duplicate)

			// replay is acknowledged without a second row
			ack, err = billingFlow.IngestWebhook(ctx, header, body, metadata)
			require.NoError(t, err)
			assert.True(t, ack.Duplicate)

			var eventCount int64
			require.NoError(t, testDB.DB.Model(&models.BillingEvent{}).Where("event_id = ?", "evt_paid_1").Count(&eventCount).Error)
			assert.Equal(t, int64(1), eventCount)

			result, err := billingFlow.MaterializeInvoices(ctx, &dto.MaterializeInvoicesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Scanned)
			assert.Equal(t, 1, result.Created)
			require.Len(t, result.Results, 1)
			assert.Equal(t, dto.EventOutcomeCreated, result.Results[0].Outcome)
			assert.NotEmpty(t, result.Results[0].InvoiceUUID)

			var invoice models.Invoice
			require.NoError(t, testDB.DB.Where("provider_invoice_id = ?", "in_test_1").First(&invoice).Error)
			assert.Equal(t, customer.ID, invoice.CustomerID)
			assert.Equal(t, int64(4900), invoice.AmountPaid)
			assert.Equal(t, "starter", invoice.PackageTier)
			assert.Equal(t, 20, invoice.FAQPairsPerMonth)
			assert.Equal(t, 5, invoice.FAQPerBatch)
			assert.True(t, invoice.BillingPeriodStart.Equal(periodStart))
			assert.True(t, invoice.BillingPeriodEnd.Equal(periodEnd))

			// rerunning the scan reports a duplicate, not a second invoice
			result, err = billingFlow.MaterializeInvoices(ctx, &dto.MaterializeInvoicesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 0, result.Created)
		})

		t.Run("RejectsBadSignature", func(t *testing.T) {
			body := testingutil.BuildWebhookPayload("evt_paid_2", models.BillingEventInvoicePaid, customer.Email, periodStart.Unix(), periodEnd.Unix())
			header := testingutil.SignWebhook(body, "whsec_wrong", utils.UTCNow())

			_, err := billingFlow.IngestWebhook(ctx, header, body, metadata)
			assert.True(t, businessflow.IsWebhookSignatureInvalid(err))
		})

		t.Run("RejectsStaleTimestamp", func(t *testing.T) {
			body := testingutil.BuildWebhookPayload("evt_paid_3", models.BillingEventInvoicePaid, customer.Email, periodStart.Unix(), periodEnd.Unix())
			header := testingutil.SignWebhook(body, pipelineWebhookSecret, utils.UTCNow().Add(-10*time.Minute))

			_, err := billingFlow.IngestWebhook(ctx, header, body, metadata)
			assert.True(t, businessflow.IsWebhookTimestampExpired(err))
		})

		t.Run("UnknownEventTypeIsSkipped", func(t *testing.T) {
			event, err := fixtures.CreateTestBillingEvent("customer.subscription.updated", []byte(`{"id":"x"}`))
			require.NoError(t, err)

			result, err := billingFlow.MaterializeInvoices(ctx, &dto.MaterializeInvoicesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Skipped)

			// skipped events stay unprocessed for later releases
			var reloaded models.BillingEvent
			require.NoError(t, testDB.DB.First(&reloaded, event.ID).Error)
			assert.False(t, reloaded.Processed)
		})

		t.Run("UnknownCustomerFailsEvent", func(t *testing.T) {
			require.NoError(t, testDB.DB.Model(&models.BillingEvent{}).
				Where("event_type = ?", "customer.subscription.updated").
				Update("processed", true).Error)

			body := testingutil.BuildWebhookPayload("evt_paid_4", models.BillingEventInvoicePaid, "stranger@example.com", periodStart.Unix(), periodEnd.Unix())
			header := testingutil.SignWebhook(body, pipelineWebhookSecret, utils.UTCNow())
			_, err := billingFlow.IngestWebhook(ctx, header, body, metadata)
			require.NoError(t, err)

			result, err := billingFlow.MaterializeInvoices(ctx, &dto.MaterializeInvoicesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Failed)
		})

		t.Run("DuplicateInvoiceEventStaysProcessed", func(t *testing.T) {
			// a second provider delivery referencing the already
			// materialized invoice id
			body := testingutil.BuildWebhookPayload("evt_paid_5", models.BillingEventInvoicePaid, customer.Email, periodStart.Unix(), periodEnd.Unix())
			header := testingutil.SignWebhook(body, pipelineWebhookSecret, utils.UTCNow())
			_, err := billingFlow.IngestWebhook(ctx, header, body, metadata)
			require.NoError(t, err)

			result, err := billingFlow.MaterializeInvoices(ctx, &dto.MaterializeInvoicesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Duplicates)
			assert.Equal(t, 0, result.Created)

			// the duplicate marking must survive the transaction so the
			// event is never rescanned
			var reloaded models.BillingEvent
			require.NoError(t, testDB.DB.Where("event_id = ?", "evt_paid_5").First(&reloaded).Error)
			assert.True(t, reloaded.Processed)

			result, err = billingFlow.MaterializeInvoices(ctx, &dto.MaterializeInvoicesRequest{}, metadata)
			require.NoError(t, err)
			for _, item := range result.Results {
				assert.NotEqual(t, "evt_paid_5", item.EventID)
			}

			var invoiceCount int64
			require.NoError(t, testDB.DB.Model(&models.Invoice{}).
				Where("provider_invoice_id = ?", "in_test_1").
				Count(&invoiceCount).Error)
			assert.Equal(t, int64(1), invoiceCount)
		})

		t.Run("ListInvoices", func(t *testing.T) {
			page, err := billingFlow.ListInvoices(ctx, customer.ID, &dto.ListInvoicesRequest{Page: 1, PageSize: 10}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(1), page.Total)
			require.Len(t, page.Invoices, 1)
			assert.Equal(t, "in_test_1", page.Invoices[0].ProviderInvoiceID)

			_, err = billingFlow.ListInvoices(ctx, customer.ID, &dto.ListInvoicesRequest{Page: -1}, metadata)
			assert.True(t, businessflow.IsInvalidPage(err))

			_, err = billingFlow.ListInvoices(ctx, customer.ID, &dto.ListInvoicesRequest{PageSize: 500}, metadata)
			assert.True(t, businessflow.IsInvalidPageSize(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestScheduleFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		scheduleFlow := businessflow.NewScheduleFlow(
			repository.NewInvoiceRepository(testDB.DB),
			repository.NewScheduleRepository(testDB.DB),
			repository.NewOrganizationRepository(testDB.DB),
			testDB.DB,
		)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		organization, err := fixtures.CreateTestOrganization(customer.ID)
		require.NoError(t, err)
		require.NotZero(t, organization.ID)

		t.Run("SpreadsDispatchesAcrossPeriod", func(t *testing.T) {
			invoice, err := fixtures.CreateTestInvoice(customer.ID, customer.Email)
			require.NoError(t, err)

			result, err := scheduleFlow.GenerateSchedules(ctx, customer.ID, &dto.GenerateSchedulesRequest{
				InvoiceUUID: invoice.UUID.String(),
			}, metadata)
			require.NoError(t, err)
			require.Len(t, result.Schedules, utils.SchedulesPerInvoice)
			assert.NotEmpty(t, result.BatchClusterID)

			// 28-day period, 4 dispatches: days 0, 7, 14, 21
			for i, schedule := range result.Schedules {
				expected := invoice.BillingPeriodStart.Add(time.Duration(i*7) * 24 * time.Hour)
				assert.True(t, schedule.DispatchDate.Equal(expected), "dispatch %d: got %s want %s", i, schedule.DispatchDate, expected)
				assert.Equal(t, invoice.FAQPerBatch, schedule.FAQPairsPerBatch)
				assert.Equal(t, invoice.FAQPairsPerMonth, schedule.TotalFAQPairs)
			}

			// every dispatch gets its own batch id inside one cluster
			seen := map[string]bool{}
			for _, schedule := range result.Schedules {
				assert.Equal(t, result.BatchClusterID, schedule.BatchClusterID)
				assert.False(t, seen[schedule.BatchID])
				seen[schedule.BatchID] = true
			}

			t.Run("SecondRunConflicts", func(t *testing.T) {
				_, err := scheduleFlow.GenerateSchedules(ctx, customer.ID, &dto.GenerateSchedulesRequest{
					InvoiceUUID: invoice.UUID.String(),
				}, metadata)
				assert.True(t, businessflow.IsInvoiceAlreadyScheduled(err))
			})
		})

		t.Run("RejectsForeignInvoice", func(t *testing.T) {
			invoice, err := fixtures.CreateTestInvoice(customer.ID, customer.Email)
			require.NoError(t, err)

			_, err = scheduleFlow.GenerateSchedules(ctx, customer.ID+1000, &dto.GenerateSchedulesRequest{
				InvoiceUUID: invoice.UUID.String(),
			}, metadata)
			assert.True(t, businessflow.IsInvoiceAccessDenied(err))
		})

		t.Run("RejectsShortBillingPeriod", func(t *testing.T) {
			invoice, err := fixtures.CreateTestInvoice(customer.ID, customer.Email)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(invoice).
				Update("billing_period_end", invoice.BillingPeriodStart.Add(48*time.Hour)).Error)

			_, err = scheduleFlow.GenerateSchedules(ctx, customer.ID, &dto.GenerateSchedulesRequest{
				InvoiceUUID: invoice.UUID.String(),
			}, metadata)
			assert.True(t, businessflow.IsBillingPeriodInvalid(err))
		})

		t.Run("UnknownInvoice", func(t *testing.T) {
			_, err := scheduleFlow.GenerateSchedules(ctx, customer.ID, &dto.GenerateSchedulesRequest{
				InvoiceUUID: uuid.New().String(),
			}, metadata)
			assert.True(t, businessflow.IsInvoiceNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestConstructFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		constructFlow := businessflow.NewConstructFlow(
			repository.NewCustomerRepository(testDB.DB),
			repository.NewClientConfigurationRepository(testDB.DB),
			repository.NewScheduleRepository(testDB.DB),
			repository.NewFAQConstructRepository(testDB.DB),
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

		t.Run("RequiresConfiguration", func(t *testing.T) {
			_, err := constructFlow.ProcessSchedules(ctx, customer.ID, &dto.ProcessSchedulesRequest{}, metadata)
			assert.True(t, businessflow.IsConfigurationNotFound(err))
		})

		configuration, err := fixtures.CreateTestConfiguration(customer.ID, brand, product)
		require.NoError(t, err)

		t.Run("MergesConfigurationOntoSchedules", func(t *testing.T) {
			invoice, err := fixtures.CreateTestInvoice(customer.ID, customer.Email)
			require.NoError(t, err)
			first, err := fixtures.CreateTestSchedule(invoice, organization.ID)
			require.NoError(t, err)
			second, err := fixtures.CreateTestSchedule(invoice, organization.ID)
			require.NoError(t, err)

			result, err := constructFlow.ProcessSchedules(ctx, customer.ID, &dto.ProcessSchedulesRequest{}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(2), result.Claimed)
			require.Len(t, result.Constructs, 2)

			batchIDs := map[string]bool{
				first.BatchID.String():  false,
				second.BatchID.String(): false,
			}
			for _, construct := range result.Constructs {
				batchIDs[construct.BatchID] = true
				assert.Equal(t, string(models.GenerationStatusPending), construct.Status)
				assert.Equal(t, first.FAQPairsPerBatch, construct.PairCount)
			}
			for batchID, covered := range batchIDs {
				assert.True(t, covered, batchID)
			}

			// the stored construct carries a frozen copy of the configuration
			var stored models.FAQConstruct
			require.NoError(t, testDB.DB.Where("batch_id = ?", first.BatchID).First(&stored).Error)
			assert.Equal(t, configuration.BrandName, stored.Snapshot.BrandName)
			assert.Equal(t, configuration.ProductName, stored.Snapshot.ProductName)
			assert.Equal(t, configuration.PersonaName, stored.Snapshot.PersonaName)

			t.Run("RerunClaimsNothing", func(t *testing.T) {
				result, err := constructFlow.ProcessSchedules(ctx, customer.ID, &dto.ProcessSchedulesRequest{}, metadata)
				require.NoError(t, err)
				assert.Zero(t, result.Claimed)
				assert.Empty(t, result.Constructs)
			})
		})

		t.Run("HonorsExplicitScheduleSelection", func(t *testing.T) {
			invoice, err := fixtures.CreateTestInvoice(customer.ID, customer.Email)
			require.NoError(t, err)
			wanted, err := fixtures.CreateTestSchedule(invoice, organization.ID)
			require.NoError(t, err)
			skipped, err := fixtures.CreateTestSchedule(invoice, organization.ID)
			require.NoError(t, err)

			result, err := constructFlow.ProcessSchedules(ctx, customer.ID, &dto.ProcessSchedulesRequest{
				ScheduleIDs: []uint{wanted.ID},
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(1), result.Claimed)
			require.Len(t, result.Constructs, 1)
			assert.Equal(t, wanted.BatchID.String(), result.Constructs[0].BatchID)

			var reloaded models.Schedule
			require.NoError(t, testDB.DB.First(&reloaded, skipped.ID).Error)
			assert.False(t, reloaded.SentForProcessing)
		})

		t.Run("ConcurrentMergersClaimEachScheduleOnce", func(t *testing.T) {
			invoice, err := fixtures.CreateTestInvoice(customer.ID, customer.Email)
			require.NoError(t, err)

			schedules := make([]*models.Schedule, 4)
			batchIDs := make([]uuid.UUID, 4)
			for i := range schedules {
				schedule, err := fixtures.CreateTestSchedule(invoice, organization.ID)
				require.NoError(t, err)
				schedules[i] = schedule
				batchIDs[i] = schedule.BatchID
			}

			const mergers = 4
			results := make([]*dto.ProcessSchedulesResponse, mergers)
			errs := make([]error, mergers)
			var wg sync.WaitGroup
			for i := 0; i < mergers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = constructFlow.ProcessSchedules(ctx, customer.ID, &dto.ProcessSchedulesRequest{}, metadata)
				}(i)
			}
			wg.Wait()

			var claimed int64
			for i := 0; i < mergers; i++ {
				require.NoError(t, errs[i])
				claimed += results[i].Claimed
			}
			// the conditional claim hands each schedule to exactly one merger
			assert.Equal(t, int64(4), claimed)

			var constructCount int64
			require.NoError(t, testDB.DB.Model(&models.FAQConstruct{}).
				Where("batch_id IN ?", batchIDs).
				Count(&constructCount).Error)
			assert.Equal(t, int64(4), constructCount)

			for _, schedule := range schedules {
				var reloaded models.Schedule
				require.NoError(t, testDB.DB.First(&reloaded, schedule.ID).Error)
				assert.True(t, reloaded.SentForProcessing)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

// recordingTrigger captures fire-and-forget answer triggers
type recordingTrigger struct {
	batches []uuid.UUID
}

func (r *recordingTrigger) TriggerBatch(batchID uuid.UUID) {
	r.batches = append(r.batches, batchID)
}

func TestReviewAssemblyPublish(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		questionRepo := repository.NewQuestionRepository(testDB.DB)
		constructRepo := repository.NewFAQConstructRepository(testDB.DB)
		trigger := &recordingTrigger{}

		reviewFlow := businessflow.NewReviewFlow(questionRepo, constructRepo, trigger)
		assemblyFlow := businessflow.NewAssemblyFlow(
			constructRepo,
			questionRepo,
			repository.NewBatchRepository(testDB.DB),
		)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		construct, err := fixtures.CreateTestConstruct(customer.ID, models.GenerationStatusQuestionsGenerated, 3)
		require.NoError(t, err)

		questions := make([]*models.Question, 0, 3)
		for i := 1; i <= 3; i++ {
			question, err := fixtures.CreateTestQuestion(construct, fmt.Sprintf("Question %d?", i), models.ReviewStatusPending)
			require.NoError(t, err)
			questions = append(questions, question)
		}

		batchID := construct.BatchID.String()

		t.Run("ListQuestions", func(t *testing.T) {
			result, err := reviewFlow.ListQuestions(ctx, customer.ID, batchID, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(3), result.Total)
			assert.Zero(t, result.Approved)
			require.Len(t, result.Questions, 3)
			assert.Equal(t, "Question 1?", result.Questions[0].QuestionText)
		})

		t.Run("ForeignCustomerCannotList", func(t *testing.T) {
			_, err := reviewFlow.ListQuestions(ctx, customer.ID+1000, batchID, metadata)
			assert.True(t, businessflow.IsBatchAccessDenied(err))
		})

		t.Run("UpdateQuestionMarksEdited", func(t *testing.T) {
			result, err := reviewFlow.UpdateQuestion(ctx, customer.ID, questions[0].ID, &dto.UpdateQuestionRequest{
				QuestionText: "Question one, sharpened?",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "Question one, sharpened?", result.Question.QuestionText)
			assert.Equal(t, string(models.ReviewStatusEdited), result.Question.ReviewStatus)
		})

		t.Run("PartialApprovalDoesNotTrigger", func(t *testing.T) {
			result, err := reviewFlow.ApproveQuestions(ctx, customer.ID, batchID, &dto.ApproveQuestionsRequest{
				QuestionIDs: []uint{questions[0].ID, questions[1].ID},
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, int64(2), result.Approved)
			assert.False(t, result.FullyApproved)
			assert.False(t, result.AnswersTriggered)
			assert.Empty(t, trigger.batches)
		})

		t.Run("FullApprovalTriggersAnswers", func(t *testing.T) {
			result, err := reviewFlow.ApproveQuestions(ctx, customer.ID, batchID, &dto.ApproveQuestionsRequest{
				QuestionIDs: []uint{questions[2].ID},
			}, metadata)
			require.NoError(t, err)
			assert.True(t, result.FullyApproved)
			assert.True(t, result.AnswersTriggered)
			require.Len(t, trigger.batches, 1)
			assert.Equal(t, construct.BatchID, trigger.batches[0])
		})

		t.Run("AssemblyRefusesIncompleteBatch", func(t *testing.T) {
			_, err := assemblyFlow.AssembleBatch(ctx, customer.ID, batchID, metadata)
			assert.True(t, businessflow.IsBatchIncomplete(err))
		})

		// fill in the answers the generation worker would have produced
		for i, question := range questions {
			require.NoError(t, questionRepo.CompleteAnswer(ctx, question.ID, fmt.Sprintf("Answer %d.", i+1), nil))
		}

		t.Run("AssembleAndPublish", func(t *testing.T) {
			result, err := assemblyFlow.AssembleBatch(ctx, customer.ID, batchID, metadata)
			require.NoError(t, err)
			assert.Equal(t, batchID, result.Batch.BatchID)
			assert.Equal(t, string(models.BatchStatusGenerated), result.Batch.Status)
			assert.Equal(t, 3, result.Batch.PairCount)

			var storedBatch models.Batch
			require.NoError(t, testDB.DB.Where("batch_id = ?", construct.BatchID).First(&storedBatch).Error)
			require.Len(t, storedBatch.Document.Pairs, 3)
			assert.Equal(t, "Answer 1.", storedBatch.Document.Pairs[0].Answer)
			assert.Equal(t, "FAQPage", storedBatch.Document.Type)

			// reassembly overwrites in place, no duplicate rows
			_, err = assemblyFlow.AssembleBatch(ctx, customer.ID, batchID, metadata)
			require.NoError(t, err)
			var batchCount int64
			require.NoError(t, testDB.DB.Model(&models.Batch{}).Where("batch_id = ?", construct.BatchID).Count(&batchCount).Error)
			assert.Equal(t, int64(1), batchCount)

			published, err := assemblyFlow.PublishBatch(ctx, customer.ID, batchID, metadata)
			require.NoError(t, err)
			assert.Equal(t, string(models.BatchStatusPublished), published.Status)

			_, err = assemblyFlow.PublishBatch(ctx, customer.ID, batchID, metadata)
			assert.True(t, businessflow.IsBatchAlreadyPublished(err))

			listed, err := assemblyFlow.ListBatches(ctx, customer.ID, metadata)
			require.NoError(t, err)
			require.Len(t, listed.Batches, 1)
			assert.Equal(t, string(models.BatchStatusPublished), listed.Batches[0].Status)
		})

		t.Run("UnknownBatch", func(t *testing.T) {
			_, err := reviewFlow.ListQuestions(ctx, customer.ID, uuid.New().String(), metadata)
			assert.True(t, businessflow.IsBatchNotFound(err))

			_, err = assemblyFlow.AssembleBatch(ctx, customer.ID, "not-a-uuid", metadata)
			assert.True(t, businessflow.IsBatchNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
