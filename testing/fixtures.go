// Package testing provides test utilities and database setup for testing the FAQ pipeline
package testing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext behind every fixture customer's hash
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCustomer creates an active customer with a unique email
func (tf *TestFixtures) CreateTestCustomer() (*models.Customer, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customer := &models.Customer{
		Email:        fmt.Sprintf("jane.doe.%d@example.com", rand.Intn(100000000)),
		FirstName:    "Jane",
		LastName:     "Doe",
		PasswordHash: string(hashedPassword),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}

	return customer, nil
}

// CreateTestOrganization creates an organization owned by the customer
func (tf *TestFixtures) CreateTestOrganization(customerID uint) (*models.Organization, error) {
	url := "https://acme.example.com"
	industry := "Software"

	organization := &models.Organization{
		CustomerID: customerID,
		Name:       "Acme Corp",
		URL:        &url,
		Industry:   &industry,
		JSONLD:     json.RawMessage(`{"@context":"https://schema.org","@type":"Organization","name":"Acme Corp"}`),
	}

	if err := tf.DB.DB.Create(organization).Error; err != nil {
		return nil, fmt.Errorf("failed to create test organization: %w", err)
	}

	return organization, nil
}

// CreateTestBrand creates a brand inside the organization
func (tf *TestFixtures) CreateTestBrand(organizationID uint, name string) (*models.Brand, error) {
	brand := &models.Brand{
		OrganizationID: organizationID,
		Name:           name,
		JSONLD:         json.RawMessage(fmt.Sprintf(`{"@context":"https://schema.org","@type":"Brand","name":%q}`, name)),
	}

	if err := tf.DB.DB.Create(brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create test brand: %w", err)
	}

	return brand, nil
}

// CreateTestProduct creates a product under the brand
func (tf *TestFixtures) CreateTestProduct(brandID uint, name string) (*models.Product, error) {
	product := &models.Product{
		BrandID: brandID,
		Name:    name,
		JSONLD:  json.RawMessage(fmt.Sprintf(`{"@context":"https://schema.org","@type":"Product","name":%q}`, name)),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}

	return product, nil
}

// CreateTestConfiguration creates the customer's current selection
func (tf *TestFixtures) CreateTestConfiguration(customerID uint, brand *models.Brand, product *models.Product) (*models.ClientConfiguration, error) {
	configuration := &models.ClientConfiguration{
		CustomerID:       customerID,
		BrandID:          brand.ID,
		ProductID:        product.ID,
		OrganizationName: "Acme Corp",
		BrandName:        brand.Name,
		ProductName:      product.Name,
		PersonaName:      "Support Expert",
		AudienceName:     "Developers",
		MarketName:       "Global",
		BrandJSONLD:      brand.JSONLD,
		ProductJSONLD:    product.JSONLD,
	}

	if err := tf.DB.DB.Create(configuration).Error; err != nil {
		return nil, fmt.Errorf("failed to create test configuration: %w", err)
	}

	return configuration, nil
}

// CreateTestInvoice creates an unscheduled paid invoice covering a 28-day period
func (tf *TestFixtures) CreateTestInvoice(customerID uint, email string) (*models.Invoice, error) {
	periodStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	invoice := &models.Invoice{
		CustomerID:         customerID,
		ProviderInvoiceID:  fmt.Sprintf("in_%d", rand.Intn(100000000)),
		CustomerEmail:      email,
		AmountPaid:         4900,
		PackageTier:        "starter",
		FAQPairsPerMonth:   20,
		FAQPerBatch:        5,
		BillingPeriodStart: periodStart,
		BillingPeriodEnd:   periodStart.Add(28 * 24 * time.Hour),
		PaidAt:             periodStart,
	}

	if err := tf.DB.DB.Create(invoice).Error; err != nil {
		return nil, fmt.Errorf("failed to create test invoice: %w", err)
	}

	return invoice, nil
}

// CreateTestSchedule creates one unprocessed schedule row for the invoice
func (tf *TestFixtures) CreateTestSchedule(invoice *models.Invoice, organizationID uint) (*models.Schedule, error) {
	schedule := &models.Schedule{
		CustomerID:       invoice.CustomerID,
		OrganizationID:   organizationID,
		InvoiceID:        invoice.ID,
		BatchClusterID:   uuid.New(),
		BatchID:          uuid.New(),
		DispatchDate:     invoice.BillingPeriodStart,
		FAQPairsPerBatch: invoice.FAQPerBatch,
		TotalFAQPairs:    invoice.FAQPairsPerMonth,
	}

	if err := tf.DB.DB.Create(schedule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test schedule: %w", err)
	}

	return schedule, nil
}

// CreateTestConstruct creates a construct in the given generation status
func (tf *TestFixtures) CreateTestConstruct(customerID uint, status models.GenerationStatus, pairCount int) (*models.FAQConstruct, error) {
	construct := &models.FAQConstruct{
		CustomerID:     customerID,
		BatchID:        uuid.New(),
		BatchClusterID: uuid.New(),
		DispatchDate:   utils.UTCNow(),
		PairCount:      pairCount,
		Status:         status,
		Snapshot: models.ConfigSnapshot{
			OrganizationName: "Acme Corp",
			BrandName:        "Acme",
			ProductName:      "Acme Widgets",
			PersonaName:      "Support Expert",
			AudienceName:     "Developers",
			MarketName:       "Global",
		},
	}

	if err := tf.DB.DB.Create(construct).Error; err != nil {
		return nil, fmt.Errorf("failed to create test construct: %w", err)
	}

	return construct, nil
}

// CreateTestQuestion creates one question attached to the construct
func (tf *TestFixtures) CreateTestQuestion(construct *models.FAQConstruct, text string, reviewStatus models.ReviewStatus) (*models.Question, error) {
	question := &models.Question{
		ConstructID:  construct.ID,
		BatchID:      construct.BatchID,
		QuestionText: text,
		AnswerStatus: models.AnswerStatusPending,
		ReviewStatus: reviewStatus,
	}

	if err := tf.DB.DB.Create(question).Error; err != nil {
		return nil, fmt.Errorf("failed to create test question: %w", err)
	}

	return question, nil
}

// CreateAnsweredQuestion creates a fully answered, approved question
func (tf *TestFixtures) CreateAnsweredQuestion(construct *models.FAQConstruct, text, answer string) (*models.Question, error) {
	question := &models.Question{
		ConstructID:  construct.ID,
		BatchID:      construct.BatchID,
		QuestionText: text,
		AnswerText:   &answer,
		AnswerStatus: models.AnswerStatusCompleted,
		ReviewStatus: models.ReviewStatusApproved,
	}

	if err := tf.DB.DB.Create(question).Error; err != nil {
		return nil, fmt.Errorf("failed to create answered question: %w", err)
	}

	return question, nil
}

// CreateTestBatch creates a published-or-generated batch with a small document
func (tf *TestFixtures) CreateTestBatch(customerID uint, status models.BatchStatus, productName string) (*models.Batch, error) {
	batchID := uuid.New()

	batch := &models.Batch{
		CustomerID:       customerID,
		BatchID:          batchID,
		BatchClusterID:   uuid.New(),
		OrganizationName: "Acme Corp",
		BrandName:        "Acme",
		ProductName:      productName,
		AudienceName:     "Developers",
		Status:           status,
		Document: models.FAQPairsDocument{
			Context: "https://schema.org",
			Type:    "FAQPage",
			BatchID: batchID.String(),
			Pairs: []models.FAQPair{
				{Question: "What is it?", Answer: "A widget."},
				{Question: "How much?", Answer: "Less than you think."},
			},
		},
	}

	if err := tf.DB.DB.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("failed to create test batch: %w", err)
	}

	return batch, nil
}

// CreateTestBillingEvent stores one unprocessed provider event
func (tf *TestFixtures) CreateTestBillingEvent(eventType string, payload []byte) (*models.BillingEvent, error) {
	event := &models.BillingEvent{
		EventID:   fmt.Sprintf("evt_%d", rand.Intn(100000000)),
		EventType: eventType,
		Payload:   json.RawMessage(payload),
	}

	if err := tf.DB.DB.Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create test billing event: %w", err)
	}

	return event, nil
}

// BuildWebhookPayload renders a provider envelope for an invoice.paid event
func BuildWebhookPayload(eventID, eventType, email string, periodStart, periodEnd int64) []byte {
	payload := fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"created": %d,
		"data": {
			"object": {
				"id": "in_test_1",
				"customer_email": %q,
				"amount_paid": 4900,
				"period_start": %d,
				"period_end": %d,
				"metadata": {"package_tier": "starter", "faq_pairs_per_month": "20", "faq_per_batch": "5"}
			}
		}
	}`, eventID, eventType, periodStart, email, periodStart, periodEnd)
	return []byte(payload)
}

// SignWebhook produces the "t=<unix>,v1=<hex>" header for a payload
func SignWebhook(body []byte, secret string, at time.Time) string {
	timestamp := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
