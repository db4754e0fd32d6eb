// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// getCustomer loads an active customer or returns the matching sentinel
func getCustomer(ctx context.Context, customerRepo repository.CustomerRepository, customerID uint) (models.Customer, error) {
	customer, err := customerRepo.ByID(ctx, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	if customer == nil {
		return models.Customer{}, ErrCustomerNotFound
	}
	if customer.IsActive != nil && !*customer.IsActive {
		return models.Customer{}, ErrAccountInactive
	}

	return *customer, nil
}

// getOrganization resolves the organization owned by a customer
func getOrganization(ctx context.Context, organizationRepo repository.OrganizationRepository, customerID uint) (models.Organization, error) {
	organization, err := organizationRepo.ByCustomerID(ctx, customerID)
	if err != nil {
		return models.Organization{}, err
	}
	if organization == nil {
		return models.Organization{}, ErrOrganizationNotFound
	}

	return *organization, nil
}

// ToAuthCustomerDTO converts a customer model to AuthCustomerDTO for authentication responses
func ToAuthCustomerDTO(customer models.Customer) dto.AuthCustomerDTO {
	return dto.AuthCustomerDTO{
		ID:        customer.ID,
		UUID:      customer.UUID.String(),
		Email:     customer.Email,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		IsActive:  customer.IsActive,
		CreatedAt: customer.CreatedAt.Format(time.RFC3339),
	}
}

func ToCustomerSessionDTO(session models.CustomerSession) dto.CustomerSessionDTO {
	return dto.CustomerSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

func ToInvoiceDTO(invoice models.Invoice) dto.InvoiceDTO {
	return dto.InvoiceDTO{
		UUID:               invoice.UUID.String(),
		ProviderInvoiceID:  invoice.ProviderInvoiceID,
		CustomerEmail:      invoice.CustomerEmail,
		AmountPaid:         invoice.AmountPaid,
		PackageTier:        invoice.PackageTier,
		FAQPairsPerMonth:   invoice.FAQPairsPerMonth,
		FAQPerBatch:        invoice.FAQPerBatch,
		BillingPeriodStart: invoice.BillingPeriodStart,
		BillingPeriodEnd:   invoice.BillingPeriodEnd,
		PaidAt:             invoice.PaidAt,
		SentToSchedule:     invoice.SentToSchedule,
	}
}

func ToScheduleDTO(schedule models.Schedule) dto.ScheduleDTO {
	return dto.ScheduleDTO{
		ID:                schedule.ID,
		InvoiceID:         schedule.InvoiceID,
		BatchID:           schedule.BatchID.String(),
		BatchClusterID:    schedule.BatchClusterID.String(),
		DispatchDate:      schedule.DispatchDate,
		FAQPairsPerBatch:  schedule.FAQPairsPerBatch,
		TotalFAQPairs:     schedule.TotalFAQPairs,
		SentForProcessing: schedule.SentForProcessing,
	}
}

func ToFAQConstructDTO(construct models.FAQConstruct) dto.FAQConstructDTO {
	return dto.FAQConstructDTO{
		ID:             construct.ID,
		BatchID:        construct.BatchID.String(),
		BatchClusterID: construct.BatchClusterID.String(),
		DispatchDate:   construct.DispatchDate,
		PairCount:      construct.PairCount,
		Status:         construct.Status.String(),
		ErrorMessage:   construct.ErrorMessage,
	}
}

func ToQuestionDTO(question models.Question) dto.QuestionDTO {
	return dto.QuestionDTO{
		ID:           question.ID,
		BatchID:      question.BatchID.String(),
		QuestionText: question.QuestionText,
		Topic:        question.Topic,
		AnswerText:   question.AnswerText,
		AnswerStatus: string(question.AnswerStatus),
		ReviewStatus: string(question.ReviewStatus),
		ErrorMessage: question.ErrorMessage,
		CreatedAt:    question.CreatedAt,
	}
}

func ToBatchDTO(batch models.Batch) dto.BatchDTO {
	return dto.BatchDTO{
		BatchID:          batch.BatchID.String(),
		BatchClusterID:   batch.BatchClusterID.String(),
		OrganizationName: batch.OrganizationName,
		BrandName:        batch.BrandName,
		ProductName:      batch.ProductName,
		AudienceName:     batch.AudienceName,
		Status:           string(batch.Status),
		PairCount:        len(batch.Document.Pairs),
		CreatedAt:        batch.CreatedAt,
	}
}

func ToSnapshotDTO(snapshot models.DiscoverySnapshot) dto.SnapshotDTO {
	return dto.SnapshotDTO{
		OwnerType:    string(snapshot.OwnerType),
		OwnerID:      snapshot.OwnerID,
		ChildNames:   snapshot.ChildNames,
		BrandCount:   snapshot.BrandCount,
		ProductCount: snapshot.ProductCount,
		FAQCount:     snapshot.FAQCount,
		EnrichedAt:   snapshot.EnrichedAt,
		Document:     snapshot.Document,
	}
}

func ToConfigurationDTO(configuration models.ClientConfiguration) dto.ConfigurationDTO {
	return dto.ConfigurationDTO{
		BrandID:            configuration.BrandID,
		ProductID:          configuration.ProductID,
		OrganizationName:   configuration.OrganizationName,
		BrandName:          configuration.BrandName,
		ProductName:        configuration.ProductName,
		PersonaName:        configuration.PersonaName,
		AudienceName:       configuration.AudienceName,
		MarketName:         configuration.MarketName,
		OrganizationJSONLD: configuration.OrganizationJSONLD,
		BrandJSONLD:        configuration.BrandJSONLD,
		ProductJSONLD:      configuration.ProductJSONLD,
		PersonaJSONLD:      configuration.PersonaJSONLD,
		AudienceJSONLD:     configuration.AudienceJSONLD,
		MarketJSONLD:       configuration.MarketJSONLD,
		UpdatedAt:          configuration.UpdatedAt,
	}
}
