// Package businessflow contains the core business logic and use cases for the FAQ pipeline
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Customer-related errors
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session has expired")

	// Billing webhook errors
	ErrWebhookSignatureInvalid = errors.New("webhook signature is invalid")
	ErrWebhookTimestampExpired = errors.New("webhook timestamp is outside the tolerance window")
	ErrWebhookPayloadInvalid   = errors.New("webhook payload is invalid")
	ErrEventNotFound           = errors.New("billing event not found")
	ErrEventAlreadyProcessed   = errors.New("billing event already processed")

	// Invoice and schedule errors
	ErrInvoiceNotFound          = errors.New("invoice not found")
	ErrInvoiceAccessDenied      = errors.New("invoice access denied")
	ErrInvoiceAlreadyScheduled  = errors.New("invoice already sent to schedule")
	ErrBillingPeriodInvalid     = errors.New("billing period is invalid")
	ErrScheduleNotFound         = errors.New("schedule not found")
	ErrNoPendingSchedules       = errors.New("no pending schedules")
	ErrScheduleAlreadyClaimed   = errors.New("schedule already claimed for processing")
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrBrandNotFound            = errors.New("brand not found")
	ErrProductNotFound          = errors.New("product not found")
	ErrConfigurationNotFound    = errors.New("client configuration not found")
	ErrConfigurationIncomplete  = errors.New("client configuration is incomplete")
	ErrBrandNotInOrganization   = errors.New("brand does not belong to the organization")
	ErrProductNotInBrand        = errors.New("product does not belong to the brand")

	// Generation and review errors
	ErrConstructNotFound     = errors.New("construct not found")
	ErrConstructNotClaimable = errors.New("construct is not in a claimable state")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrQuestionAccessDenied  = errors.New("question access denied")
	ErrNoQuestionsSelected   = errors.New("no questions selected")

	// Assembly and publication errors
	ErrBatchNotFound         = errors.New("batch not found")
	ErrBatchAccessDenied     = errors.New("batch access denied")
	ErrBatchIncomplete       = errors.New("batch has unanswered questions")
	ErrBatchAlreadyPublished = errors.New("batch already published")

	// Discovery and enrichment errors
	ErrSnapshotNotFound      = errors.New("discovery snapshot not found")
	ErrDiscoveryFileNotFound = errors.New("discovery file not found")

	// Completion provider errors
	ErrCompletionTimeout = errors.New("completion job did not finish in time")
	ErrCompletionEmpty   = errors.New("completion result is empty")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsWebhookSignatureInvalid(err error) bool {
	return errors.Is(err, ErrWebhookSignatureInvalid)
}

func IsWebhookTimestampExpired(err error) bool {
	return errors.Is(err, ErrWebhookTimestampExpired)
}

func IsWebhookPayloadInvalid(err error) bool {
	return errors.Is(err, ErrWebhookPayloadInvalid)
}

func IsEventNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound)
}

func IsEventAlreadyProcessed(err error) bool {
	return errors.Is(err, ErrEventAlreadyProcessed)
}

func IsInvoiceNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound)
}

func IsInvoiceAccessDenied(err error) bool {
	return errors.Is(err, ErrInvoiceAccessDenied)
}

func IsInvoiceAlreadyScheduled(err error) bool {
	return errors.Is(err, ErrInvoiceAlreadyScheduled)
}

func IsBillingPeriodInvalid(err error) bool {
	return errors.Is(err, ErrBillingPeriodInvalid)
}

func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

func IsNoPendingSchedules(err error) bool {
	return errors.Is(err, ErrNoPendingSchedules)
}

func IsScheduleAlreadyClaimed(err error) bool {
	return errors.Is(err, ErrScheduleAlreadyClaimed)
}

func IsOrganizationNotFound(err error) bool {
	return errors.Is(err, ErrOrganizationNotFound)
}

func IsBrandNotFound(err error) bool {
	return errors.Is(err, ErrBrandNotFound)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsConfigurationNotFound(err error) bool {
	return errors.Is(err, ErrConfigurationNotFound)
}

func IsConfigurationIncomplete(err error) bool {
	return errors.Is(err, ErrConfigurationIncomplete)
}

func IsBrandNotInOrganization(err error) bool {
	return errors.Is(err, ErrBrandNotInOrganization)
}

func IsProductNotInBrand(err error) bool {
	return errors.Is(err, ErrProductNotInBrand)
}

func IsConstructNotFound(err error) bool {
	return errors.Is(err, ErrConstructNotFound)
}

func IsConstructNotClaimable(err error) bool {
	return errors.Is(err, ErrConstructNotClaimable)
}

func IsQuestionNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound)
}

func IsQuestionAccessDenied(err error) bool {
	return errors.Is(err, ErrQuestionAccessDenied)
}

func IsNoQuestionsSelected(err error) bool {
	return errors.Is(err, ErrNoQuestionsSelected)
}

func IsBatchNotFound(err error) bool {
	return errors.Is(err, ErrBatchNotFound)
}

func IsBatchAccessDenied(err error) bool {
	return errors.Is(err, ErrBatchAccessDenied)
}

func IsBatchIncomplete(err error) bool {
	return errors.Is(err, ErrBatchIncomplete)
}

func IsBatchAlreadyPublished(err error) bool {
	return errors.Is(err, ErrBatchAlreadyPublished)
}

func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

func IsDiscoveryFileNotFound(err error) bool {
	return errors.Is(err, ErrDiscoveryFileNotFound)
}

func IsCompletionTimeout(err error) bool {
	return errors.Is(err, ErrCompletionTimeout)
}

func IsCompletionEmpty(err error) bool {
	return errors.Is(err, ErrCompletionEmpty)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
