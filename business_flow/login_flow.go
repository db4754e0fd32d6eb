// Package businessflow contains the core business logic and use cases for customer authentication
package businessflow

import (
	"context"
	"strings"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/app/services"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// LoginFlow defines the interface for customer authentication
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	customerRepo repository.CustomerRepository
	sessionRepo  repository.CustomerSessionRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	customerRepo repository.CustomerRepository,
	sessionRepo repository.CustomerSessionRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		customerRepo: customerRepo,
		sessionRepo:  sessionRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a customer and issues a new session
func (l *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	customer, err := l.customerRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to look up customer", err)
	}
	if customer == nil {
		return nil, NewBusinessError(dto.ErrorCustomerNotFound, "Customer not found", ErrCustomerNotFound)
	}
	if !utils.IsTrue(customer.IsActive) {
		return nil, NewBusinessError(dto.ErrorAccountInactive, "Account is deactivated", ErrAccountInactive)
	}
	if !customer.CheckPassword(req.Password) {
		return nil, NewBusinessError(dto.ErrorIncorrectPassword, "Incorrect password", ErrIncorrectPassword)
	}

	session, err := l.issueSession(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	return l.buildLoginResponse(customer, session), nil
}

// RefreshToken rotates an active session's token pair. Expired sessions
// are deactivated and the caller has to log in again.
func (l *LoginFlowImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	session, err := l.sessionRepo.ByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Failed to look up session", err)
	}
	if session == nil {
		return nil, NewBusinessError(dto.ErrorSessionExpired, "Session not found", ErrSessionNotFound)
	}
	if session.IsExpired() {
		if err := l.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, NewBusinessError("REFRESH_FAILED", "Failed to expire session", err)
		}
		return nil, NewBusinessError(dto.ErrorSessionExpired, "Session has expired", ErrSessionExpired)
	}

	customer, err := getCustomer(ctx, l.customerRepo, session.CustomerID)
	if err != nil {
		return nil, err
	}

	// Rotate: retire the old session and issue a fresh pair
	if err := l.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Failed to retire session", err)
	}

	fresh, err := l.issueSession(ctx, customer.ID)
	if err != nil {
		return nil, err
	}

	return l.buildLoginResponse(&customer, fresh), nil
}

// issueSession generates a token pair and persists the session row
func (l *LoginFlowImpl) issueSession(ctx context.Context, customerID uint) (*models.CustomerSession, error) {
	accessToken, refreshToken, err := l.tokenService.GenerateTokens(customerID)
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to generate tokens", err)
	}

	session := &models.CustomerSession{
		CustomerID:   customerID,
		SessionToken: accessToken,
		RefreshToken: refreshToken,
		IsActive:     utils.ToPtr(true),
		ExpiresAt:    utils.UTCNow().Add(utils.SessionTimeout),
	}
	if err := l.sessionRepo.Save(ctx, session); err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to persist session", err)
	}

	return session, nil
}

func (l *LoginFlowImpl) buildLoginResponse(customer *models.Customer, session *models.CustomerSession) *dto.LoginResponse {
	return &dto.LoginResponse{
		Customer: ToAuthCustomerDTO(*customer),
		Session: dto.CustomerSessionDTO{
			SessionToken: session.SessionToken,
			RefreshToken: session.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(utils.AccessTokenTTL.Seconds()),
			CreatedAt:    session.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}
}
