package models

import (
	"time"

	"github.com/brandaion/platform/utils"
	"gorm.io/gorm"
)

// CustomerSession tracks one issued access/refresh token pair
type CustomerSession struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CustomerID   uint       `gorm:"not null;index:idx_customer_sessions_customer_id" json:"customer_id"`
	SessionToken string     `gorm:"size:1024;not null;index:idx_customer_sessions_session_token" json:"session_token"`
	RefreshToken string     `gorm:"size:1024;not null;index:idx_customer_sessions_refresh_token" json:"refresh_token"`
	IsActive     *bool      `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt    time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`

	// Relations
	Customer *Customer `gorm:"foreignKey:CustomerID;references:ID" json:"customer,omitempty"`
}

// TableName returns the table name for the model
func (CustomerSession) TableName() string {
	return "customer_sessions"
}

// BeforeCreate is called before creating a new record
func (s *CustomerSession) BeforeCreate(tx *gorm.DB) error {
	if s.IsActive == nil {
		s.IsActive = utils.ToPtr(true)
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = utils.UTCNow().Add(utils.SessionTimeout)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsExpired reports whether the session is past its expiry
func (s *CustomerSession) IsExpired() bool {
	return utils.UTCNow().After(s.ExpiresAt)
}

// CustomerSessionFilter represents filter criteria for sessions
type CustomerSessionFilter struct {
	CustomerID   *uint   `json:"customer_id,omitempty"`
	SessionToken *string `json:"session_token,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}
