package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Billing and scheduling constants
const (
	// SchedulesPerInvoice is the number of batch dispatches spawned from one paid invoice
	SchedulesPerInvoice = 4

	// DefaultFAQPairsPerMonth is the monthly entitlement applied when an event carries no package data
	DefaultFAQPairsPerMonth = 20

	// DefaultFAQPerBatch is the per-batch pair count applied when an event carries no package data
	DefaultFAQPerBatch = 5

	// SyntheticBillingPeriod is the billing period synthesized for one-time checkout events
	SyntheticBillingPeriod = 30 * 24 * time.Hour

	// WebhookTimestampTolerance bounds the age of a signed webhook timestamp
	WebhookTimestampTolerance = 5 * time.Minute

	// GenerationStaleAfter is how long a construct may sit in
	// generating_questions before the worker treats the claim as orphaned
	// and picks it up again
	GenerationStaleAfter = 15 * time.Minute
)

// Discovery cache constants
const (
	// DiscoveryFreshness is the window during which a cached discovery file is served verbatim
	DiscoveryFreshness = time.Hour
)
