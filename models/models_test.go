package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationStatus(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		for _, status := range []GenerationStatus{
			GenerationStatusPending,
			GenerationStatusGeneratingQuestions,
			GenerationStatusQuestionsGenerated,
			GenerationStatusFailed,
		} {
			assert.True(t, status.Valid(), status)
		}
		assert.False(t, GenerationStatus("done").Valid())
	})

	t.Run("scan and value round trip", func(t *testing.T) {
		var status GenerationStatus
		require.NoError(t, status.Scan("generating_questions"))
		assert.Equal(t, GenerationStatusGeneratingQuestions, status)

		require.NoError(t, status.Scan([]byte("failed")))
		assert.Equal(t, GenerationStatusFailed, status)

		value, err := GenerationStatusPending.Value()
		require.NoError(t, err)
		assert.Equal(t, "pending", value)
	})

	t.Run("value rejects invalid status", func(t *testing.T) {
		_, err := GenerationStatus("bogus").Value()
		assert.Error(t, err)
	})

	t.Run("scan nil clears the value", func(t *testing.T) {
		status := GenerationStatusPending
		require.NoError(t, status.Scan(nil))
		assert.Equal(t, GenerationStatus(""), status)
	})

	t.Run("scan rejects unexpected types", func(t *testing.T) {
		var status GenerationStatus
		assert.Error(t, status.Scan(42))
	})
}

func TestConstructTransitions(t *testing.T) {
	tests := []struct {
		from    GenerationStatus
		to      GenerationStatus
		allowed bool
	}{
		{GenerationStatusPending, GenerationStatusGeneratingQuestions, true},
		{GenerationStatusPending, GenerationStatusFailed, true},
		{GenerationStatusPending, GenerationStatusQuestionsGenerated, false},
		{GenerationStatusGeneratingQuestions, GenerationStatusQuestionsGenerated, true},
		{GenerationStatusGeneratingQuestions, GenerationStatusFailed, true},
		{GenerationStatusGeneratingQuestions, GenerationStatusPending, false},
		{GenerationStatusQuestionsGenerated, GenerationStatusFailed, false},
		{GenerationStatusFailed, GenerationStatusGeneratingQuestions, false},
	}

	for _, tt := range tests {
		construct := &FAQConstruct{Status: tt.from}
		assert.Equal(t, tt.allowed, construct.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.False(t, (&FAQConstruct{Status: GenerationStatusPending}).IsTerminal())
	assert.False(t, (&FAQConstruct{Status: GenerationStatusGeneratingQuestions}).IsTerminal())
	assert.True(t, (&FAQConstruct{Status: GenerationStatusQuestionsGenerated}).IsTerminal())
	assert.True(t, (&FAQConstruct{Status: GenerationStatusFailed}).IsTerminal())
}

func TestConfigSnapshotRoundTrip(t *testing.T) {
	snapshot := ConfigSnapshot{
		OrganizationName: "Acme Corp",
		BrandName:        "Acme",
		ProductName:      "Acme Widgets",
		PersonaName:      "Support Expert",
		AudienceName:     "Developers",
		MarketName:       "Global",
		BrandJSONLD:      json.RawMessage(`{"@type":"Brand","name":"Acme"}`),
	}

	value, err := snapshot.Value()
	require.NoError(t, err)

	var decoded ConfigSnapshot
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, snapshot.OrganizationName, decoded.OrganizationName)
	assert.Equal(t, snapshot.MarketName, decoded.MarketName)
	assert.JSONEq(t, string(snapshot.BrandJSONLD), string(decoded.BrandJSONLD))
}

func TestClientConfigurationToSnapshot(t *testing.T) {
	configuration := &ClientConfiguration{
		OrganizationName: "Acme Corp",
		BrandName:        "Acme",
		ProductName:      "Acme Widgets",
		PersonaName:      "Support Expert",
		AudienceName:     "Developers",
		MarketName:       "Global",
		ProductJSONLD:    json.RawMessage(`{"@type":"Product","name":"Acme Widgets"}`),
	}

	snapshot := configuration.ToSnapshot()
	assert.Equal(t, "Acme Corp", snapshot.OrganizationName)
	assert.Equal(t, "Acme Widgets", snapshot.ProductName)
	assert.Nil(t, snapshot.BrandJSONLD)

	// the snapshot owns its bytes; mutating the live configuration must
	// not leak into an already-taken snapshot
	configuration.ProductJSONLD[2] = 'X'
	assert.JSONEq(t, `{"@type":"Product","name":"Acme Widgets"}`, string(snapshot.ProductJSONLD))
}

func TestInvoicePeriodDays(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	invoice := &Invoice{BillingPeriodStart: start, BillingPeriodEnd: start.Add(28 * 24 * time.Hour)}
	assert.Equal(t, 28, invoice.PeriodDays())

	// partial trailing day is floored
	invoice.BillingPeriodEnd = start.Add(28*24*time.Hour + 6*time.Hour)
	assert.Equal(t, 28, invoice.PeriodDays())

	// inverted period clamps to zero
	invoice.BillingPeriodEnd = start.Add(-time.Hour)
	assert.Equal(t, 0, invoice.PeriodDays())
}

func TestBillingEventIsMaterializable(t *testing.T) {
	assert.True(t, (&BillingEvent{EventType: BillingEventInvoicePaid}).IsMaterializable())
	assert.True(t, (&BillingEvent{EventType: BillingEventCheckoutCompleted}).IsMaterializable())
	assert.False(t, (&BillingEvent{EventType: "customer.subscription.updated"}).IsMaterializable())
}

func TestQuestionIsAnswered(t *testing.T) {
	answer := "because"
	assert.True(t, (&Question{AnswerStatus: AnswerStatusCompleted, AnswerText: &answer}).IsAnswered())
	assert.False(t, (&Question{AnswerStatus: AnswerStatusCompleted}).IsAnswered())
	assert.False(t, (&Question{AnswerStatus: AnswerStatusPending, AnswerText: &answer}).IsAnswered())
}

func TestDiscoveryFileIsFresh(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	file := &DiscoveryFile{LastGenerated: now.Add(-30 * time.Minute)}

	assert.True(t, file.IsFresh(now, time.Hour))
	assert.False(t, file.IsFresh(now, 10*time.Minute))
	assert.False(t, file.IsFresh(now, 30*time.Minute))
}

func TestFAQPairsDocumentRoundTrip(t *testing.T) {
	document := FAQPairsDocument{
		Context: "https://schema.org",
		Type:    "FAQPage",
		BatchID: "a2b3c4d5-0000-0000-0000-000000000000",
		Pairs: []FAQPair{
			{Question: "Q", Answer: "A", Topic: "topic"},
		},
		Organization: json.RawMessage(`{"name":"Acme Corp"}`),
	}

	value, err := document.Value()
	require.NoError(t, err)

	var decoded FAQPairsDocument
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, document.BatchID, decoded.BatchID)
	require.Len(t, decoded.Pairs, 1)
	assert.Equal(t, "Q", decoded.Pairs[0].Question)
	assert.JSONEq(t, `{"name":"Acme Corp"}`, string(decoded.Organization))
}

func TestBatchStatus(t *testing.T) {
	assert.True(t, BatchStatusGenerated.Valid())
	assert.True(t, BatchStatusPublished.Valid())
	assert.False(t, BatchStatus("archived").Valid())

	var status BatchStatus
	require.NoError(t, status.Scan("published"))
	assert.Equal(t, BatchStatusPublished, status)

	_, err := BatchStatus("archived").Value()
	assert.Error(t, err)
}

func TestSessionIsExpired(t *testing.T) {
	assert.False(t, (&CustomerSession{ExpiresAt: time.Now().UTC().Add(time.Hour)}).IsExpired())
	assert.True(t, (&CustomerSession{ExpiresAt: time.Now().UTC().Add(-time.Hour)}).IsExpired())
}
