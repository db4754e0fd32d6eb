package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() models.ConfigSnapshot {
	return models.ConfigSnapshot{
		OrganizationName:   "Acme Corp",
		BrandName:          "Acme",
		ProductName:        "Acme Widgets",
		PersonaName:        "Support Expert",
		AudienceName:       "Developers",
		MarketName:         "Global",
		OrganizationJSONLD: json.RawMessage(`{"@context":"https://schema.org","@type":"Organization","name":"Acme Corp"}`),
	}
}

func answeredQuestion(batchID uuid.UUID, text, answer string) *models.Question {
	return &models.Question{
		BatchID:      batchID,
		QuestionText: text,
		AnswerText:   utils.ToPtr(answer),
		AnswerStatus: models.AnswerStatusCompleted,
		ReviewStatus: models.ReviewStatusApproved,
	}
}

func TestBuildFAQPairsDocument(t *testing.T) {
	batchID := uuid.New()
	questions := []*models.Question{
		answeredQuestion(batchID, "What is a widget?", "A small useful thing."),
		answeredQuestion(batchID, "How much does it cost?", "Ten dollars."),
	}
	questions[0].Topic = utils.ToPtr("basics")

	document := BuildFAQPairsDocument(batchID, questions, testSnapshot())

	assert.Equal(t, "https://schema.org", document.Context)
	assert.Equal(t, "FAQPage", document.Type)
	assert.Equal(t, batchID.String(), document.BatchID)

	require.Len(t, document.Pairs, 2)
	assert.Equal(t, "What is a widget?", document.Pairs[0].Question)
	assert.Equal(t, "A small useful thing.", document.Pairs[0].Answer)
	assert.Equal(t, "basics", document.Pairs[0].Topic)
	assert.Equal(t, "How much does it cost?", document.Pairs[1].Question)
	assert.Empty(t, document.Pairs[1].Topic)

	// snapshot linked data passes through untouched
	assert.JSONEq(t, `{"@context":"https://schema.org","@type":"Organization","name":"Acme Corp"}`, string(document.Organization))

	// entities without snapshot linked data fall back to stubs
	assert.JSONEq(t, `{"@context":"https://schema.org","@type":"Product","name":"Acme Widgets"}`, string(document.Product))
	assert.JSONEq(t, `{"@context":"https://schema.org","@type":"Person","name":"Support Expert"}`, string(document.Persona))
}

func TestBuildFAQPairsDocumentDeterministic(t *testing.T) {
	batchID := uuid.New()
	questions := []*models.Question{
		answeredQuestion(batchID, "Q1", "A1"),
		answeredQuestion(batchID, "Q2", "A2"),
		answeredQuestion(batchID, "Q3", "A3"),
	}
	snapshot := testSnapshot()

	first, err := json.Marshal(BuildFAQPairsDocument(batchID, questions, snapshot))
	require.NoError(t, err)
	second, err := json.Marshal(BuildFAQPairsDocument(batchID, questions, snapshot))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestBuildFAQPairsDocumentPreservesOrder(t *testing.T) {
	batchID := uuid.New()
	questions := []*models.Question{
		answeredQuestion(batchID, "first", "1"),
		answeredQuestion(batchID, "second", "2"),
		answeredQuestion(batchID, "third", "3"),
	}

	document := BuildFAQPairsDocument(batchID, questions, testSnapshot())

	require.Len(t, document.Pairs, 3)
	assert.Equal(t, "first", document.Pairs[0].Question)
	assert.Equal(t, "second", document.Pairs[1].Question)
	assert.Equal(t, "third", document.Pairs[2].Question)
}

func TestLinkedDataOrStub(t *testing.T) {
	t.Run("valid linked data passes through", func(t *testing.T) {
		raw := json.RawMessage(`{"@type":"Brand","name":"Acme"}`)
		assert.Equal(t, raw, linkedDataOrStub(raw, "Brand", "Acme"))
	})

	t.Run("empty input yields stub", func(t *testing.T) {
		result := linkedDataOrStub(nil, "Product", "Acme Widgets")
		assert.JSONEq(t, `{"@context":"https://schema.org","@type":"Product","name":"Acme Widgets"}`, string(result))
	})

	t.Run("malformed input yields stub", func(t *testing.T) {
		result := linkedDataOrStub(json.RawMessage(`{"broken`), "Person", "Support Expert")
		assert.JSONEq(t, `{"@context":"https://schema.org","@type":"Person","name":"Support Expert"}`, string(result))
	})
}
