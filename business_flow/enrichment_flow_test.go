package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFAQKeys(t *testing.T) {
	t.Run("removes FAQ content keys at the top level", func(t *testing.T) {
		raw := json.RawMessage(`{
			"@type": "Organization",
			"name": "Acme Corp",
			"faq": [{"q": "?"}],
			"faqPairs": [],
			"mainEntity": {"@type": "Question"},
			"question": "what",
			"answer": "that",
			"acceptedAnswer": {"text": "that"}
		}`)

		document := StripFAQKeys(raw)
		require.NotNil(t, document)

		assert.Equal(t, "Organization", document["@type"])
		assert.Equal(t, "Acme Corp", document["name"])
		for _, key := range []string{"faq", "faqs", "faqPairs", "mainEntity", "question", "answer", "acceptedAnswer"} {
			assert.NotContains(t, document, key)
		}
	})

	t.Run("nested FAQ keys are left alone", func(t *testing.T) {
		raw := json.RawMessage(`{"name":"Acme","about":{"faq":["kept"]}}`)

		document := StripFAQKeys(raw)
		require.NotNil(t, document)

		about, ok := document["about"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, about, "faq")
	})

	t.Run("empty input returns nil", func(t *testing.T) {
		assert.Nil(t, StripFAQKeys(nil))
		assert.Nil(t, StripFAQKeys(json.RawMessage{}))
	})

	t.Run("non-object input returns nil", func(t *testing.T) {
		assert.Nil(t, StripFAQKeys(json.RawMessage(`["a","b"]`)))
		assert.Nil(t, StripFAQKeys(json.RawMessage(`"just a string"`)))
		assert.Nil(t, StripFAQKeys(json.RawMessage(`{broken`)))
	})
}

func TestEntityEntry(t *testing.T) {
	t.Run("carries linked data when valid", func(t *testing.T) {
		raw := json.RawMessage(`{"@type":"Brand","name":"Acme"}`)
		entry := entityEntry("Acme", raw)
		assert.Equal(t, "Acme", entry["name"])
		assert.Equal(t, raw, entry["jsonld"])
	})

	t.Run("omits linked data when absent or invalid", func(t *testing.T) {
		entry := entityEntry("Acme", nil)
		assert.Equal(t, "Acme", entry["name"])
		assert.NotContains(t, entry, "jsonld")

		entry = entityEntry("Acme", json.RawMessage(`{oops`))
		assert.NotContains(t, entry, "jsonld")
	})
}
