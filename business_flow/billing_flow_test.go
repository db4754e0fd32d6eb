package businessflow

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const webhookTestSecret = "whsec_test_secret"

// signBody renders a valid "t=...,v1=..." header for the given body
func signBody(body []byte, secret string, at time.Time) string {
	timestamp := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tolerance := 5 * time.Minute

	t.Run("valid signature", func(t *testing.T) {
		header := signBody(body, webhookTestSecret, now)
		assert.NoError(t, VerifyWebhookSignature(header, body, webhookTestSecret, now, tolerance))
	})

	t.Run("valid signature with spaces around parts", func(t *testing.T) {
		header := signBody(body, webhookTestSecret, now)
		spaced := ""
		for i, c := range header {
			spaced += string(c)
			if c == ',' && i > 0 {
				spaced += " "
			}
		}
		assert.NoError(t, VerifyWebhookSignature(spaced, body, webhookTestSecret, now, tolerance))
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := signBody(body, "whsec_other", now)
		err := VerifyWebhookSignature(header, body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
	})

	t.Run("tampered body", func(t *testing.T) {
		header := signBody(body, webhookTestSecret, now)
		tampered := []byte(`{"id":"evt_1","type":"invoice.paid","amount":1}`)
		err := VerifyWebhookSignature(header, tampered, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
	})

	t.Run("timestamp too old", func(t *testing.T) {
		header := signBody(body, webhookTestSecret, now.Add(-6*time.Minute))
		err := VerifyWebhookSignature(header, body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookTimestampExpired)
	})

	t.Run("timestamp in the future beyond tolerance", func(t *testing.T) {
		header := signBody(body, webhookTestSecret, now.Add(6*time.Minute))
		err := VerifyWebhookSignature(header, body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookTimestampExpired)
	})

	t.Run("timestamp slightly skewed inside tolerance", func(t *testing.T) {
		header := signBody(body, webhookTestSecret, now.Add(-4*time.Minute))
		assert.NoError(t, VerifyWebhookSignature(header, body, webhookTestSecret, now, tolerance))
	})

	t.Run("missing timestamp part", func(t *testing.T) {
		err := VerifyWebhookSignature("v1=deadbeef", body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
	})

	t.Run("missing signature part", func(t *testing.T) {
		err := VerifyWebhookSignature(fmt.Sprintf("t=%d", now.Unix()), body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
	})

	t.Run("non-numeric timestamp", func(t *testing.T) {
		err := VerifyWebhookSignature("t=yesterday,v1=deadbeef", body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
	})

	t.Run("empty header", func(t *testing.T) {
		err := VerifyWebhookSignature("", body, webhookTestSecret, now, tolerance)
		assert.ErrorIs(t, err, ErrWebhookSignatureInvalid)
	})
}

func TestMetadataInt(t *testing.T) {
	metadata := map[string]string{
		"faq_pairs_per_month": "40",
		"faq_per_batch":       "oops",
		"zero":                "0",
		"negative":            "-3",
	}

	assert.Equal(t, 40, metadataInt(metadata, "faq_pairs_per_month", 20))
	assert.Equal(t, 5, metadataInt(metadata, "faq_per_batch", 5))
	assert.Equal(t, 20, metadataInt(metadata, "missing", 20))
	assert.Equal(t, 7, metadataInt(metadata, "zero", 7))
	assert.Equal(t, 7, metadataInt(metadata, "negative", 7))
}

func TestBillingObjectEmail(t *testing.T) {
	direct := &billingObject{CustomerEmail: "direct@example.com"}
	direct.CustomerDetails.Email = "nested@example.com"
	assert.Equal(t, "direct@example.com", direct.email())

	nested := &billingObject{}
	nested.CustomerDetails.Email = "nested@example.com"
	assert.Equal(t, "nested@example.com", nested.email())

	assert.Equal(t, "", (&billingObject{}).email())
}
