package testhelpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
)

// PostStripeWebhook signs payload with the helper's secret and posts it.
// The caller owns the returned response.
func (h *TestHelper) PostStripeWebhook(webhookURL, payload string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, webhookURL, strings.NewReader(payload))
	require.NoError(h.T, err, "failed to create webhook POST request")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", h.SignStripePayload([]byte(payload)))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.T, err, "failed to POST webhook payload")
	return resp
}

// SignStripePayload constructs the "Stripe-Signature" header value.
func (h *TestHelper) SignStripePayload(payload []byte) string {
	require.NotEmpty(h.T, h.StripeWebhookSecret, "StripeWebhookSecret is not configured in TestHelper")
	return SignStripePayload(h.StripeWebhookSecret, time.Now().Unix(), payload)
}

// SignStripePayload returns "t=<timestamp>,v1=<hex hmac>" for payload.
func SignStripePayload(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(fmt.Sprintf("%d.", timestamp)))
	_, _ = mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

// MockStripeWebhookPayload creates a JSON byte slice for a Stripe webhook event.
func MockStripeWebhookPayload(t *testing.T, eventType string, data map[string]any) []byte {
	t.Helper()

	payload := map[string]any{
		"id":          "evt_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		"object":      "event",
		"api_version": stripe.APIVersion,
		"created":     time.Now().Unix(),
		"type":        eventType,
		"data": map[string]any{
			"object": data,
		},
	}

	jsonBytes, err := json.Marshal(payload)
	require.NoError(t, err, "Failed to marshal mock Stripe webhook payload")
	return jsonBytes
}

// CheckoutCompletedObject is a minimal checkout.session.completed data object.
func CheckoutCompletedObject(email, name string, amountTotal int64, currency string, metadata map[string]string) map[string]any {
	obj := map[string]any{
		"id":           "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		"object":       "checkout.session",
		"amount_total": amountTotal,
		"currency":     currency,
		"customer":     "cus_test_123",
		"mode":         "payment",
		"metadata":     metadata,
	}
	if email != "" {
		obj["customer_details"] = map[string]any{"email": email, "name": name}
	}
	return obj
}

// PaymentIntentObject is a minimal payment_intent data object.
func PaymentIntentObject(receiptEmail string, amount int64, currency string, metadata map[string]string) map[string]any {
	obj := map[string]any{
		"id":       "pi_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		"object":   "payment_intent",
		"amount":   amount,
		"currency": currency,
		"metadata": metadata,
	}
	if receiptEmail != "" {
		obj["receipt_email"] = receiptEmail
	}
	return obj
}
