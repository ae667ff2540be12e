//go:build dev && integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rafaelalberola/lamiradacreativa/internal/dtos"
	"github.com/rafaelalberola/lamiradacreativa/internal/routes"
	"github.com/rafaelalberola/lamiradacreativa/internal/testhelpers"
)

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	h := testhelpers.NewTestHelper(t)

	resp, err := http.Get(h.BaseURL + routes.Health)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
}

// -----------------------------------------------------------------------------
// Webhook: a completed checkout provisions access, and redelivery converges
// -----------------------------------------------------------------------------

func TestCheckoutCompletedIsIdempotent(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	email := fmt.Sprintf("integration+%s@lamiradacreativa.com", uuid.NewString()[:8])

	payload := string(testhelpers.MockStripeWebhookPayload(t, "checkout.session.completed",
		testhelpers.CheckoutCompletedObject(email, "Integration Test", 2400, "eur",
			map[string]string{"utm_source": "integration"})))

	first := postAndDecode(t, h, payload)
	require.True(t, first.Success)
	require.True(t, first.Created)

	second := postAndDecode(t, h, payload)
	require.True(t, second.Success)
	require.True(t, second.Exists)
	require.Equal(t, first.UserID, second.UserID)

	body, _ := json.Marshal(dtos.CheckUserRequest{Email: email})
	resp, err := http.Post(h.BaseURL+routes.UserCheck, "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	var check dtos.CheckUserResponse
	require.NoError(t, json.Unmarshal([]byte(h.ReadBody(resp)), &check))
	require.True(t, check.Exists)
	require.NotNil(t, check.Purchased)
	require.True(t, *check.Purchased)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := testhelpers.NewTestHelper(t)
	payload := testhelpers.MockStripeWebhookPayload(t, "payment_intent.created",
		testhelpers.PaymentIntentObject("", 100, "eur", nil))

	req, err := http.NewRequest(http.MethodPost, h.BaseURL+routes.StripeWebhook, strings.NewReader(string(payload)))
	require.NoError(t, err)
	req.Header.Set("Stripe-Signature", testhelpers.SignStripePayload("whsec_wrong", time.Now().Unix(), payload))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, h.ReadBody(resp))
}

func postAndDecode(t *testing.T, h *testhelpers.TestHelper, payload string) dtos.PurchaseProcessedResponse {
	t.Helper()
	resp := h.PostStripeWebhook(h.BaseURL+routes.StripeWebhook, payload)
	body := h.ReadBody(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var out dtos.PurchaseProcessedResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}
