package testhelpers

import (
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper carries what the integration suite needs to talk to a running
// purchase-service.
type TestHelper struct {
	T                   *testing.T
	BaseURL             string
	StripeWebhookSecret string
}

// NewTestHelper reads the target URL and the shared webhook secret from the
// environment. Both must be set for the integration suite to run.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	baseURL := strings.TrimRight(os.Getenv("APP_URL_FROM_ANYWHERE"), "/")
	require.NotEmpty(t, baseURL, "APP_URL_FROM_ANYWHERE env var is missing")

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	require.NotEmpty(t, secret, "STRIPE_WEBHOOK_SECRET env var is missing")

	return &TestHelper{
		T:                   t,
		BaseURL:             baseURL,
		StripeWebhookSecret: secret,
	}
}

// ReadBody drains and closes resp.Body.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(h.T, err, "failed to read response body")
	return string(b)
}
