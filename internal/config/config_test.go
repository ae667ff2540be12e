package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg := FromLookup(lookupFrom(nil))

	assert.Equal(t, DefaultAppPort, cfg.AppPort)
	assert.Equal(t, DefaultAppUrl, cfg.AppUrl)
	assert.Equal(t, OrganizationName, cfg.SendgridFromName)
	assert.Equal(t, "prod", cfg.Env)
}

func TestFromLookupTrimsValues(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"APP_URL":               "https://example.com/ ",
		"STRIPE_WEBHOOK_SECRET": "  whsec_123 ",
		"APP_PORT":              "   ",
	}))

	assert.Equal(t, "https://example.com", cfg.AppUrl)
	assert.Equal(t, "whsec_123", cfg.StripeWebhookSecret)
	assert.Equal(t, DefaultAppPort, cfg.AppPort, "blank values fall back to defaults")
}

func TestRequireWebhookListsMissingKeys(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"STRIPE_WEBHOOK_SECRET": "whsec_123",
		"AUTH0_DOMAIN":          "tenant.eu.auth0.com",
	}))

	err := cfg.RequireWebhook()
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrMissingConfig))
	assert.Contains(t, err.Error(), "AUTH0_M2M_CLIENT_ID")
	assert.Contains(t, err.Error(), "AUTH0_M2M_CLIENT_SECRET")
	assert.NotContains(t, err.Error(), "STRIPE_WEBHOOK_SECRET")
}

func TestRequireHelpersPassWhenConfigured(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"STRIPE_SECRET_KEY":       "sk_test_123",
		"STRIPE_PRICE_ID":         "price_123",
		"STRIPE_WEBHOOK_SECRET":   "whsec_123",
		"AUTH0_DOMAIN":            "tenant.eu.auth0.com",
		"AUTH0_M2M_CLIENT_ID":     "id",
		"AUTH0_M2M_CLIENT_SECRET": "secret",
		"SENDGRID_API_KEY":        "SG.key",
		"SENDGRID_FROM_EMAIL":     "hola@lamiradacreativa.com",
	}))

	require.NoError(t, cfg.RequireWebhook())
	require.NoError(t, cfg.RequireIdentity())
	require.NoError(t, cfg.RequireCheckout())
	require.NoError(t, cfg.RequireStripe())
	require.NoError(t, cfg.RequireEmail())
}

func TestRequireCheckoutNeedsPrice(t *testing.T) {
	cfg := FromLookup(lookupFrom(map[string]string{
		"STRIPE_SECRET_KEY": "sk_test_123",
	}))

	require.NoError(t, cfg.RequireStripe())
	err := cfg.RequireCheckout()
	require.ErrorIs(t, err, utils.ErrMissingConfig)
	assert.Contains(t, err.Error(), "STRIPE_PRICE_ID")
}
