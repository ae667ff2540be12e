package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string

	// Payments
	StripeSecretKey     string
	StripePriceID       string
	StripeWebhookSecret string

	// Identity provider (machine-to-machine)
	Auth0Domain       string
	Auth0ClientID     string
	Auth0ClientSecret string

	// Transactional email
	SendgridAPIKey         string
	SendgridFromEmail      string
	SendgridFromName       string
	PurchaseAttachmentPath string

	// Analytics
	AmplitudeAPIKey string
	MixpanelToken   string

	// Feature-flag snapshots
	LDFlag_SendgridSandboxMode bool
}

const (
	OrganizationName    = utils.OrganizationName
	DefaultAppName      = "purchase-service"
	DefaultAppPort      = "8080"
	DefaultAppUrl       = "https://lamiradacreativa.com"
	LDConnectionTimeout = 5 * time.Second
)

// build-time overrides, set with -ldflags
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

// LoadConfig reads the process environment once. Only the listen settings
// are resolved eagerly; every secret is optional here and checked by the
// Require* helpers of the operation that needs it.
func LoadConfig() *Config {
	if AppName == "" {
		AppName = DefaultAppName
	}

	//----------------------------------------------------------------------
	// 1) Optional .env for local runs
	//----------------------------------------------------------------------
	if err := godotenv.Load(); err == nil {
		utils.Logger.Debug("Loaded .env file")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	//----------------------------------------------------------------------
	// 2) Runtime environment vars
	//----------------------------------------------------------------------
	cfg := FromLookup(os.LookupEnv)
	cfg.AppName = AppName

	//----------------------------------------------------------------------
	// 3) LaunchDarkly flags (only when an SDK key is configured)
	//----------------------------------------------------------------------
	if sdkKey := strings.TrimSpace(os.Getenv("LD_SDK_KEY")); sdkKey != "" {
		cfg.applyFlags(sdkKey)
	}

	utils.Logger.Infof("Loaded config for %s (%s)", cfg.AppName, cfg.Env)
	if missing := cfg.missing(cfg.webhookKeys()); len(missing) > 0 {
		utils.Logger.Warnf("Webhook endpoint will answer 500 until configured; missing: %s", strings.Join(missing, ", "))
	}

	return cfg
}

// FromLookup builds a Config from any key lookup function, os.LookupEnv in
// production and a map in tests.
func FromLookup(lookup func(string) (string, bool)) *Config {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	return &Config{
		OrganizationName:       OrganizationName,
		AppName:                DefaultAppName,
		Env:                    get("ENV", "prod"),
		AppPort:                get("APP_PORT", DefaultAppPort),
		AppUrl:                 strings.TrimRight(get("APP_URL", DefaultAppUrl), "/"),
		StripeSecretKey:        get("STRIPE_SECRET_KEY", ""),
		StripePriceID:          get("STRIPE_PRICE_ID", ""),
		StripeWebhookSecret:    get("STRIPE_WEBHOOK_SECRET", ""),
		Auth0Domain:            get("AUTH0_DOMAIN", ""),
		Auth0ClientID:          get("AUTH0_M2M_CLIENT_ID", ""),
		Auth0ClientSecret:      get("AUTH0_M2M_CLIENT_SECRET", ""),
		SendgridAPIKey:         get("SENDGRID_API_KEY", ""),
		SendgridFromEmail:      get("SENDGRID_FROM_EMAIL", ""),
		SendgridFromName:       get("SENDGRID_FROM_NAME", OrganizationName),
		PurchaseAttachmentPath: get("PURCHASE_ATTACHMENT_PATH", ""),
		AmplitudeAPIKey:        get("AMPLITUDE_API_KEY", ""),
		MixpanelToken:          get("MIXPANEL_TOKEN", ""),
	}
}

func (c *Config) applyFlags(sdkKey string) {
	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Warn("Failed to create LaunchDarkly client, keeping env values")
		return
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		utils.Logger.Warn("LaunchDarkly client failed to initialize, keeping env values")
		return
	}

	kind := LDServerContextKind
	if kind == "" {
		kind = "service"
	}
	key := LDServerContextKey
	if key == "" {
		key = c.AppName
	}
	ctx := ldcontext.NewWithKind(ldcontext.Kind(kind), key)

	fromEmail, err := ldClient.StringVariation("sendgrid_from_email", ctx, c.SendgridFromEmail)
	if err != nil {
		utils.Logger.WithError(err).Warn("sendgrid_from_email flag error")
	} else if fromEmail != "" {
		c.SendgridFromEmail = fromEmail
	}
	utils.Logger.Debugf("sendgrid_from_email flag: %s", c.SendgridFromEmail)

	sandbox, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Warn("sendgrid_sandbox_mode flag error")
	}
	c.LDFlag_SendgridSandboxMode = sandbox
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", sandbox)
}

//----------------------------------------------------------------------
// Per-operation requirements
//----------------------------------------------------------------------

type configKey struct {
	name  string
	value string
}

func (c *Config) webhookKeys() []configKey {
	return append([]configKey{
		{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
	}, c.identityKeys()...)
}

func (c *Config) identityKeys() []configKey {
	return []configKey{
		{"AUTH0_DOMAIN", c.Auth0Domain},
		{"AUTH0_M2M_CLIENT_ID", c.Auth0ClientID},
		{"AUTH0_M2M_CLIENT_SECRET", c.Auth0ClientSecret},
	}
}

func (c *Config) missing(keys []configKey) []string {
	var out []string
	for _, k := range keys {
		if k.value == "" {
			out = append(out, k.name)
		}
	}
	return out
}

func (c *Config) require(keys ...configKey) error {
	if missing := c.missing(keys); len(missing) > 0 {
		return fmt.Errorf("%w: %s", utils.ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// RequireWebhook covers everything the webhook needs before it may verify a
// signature: the signing secret and the identity-provider credentials.
func (c *Config) RequireWebhook() error {
	return c.require(c.webhookKeys()...)
}

func (c *Config) RequireIdentity() error {
	return c.require(c.identityKeys()...)
}

func (c *Config) RequireCheckout() error {
	return c.require(
		configKey{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		configKey{"STRIPE_PRICE_ID", c.StripePriceID},
	)
}

func (c *Config) RequireStripe() error {
	return c.require(configKey{"STRIPE_SECRET_KEY", c.StripeSecretKey})
}

func (c *Config) RequireEmail() error {
	return c.require(
		configKey{"SENDGRID_API_KEY", c.SendgridAPIKey},
		configKey{"SENDGRID_FROM_EMAIL", c.SendgridFromEmail},
	)
}
