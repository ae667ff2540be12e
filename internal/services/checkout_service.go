package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/constants"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

// Stripe caps metadata values at 500 characters.
const maxMetadataValueLen = 500

// CheckoutSessionAPI is the subset of the Stripe checkout-session client we use.
type CheckoutSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// AttributionMetadata is opaque campaign state carried from checkout
// creation to checkout completion.
type AttributionMetadata map[string]string

// SessionCustomer is what the return page learns about the buyer.
type SessionCustomer struct {
	Email string
	Name  string
}

type CheckoutService interface {
	CreateSession(ctx context.Context, origin string, attribution AttributionMetadata, deviceID string) (string, error)
	GetSession(ctx context.Context, sessionID string) (*SessionCustomer, error)
}

type checkoutService struct {
	cfg *config.Config
	api CheckoutSessionAPI
}

func NewCheckoutService(cfg *config.Config) CheckoutService {
	return NewCheckoutServiceWithAPI(cfg, &session.Client{
		B:   stripe.GetBackend(stripe.APIBackend),
		Key: cfg.StripeSecretKey,
	})
}

func NewCheckoutServiceWithAPI(cfg *config.Config, api CheckoutSessionAPI) CheckoutService {
	return &checkoutService{cfg: cfg, api: api}
}

// CreateSession opens an embedded checkout for the configured price and
// returns its client secret. Attribution is written to both the session and
// its payment intent so every later webhook can read it back.
func (s *checkoutService) CreateSession(_ context.Context, origin string, attribution AttributionMetadata, deviceID string) (string, error) {
	if err := s.cfg.RequireCheckout(); err != nil {
		return "", err
	}

	origin = strings.TrimRight(utils.FirstNonEmpty(origin, s.cfg.AppUrl), "/")
	md := FilterAttribution(attribution)
	if deviceID = strings.TrimSpace(deviceID); deviceID != "" {
		md[constants.MetadataKeyAmplitudeDeviceID] = truncate(deviceID)
	}

	params := &stripe.CheckoutSessionParams{
		UIMode: stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ReturnURL:        stripe.String(checkoutReturnURL(origin)),
		CustomerCreation: stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		AutomaticTax: &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(false),
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{},
	}
	for k, v := range md {
		params.AddMetadata(k, v)
		params.PaymentIntentData.AddMetadata(k, v)
	}

	sess, err := s.api.New(params)
	if err != nil {
		return "", &utils.AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not create checkout session",
			Err:        err,
		}
	}

	utils.Logger.WithField("session_id", sess.ID).Infof("Checkout session created (%d attribution keys)", len(md))
	return sess.ClientSecret, nil
}

func (s *checkoutService) GetSession(_ context.Context, sessionID string) (*SessionCustomer, error) {
	if err := s.cfg.RequireStripe(); err != nil {
		return nil, err
	}

	sess, err := s.api.Get(sessionID, nil)
	if err != nil {
		return nil, &utils.AppError{
			StatusCode: http.StatusInternalServerError,
			Code:       utils.ErrCodeExternalServiceFailure,
			Message:    "Could not retrieve checkout session",
			Err:        err,
		}
	}
	return &SessionCustomer{
		Email: sessionEmail(sess),
		Name:  sessionName(sess),
	}, nil
}

// FilterAttribution keeps only the known campaign keys with non-blank values.
// Values are passed through untouched apart from trimming and Stripe's
// length cap.
func FilterAttribution(in map[string]string) AttributionMetadata {
	out := make(AttributionMetadata)
	for _, k := range constants.AttributionKeys {
		if v := strings.TrimSpace(in[k]); v != "" {
			out[k] = truncate(v)
		}
	}
	return out
}

// truncate cuts v to at most maxMetadataValueLen bytes without splitting a rune.
func truncate(v string) string {
	if len(v) <= maxMetadataValueLen {
		return v
	}
	cut := maxMetadataValueLen
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return v[:cut]
}

func sessionEmail(sess *stripe.CheckoutSession) string {
	var detailsEmail string
	if sess.CustomerDetails != nil {
		detailsEmail = sess.CustomerDetails.Email
	}
	return utils.FirstNonEmpty(detailsEmail, sess.CustomerEmail)
}

func sessionName(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil {
		return strings.TrimSpace(sess.CustomerDetails.Name)
	}
	return ""
}

func checkoutReturnURL(origin string) string {
	return fmt.Sprintf("%s%s", origin, constants.CheckoutReturnPath)
}
