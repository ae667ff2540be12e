package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/dtos"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

// WebhookResponse is the single reply produced for every delivery. Err holds
// the cause of a non-2xx reply and is never sent to the caller.
type WebhookResponse struct {
	Status int
	Body   any
	Err    error
}

// WebhookDispatcher authenticates a Stripe delivery, classifies it and runs
// the side effects for its kind. It never retries; Stripe redelivers on any
// non-2xx.
type WebhookDispatcher struct {
	cfg      *config.Config
	tracker  TrackingService
	identity IdentityService
	notifier NotificationService
}

func NewWebhookDispatcher(
	cfg *config.Config,
	tracker TrackingService,
	identity IdentityService,
	notifier NotificationService,
) *WebhookDispatcher {
	return &WebhookDispatcher{
		cfg:      cfg,
		tracker:  tracker,
		identity: identity,
		notifier: notifier,
	}
}

func errorResponse(status int, code, msg string, err error) WebhookResponse {
	return WebhookResponse{Status: status, Body: utils.ErrorResponse{Error: msg, Code: code}, Err: err}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, req InboundWebhookRequest) (resp WebhookResponse) {
	//-----------------------------------------------------------------
	// 1) Configuration, before anything leaves the process
	//-----------------------------------------------------------------
	if err := d.cfg.RequireWebhook(); err != nil {
		utils.Logger.WithError(err).Error("Stripe webhook received but service is not configured")
		return errorResponse(http.StatusInternalServerError, utils.ErrCodeConfiguration, "Server configuration error", err)
	}

	//-----------------------------------------------------------------
	// 2) Authenticate
	//-----------------------------------------------------------------
	if !VerifyStripeSignature(req.Payload, req.Signature, d.cfg.StripeWebhookSecret) {
		utils.Logger.WithError(utils.ErrInvalidSignature).Warn("Stripe webhook signature verification failed")
		return errorResponse(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid signature", utils.ErrInvalidSignature)
	}

	defer func() {
		if r := recover(); r != nil {
			utils.Logger.WithField("panic", fmt.Sprint(r)).Error("Stripe webhook dispatch panicked")
			resp = errorResponse(http.StatusInternalServerError, utils.ErrCodeInternal, "Internal server error",
				fmt.Errorf("dispatch panicked: %v", r))
		}
	}()

	//-----------------------------------------------------------------
	// 3) Classify
	//-----------------------------------------------------------------
	ev, err := ParseWebhookEvent(req.Payload)
	if err != nil {
		utils.Logger.WithError(err).Error("Could not parse verified Stripe event")
		return errorResponse(http.StatusInternalServerError, utils.ErrCodeInternal, "Internal server error", err)
	}

	log := utils.Logger.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"type":     ev.Type,
		"kind":     ev.Kind,
	})

	//-----------------------------------------------------------------
	// 4) Dispatch
	//-----------------------------------------------------------------
	switch ev.Kind {
	case KindPaymentStarted, KindPaymentProcessing, KindPaymentFailed:
		_ = d.track(ctx, ev)
		log.Info("Payment event tracked")
		return WebhookResponse{Status: http.StatusOK, Body: dtos.WebhookAckResponse{Received: true}}

	case KindCheckoutCompleted:
		return d.completeCheckout(ctx, ev, log)

	default:
		log.Debug("Unhandled Stripe event type ignored")
		return WebhookResponse{Status: http.StatusOK, Body: dtos.WebhookAckResponse{Received: true, Ignored: true}}
	}
}

func (d *WebhookDispatcher) completeCheckout(ctx context.Context, ev *VerifiedEvent, log *logrus.Entry) WebhookResponse {
	if ev.Email == "" {
		log.WithError(utils.ErrMissingEmail).Error("No email found in checkout session")
		return errorResponse(http.StatusBadRequest, utils.ErrCodeInvalidPayload, "No email found", utils.ErrMissingEmail)
	}
	log = log.WithField("email", utils.MaskEmail(ev.Email))
	log.Info("Processing purchase")

	// Analytics outcome does not gate entitlement.
	_ = d.track(ctx, ev)

	result, err := d.identity.Upsert(ctx, ev.Email, ev.Name, ev.CustomerID)
	if err != nil {
		log.WithError(err).Error("Identity upsert failed; Stripe will redeliver")
		return errorResponse(http.StatusInternalServerError, utils.ErrCodeExternalServiceFailure, "Failed to grant access", err)
	}

	// Email is best effort: a failed send must not make Stripe redeliver an
	// entitlement that has already been granted.
	_ = d.notifier.SendPurchaseConfirmation(ctx, ev.Email, ev.Name)

	return WebhookResponse{
		Status: http.StatusOK,
		Body: dtos.PurchaseProcessedResponse{
			Success: true,
			Created: result.Created,
			Exists:  result.Exists,
			Email:   result.Email,
			UserID:  result.UserID,
		},
	}
}

func (d *WebhookDispatcher) track(ctx context.Context, ev *VerifiedEvent) TrackResult {
	return d.tracker.Track(ctx, TrackEvent{
		EventID:    ev.ID,
		Name:       ev.trackName(),
		Properties: ev.trackProperties(),
		UserKey:    ev.Email,
		DeviceID:   ev.DeviceID,
	})
}
