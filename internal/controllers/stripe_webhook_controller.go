package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rafaelalberola/lamiradacreativa/internal/constants"
	"github.com/rafaelalberola/lamiradacreativa/internal/services"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

type webhookDispatcher interface {
	Dispatch(ctx context.Context, req services.InboundWebhookRequest) services.WebhookResponse
}

type StripeWebhookController struct {
	dispatcher webhookDispatcher
}

func NewStripeWebhookController(d webhookDispatcher) *StripeWebhookController {
	return &StripeWebhookController{dispatcher: d}
}

// WebhookHandler -> POST /api/v1/stripe/webhook
// The raw body is handed to the dispatcher untouched; the signature covers
// the exact bytes Stripe sent.
func (c *StripeWebhookController) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.WebhookBodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondErrorWithCode(
				w, http.StatusRequestEntityTooLarge, utils.ErrCodeInvalidPayload, "Payload too large", err,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Failed to read request body", err,
		)
		return
	}

	resp := c.dispatcher.Dispatch(r.Context(), services.InboundWebhookRequest{
		Payload:    payload,
		Signature:  r.Header.Get(constants.StripeSignatureHeader),
		ReceivedAt: time.Now(),
	})
	utils.RespondWithJSON(w, resp.Status, resp.Body)
}
