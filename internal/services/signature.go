package services

import (
	"github.com/stripe/stripe-go/v82/webhook"
)

// VerifyStripeSignature checks a Stripe-Signature header of the form
// "t=<unix>,v1=<hex>[,v1=<hex>...]" against HMAC-SHA256(secret, "<t>.<payload>").
// Redeliveries may arrive long after signing, so no timestamp tolerance is
// applied. It fails closed.
func VerifyStripeSignature(payload []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}
	return webhook.ValidatePayloadIgnoringTolerance(payload, header, secret) == nil
}
