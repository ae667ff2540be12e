package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/rafaelalberola/lamiradacreativa/internal/constants"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
)

// InboundWebhookRequest is an untouched webhook delivery.
type InboundWebhookRequest struct {
	Payload    []byte
	Signature  string
	ReceivedAt time.Time
}

type EventKind string

const (
	KindPaymentStarted    EventKind = "payment-started"
	KindPaymentProcessing EventKind = "payment-processing"
	KindPaymentFailed     EventKind = "payment-failed"
	KindCheckoutCompleted EventKind = "checkout-completed"
	KindIgnored           EventKind = "ignored"
)

// VerifiedEvent is the part of a signed Stripe event the pipeline acts on.
type VerifiedEvent struct {
	ID          string
	Type        stripe.EventType
	Kind        EventKind
	ObjectID    string
	Email       string
	Name        string
	CustomerID  string
	AmountMinor int64
	Currency    string
	Attribution AttributionMetadata
	DeviceID    string
}

// Classify maps a Stripe event type to the kind the dispatcher switches on.
func Classify(t stripe.EventType) EventKind {
	switch t {
	case stripe.EventTypePaymentIntentCreated:
		return KindPaymentStarted
	case stripe.EventTypePaymentIntentProcessing:
		return KindPaymentProcessing
	case stripe.EventTypePaymentIntentPaymentFailed:
		return KindPaymentFailed
	case stripe.EventTypeCheckoutSessionCompleted:
		return KindCheckoutCompleted
	default:
		return KindIgnored
	}
}

// ParseWebhookEvent decodes an already-verified payload. Ignored kinds are
// returned without touching the data object.
func ParseWebhookEvent(payload []byte) (*VerifiedEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode stripe event: %w", err)
	}

	ev := &VerifiedEvent{ID: event.ID, Type: event.Type, Kind: Classify(event.Type)}
	if ev.Kind == KindIgnored {
		return ev, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("stripe event %s (%s) has no data object", event.ID, event.Type)
	}

	switch ev.Kind {
	case KindCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout session in %s: %w", event.Type, err)
		}
		ev.ObjectID = cs.ID
		ev.Email = sessionEmail(&cs)
		ev.Name = sessionName(&cs)
		if cs.Customer != nil {
			ev.CustomerID = cs.Customer.ID
		}
		ev.AmountMinor = cs.AmountTotal
		ev.Currency = string(cs.Currency)
		ev.Attribution = readAttribution(cs.Metadata)
		ev.DeviceID = cs.Metadata[constants.MetadataKeyAmplitudeDeviceID]

	default:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent in %s: %w", event.Type, err)
		}
		ev.ObjectID = pi.ID
		ev.Email = utils.FirstNonEmpty(pi.ReceiptEmail, pi.Metadata[constants.MetadataKeyCustomerEmail], utils.AnonymousUserKey)
		if pi.Customer != nil {
			ev.CustomerID = pi.Customer.ID
		}
		ev.AmountMinor = pi.Amount
		ev.Currency = string(pi.Currency)
		ev.Attribution = readAttribution(pi.Metadata)
		ev.DeviceID = pi.Metadata[constants.MetadataKeyAmplitudeDeviceID]
	}
	return ev, nil
}

// readAttribution copies the known keys back out of Stripe metadata exactly
// as they were stored.
func readAttribution(md map[string]string) AttributionMetadata {
	out := make(AttributionMetadata)
	for _, k := range constants.AttributionKeys {
		if v, ok := md[k]; ok {
			out[k] = v
		}
	}
	return out
}

var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// MajorUnits converts a Stripe minor-unit amount for analytics (2400 eur -> 24.0).
func MajorUnits(amountMinor int64, currency string) float64 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return float64(amountMinor)
	}
	return float64(amountMinor) / 100
}

// trackProperties builds the analytics payload shared by all kinds.
func (ev *VerifiedEvent) trackProperties() map[string]any {
	props := map[string]any{
		"amount":          MajorUnits(ev.AmountMinor, ev.Currency),
		"currency":        ev.Currency,
		"stripe_event_id": ev.ID,
	}
	if ev.Kind == KindCheckoutCompleted {
		props["session_id"] = ev.ObjectID
	} else {
		props["payment_intent_id"] = ev.ObjectID
	}
	for k, v := range ev.Attribution {
		props[k] = v
	}
	return props
}

func (ev *VerifiedEvent) trackName() string {
	switch ev.Kind {
	case KindPaymentStarted:
		return constants.EventPaymentStarted
	case KindPaymentProcessing:
		return constants.EventPaymentProcessing
	case KindPaymentFailed:
		return constants.EventPaymentFailed
	default:
		return constants.EventPurchaseCompleted
	}
}
