package constants

const (
	// Header Stripe signs webhook deliveries with.
	StripeSignatureHeader = "Stripe-Signature"

	// Largest webhook body we read.
	WebhookBodyLimit = 1 << 20

	// Metadata keys written on the checkout session and read back on completion.
	MetadataKeyAmplitudeDeviceID = "amplitude_device_id"
	MetadataKeyCustomerEmail     = "customer_email"

	// Analytics event names.
	EventPaymentStarted    = "Payment Started"
	EventPaymentProcessing = "Payment Processing"
	EventPaymentFailed     = "Payment Failed"
	EventPurchaseCompleted = "Purchase Completed"

	// Identity provider connection for email-link login.
	Auth0PasswordlessConnection = "email"

	// Confirmation email.
	PurchaseEmailSubject       = "Tu acceso a La Mirada Creativa"
	PurchaseAttachmentFilename = "la-mirada-creativa.pdf"
	PurchaseAttachmentMIMEType = "application/pdf"
	GenericGreeting            = "Hola"

	// Checkout return page; Stripe fills in the placeholder.
	CheckoutReturnPath = "/app?session_id={CHECKOUT_SESSION_ID}"
)

// AttributionKeys are the campaign-tracking fields the landing page collects.
// Anything else sent by the client is dropped before it reaches Stripe.
var AttributionKeys = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"gclid",
	"fbclid",
	"ttclid",
	"msclkid",
}
