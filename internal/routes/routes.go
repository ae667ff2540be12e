package routes

const (
	// Health
	Health = "/health"

	// Stripe
	StripeWebhook   = "/api/v1/stripe/webhook"
	CheckoutSession = "/api/v1/checkout/session"

	// Users
	UserCheck = "/api/v1/users/check"
)
