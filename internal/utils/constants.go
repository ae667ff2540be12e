package utils

const (
	OrganizationName = "La Mirada Creativa"
	ProductName      = "La Mirada Creativa"

	// AnonymousUserKey identifies analytics events we cannot tie to an email.
	AnonymousUserKey = "anonymous"
)
