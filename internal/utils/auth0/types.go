package auth0

// AppMetadata is the part of the user record this service owns.
type AppMetadata struct {
	Purchased        bool   `json:"purchased"`
	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
	PurchaseDate     string `json:"purchase_date,omitempty"`
}

type User struct {
	UserID        string       `json:"user_id"`
	Email         string       `json:"email"`
	Name          string       `json:"name,omitempty"`
	EmailVerified bool         `json:"email_verified"`
	AppMetadata   *AppMetadata `json:"app_metadata,omitempty"`
}

// HasPurchased reports the entitlement flag; users without metadata have none.
func (u User) HasPurchased() bool {
	return u.AppMetadata != nil && u.AppMetadata.Purchased
}

type CreateUserRequest struct {
	Email         string      `json:"email"`
	Name          string      `json:"name,omitempty"`
	Connection    string      `json:"connection"`
	EmailVerified bool        `json:"email_verified"`
	AppMetadata   AppMetadata `json:"app_metadata"`
}

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	ErrorCode  string `json:"errorCode"`
}
