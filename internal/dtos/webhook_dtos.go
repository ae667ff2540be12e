package dtos

type WebhookAckResponse struct {
	Received bool `json:"received"`
	Ignored  bool `json:"ignored,omitempty"`
}

// PurchaseProcessedResponse is returned once a completed checkout has been
// turned into an entitled identity.
type PurchaseProcessedResponse struct {
	Success bool   `json:"success"`
	Created bool   `json:"created,omitempty"`
	Exists  bool   `json:"exists,omitempty"`
	Email   string `json:"email"`
	UserID  string `json:"user_id,omitempty"`
}
