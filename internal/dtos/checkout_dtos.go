package dtos

type CreateCheckoutSessionRequest struct {
	UTM               map[string]string `json:"utm"`
	AmplitudeDeviceID string            `json:"amplitude_device_id" validate:"omitempty,max=200"`
}

type CreateCheckoutSessionResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type SessionCustomerResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
