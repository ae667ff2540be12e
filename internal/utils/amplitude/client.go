package amplitude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultEndpoint = "https://api2.amplitude.com/2/httpapi"

// Event is one row of the HTTP V2 API. DeviceID links a server-side event to
// the anonymous browser session that started checkout.
type Event struct {
	UserID          string         `json:"user_id,omitempty"`
	DeviceID        string         `json:"device_id,omitempty"`
	EventType       string         `json:"event_type"`
	EventProperties map[string]any `json:"event_properties,omitempty"`
	InsertID        string         `json:"insert_id,omitempty"`
	Time            int64          `json:"time,omitempty"`
}

type uploadRequest struct {
	APIKey string  `json:"api_key"`
	Events []Event `json:"events"`
}

type uploadResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

type Client struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		Endpoint:   DefaultEndpoint,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Upload sends the events in a single request.
func (c *Client) Upload(ctx context.Context, events ...Event) error {
	now := time.Now().UnixMilli()
	for i := range events {
		if events[i].Time == 0 {
			events[i].Time = now
		}
	}

	b, err := json.Marshal(uploadRequest{APIKey: c.APIKey, Events: events})
	if err != nil {
		return fmt.Errorf("failed to marshal amplitude payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ur uploadResponse
		msg := strings.TrimSpace(string(body))
		if err := json.Unmarshal(body, &ur); err == nil && ur.Error != "" {
			msg = ur.Error
		}
		return fmt.Errorf("amplitude http error (%d): %s", resp.StatusCode, msg)
	}
	return nil
}
