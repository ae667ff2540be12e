package mixpanel

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

const DefaultEndpoint = "https://api.mixpanel.com/track"

// Event identifies purely by DistinctID; Mixpanel has no device linkage here.
type Event struct {
	Name       string
	DistinctID string
	InsertID   string
	Properties map[string]any
	Time       time.Time
}

type trackResponse struct {
	Status int     `json:"status"`
	Error  *string `json:"error"`
}

type Client struct {
	Endpoint   string
	Token      string
	HTTPClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		Endpoint:   DefaultEndpoint,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Track(ctx context.Context, ev Event) error {
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	props := make(map[string]any, len(ev.Properties)+4)
	for k, v := range ev.Properties {
		props[k] = v
	}
	props["token"] = c.Token
	props["distinct_id"] = ev.DistinctID
	props["time"] = ts.UnixMilli()
	if ev.InsertID != "" {
		props["$insert_id"] = ev.InsertID
	}

	b, err := json.Marshal([]map[string]any{{"event": ev.Name, "properties": props}})
	if err != nil {
		return fmt.Errorf("failed to marshal mixpanel payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"?verbose=1", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mixpanel http error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr trackResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return fmt.Errorf("failed to decode mixpanel response: %w", err)
	}
	if tr.Status != 1 {
		msg := "unknown error"
		if tr.Error != nil {
			msg = *tr.Error
		}
		return fmt.Errorf("mixpanel rejected event: %s", msg)
	}
	return nil
}
