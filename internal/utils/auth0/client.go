package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ConflictError is returned for 409 conflicts (user already exists).
type ConflictError struct {
	Message string
}

func (c *ConflictError) Error() string {
	return fmt.Sprintf("conflict (409): %s", c.Message)
}

// APIError covers every other non-2xx Management API reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth0 http error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the Auth0 Management API with machine-to-machine
// credentials.
type Client struct {
	BaseURL      *url.URL
	Audience     string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
}

const defaultTimeout = 30 * time.Second

// NewClient accepts a bare tenant domain ("tenant.eu.auth0.com") or a full
// base URL; bare domains are reached over https.
func NewClient(domain, clientID, clientSecret string) (*Client, error) {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return nil, fmt.Errorf("auth0 domain is empty")
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	parsed, err := url.Parse(domain)
	if err != nil {
		return nil, fmt.Errorf("invalid auth0 domain: %w", err)
	}

	return &Client{
		BaseURL:      parsed,
		Audience:     "https://" + parsed.Host + "/api/v2/",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) endpoint(p string) string {
	u := *c.BaseURL
	u.Path = path.Join(c.BaseURL.Path, p)
	return u.String()
}

// NewSession returns a Management API session. The client-credentials token
// is fetched on first use and reused for the lifetime of the session only.
func (c *Client) NewSession(ctx context.Context) *Session {
	cc := clientcredentials.Config{
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		TokenURL:       c.endpoint("/oauth/token"),
		EndpointParams: url.Values{"audience": {c.Audience}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
	return &Session{client: c, http: cc.Client(ctx)}
}

// Session is one authenticated conversation with the Management API.
type Session struct {
	client *Client
	http   *http.Client
}

// UsersByEmail runs the exact-match email lookup.
func (s *Session) UsersByEmail(ctx context.Context, email string) ([]User, error) {
	q := url.Values{"email": {email}}
	var users []User
	if err := s.do(ctx, http.MethodGet, "/api/v2/users-by-email?"+q.Encode(), nil, &users); err != nil {
		return nil, fmt.Errorf("UsersByEmail error: %w", err)
	}
	return users, nil
}

// CreateUser creates a new identity.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var created User
	if err := s.do(ctx, http.MethodPost, "/api/v2/users", req, &created); err != nil {
		return nil, fmt.Errorf("CreateUser error: %w", err)
	}
	return &created, nil
}

// UpdateAppMetadata patches app_metadata only; Auth0 merges top-level keys.
func (s *Session) UpdateAppMetadata(ctx context.Context, userID string, md AppMetadata) (*User, error) {
	body := map[string]any{"app_metadata": md}
	var updated User
	if err := s.do(ctx, http.MethodPatch, "/api/v2/users/"+url.PathEscape(userID), body, &updated); err != nil {
		return nil, fmt.Errorf("UpdateAppMetadata error: %w", err)
	}
	return &updated, nil
}

// do performs a single request; retries belong to whoever redelivers the webhook.
func (s *Session) do(ctx context.Context, method, reqPath string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBytes)
	}

	// reqPath may carry a query string, so it is appended rather than path-joined.
	full := strings.TrimRight(s.client.BaseURL.String(), "/") + reqPath
	req, err := http.NewRequestWithContext(ctx, method, full, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleHTTPError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func handleHTTPError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var apiErr ErrorResponse
	msg := ""
	if err := json.Unmarshal(bodyBytes, &apiErr); err == nil {
		msg = apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(bodyBytes))
	}

	if resp.StatusCode == http.StatusConflict {
		return &ConflictError{Message: msg}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
