package amplitude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadSendsDeviceID(t *testing.T) {
	var got uploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"code":200,"events_ingested":1}`))
	}))
	defer srv.Close()

	c := NewClient("amp-key")
	c.Endpoint = srv.URL

	err := c.Upload(context.Background(), Event{
		UserID:          "x@y.com",
		DeviceID:        "dev-123",
		EventType:       "Purchase Completed",
		EventProperties: map[string]any{"amount": 24.0},
		InsertID:        "ins-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "amp-key", got.APIKey)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "dev-123", got.Events[0].DeviceID)
	assert.Equal(t, "x@y.com", got.Events[0].UserID)
	assert.NotZero(t, got.Events[0].Time)
}

func TestUploadReportsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"error":"Invalid API key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad")
	c.Endpoint = srv.URL

	err := c.Upload(context.Background(), Event{UserID: "x@y.com", EventType: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}
