package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.ProjectID = "demo"
	cfg.API.APIKey = "secret"
	cfg.API.Timeout = 5
	cfg.API.UserAgent = "Sonicflow/test"
	cfg.API.PageSize = 2
	return cfg
}

const firstPage = `{
  "documents": [
    {
      "name": "projects/demo/databases/(default)/documents/events/abc",
      "fields": {
        "Title": {"stringValue": "Rooftop Session"},
        "Organizer": {"stringValue": "DJ Kai"},
        "Date": {"timestampValue": "2026-05-01T20:00:00Z"},
        "Category": {"stringValue": "House"}
      }
    },
    {
      "name": "projects/demo/databases/(default)/documents/events/def",
      "fields": {
        "title": {"stringValue": "lowercase"},
        "location": {"stringValue": "Berlin"}
      }
    }
  ],
  "nextPageToken": "p2"
}`

const secondPage = `{
  "documents": [
    {"name": "projects/demo/databases/(default)/documents/events/ghi", "fields": {}}
  ]
}`

func TestClient_ListEventsPaginates(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/demo/databases/(default)/documents/events", r.URL.Path)
		assert.Equal(t, "Date desc", r.URL.Query().Get("orderBy"))
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "Sonicflow/test", r.Header.Get("User-Agent"))

		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)
		if token == "" {
			_, _ = w.Write([]byte(firstPage))
			return
		}
		_, _ = w.Write([]byte(secondPage))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zap.NewNop())
	events, err := c.ListEvents(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"", "p2"}, tokens)
	require.Len(t, events, 3)

	assert.Equal(t, "abc", events[0].ID)
	assert.Equal(t, "Rooftop Session", events[0].Title)
	assert.Equal(t, "DJ Kai", events[0].Organizer)
	assert.Equal(t, "2026-05-01T20:00:00Z", events[0].Date)
	assert.Equal(t, "House", events[0].Category)

	assert.Equal(t, "lowercase", events[1].Title)
	assert.Equal(t, "Berlin", events[1].Location)

	assert.Equal(t, "ghi", events[2].ID)
	assert.Empty(t, events[2].Title)
}

func TestClient_ListEventsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "firestore error body",
			status:  http.StatusForbidden,
			body:    `{"error": {"code": 403, "message": "Missing or insufficient permissions.", "status": "PERMISSION_DENIED"}}`,
			wantErr: "API error 403: Missing or insufficient permissions.",
		},
		{
			name:    "plain error",
			status:  http.StatusNotFound,
			body:    `not found`,
			wantErr: "HTTP 404",
		},
		{
			name:    "bad json",
			status:  http.StatusOK,
			body:    `{`,
			wantErr: "decode events response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(testConfig(srv.URL), zap.NewNop())
			_, err := c.ListEvents(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.API.ProjectID = ""

	c := NewClient(cfg, zap.NewNop())
	_, err := c.ListEvents(context.Background())
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.False(t, c.Configured())
}
