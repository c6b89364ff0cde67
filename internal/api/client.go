package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

const eventsCollection = "events"

// ErrNotConfigured is returned when no Firestore project is set.
var ErrNotConfigured = errors.New("firestore project not configured")

// Client reads the events collection through the Firestore REST API.
type Client struct {
	baseURL    string
	projectID  string
	apiKey     string
	userAgent  string
	pageSize   int
	httpClient *retryablehttp.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	requestCount int64
	errorCount   int64
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	logger = logging.OrNop(logger).Named("api")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.API.Retries
	retryClient.HTTPClient.Timeout = time.Duration(cfg.API.Timeout) * time.Second
	retryClient.Logger = logging.ForRetryClient(logger)

	rps := cfg.API.RateLimit.RequestsPerSecond
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	burst := cfg.API.RateLimit.BurstSize
	if burst <= 0 {
		burst = 1
	}

	pageSize := cfg.API.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.API.BaseURL, "/"),
		projectID:  cfg.API.ProjectID,
		apiKey:     cfg.API.APIKey,
		userAgent:  cfg.API.UserAgent,
		pageSize:   pageSize,
		httpClient: retryClient,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}

	logger.Debug("api client initialized",
		zap.String("base_url", c.baseURL),
		zap.String("project", c.projectID))

	return c
}

// Configured reports whether a project id is set.
func (c *Client) Configured() bool {
	return c.projectID != ""
}

func (c *Client) makeRequest(ctx context.Context, method, resource string, params url.Values) (*http.Response, []byte, error) {
	start := time.Now()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	fullURL := c.baseURL + resource
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	c.requestCount++
	c.logger.Debug("request", zap.String("method", method), zap.String("resource", resource), zap.Int64("n", c.requestCount))

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.errorCount++
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); closeErr != nil {
		c.logger.Debug("failed to close response body", zap.Error(closeErr))
	}
	if readErr != nil {
		c.errorCount++
		return resp, nil, fmt.Errorf("read response body: %w", readErr)
	}

	c.logger.Debug("response",
		zap.String("resource", resource),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= 400 {
		c.errorCount++

		var apiError struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiError) == nil && apiError.Error.Message != "" {
			return resp, body, fmt.Errorf("API error %d: %s", resp.StatusCode, apiError.Error.Message)
		}
		return resp, body, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return resp, body, nil
}

type listDocumentsResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

type document struct {
	Name   string           `json:"name"`
	Fields map[string]value `json:"fields"`
}

type value struct {
	StringValue    *string  `json:"stringValue,omitempty"`
	TimestampValue *string  `json:"timestampValue,omitempty"`
	IntegerValue   *string  `json:"integerValue,omitempty"`
	DoubleValue    *float64 `json:"doubleValue,omitempty"`
	BooleanValue   *bool    `json:"booleanValue,omitempty"`
}

func (v value) text() string {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.TimestampValue != nil:
		return *v.TimestampValue
	case v.IntegerValue != nil:
		return *v.IntegerValue
	case v.DoubleValue != nil:
		return strconv.FormatFloat(*v.DoubleValue, 'f', -1, 64)
	case v.BooleanValue != nil:
		return strconv.FormatBool(*v.BooleanValue)
	}
	return ""
}

// ListEvents returns every document of the events collection, newest first.
func (c *Client) ListEvents(ctx context.Context) ([]*types.EventDocument, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	resource := fmt.Sprintf("/projects/%s/databases/(default)/documents/%s",
		url.PathEscape(c.projectID), eventsCollection)

	var events []*types.EventDocument
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("orderBy", "Date desc")
		params.Set("pageSize", strconv.Itoa(c.pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		_, body, err := c.makeRequest(ctx, http.MethodGet, resource, params)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}

		var page listDocumentsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode events response: %w", err)
		}

		for _, doc := range page.Documents {
			events = append(events, doc.toEvent())
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Debug("events listed", zap.Int("count", len(events)))
	return events, nil
}

func (d document) toEvent() *types.EventDocument {
	field := func(name string) string {
		if v, ok := d.Fields[name]; ok {
			if s := v.text(); s != "" {
				return s
			}
		}
		return d.Fields[strings.ToLower(name)].text()
	}

	return &types.EventDocument{
		ID:          path.Base(d.Name),
		Title:       field("Title"),
		Organizer:   field("Organizer"),
		Image:       field("Image"),
		Category:    field("Category"),
		Date:        field("Date"),
		Location:    field("Location"),
		Description: field("Description"),
	}
}

func (c *Client) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"total_requests": c.requestCount,
		"total_errors":   c.errorCount,
		"base_url":       c.baseURL,
		"project":        c.projectID,
	}
}
