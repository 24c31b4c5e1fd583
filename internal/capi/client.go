package capi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/richcards/leadrelay/pkg/logging"
)

const (
	defaultGraphAPIBase = "https://graph.facebook.com"
	defaultAPIVersion   = "v21.0"
	defaultHTTPTimeout  = 10 * time.Second
)

var capiTracer = otel.Tracer("leadrelay.internal.capi")

// ErrNotConfigured is returned by Send when the pixel id or token is missing.
var ErrNotConfigured = errors.New("capi: pixel id and access token are required")

// Config identifies the pixel and credentials events are sent with.
type Config struct {
	PixelID       string
	AccessToken   string
	TestEventCode string
	APIVersion    string
	BaseURL       string
	Timeout       time.Duration
}

// Client posts conversion events to the Meta Conversions API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a Conversions API client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphAPIBase
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Configured reports whether the client has credentials to send with.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.PixelID != "" && c.cfg.AccessToken != ""
}

// TestMode reports whether events are tagged as test traffic.
func (c *Client) TestMode() bool {
	return c != nil && c.cfg.TestEventCode != ""
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/%s/%s/events", c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.PixelID)
}

// Send posts one batch. It makes exactly one request and never retries.
func (c *Client) Send(ctx context.Context, events ...Event) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(events) == 0 {
		return nil, errors.New("capi: at least one event is required")
	}

	ctx, span := capiTracer.Start(ctx, "capi.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("capi.event_name", events[0].EventName),
		attribute.String("capi.event_id", events[0].EventID),
		attribute.Int("capi.batch_size", len(events)),
		attribute.Bool("capi.test_mode", c.TestMode()),
	)

	body, err := json.Marshal(batch{
		Data:          events,
		AccessToken:   c.cfg.AccessToken,
		TestEventCode: c.cfg.TestEventCode,
	})
	if err != nil {
		return nil, fmt.Errorf("capi: marshal events: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("capi: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("capi: send events: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("capi: read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if apiErr := parseAPIError(resp.StatusCode, respBody); apiErr != nil {
		span.SetStatus(codes.Error, "api error")
		c.logger.Error("meta conversions API error",
			"status", resp.StatusCode,
			"body", apiErr.Body,
			"event_id", events[0].EventID,
		)
		return nil, apiErr
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("capi: unmarshal response: %w", err)
	}

	c.logger.Info("meta conversions API event sent",
		"event_name", events[0].EventName,
		"event_id", events[0].EventID,
		"events_received", out.EventsReceived,
		"fbtrace_id", out.FBTraceID,
	)
	return &out, nil
}

func parseAPIError(status int, body []byte) *APIError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	if env.Error == nil && status >= 200 && status < 300 {
		return nil
	}
	apiErr := &APIError{StatusCode: status, Body: string(body)}
	if env.Error != nil {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		apiErr.Code = env.Error.Code
		apiErr.FBTraceID = env.Error.FBTraceID
	}
	return apiErr
}
