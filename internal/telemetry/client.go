// Package telemetry is a small HTTP client for the sensor network's
// telemetry service.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrEmptyResponse is returned when the service answers with an empty body
// or a JSON null.
var ErrEmptyResponse = errors.New("empty response")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d (%s)", e.URL, e.StatusCode, e.Body)
}

// FailedRequest returns the request URL and response status.
func (e *StatusError) FailedRequest() (string, int) {
	return e.URL, e.StatusCode
}

// RequestError is returned when a request got no response at all.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FailedRequest returns the request URL and a zero status.
func (e *RequestError) FailedRequest() (string, int) {
	return e.URL, 0
}

// Client talks to the telemetry service for a single sensor network.
type Client struct {
	baseURL    string
	networkID  string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. The given client is
// never modified; WithTimeout applies to a copy of it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Zero keeps the http.Client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for baseURL and the given network.
func NewClient(baseURL, networkID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		networkID:  networkID,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the service URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetStatus fetches the server status blob.
func (c *Client) GetStatus(ctx context.Context) (ServerStatus, error) {
	body, err := c.doGet(ctx, "/status")
	if err != nil {
		return nil, err
	}
	return ServerStatus(body), nil
}

// GetMeasurements fetches the most recent measurements of a sensor.
func (c *Client) GetMeasurements(ctx context.Context, sensorID string) ([]Measurement, error) {
	body, err := c.doGet(ctx, c.sensorPath(sensorID, "measurements")+"?direction=previous")
	if err != nil {
		return nil, err
	}

	var out []Measurement
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode measurements of %s: %w", sensorID, err)
	}
	return out, nil
}

// GetLogs fetches the most recent log entries of a sensor.
func (c *Client) GetLogs(ctx context.Context, sensorID string) ([]LogEntry, error) {
	body, err := c.doGet(ctx, c.sensorPath(sensorID, "logs")+"?direction=previous")
	if err != nil {
		return nil, err
	}

	var out []LogEntry
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode logs of %s: %w", sensorID, err)
	}
	return out, nil
}

// GetLogAggregates fetches the aggregated log summary of a sensor.
func (c *Client) GetLogAggregates(ctx context.Context, sensorID string) (LogAggregates, error) {
	body, err := c.doGet(ctx, c.sensorPath(sensorID, "logs/aggregates"))
	if err != nil {
		return nil, err
	}
	return LogAggregates(body), nil
}

func (c *Client) sensorPath(sensorID, resource string) string {
	return fmt.Sprintf("/networks/%s/sensors/%s/%s",
		url.PathEscape(c.networkID), url.PathEscape(sensorID), resource)
}

// doGet performs a GET against the service and returns a non-empty body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	u := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", u, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{URL: u, Err: err}
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("read response from %s failed: %w", u, readErr)
	}

	// The service answers errors with a JSON detail body; storing it as
	// sensor data would hide the failure, so any non-2xx is dropped.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%s: %w", u, ErrEmptyResponse)
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%s: response is not valid JSON", u)
	}

	return trimmed, nil
}
