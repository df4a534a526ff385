// Package pagespeed fetches Lighthouse results from the PageSpeed Insights v5 API.
package pagespeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

// DefaultEndpoint is the public runPagespeed endpoint.
const DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// ErrFetchFailure indicates the service could not be reached or answered with an error.
var ErrFetchFailure = errors.New("fetch failure")

// Fetcher retrieves the raw analysis for one URL.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL, apiKey string, strategy Strategy) (*Payload, error)
}

// Client implements Fetcher over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEndpoint overrides the API endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a PageSpeed client. No timeout is imposed beyond the caller's context.
func NewClient(log logrus.FieldLogger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{},
		log:        log.WithField("component", "pagespeed_client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch runs a PageSpeed analysis of pageURL.
func (c *Client) Fetch(ctx context.Context, pageURL, apiKey string, strategy Strategy) (*Payload, error) {
	query := url.Values{}
	query.Set("url", pageURL)
	query.Set("strategy", string(strategy))
	if apiKey != "" {
		query.Set("key", apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrFetchFailure, err)
	}

	c.log.WithFields(logrus.Fields{
		"url":      pageURL,
		"strategy": strategy,
	}).Debug("requesting analysis")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrFetchFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrFetchFailure, resp.StatusCode, apiErrorMessage(body))
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrFetchFailure, err)
	}

	return &payload, nil
}

// apiErrorMessage pulls error.message out of a Google API error body.
func apiErrorMessage(body []byte) string {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return "no error details"
	}

	return apiErr.Error.Message
}

// Compile-time interface compliance check
var _ Fetcher = (*Client)(nil)
