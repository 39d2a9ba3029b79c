package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
	apperrors "github.com/yanqian/rain-nowcast/pkg/errors"
)

const defaultBaseURL = "https://map.yahooapis.jp/weather/V1/place"

// StatusError carries a non-2xx provider response for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status=%d body=%s", e.StatusCode, e.Body)
}

// Client fetches precipitation nowcasts from the Yahoo! JAPAN weather API.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	sendAppIDHeader bool
	logger          *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAppIDHeader also sends the key as a "Yahoo AppID" User-Agent.
func WithAppIDHeader(enabled bool) Option {
	return func(c *Client) {
		c.sendAppIDHeader = enabled
	}
}

// NewClient builds an API client. An empty baseURL selects the public endpoint.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
		logger:     logger.With("component", "yahoo.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a single GET and returns the raw JSON document. The request
// is bounded by req.Timeout; there are no retries.
func (c *Client) Fetch(ctx context.Context, req nowcast.FetchRequest) ([]byte, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("coordinates", req.Coordinates.Query())
	params.Set("appid", req.APIKey)
	params.Set("output", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(nowcast.CodeConnection, "build nowcast request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.sendAppIDHeader {
		httpReq.Header.Set("User-Agent", "Yahoo AppID: "+req.APIKey)
	}

	c.logger.Debug("requesting nowcast", "coordinates", req.Coordinates.Query())
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, connectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
		if isAuthFailure(statusErr) {
			return nil, apperrors.Wrap(nowcast.CodeAuth, "nowcast provider rejected the api key", statusErr)
		}
		return nil, apperrors.Wrap(nowcast.CodeConnection, "nowcast provider returned an error", statusErr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError(err)
	}
	if !json.Valid(body) {
		return nil, apperrors.Wrap(nowcast.CodeParse, "nowcast response is not valid json", nil)
	}
	return body, nil
}

func connectionError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.Wrap(nowcast.CodeConnection, "nowcast request timed out", err)
	}
	return apperrors.Wrap(nowcast.CodeConnection, "nowcast request failed", err)
}

func isAuthFailure(err *StatusError) bool {
	if err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden {
		return true
	}
	body := strings.ToLower(err.Body)
	return strings.Contains(body, "auth") || strings.Contains(body, "appid")
}

var _ nowcast.Fetcher = (*Client)(nil)
