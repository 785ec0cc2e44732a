package apimetrics

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

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/APImetrics/apimetrics-deploy/internal/metrics"
	"github.com/APImetrics/apimetrics-deploy/internal/requestctx"
)

const (
	DefaultBaseURL   = "https://client.apimetrics.io/api/2/"
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "apimetrics-deploy"

	maxErrorBody = 64 * 1024
)

var ErrMissingAPIKey = errors.New("api key is required")

// Client talks to the APImetrics REST API. Authentication is a static bearer
// token; pagination is handled by the list methods.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

type Option func(*clientOptions)

type clientOptions struct {
	baseURL   string
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
}

func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = u }
}

func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.userAgent = ua }
}

// WithTransport sets the base transport under the auth layer.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// New creates a client authenticating with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	o := clientOptions{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", o.baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   o.timeout,
			Transport: &oauth2.Transport{Source: src, Base: o.transport},
		},
		userAgent: o.userAgent,
	}, nil
}

// BaseURL returns the resolved API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(ref).String()
}

// do sends one request and decodes a JSON response into out when out is non-nil.
// operation is the metrics label for the call.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if runID := requestctx.RunID(ctx); runID != "" {
		req.Header.Set("X-Run-ID", runID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger := log.With().
		Str("operation", operation).
		Str("method", method).
		Str("url", req.URL.String()).
		Str("request_id", requestID).
		Str("run_id", requestctx.RunID(ctx)).
		Str("workflow_id", requestctx.WorkflowID(ctx)).
		Logger()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(operation, 0, time.Since(start))
		logger.Debug().Err(err).Msg("Request failed")
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	metrics.RecordAPIRequest(operation, resp.StatusCode, time.Since(start))
	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s: %w", operation, parseError(resp.StatusCode, requestID, data))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", operation, err)
	}
	return nil
}

// listAll follows the cursor chain of a list endpoint until the server
// reports there are no more results.
func listAll[T any](ctx context.Context, c *Client, operation, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}

	var all []T
	for page := 1; ; page++ {
		var resp listResponse[T]
		if err := c.do(ctx, operation, http.MethodGet, path, query, nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)

		log.Debug().
			Str("operation", operation).
			Int("page", page).
			Int("results", len(resp.Results)).
			Bool("more", resp.Meta.More).
			Msg("Fetched page")

		if !resp.Meta.More || resp.Meta.NextCursor == "" {
			return all, nil
		}
		if resp.Meta.NextCursor == query.Get("cursor") {
			return nil, fmt.Errorf("%s: server repeated cursor %q", operation, resp.Meta.NextCursor)
		}
		query.Set("cursor", resp.Meta.NextCursor)
	}
}
