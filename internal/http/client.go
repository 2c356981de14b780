package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client is the HTTP transport for the iModels API. It is safe for
// concurrent use; retry bookkeeping is kept per call.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	auth        imodels.AuthorizationProvider
	headers     imodels.Headers
	retryPolicy imodels.RetryPolicy
	logger      imodels.Logger
	debug       bool
	userAgent   string
}

// Request represents an HTTP request.
type Request struct {
	Method string
	// Path is appended to the base URL. URL, when set, is used verbatim.
	Path  string
	URL   string
	Query url.Values
	Body  interface{}
	// Headers override client-level headers; a nil factory removes one.
	Headers imodels.Headers
	// Binary requests raw content instead of JSON.
	Binary bool
}

// Response represents an HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger imodels.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryPolicy sets the retry policy. A nil policy disables retries.
func WithRetryPolicy(policy imodels.RetryPolicy) Option {
	return func(c *Client) {
		c.retryPolicy = policy
	}
}

// WithHeaders sets headers added to every request.
func WithHeaders(headers imodels.Headers) Option {
	return func(c *Client) {
		for name, factory := range headers {
			c.headers[name] = factory
		}
	}
}

// WithCorrelationID adds a fresh correlation id to every request.
func WithCorrelationID() Option {
	return func(c *Client) {
		c.headers[constants.HeaderCorrelationID] = func() string { return uuid.NewString() }
	}
}

// WithTimeout sets the timeout of a single attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new HTTP client. Without WithRetryPolicy no request is retried.
func NewClient(baseURL string, auth imodels.AuthorizationProvider, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: cleanhttp.DefaultPooledClient(),
		auth:       auth,
		headers:    make(imodels.Headers),
		userAgent:  constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Do performs one logical operation, retrying transient failures according
// to the retry policy. For error statuses the response is returned together
// with an *imodels.Error parsed from the last response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := c.resolveURL(req)
	if err != nil {
		return nil, err
	}

	var (
		body        []byte
		requestBody interface{}
	)

	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		requestBody = body
	}

	retryReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, requestBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	err = c.setHeaders(ctx, retryReq.Header, req, body != nil)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    target,
		})
	}

	state := newRetryState(c.retryPolicy, c.logger)
	start := time.Now()

	httpResp, err := state.client(c.httpClient).Do(retryReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
			"retries":  state.retriesInvoked,
		})
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, imodels.ParseErrorResponse(httpResp.StatusCode, respBody)
	}

	return resp, nil
}

func (c *Client) resolveURL(req *Request) (string, error) {
	target := req.URL
	if target == "" {
		target = c.baseURL + req.Path
	}

	if len(req.Query) == 0 {
		return target, nil
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing URL %s: %w", target, err)
	}

	query := parsed.Query()
	for key, values := range req.Query {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (c *Client) setHeaders(ctx context.Context, header http.Header, req *Request, hasBody bool) error {
	if req.Binary {
		header.Set("Accept", constants.AcceptBinary)
	} else {
		header.Set("Accept", constants.AcceptHeader)
	}

	if hasBody {
		header.Set("Content-Type", constants.ContentTypeJSON)
	}

	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}

	if c.auth != nil {
		authorization, err := c.auth.Authorization(ctx)
		if err != nil {
			return fmt.Errorf("getting authorization: %w", err)
		}

		header.Set("Authorization", authorization.HeaderValue())
	}

	applyHeaders(header, c.headers)
	applyHeaders(header, req.Headers)

	return nil
}

func applyHeaders(header http.Header, headers imodels.Headers) {
	for name, factory := range headers {
		if factory == nil {
			header.Del(name)

			continue
		}

		header.Set(name, factory())
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// GetURL performs a GET request on an absolute URL such as a next page link.
func (c *Client) GetURL(ctx context.Context, absoluteURL string, headers imodels.Headers) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     absoluteURL,
		Headers: headers,
	})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// PatchURL performs a PATCH request on an absolute URL such as a complete link.
func (c *Client) PatchURL(ctx context.Context, absoluteURL string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		URL:    absoluteURL,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// DecodeJSON unmarshals a response body.
func DecodeJSON(resp *Response, value interface{}) error {
	err := json.NewDecoder(bytes.NewReader(resp.Body)).Decode(value)
	if err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
