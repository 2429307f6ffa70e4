package client

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
)

// Transport is the synchronous collaborator the facade schedules onto the
// tick loop. Implementations receive a method, a path and per-request
// options and return a response or an error; errors are opaque to the facade
// and reach Futures unmodified.
type Transport interface {
	Do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error)
}

// RequestOptions carries per-request parameters for a transport call.
type RequestOptions struct {
	// Query is appended to the request URL.
	Query url.Values
	// Headers are set on the request, overriding transport defaults.
	Headers map[string]string
	// Body is JSON-marshaled for methods that carry a payload.
	Body any
	// Timeout overrides the transport's per-request timeout when positive.
	Timeout time.Duration
}

// Request names one operation for BulkAsync and BatchAsync fan-out.
type Request struct {
	Method  string
	Path    string
	Options RequestOptions
}

// Response is the transport's result surface. Parsing and validation of the
// payload happen outside the async core.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// maxResponseBody caps how much of a response is read into memory.
const maxResponseBody = 10 << 20 // 10 MiB

// HTTPTransport implements Transport over net/http. The underlying client is
// reused across requests for connection pooling. Zero value is not usable;
// use NewHTTPTransport.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	headers map[string]string
	timeout time.Duration
}

// HTTPTransportOption configures NewHTTPTransport.
type HTTPTransportOption func(*HTTPTransport)

// WithHTTPClient substitutes a custom http.Client, for proxies or testing.
func WithHTTPClient(c *http.Client) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithDefaultHeader sets a header on every outgoing request.
func WithDefaultHeader(key, value string) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if key != "" && value != "" {
			t.headers[key] = value
		}
	}
}

// WithRequestTimeout sets the per-request timeout applied when request
// options carry none.
func WithRequestTimeout(d time.Duration) HTTPTransportOption {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// NewHTTPTransport creates a pooled HTTP transport rooted at baseURL.
func NewHTTPTransport(baseURL string, opts ...HTTPTransportOption) (*HTTPTransport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL scheme must be http or https", ErrValidation)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: base URL host is required", ErrValidation)
	}

	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
		timeout: 10 * time.Second,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Do performs one synchronous request. The response is returned for every
// status code; an error indicates a transport-level failure (marshaling,
// network, context), not an HTTP-level one.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal request body: %w", ErrValidation, err)
		}
		body = bytes.NewReader(payload)
	}

	timeout := t.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := t.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "pulsekit/1.0")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}
