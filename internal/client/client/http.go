package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/net/publicsuffix"
)

const maxBodySize = 4 << 20

// HTTPClient implements Client over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	breaker *breakerTransport
	timeout time.Duration
	log     logging.Logger
	metrics *Metrics
}

type options struct {
	timeout   time.Duration
	log       logging.Logger
	metrics   *Metrics
	transport http.RoundTripper
	breaker   gobreaker.Settings
}

// Option customises NewHTTPClient.
type Option func(*options)

// WithTimeout bounds every call except uploads.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTransport replaces the underlying RoundTripper (wrapped by the breaker).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(o *options) { o.breaker = st }
}

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	o := options{breaker: BreakerSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Nop()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: o.timeout,
		log:     o.log,
		metrics: o.metrics,
	}

	st := o.breaker
	next := st.OnStateChange
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		c.log.Warn(context.Background(), "circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		c.metrics.breaker(to)
		if next != nil {
			next(name, from, to)
		}
	}
	c.breaker = newBreakerTransport(o.transport, st)
	c.http = &http.Client{Transport: c.breaker, Jar: jar}

	return c, nil
}

// BreakerState reports the circuit breaker state.
func (c *HTTPClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// call describes one API request.
type call struct {
	op     string
	method string
	path   string
	// body is JSON-encoded when non-nil.
	body any
	// raw is sent as-is with contentType; contentLength < 0 means unknown.
	raw           io.Reader
	contentType   string
	contentLength int64
	noTimeout     bool
}

// do sends c and decodes a successful JSON response into out (if non-nil).
func (c *HTTPClient) do(ctx context.Context, cl call, out any) error {
	if c.timeout > 0 && !cl.noTimeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	contentType := cl.contentType
	switch {
	case cl.body != nil:
		b, err := json.Marshal(cl.body)
		if err != nil {
			return &APIError{Op: cl.op, Kind: KindSetup, Message: err.Error(), Err: err}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	case cl.raw != nil:
		body = cl.raw
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return &APIError{Op: cl.op, Kind: KindSetup, Message: err.Error(), Err: err}
	}
	if cl.raw != nil {
		req.ContentLength = cl.contentLength
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)

	ctx = logging.ContextWithRequestID(ctx, requestID)
	log := c.log.With("op", cl.op)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(cl.op, cl.method, 0, time.Since(start))
		log.Warn(ctx, "api request failed", "method", cl.method, "path", cl.path, "error", err)
		return &APIError{Op: cl.op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.metrics.observe(cl.op, cl.method, resp.StatusCode, time.Since(start))
	if err != nil {
		log.Warn(ctx, "reading api response failed", "status", resp.StatusCode, "error", err)
		return &APIError{Op: cl.op, Kind: KindNetwork, Err: err}
	}

	log.Debug(ctx, "api request", "method", cl.method, "path", cl.path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(cl.op, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Op: cl.op, Kind: KindResponse, StatusCode: resp.StatusCode, Body: data, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
