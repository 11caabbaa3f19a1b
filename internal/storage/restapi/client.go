// Package restapi implements the domain repositories on top of the Bookverse
// REST API.
package restapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/bookverse-storefront/internal/effect"
)

const instrumentationName = "github.com/xenking/bookverse-storefront/internal/storage/restapi"

// TokenSource provides the bearer token attached to authenticated calls.
// An empty token means the call is sent without Authorization.
type TokenSource interface {
	Token() string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	timeout        time.Duration
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithTimeout bounds every request. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTracerProvider sets the tracer provider used for client spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider used for request counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// Client is a thin wrapper over the REST API shared by all repositories.
type Client struct {
	http     *resty.Client
	tokens   TokenSource
	requests metric.Int64Counter
}

// NewClient creates a Client for the API rooted at baseURL
// (e.g. http://localhost:8000/api/).
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	o := options{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	requests, err := o.meterProvider.Meter(instrumentationName).Int64Counter(
		"bookverse.api.requests",
		metric.WithDescription("Requests issued to the Bookverse API by resource and outcome."),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create request counter")
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(o.timeout).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithTracerProvider(o.tracerProvider),
			otelhttp.WithMeterProvider(o.meterProvider),
		)).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(requestID).
		OnBeforeRequest(recordCall)

	return &Client{
		http:     rc,
		tokens:   tokens,
		requests: requests,
	}, nil
}

// recordCall records the outgoing request in the effects log of its context.
func recordCall(_ *resty.Client, r *resty.Request) error {
	effect.Record(r.Context(), effect.NetworkCall{Method: r.Method, Path: r.URL})
	return nil
}

// call describes one API request.
type call struct {
	op     string
	method string
	path   string
	// public calls never carry a bearer token.
	public bool
	query  map[string]string
	body   any
	result any
}

// do executes c and classifies failures into NetworkError and HTTPError.
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	lg := zctx.From(ctx)

	req := c.http.R().SetContext(ctx)
	if !cl.public {
		if tok := c.tokens.Token(); tok != "" {
			req.SetAuthToken(tok)
		}
	}
	if cl.query != nil {
		req.SetQueryParams(cl.query)
	}
	if cl.body != nil {
		req.SetBody(cl.body)
	}
	if cl.result != nil {
		req.SetResult(cl.result)
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		if resp != nil && resp.RawResponse != nil && resp.IsSuccess() {
			// Transport succeeded but the body did not decode.
			c.count(ctx, cl.op, "decode_error")
			return nil, errors.Wrapf(err, "%s: decode response", cl.op)
		}
		c.count(ctx, cl.op, "network_error")
		lg.Debug("Request failed",
			zap.String("op", cl.op),
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Error(err),
		)
		return nil, &NetworkError{Op: cl.op, Err: err}
	}

	lg.Debug("Request done",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", cl.path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)

	if !resp.IsSuccess() {
		c.count(ctx, cl.op, "http_error")
		return resp, parseHTTPError(cl.op, resp.StatusCode(), resp.Body())
	}

	c.count(ctx, cl.op, "ok")
	return resp, nil
}

func (c *Client) count(ctx context.Context, op, outcome string) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("resource", op),
		attribute.String("outcome", outcome),
	))
}
