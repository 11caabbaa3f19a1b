// Package controller implements the storefront pages as a dispatcher of
// user actions.
//
// Every action runs against the backend repositories and the cart cache and
// yields an Outcome: the page to show, its view model, a message and the
// ordered list of side effects the action produced.
package controller

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/auth"
	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/order"
	"github.com/xenking/bookverse-storefront/internal/effect"
	"github.com/xenking/bookverse-storefront/internal/storage/restapi"
)

const tracerName = "github.com/xenking/bookverse-storefront/internal/controller"

// Outcome is the result of a dispatched action.
type Outcome struct {
	// Page is the page shown after the action.
	Page effect.Page
	// View is the view model for Page, or nil when there is nothing to render.
	View any
	// Notice is an informational message.
	Notice string
	// Error is the user-facing failure message.
	Error string
	// Err is the underlying failure, if any.
	Err error
	// Effects lists what the action did, in order.
	Effects []effect.Effect
	// RequestID is the X-Request-ID shared by every call of the action.
	RequestID string
}

// Failed reports whether the action ended with an error message.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Config holds non-dependency settings for the Controller.
type Config struct {
	// ImageBaseURL resolves relative book image paths. Optional.
	ImageBaseURL   string
	TracerProvider trace.TracerProvider
}

// Controller owns the client-side state of one storefront session.
type Controller struct {
	gate     *auth.Gate
	books    book.Repository
	accounts account.Repository
	orders   order.Repository
	cart     *cart.Cache
	placer   *order.Placer

	imageBaseURL string
	tracer       trace.Tracer
}

// New creates a Controller. The cart cache is created over remote and is the
// only mutable cart state of the session.
func New(
	cfg Config,
	gate *auth.Gate,
	books book.Repository,
	accounts account.Repository,
	orders order.Repository,
	remote cart.Remote,
) *Controller {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	cache := cart.NewCache(remote)
	return &Controller{
		gate:         gate,
		books:        books,
		accounts:     accounts,
		orders:       orders,
		cart:         cache,
		placer:       order.NewPlacer(orders, cache),
		imageBaseURL: cfg.ImageBaseURL,
		tracer:       tp.Tracer(tracerName),
	}
}

// Cart exposes the cart cache for read access.
func (c *Controller) Cart() *cart.Cache {
	return c.cart
}

// Busy reports whether an order submission is in flight.
func (c *Controller) Busy() bool {
	return c.placer.Busy()
}

// Dispatch runs a and collects its effects.
func (c *Controller) Dispatch(ctx context.Context, a Action) Outcome {
	reqID := restapi.NewRequestID()
	ctx = restapi.WithRequestID(ctx, reqID)
	ctx, log := effect.With(ctx)
	ctx, span := c.tracer.Start(ctx, "controller."+a.name(),
		trace.WithAttributes(
			attribute.Bool("authenticated", c.gate.Authenticated()),
			attribute.String("request_id", reqID),
		),
	)
	defer span.End()

	out := a.run(ctx, c)
	out.Effects = log.Effects()
	out.RequestID = reqID

	span.SetAttributes(
		attribute.String("page", string(out.Page)),
		attribute.Int("effects", len(out.Effects)),
		attribute.Int("network_calls", len(log.NetworkCalls())),
	)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Error)
		zctx.From(ctx).Warn("Action failed",
			zap.String("action", a.name()),
			zap.String("request_id", reqID),
			zap.Error(out.Err),
		)
	}
	return out
}

// navigate moves to page, recording the navigation.
func navigate(ctx context.Context, page effect.Page) effect.Page {
	effect.Record(ctx, effect.Navigation{To: page})
	return page
}

// requireAuth redirects to login with prompt when no token is stored.
func (c *Controller) requireAuth(ctx context.Context, prompt string) (Outcome, bool) {
	if c.gate.Authenticated() {
		return Outcome{}, true
	}
	return Outcome{
		Page:   navigate(ctx, effect.PageLogin),
		Notice: prompt,
	}, false
}

// ensureCart loads the cart once per session.
func (c *Controller) ensureCart(ctx context.Context) error {
	if c.cart.Loaded() {
		return nil
	}
	return c.cart.Refresh(ctx)
}
