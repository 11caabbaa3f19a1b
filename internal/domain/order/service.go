package order

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"

	"github.com/xenking/bookverse-storefront/internal/domain/checkout"
)

// ErrSubmissionInFlight is returned when an order is submitted while a
// previous submission has not completed yet.
var ErrSubmissionInFlight = errors.New("order submission already in progress")

// Cart is the client-held cart the Placer reads and clears.
type Cart interface {
	Len() int
	Clear(ctx context.Context)
}

// Placer encapsulates order placement.
type Placer struct {
	orders Repository
	cart   Cart

	busy atomic.Bool
}

// NewPlacer creates a Placer submitting to orders and clearing cart on success.
func NewPlacer(orders Repository, cart Cart) *Placer {
	return &Placer{
		orders: orders,
		cart:   cart,
	}
}

// Busy reports whether a submission is in flight. While true the submit
// control is disabled.
func (p *Placer) Busy() bool {
	return p.busy.Load()
}

// PlaceOrder validates form against the current cart, submits it once, and
// clears the cart when the backend accepts the order. Failures are returned
// as is and never retried.
func (p *Placer) PlaceOrder(ctx context.Context, form checkout.ShippingForm) (*Order, error) {
	if err := checkout.Validate(form, p.cart.Len()); err != nil {
		return nil, err
	}

	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer p.busy.Store(false)

	o, err := p.orders.Place(ctx, NewPlaceRequest(form))
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	p.cart.Clear(ctx)
	return o, nil
}
