package restapi

import (
	"context"
	"net/http"

	"github.com/xenking/bookverse-storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository over orders/.
type OrderRepository struct {
	c *Client
}

// NewOrderRepository returns an OrderRepository that uses the given client.
func NewOrderRepository(c *Client) *OrderRepository {
	return &OrderRepository{c: c}
}

// List returns the user's orders, newest first as ordered by the server.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if _, err := r.c.do(ctx, call{
		op:     "orders.list",
		method: http.MethodGet,
		path:   "orders/",
		result: &orders,
	}); err != nil {
		return nil, err
	}
	return orders, nil
}

// Place submits the cart as an order. On rejection the returned *HTTPError
// carries the server's detail and the list of missing fields.
func (r *OrderRepository) Place(ctx context.Context, req order.PlaceRequest) (*order.Order, error) {
	var o order.Order
	if _, err := r.c.do(ctx, call{
		op:     "orders.place",
		method: http.MethodPost,
		path:   "orders/place_order/",
		body:   req,
		result: &o,
	}); err != nil {
		return nil, err
	}
	return &o, nil
}
