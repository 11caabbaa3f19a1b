package restapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xenking/bookverse-storefront/internal/domain/cart"
)

var _ cart.Remote = (*CartRepository)(nil)

// CartRepository implements cart.Remote over cart-items/.
type CartRepository struct {
	c *Client
}

// NewCartRepository returns a CartRepository that uses the given client.
func NewCartRepository(c *Client) *CartRepository {
	return &CartRepository{c: c}
}

func itemPath(id int64) string {
	return fmt.Sprintf("cart-items/%d/", id)
}

// ListItems returns the user's cart in server order.
func (r *CartRepository) ListItems(ctx context.Context) ([]cart.Item, error) {
	var items []cart.Item
	if _, err := r.c.do(ctx, call{
		op:     "cart.list",
		method: http.MethodGet,
		path:   "cart-items/",
		result: &items,
	}); err != nil {
		return nil, err
	}
	return items, nil
}

type addItemRequest struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

// AddItem creates a cart entry for bookID.
func (r *CartRepository) AddItem(ctx context.Context, bookID int64, quantity int) (*cart.Item, error) {
	var item cart.Item
	if _, err := r.c.do(ctx, call{
		op:     "cart.add",
		method: http.MethodPost,
		path:   "cart-items/",
		body:   addItemRequest{BookID: bookID, Quantity: quantity},
		result: &item,
	}); err != nil {
		return nil, err
	}
	return &item, nil
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity partially updates the entry's quantity.
func (r *CartRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) (*cart.Item, error) {
	var item cart.Item
	if _, err := r.c.do(ctx, call{
		op:     "cart.update",
		method: http.MethodPatch,
		path:   itemPath(id),
		body:   updateQuantityRequest{Quantity: quantity},
		result: &item,
	}); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes the entry.
func (r *CartRepository) RemoveItem(ctx context.Context, id int64) error {
	_, err := r.c.do(ctx, call{
		op:     "cart.remove",
		method: http.MethodDelete,
		path:   itemPath(id),
	})
	return err
}
