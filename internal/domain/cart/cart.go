package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookverse-storefront/internal/domain/book"
)

// Sentinel errors returned before any request is issued.
var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrRemovalDeclined = errors.New("removal not confirmed")
)

// Item is a (book, quantity) pairing in the user's cart.
type Item struct {
	ID       int64     `json:"id"`
	Book     book.Book `json:"book"`
	Quantity int       `json:"quantity"`
}

// Subtotal returns price × quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Book.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums the subtotals of items.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Remote is the server-side cart collection.
type Remote interface {
	ListItems(ctx context.Context) ([]Item, error)
	AddItem(ctx context.Context, bookID int64, quantity int) (*Item, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*Item, error)
	RemoveItem(ctx context.Context, id int64) error
}

// ConfirmFunc is the confirmation gesture required before removing an item.
type ConfirmFunc func(Item) bool

// Always confirms every removal.
func Always(Item) bool { return true }
