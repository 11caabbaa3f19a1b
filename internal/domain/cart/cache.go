package cart

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookverse-storefront/internal/effect"
)

// Mutation kinds recorded as effects.
const (
	MutationRefresh  = "cart.refresh"
	MutationQuantity = "cart.quantity"
	MutationRemove   = "cart.remove"
	MutationAdd      = "cart.add"
	MutationClear    = "cart.clear"
)

// Cache mirrors the server's cart-items collection for the current session.
//
// The mutex guards items only; it is never held across a call to Remote, so
// two operations racing on the same entry apply in response arrival order.
type Cache struct {
	remote Remote

	mu     sync.Mutex
	items  []Item
	loaded bool
}

// NewCache creates an empty Cache backed by remote.
func NewCache(remote Remote) *Cache {
	return &Cache{remote: remote}
}

// Refresh replaces the cached sequence with the server's.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.remote.ListItems(ctx)
	if err != nil {
		return errors.Wrap(err, "list cart items")
	}

	c.mu.Lock()
	c.items = slices.Clone(items)
	c.loaded = true
	c.mu.Unlock()

	effect.Record(ctx, effect.StateMutation{Kind: MutationRefresh})
	return nil
}

// Loaded reports whether a Refresh has succeeded.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// UpdateQuantity sets the quantity of item id. Only the quantity field of the
// cached entry is patched from the response, keeping the locally known book.
func (c *Cache) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if _, ok := c.Get(id); !ok {
		return ErrItemNotFound
	}

	updated, err := c.remote.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		return errors.Wrap(err, "update quantity")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The entry may have been evicted while the request was in flight.
	idx := c.index(id)
	if idx < 0 {
		return nil
	}
	// An empty or undecodable 2xx body leaves the accepted quantity in place.
	if updated != nil && updated.Quantity >= 1 {
		quantity = updated.Quantity
	}
	c.items[idx].Quantity = quantity
	effect.Record(ctx, effect.StateMutation{Kind: MutationQuantity})
	return nil
}

// RemoveItem deletes item id after confirm approves it.
func (c *Cache) RemoveItem(ctx context.Context, id int64, confirm ConfirmFunc) error {
	item, ok := c.Get(id)
	if !ok {
		return ErrItemNotFound
	}
	if confirm == nil || !confirm(item) {
		return ErrRemovalDeclined
	}

	if err := c.remote.RemoveItem(ctx, id); err != nil {
		return errors.Wrap(err, "remove item")
	}

	c.mu.Lock()
	c.items = slices.DeleteFunc(c.items, func(it Item) bool { return it.ID == id })
	c.mu.Unlock()

	effect.Record(ctx, effect.StateMutation{Kind: MutationRemove})
	return nil
}

// Add puts one copy of the book into the cart and upserts the returned entry.
func (c *Cache) Add(ctx context.Context, bookID int64) (*Item, error) {
	added, err := c.remote.AddItem(ctx, bookID, 1)
	if err != nil {
		return nil, errors.Wrap(err, "add item")
	}

	c.mu.Lock()
	if idx := c.index(added.ID); idx >= 0 {
		c.items[idx] = *added
	} else {
		c.items = append(c.items, *added)
	}
	c.mu.Unlock()

	effect.Record(ctx, effect.StateMutation{Kind: MutationAdd})
	return added, nil
}

// Clear drops every cached entry. Used after the server has emptied the cart.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	effect.Record(ctx, effect.StateMutation{Kind: MutationClear})
}

// Get returns a copy of item id.
func (c *Cache) Get(id int64) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.index(id)
	if idx < 0 {
		return Item{}, false
	}
	return c.items[idx], true
}

// Items returns a copy of the cached sequence.
func (c *Cache) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total recomputes Σ price × quantity over the cached entries.
func (c *Cache) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.items)
}

// index must be called with c.mu held.
func (c *Cache) index(id int64) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ID == id })
}
