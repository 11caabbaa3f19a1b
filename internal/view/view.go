// Package view maps domain objects to typed view models.
//
// Builders are pure: they hold no state and never perform I/O. Money is
// formatted with two decimals only here.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/auth"
	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/order"
)

const (
	// TeaserLength is the number of description runes shown on a book card.
	TeaserLength = 120
	// PlaceholderImage is shown for books without an image.
	PlaceholderImage = "https://placehold.co/300x200?text=No+Image"
	// RecentOrdersLimit is the size of the account page orders preview.
	RecentOrdersLimit = 3
)

// Placeholder texts.
const (
	NoDescription     = "No description available."
	NoBooksFound      = "No books found. Try adjusting your filters."
	CartUnavailable   = "We could not load your cart right now. Please refresh the page."
	OrdersUnavailable = "We could not load your orders right now. Please refresh the page."
	RecentUnavailable = "We could not load your recent orders."
	NotProvided       = "Not provided"
	TrackingPending   = "Tracking details will appear when your order ships."
)

// Price formats an amount with two decimals.
func Price(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NavView lists the navigation links to show.
type NavView struct {
	Links []string
}

// Nav builds the navigation for the given gate state.
func Nav(n auth.Nav) NavView {
	var links []string
	if n.Login {
		links = append(links, "login")
	}
	if n.Signup {
		links = append(links, "signup")
	}
	if n.Account {
		links = append(links, "account")
	}
	if n.Logout {
		links = append(links, "logout")
	}
	return NavView{Links: links}
}

// BookCard is a catalog entry.
type BookCard struct {
	ID          int64
	Title       string
	Author      string
	Price       string
	Teaser      string
	Description string
	Image       string
}

// PageLink is one entry of the pagination bar.
type PageLink struct {
	Number int
	Active bool
}

// BooksView is the catalog page.
type BooksView struct {
	Cards      []BookCard
	Page       int
	TotalPages int
	// Pages is empty when everything fits on one page.
	Pages   []PageLink
	HasPrev bool
	HasNext bool
	// Empty holds the no-results message.
	Empty string
	Error string
}

// Books builds the catalog page. Relative image paths are resolved against
// imageBaseURL when it is set.
func Books(p book.Page, current int, imageBaseURL string) BooksView {
	if current < 1 {
		current = 1
	}
	v := BooksView{
		Page:       current,
		TotalPages: p.TotalPages(),
	}
	if len(p.Results) == 0 {
		v.Empty = NoBooksFound
		return v
	}

	v.Cards = make([]BookCard, len(p.Results))
	for i, b := range p.Results {
		v.Cards[i] = Card(b, imageBaseURL)
	}

	if v.TotalPages > 1 {
		v.Pages = make([]PageLink, v.TotalPages)
		for i := range v.Pages {
			v.Pages[i] = PageLink{Number: i + 1, Active: i+1 == current}
		}
		v.HasPrev = current > 1
		v.HasNext = current < v.TotalPages
	}
	return v
}

// Card builds a single book card.
func Card(b book.Book, imageBaseURL string) BookCard {
	desc := b.Description
	if desc == "" {
		desc = NoDescription
	}
	return BookCard{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Price:       Price(b.Price),
		Teaser:      Teaser(desc),
		Description: desc,
		Image:       imageURL(b.Image, imageBaseURL),
	}
}

// Teaser truncates s to TeaserLength runes, appending an ellipsis when cut.
func Teaser(s string) string {
	r := []rune(s)
	if len(r) <= TeaserLength {
		return s
	}
	return string(r[:TeaserLength]) + "…"
}

func imageURL(image, base string) string {
	switch {
	case image == "":
		return PlaceholderImage
	case base == "" || strings.Contains(image, "://"):
		return image
	default:
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(image, "/")
	}
}

// CartRow is one cart line.
type CartRow struct {
	ItemID   int64
	Title    string
	Author   string
	Price    string
	Quantity int
	Subtotal string
}

// CartView is the cart page with its checkout summary.
type CartView struct {
	Rows  []CartRow
	Total string
	// Empty is set when the cart has no items; checkout is then disabled.
	Empty           bool
	CheckoutEnabled bool
	Error           string
}

// Cart builds the cart page from the cache contents.
func Cart(items []cart.Item) CartView {
	if len(items) == 0 {
		return CartView{Total: Price(decimal.Zero), Empty: true}
	}

	rows := make([]CartRow, len(items))
	for i, it := range items {
		title := it.Book.Title
		if title == "" {
			title = "Unknown"
		}
		rows[i] = CartRow{
			ItemID:   it.ID,
			Title:    title,
			Author:   it.Book.Author,
			Price:    Price(it.Book.Price),
			Quantity: it.Quantity,
			Subtotal: Price(it.Subtotal()),
		}
	}
	return CartView{
		Rows:            rows,
		Total:           Price(cart.Total(items)),
		CheckoutEnabled: true,
	}
}

// CartError is the cart page when the cart could not be loaded.
func CartError() CartView {
	return CartView{Total: Price(decimal.Zero), Error: CartUnavailable}
}

// OrderLine is one line of an order card.
type OrderLine struct {
	Title    string
	Author   string
	Quantity int
	Price    string
	Subtotal string
}

// Address is the shipping address block.
type Address struct {
	Name     string
	Street   string
	Locality string
	Phone    string
}

// OrderCard is a placed order with its progress tracker.
type OrderCard struct {
	ID               int64
	Status           order.Status
	StatusBadge      string
	PaymentBadge     string
	COD              bool
	PlacedAt         string
	Tracking         string
	ExpectedDelivery string
	Steps            []order.Step
	Lines            []OrderLine
	Address          Address
	Total            string
}

// OrdersView is the orders page.
type OrdersView struct {
	Cards []OrderCard
	Empty bool
	Error string
}

// Orders builds the orders page, preserving server order.
func Orders(orders []order.Order) OrdersView {
	if len(orders) == 0 {
		return OrdersView{Empty: true}
	}
	cards := make([]OrderCard, len(orders))
	for i, o := range orders {
		cards[i] = Order(o)
	}
	return OrdersView{Cards: cards}
}

// OrdersError is the orders page when orders could not be loaded.
func OrdersError() OrdersView {
	return OrdersView{Error: OrdersUnavailable}
}

// Order builds a single order card.
func Order(o order.Order) OrderCard {
	lines := make([]OrderLine, len(o.Items))
	for i, it := range o.Items {
		title := it.Book.Title
		if title == "" {
			title = "Unknown"
		}
		lines[i] = OrderLine{
			Title:    title,
			Author:   it.Book.Author,
			Quantity: it.Quantity,
			Price:    Price(it.Price),
			Subtotal: Price(it.Subtotal()),
		}
	}

	tracking := TrackingPending
	if o.TrackingNumber != "" {
		tracking = "Tracking ID: " + o.TrackingNumber
	}

	return OrderCard{
		ID:               o.ID,
		Status:           o.Status,
		StatusBadge:      orDefault(o.StatusDisplay, string(o.Status)),
		PaymentBadge:     orDefault(o.PaymentMethodDisplay, o.PaymentMethod),
		COD:              o.PaymentMethod == "COD",
		PlacedAt:         placedAt(o.CreatedAt),
		Tracking:         tracking,
		ExpectedDelivery: deliveryDate(o.ExpectedDelivery),
		Steps:            order.Progress(o.Status),
		Lines:            lines,
		Address: Address{
			Name:   orDefault(o.ShippingFullName, "-"),
			Street: orDefault(o.ShippingAddress, "-"),
			Locality: strings.TrimSpace(fmt.Sprintf("%s, %s %s",
				o.ShippingCity, o.ShippingState, o.ShippingPostalCode)),
			Phone: orDefault(o.ShippingPhone, "-"),
		},
		Total: Price(o.TotalPrice),
	}
}

// OrderPreview is the compact order shown on the account page.
type OrderPreview struct {
	ID           int64
	PlacedAt     string
	Location     string
	StatusBadge  string
	PaymentBadge string
	COD          bool
	Summary      string
}

// AccountView is the account page.
type AccountView struct {
	Username string
	Email    string
	Phone    string
	Recent   []OrderPreview
	// NoOrders is set when the preview loaded but is empty.
	NoOrders    bool
	RecentError string
}

// Account builds the account page. A nil recent slice with recentErr set
// degrades the preview to a placeholder.
func Account(p account.Profile, recent []order.Order, recentErr bool) AccountView {
	v := AccountView{
		Username: orDefault(p.Username, NotProvided),
		Email:    orDefault(p.Email, NotProvided),
		Phone:    orDefault(p.Phone, NotProvided),
	}
	switch {
	case recentErr:
		v.RecentError = RecentUnavailable
		return v
	case len(recent) == 0:
		v.NoOrders = true
		return v
	}

	if len(recent) > RecentOrdersLimit {
		recent = recent[:RecentOrdersLimit]
	}
	v.Recent = make([]OrderPreview, len(recent))
	for i, o := range recent {
		n := o.ItemCount()
		plural := "s"
		if n == 1 {
			plural = ""
		}
		v.Recent[i] = OrderPreview{
			ID:           o.ID,
			PlacedAt:     placedAt(o.CreatedAt),
			Location:     orDefault(o.ShippingCity, "-") + ", " + o.ShippingState,
			StatusBadge:  orDefault(o.StatusDisplay, string(o.Status)),
			PaymentBadge: orDefault(o.PaymentMethodDisplay, orDefault(o.PaymentMethod, "COD")),
			COD:          o.PaymentMethod == "COD",
			Summary:      fmt.Sprintf("%d item%s · Total $%s", n, plural, Price(o.TotalPrice)),
		}
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func placedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

// deliveryDate renders a YYYY-MM-DD date; unparsable values are kept as is.
func deliveryDate(s string) string {
	if s == "" {
		return ""
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return d.Format("2 Jan 2006")
}
