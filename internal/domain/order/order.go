package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/checkout"
)

// Status is a point in the order lifecycle. The backend drives transitions;
// the client only displays them.
type Status string

// Known statuses. StatusCancelled is outside the progress sequence.
const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// Order is a placed order as reported by the backend.
type Order struct {
	ID                   int64           `json:"id"`
	Status               Status          `json:"status"`
	StatusDisplay        string          `json:"status_display,omitempty"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentMethodDisplay string          `json:"payment_method_display,omitempty"`
	ShippingFullName     string          `json:"shipping_full_name"`
	ShippingPhone        string          `json:"shipping_phone"`
	ShippingAddress      string          `json:"shipping_address"`
	ShippingCity         string          `json:"shipping_city"`
	ShippingState        string          `json:"shipping_state"`
	ShippingPostalCode   string          `json:"shipping_postal_code"`
	Items                []Item          `json:"items"`
	TotalPrice           decimal.Decimal `json:"total_price"`
	CreatedAt            time.Time       `json:"created_at"`
	TrackingNumber       string          `json:"tracking_number,omitempty"`
	// ExpectedDelivery is a calendar date (YYYY-MM-DD), empty when unknown.
	ExpectedDelivery string `json:"expected_delivery,omitempty"`
}

// ItemCount returns the total number of copies across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Item is a single order line with the price captured at purchase time.
type Item struct {
	ID       int64           `json:"id"`
	Book     book.Book       `json:"book"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal returns price × quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PlaceRequest is the body of an order placement.
type PlaceRequest struct {
	ShippingFullName   string `json:"shipping_full_name"`
	ShippingPhone      string `json:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingState      string `json:"shipping_state"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	PaymentMethod      string `json:"payment_method"`
}

// NewPlaceRequest builds a request from a trimmed shipping form.
func NewPlaceRequest(form checkout.ShippingForm) PlaceRequest {
	form = form.Trimmed()
	return PlaceRequest{
		ShippingFullName:   form.FullName,
		ShippingPhone:      form.Phone,
		ShippingAddress:    form.Address,
		ShippingCity:       form.City,
		ShippingState:      form.State,
		ShippingPostalCode: form.PostalCode,
		PaymentMethod:      form.PaymentMethod,
	}
}

// Repository defines the backend operations on orders.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Place(ctx context.Context, req PlaceRequest) (*Order, error)
}
