package checkout

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// PaymentCOD is cash on delivery, the only supported payment method.
const PaymentCOD = "COD"

// Reasons reported by InvalidError.
const (
	ReasonMissingFields      = "missing fields"
	ReasonUnsupportedPayment = "unsupported payment method"
)

// Wire names of the shipping fields, in form order.
const (
	FieldFullName   = "shipping_full_name"
	FieldPhone      = "shipping_phone"
	FieldAddress    = "shipping_address"
	FieldCity       = "shipping_city"
	FieldState      = "shipping_state"
	FieldPostalCode = "shipping_postal_code"
)

// ErrEmptyCart means there is nothing to check out; checkout controls stay disabled.
var ErrEmptyCart = errors.New("cart is empty")

// InvalidError reports why a shipping form cannot be submitted.
type InvalidError struct {
	Reason  string
	Missing []string
}

func (e *InvalidError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Missing, ", "))
	}
	return e.Reason
}

// ShippingForm captures delivery details for a single checkout.
type ShippingForm struct {
	FullName      string
	Phone         string
	Address       string
	City          string
	State         string
	PostalCode    string
	PaymentMethod string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f ShippingForm) Trimmed() ShippingForm {
	return ShippingForm{
		FullName:      strings.TrimSpace(f.FullName),
		Phone:         strings.TrimSpace(f.Phone),
		Address:       strings.TrimSpace(f.Address),
		City:          strings.TrimSpace(f.City),
		State:         strings.TrimSpace(f.State),
		PostalCode:    strings.TrimSpace(f.PostalCode),
		PaymentMethod: strings.ToUpper(strings.TrimSpace(f.PaymentMethod)),
	}
}

// Fields returns the shipping fields keyed by wire name, in form order.
func (f ShippingForm) Fields() []Field {
	return []Field{
		{Name: FieldFullName, Value: f.FullName},
		{Name: FieldPhone, Value: f.Phone},
		{Name: FieldAddress, Value: f.Address},
		{Name: FieldCity, Value: f.City},
		{Name: FieldState, Value: f.State},
		{Name: FieldPostalCode, Value: f.PostalCode},
	}
}

// Field is a named shipping value.
type Field struct {
	Name  string
	Value string
}

// Validate decides whether form may be submitted for a cart of cartSize
// entries. It returns nil when checkout is ready.
//
// Rules apply in order: the cart must be non-empty, every shipping field must
// be non-blank, and the payment method must be cash on delivery. Field
// formats are not checked.
func Validate(form ShippingForm, cartSize int) error {
	if cartSize <= 0 {
		return ErrEmptyCart
	}

	form = form.Trimmed()

	var missing []string
	for _, f := range form.Fields() {
		if f.Value == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &InvalidError{Reason: ReasonMissingFields, Missing: missing}
	}

	if form.PaymentMethod != PaymentCOD {
		return &InvalidError{Reason: ReasonUnsupportedPayment}
	}
	return nil
}
