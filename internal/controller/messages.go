package controller

import (
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/checkout"
	"github.com/xenking/bookverse-storefront/internal/domain/order"
	"github.com/xenking/bookverse-storefront/internal/storage/restapi"
)

// User-facing messages.
const (
	MsgNetwork = "Network error. Please try again later."

	MsgLoginRequiredCart   = "Please login to add items to your cart."
	MsgLoginRequiredView   = "Please login to view your cart."
	MsgLoginRequiredOrders = "Please login to view your orders."

	MsgAddedToCart    = "Book added to cart!"
	MsgAddFailed      = "Failed to add to cart."
	MsgInvalidQty     = "Quantity must be at least 1"
	MsgUpdateFailed   = "Failed to update quantity. Please try again."
	MsgRemoveFailed   = "Failed to remove item. Please try again."
	MsgItemNotFound   = "That item is not in your cart."
	MsgRemoved        = "Item removed from your cart."
	MsgRemoveDeclined = "Item kept in your cart."

	MsgEmptyCart      = "Your cart is empty. Add some books to begin checkout."
	MsgMissingFields  = "Please complete all required delivery fields before placing your order."
	MsgCODOnly        = "Currently only Cash on Delivery is available. Please select COD."
	MsgOrderInFlight  = "Your order is already being placed."
	MsgPlaceFailed    = "Failed to place order. Please try again."
	MsgOrderPlaced    = "Your order has been placed successfully! Track it from the Orders page."
	MsgBooksFailed    = "Failed to fetch books."
	MsgProfileFailed  = "We could not load your profile. Please login again."
	MsgLoginFailed    = "Login failed. Please try again."
	MsgSignupFailed   = "Signup failed."
	MsgSignedUp       = "Account created. Please login."
	MsgLoggedOut      = "You have been logged out."
	MsgSessionFailure = "Could not update the stored session."
)

// message maps err to the text shown to the user. Network failures always
// use MsgNetwork; HTTP failures use the server message or fallback.
func message(err error, fallback string) string {
	var netErr *restapi.NetworkError
	if errors.As(err, &netErr) {
		return MsgNetwork
	}
	var httpErr *restapi.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message(fallback)
	}
	return fallback
}

// detailMessage is like message but only trusts the server "detail".
func detailMessage(err error, fallback string) string {
	var netErr *restapi.NetworkError
	if errors.As(err, &netErr) {
		return MsgNetwork
	}
	var httpErr *restapi.HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	return fallback
}

// fixedMessage uses fallback for every failure except network ones.
func fixedMessage(err error, fallback string) string {
	var netErr *restapi.NetworkError
	if errors.As(err, &netErr) {
		return MsgNetwork
	}
	return fallback
}

// cartMessage maps cart cache errors.
func cartMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		return MsgInvalidQty
	case errors.Is(err, cart.ErrItemNotFound):
		return MsgItemNotFound
	default:
		return fixedMessage(err, fallback)
	}
}

// checkoutMessage maps order placement errors.
func checkoutMessage(err error) string {
	if errors.Is(err, checkout.ErrEmptyCart) {
		return MsgEmptyCart
	}
	if errors.Is(err, order.ErrSubmissionInFlight) {
		return MsgOrderInFlight
	}
	var invalid *checkout.InvalidError
	if errors.As(err, &invalid) {
		if invalid.Reason == checkout.ReasonUnsupportedPayment {
			return MsgCODOnly
		}
		if len(invalid.Missing) > 0 {
			return MsgMissingFields + " Missing: " + strings.Join(invalid.Missing, ", ")
		}
		return MsgMissingFields
	}
	return message(err, MsgPlaceFailed)
}

// validationMessage returns the text of a client-side account form error.
func validationMessage(err error) (string, bool) {
	var v *account.ValidationError
	if errors.As(err, &v) {
		return v.Message, true
	}
	return "", false
}
