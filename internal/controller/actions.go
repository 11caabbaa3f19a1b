package controller

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/checkout"
	"github.com/xenking/bookverse-storefront/internal/domain/order"
	"github.com/xenking/bookverse-storefront/internal/effect"
	"github.com/xenking/bookverse-storefront/internal/view"
)

// Action is a user gesture handled by Controller.Dispatch.
type Action interface {
	name() string
	run(ctx context.Context, c *Controller) Outcome
}

// ShowNav renders the navigation for the current session.
type ShowNav struct{}

func (ShowNav) name() string { return "nav" }

func (ShowNav) run(_ context.Context, c *Controller) Outcome {
	return Outcome{Page: effect.PageHome, View: view.Nav(c.gate.Nav())}
}

// LoadBooks shows a catalog page.
type LoadBooks struct {
	Query book.Query
}

func (LoadBooks) name() string { return "books.load" }

func (a LoadBooks) run(ctx context.Context, c *Controller) Outcome {
	out := Outcome{Page: effect.PageBooks}

	p, err := c.books.List(ctx, a.Query)
	if err != nil {
		// Degrade to an empty listing.
		v := view.Books(book.Page{}, a.Query.Page, c.imageBaseURL)
		v.Error = message(err, MsgBooksFailed)
		out.View, out.Error, out.Err = v, v.Error, err
		return out
	}
	out.View = view.Books(*p, a.Query.Page, c.imageBaseURL)
	return out
}

// AddToCart puts one copy of a book into the cart.
type AddToCart struct {
	BookID int64
}

func (AddToCart) name() string { return "cart.add" }

func (a AddToCart) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, MsgLoginRequiredCart); !ok {
		return out
	}
	out := Outcome{Page: effect.PageBooks}

	if _, err := c.cart.Add(ctx, a.BookID); err != nil {
		out.Error, out.Err = message(err, MsgAddFailed), err
		return out
	}
	out.Notice = MsgAddedToCart
	return out
}

// LoadCart fetches the cart from the server and shows it.
type LoadCart struct{}

func (LoadCart) name() string { return "cart.load" }

func (LoadCart) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, MsgLoginRequiredView); !ok {
		return out
	}
	out := Outcome{Page: effect.PageCart}

	if err := c.cart.Refresh(ctx); err != nil {
		v := view.CartError()
		out.View, out.Error, out.Err = v, v.Error, err
		return out
	}
	out.View = view.Cart(c.cart.Items())
	return out
}

// ChangeQuantity sets the quantity of a cart entry.
type ChangeQuantity struct {
	ItemID   int64
	Quantity int
}

func (ChangeQuantity) name() string { return "cart.quantity" }

func (a ChangeQuantity) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, MsgLoginRequiredView); !ok {
		return out
	}
	return c.cartEdit(ctx, MsgUpdateFailed, func() error {
		return c.cart.UpdateQuantity(ctx, a.ItemID, a.Quantity)
	})
}

// RemoveItem removes a cart entry once Confirm approves it. A nil Confirm
// declines.
type RemoveItem struct {
	ItemID  int64
	Confirm cart.ConfirmFunc
}

func (RemoveItem) name() string { return "cart.remove" }

func (a RemoveItem) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, MsgLoginRequiredView); !ok {
		return out
	}
	out := c.cartEdit(ctx, MsgRemoveFailed, func() error {
		return c.cart.RemoveItem(ctx, a.ItemID, a.Confirm)
	})
	if errors.Is(out.Err, cart.ErrRemovalDeclined) {
		out.Error, out.Err = "", nil
		out.Notice = MsgRemoveDeclined
		return out
	}
	if !out.Failed() {
		out.Notice = MsgRemoved
	}
	return out
}

// cartEdit loads the cart if needed, applies edit and renders the result.
// On failure the cart is shown as it was.
func (c *Controller) cartEdit(ctx context.Context, fallback string, edit func() error) Outcome {
	out := Outcome{Page: effect.PageCart}

	if err := c.ensureCart(ctx); err != nil {
		v := view.CartError()
		out.View, out.Error, out.Err = v, v.Error, err
		return out
	}
	if err := edit(); err != nil {
		out.Error, out.Err = cartMessage(err, fallback), err
	}
	out.View = view.Cart(c.cart.Items())
	return out
}

// PlaceOrder submits the cart with the shipping form.
type PlaceOrder struct {
	Form checkout.ShippingForm
}

func (PlaceOrder) name() string { return "order.place" }

func (a PlaceOrder) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, MsgLoginRequiredView); !ok {
		return out
	}
	out := Outcome{Page: effect.PageCart}

	if err := c.ensureCart(ctx); err != nil {
		v := view.CartError()
		out.View, out.Error, out.Err = v, v.Error, err
		return out
	}

	o, err := c.placer.PlaceOrder(ctx, a.Form)
	if err != nil {
		out.View = view.Cart(c.cart.Items())
		out.Error, out.Err = checkoutMessage(err), err
		return out
	}

	zctx.From(ctx).Info("Order placed",
		zap.Int64("order_id", o.ID),
		zap.String("total", o.TotalPrice.StringFixed(2)),
	)
	out.Page = navigate(ctx, effect.PageOrders)
	out.Notice = MsgOrderPlaced

	// The order is placed; a failed listing falls back to the new order alone.
	orders, err := c.orders.List(ctx)
	if err != nil {
		zctx.From(ctx).Warn("Load orders after placement", zap.Error(err))
		out.View = view.OrdersView{Cards: []view.OrderCard{view.Order(*o)}}
		return out
	}
	out.View = view.Orders(orders)
	return out
}

// LoadOrders shows the order history, newest first.
type LoadOrders struct{}

func (LoadOrders) name() string { return "orders.load" }

func (LoadOrders) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, MsgLoginRequiredOrders); !ok {
		return out
	}
	out := Outcome{Page: effect.PageOrders}

	orders, err := c.orders.List(ctx)
	if err != nil {
		v := view.OrdersError()
		out.View, out.Error, out.Err = v, v.Error, err
		return out
	}
	out.View = view.Orders(orders)
	return out
}

// LoadAccount shows the profile with a preview of recent orders. Both are
// fetched concurrently; only the profile is required.
type LoadAccount struct{}

func (LoadAccount) name() string { return "account.load" }

func (LoadAccount) run(ctx context.Context, c *Controller) Outcome {
	if out, ok := c.requireAuth(ctx, ""); !ok {
		return out
	}

	var (
		profile   *account.Profile
		recent    []order.Order
		recentErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := c.accounts.CurrentUser(gctx)
		if err != nil {
			return errors.Wrap(err, "load profile")
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		orders, err := c.orders.List(gctx)
		if err != nil {
			// The preview degrades without failing the page.
			recentErr = err
			return nil
		}
		recent = orders
		return nil
	})

	if err := g.Wait(); err != nil {
		if lerr := c.gate.Logout(); lerr != nil {
			zctx.From(ctx).Warn("Clear tokens", zap.Error(lerr))
		}
		return Outcome{
			Page:  navigate(ctx, effect.PageLogin),
			Error: MsgProfileFailed,
			Err:   err,
		}
	}
	if recentErr != nil {
		zctx.From(ctx).Warn("Orders preview failed", zap.Error(recentErr))
	}

	return Outcome{
		Page: effect.PageAccount,
		View: view.Account(*profile, recent, recentErr != nil),
	}
}

// Login exchanges credentials for tokens and stores them.
type Login struct {
	Credentials account.Credentials
}

func (Login) name() string { return "auth.login" }

func (a Login) run(ctx context.Context, c *Controller) Outcome {
	out := Outcome{Page: effect.PageLogin}

	creds := a.Credentials
	if err := creds.Validate(); err != nil {
		msg, _ := validationMessage(err)
		out.Error, out.Err = msg, err
		return out
	}

	tokens, err := c.accounts.Login(ctx, creds)
	if err != nil {
		out.Error, out.Err = detailMessage(err, MsgLoginFailed), err
		return out
	}
	if err := c.gate.SignIn(tokens); err != nil {
		out.Error, out.Err = MsgSessionFailure, err
		return out
	}

	out.Page = navigate(ctx, effect.PageHome)
	out.View = view.Nav(c.gate.Nav())
	return out
}

// Signup registers a new account.
type Signup struct {
	Form account.SignupForm
}

func (Signup) name() string { return "auth.signup" }

func (a Signup) run(ctx context.Context, c *Controller) Outcome {
	out := Outcome{Page: effect.PageSignup}

	form := a.Form
	if err := form.Validate(); err != nil {
		msg, _ := validationMessage(err)
		out.Error, out.Err = msg, err
		return out
	}

	if _, err := c.accounts.Signup(ctx, form); err != nil {
		out.Error, out.Err = message(err, MsgSignupFailed), err
		return out
	}

	out.Page = navigate(ctx, effect.PageLogin)
	out.Notice = MsgSignedUp
	return out
}

// Logout drops the stored tokens.
type Logout struct{}

func (Logout) name() string { return "auth.logout" }

func (Logout) run(ctx context.Context, c *Controller) Outcome {
	if err := c.gate.Logout(); err != nil {
		return Outcome{Error: MsgSessionFailure, Err: err}
	}
	c.cart.Clear(ctx)
	return Outcome{
		Page:   navigate(ctx, effect.PageLogin),
		Notice: MsgLoggedOut,
		View:   view.Nav(c.gate.Nav()),
	}
}
