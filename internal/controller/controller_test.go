package controller

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bookverse-storefront/internal/apitest"
	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/auth"
	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/checkout"
	"github.com/xenking/bookverse-storefront/internal/effect"
	"github.com/xenking/bookverse-storefront/internal/storage/restapi"
	"github.com/xenking/bookverse-storefront/internal/view"
)

const (
	testEmail    = "ann@example.com"
	testPassword = "secret123"
)

type testEnv struct {
	srv   *apitest.Server
	store *apitest.TokenStore
	ctrl  *Controller
	token string
}

func newTestEnv(t *testing.T, signedIn bool) *testEnv {
	t.Helper()

	srv := apitest.New(t)
	token := srv.AddUser(testEmail, "ann", "555-0100", testPassword)

	store := apitest.NewTokenStore()
	if signedIn {
		require.NoError(t, store.Save(auth.Tokens{Access: token, Refresh: "r"}))
	}
	gate := auth.NewGate(store)

	client, err := restapi.NewClient(srv.BaseURL(), gate)
	require.NoError(t, err)

	ctrl := New(Config{},
		gate,
		restapi.NewBookRepository(client),
		restapi.NewAccountRepository(client),
		restapi.NewOrderRepository(client),
		restapi.NewCartRepository(client),
	)
	return &testEnv{srv: srv, store: store, ctrl: ctrl, token: token}
}

// seedScenario fills the cart with 1 × 10.00 and 2 × 5.00.
func (e *testEnv) seedScenario() (a, b cart.Item) {
	b1 := e.srv.AddBook("Go in Action", "Kennedy", "10.00", "programming")
	b2 := e.srv.AddBook("Dune", "Herbert", "5.00", "fiction")
	return e.srv.SeedCart(e.token, b1.ID, 1), e.srv.SeedCart(e.token, b2.ID, 2)
}

func validForm() checkout.ShippingForm {
	return checkout.ShippingForm{
		FullName:      "Ann Lee",
		Phone:         "555-0100",
		Address:       "1 Main St",
		City:          "Springfield",
		State:         "IL",
		PostalCode:    "62701",
		PaymentMethod: "COD",
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func networkCalls(effects []effect.Effect) int {
	n := 0
	for _, e := range effects {
		if _, ok := e.(effect.NetworkCall); ok {
			n++
		}
	}
	return n
}

func TestDispatch_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	for _, tt := range []struct {
		action Action
		prompt string
	}{
		{AddToCart{BookID: 1}, MsgLoginRequiredCart},
		{LoadCart{}, MsgLoginRequiredView},
		{ChangeQuantity{ItemID: 1, Quantity: 2}, MsgLoginRequiredView},
		{RemoveItem{ItemID: 1, Confirm: cart.Always}, MsgLoginRequiredView},
		{PlaceOrder{Form: validForm()}, MsgLoginRequiredView},
		{LoadOrders{}, MsgLoginRequiredOrders},
		{LoadAccount{}, ""},
	} {
		t.Run(tt.action.name(), func(t *testing.T) {
			out := env.ctrl.Dispatch(ctx, tt.action)
			assert.Equal(t, effect.PageLogin, out.Page)
			assert.Equal(t, tt.prompt, out.Notice)
			assert.Equal(t, []effect.Effect{effect.Navigation{To: effect.PageLogin}}, out.Effects)
		})
	}
	assert.Empty(t, env.srv.Requests())
}

func TestDispatch_Nav(t *testing.T) {
	out := newTestEnv(t, true).ctrl.Dispatch(context.Background(), ShowNav{})
	assert.Equal(t, view.NavView{Links: []string{"account", "logout"}}, out.View)
	assert.Empty(t, out.Effects)
}

func TestDispatch_LoadCart(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedScenario()

	out := env.ctrl.Dispatch(context.Background(), LoadCart{})
	require.False(t, out.Failed(), out.Error)

	v := out.View.(view.CartView)
	assert.Equal(t, "20.00", v.Total)
	assert.True(t, v.CheckoutEnabled)
	assert.Equal(t, []effect.Effect{
		effect.NetworkCall{Method: http.MethodGet, Path: "cart-items/"},
		effect.StateMutation{Kind: cart.MutationRefresh},
	}, out.Effects)
}

func TestDispatch_LoadCartFailure(t *testing.T) {
	env := newTestEnv(t, true)
	env.srv.Fail(http.MethodGet, "/api/cart-items/", http.StatusInternalServerError, nil)

	out := env.ctrl.Dispatch(context.Background(), LoadCart{})
	assert.Equal(t, view.CartUnavailable, out.Error)
	assert.False(t, out.View.(view.CartView).CheckoutEnabled)
}

func TestDispatch_ChangeQuantity(t *testing.T) {
	env := newTestEnv(t, true)
	a, b := env.seedScenario()
	ctx := context.Background()

	require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())

	t.Run("Invalid", func(t *testing.T) {
		out := env.ctrl.Dispatch(ctx, ChangeQuantity{ItemID: a.ID, Quantity: 0})
		assert.Equal(t, MsgInvalidQty, out.Error)
		assert.Zero(t, networkCalls(out.Effects))
	})

	t.Run("UnknownItem", func(t *testing.T) {
		out := env.ctrl.Dispatch(ctx, ChangeQuantity{ItemID: 999, Quantity: 2})
		assert.Equal(t, MsgItemNotFound, out.Error)
		assert.Zero(t, networkCalls(out.Effects))
	})

	t.Run("OK", func(t *testing.T) {
		out := env.ctrl.Dispatch(ctx, ChangeQuantity{ItemID: a.ID, Quantity: 3})
		require.False(t, out.Failed(), out.Error)
		assert.Equal(t, "40.00", out.View.(view.CartView).Total)
		assert.Equal(t, []effect.Effect{
			effect.NetworkCall{Method: http.MethodPatch, Path: "cart-items/" + itoa(a.ID) + "/"},
			effect.StateMutation{Kind: cart.MutationQuantity},
		}, out.Effects)
	})

	t.Run("ServerFailureKeepsCache", func(t *testing.T) {
		env.srv.Fail(http.MethodPatch, "/api/cart-items/"+itoa(b.ID)+"/", http.StatusBadRequest,
			map[string]any{"quantity": []string{"bad"}})

		out := env.ctrl.Dispatch(ctx, ChangeQuantity{ItemID: b.ID, Quantity: 5})
		assert.Equal(t, MsgUpdateFailed, out.Error)
		assert.Equal(t, "40.00", out.View.(view.CartView).Total)
	})
}

func TestDispatch_RemoveItem(t *testing.T) {
	env := newTestEnv(t, true)
	a, b := env.seedScenario()
	ctx := context.Background()

	t.Run("Declined", func(t *testing.T) {
		out := env.ctrl.Dispatch(ctx, RemoveItem{ItemID: a.ID})
		assert.False(t, out.Failed())
		assert.Equal(t, MsgRemoveDeclined, out.Notice)
		// Only the initial cart load reached the network.
		assert.Equal(t, 1, networkCalls(out.Effects))
		assert.Len(t, env.srv.Cart(env.token), 2)
	})

	t.Run("Confirmed", func(t *testing.T) {
		out := env.ctrl.Dispatch(ctx, RemoveItem{ItemID: a.ID, Confirm: cart.Always})
		require.False(t, out.Failed(), out.Error)
		assert.Equal(t, MsgRemoved, out.Notice)
		assert.Equal(t, "10.00", out.View.(view.CartView).Total)
		assert.Len(t, env.srv.Cart(env.token), 1)
	})

	t.Run("LastItem", func(t *testing.T) {
		out := env.ctrl.Dispatch(ctx, RemoveItem{ItemID: b.ID, Confirm: cart.Always})
		v := out.View.(view.CartView)
		assert.True(t, v.Empty)
		assert.Equal(t, "0.00", v.Total)
		assert.False(t, v.CheckoutEnabled)
	})
}

func TestDispatch_AddToCart(t *testing.T) {
	env := newTestEnv(t, true)
	bk := env.srv.AddBook("Dune", "Herbert", "5.00", "fiction")
	ctx := context.Background()

	out := env.ctrl.Dispatch(ctx, AddToCart{BookID: bk.ID})
	require.False(t, out.Failed(), out.Error)
	assert.Equal(t, MsgAddedToCart, out.Notice)
	assert.Equal(t, 1, env.ctrl.Cart().Len())

	out = env.ctrl.Dispatch(ctx, AddToCart{BookID: bk.ID})
	assert.Equal(t, "The fields user, book must make a unique set.", out.Error)
}

func TestDispatch_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyCart", func(t *testing.T) {
		env := newTestEnv(t, true)
		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: validForm()})
		assert.Equal(t, MsgEmptyCart, out.Error)
		// Cart load only; no placement request.
		assert.Equal(t, 1, networkCalls(out.Effects))
	})

	t.Run("MissingFieldsNeverReachNetwork", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.seedScenario()
		require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())

		form := validForm()
		form.City = "  "
		form.PostalCode = ""
		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: form})
		assert.Equal(t, MsgMissingFields+" Missing: "+checkout.FieldCity+", "+checkout.FieldPostalCode, out.Error)
		assert.Zero(t, networkCalls(out.Effects))
	})

	t.Run("NotCOD", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.seedScenario()
		require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())

		form := validForm()
		form.PaymentMethod = "CARD"
		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: form})
		assert.Equal(t, MsgCODOnly, out.Error)
		assert.Zero(t, networkCalls(out.Effects))
	})

	t.Run("ServerRejects", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.seedScenario()
		require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())
		env.srv.Fail(http.MethodPost, "/api/orders/place_order/", http.StatusBadRequest, map[string]any{
			"detail":  "Please fill in all required shipping details.",
			"missing": []string{"shipping_phone"},
		})

		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: validForm()})
		assert.Equal(t, "Please fill in all required shipping details. Missing: shipping_phone", out.Error)
		assert.Equal(t, effect.PageCart, out.Page)
		assert.Equal(t, 2, env.ctrl.Cart().Len(), "cart must survive a rejected order")
		assert.False(t, env.ctrl.Busy())
	})

	t.Run("NetworkFailure", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.seedScenario()
		require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())
		env.srv.Close()

		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: validForm()})
		assert.Equal(t, MsgNetwork, out.Error)
		assert.Equal(t, 2, env.ctrl.Cart().Len())
	})

	t.Run("Placed", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.seedScenario()
		require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())

		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: validForm()})
		require.False(t, out.Failed(), out.Error)
		assert.Equal(t, MsgOrderPlaced, out.Notice)
		assert.Equal(t, effect.PageOrders, out.Page)
		assert.Equal(t, []effect.Effect{
			effect.NetworkCall{Method: http.MethodPost, Path: "orders/place_order/"},
			effect.StateMutation{Kind: cart.MutationClear},
			effect.Navigation{To: effect.PageOrders},
			effect.NetworkCall{Method: http.MethodGet, Path: "orders/"},
		}, out.Effects)

		v := out.View.(view.OrdersView)
		require.Len(t, v.Cards, 1)
		card := v.Cards[0]
		assert.Equal(t, "20.00", card.Total)
		assert.Equal(t, 2, completedSteps(card))
		assert.Zero(t, env.ctrl.Cart().Len())
		assert.Empty(t, env.srv.Cart(env.token))
	})

	t.Run("PlacedListingFails", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.seedScenario()
		require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())
		env.srv.Fail(http.MethodGet, "/api/orders/", http.StatusInternalServerError, nil)

		out := env.ctrl.Dispatch(ctx, PlaceOrder{Form: validForm()})
		require.False(t, out.Failed(), out.Error)
		assert.Equal(t, effect.PageOrders, out.Page)

		v := out.View.(view.OrdersView)
		require.Len(t, v.Cards, 1)
		assert.Equal(t, "20.00", v.Cards[0].Total)
		assert.Len(t, env.srv.Orders(env.token), 1)
	})
}

func completedSteps(c view.OrderCard) int {
	n := 0
	for _, s := range c.Steps {
		if s.Completed {
			n++
		}
	}
	return n
}

func TestDispatch_LoadOrders(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	out := env.ctrl.Dispatch(ctx, LoadOrders{})
	require.False(t, out.Failed())
	assert.True(t, out.View.(view.OrdersView).Empty)

	env.seedScenario()
	require.False(t, env.ctrl.Dispatch(ctx, LoadCart{}).Failed())
	placed := env.ctrl.Dispatch(ctx, PlaceOrder{Form: validForm()})
	require.False(t, placed.Failed(), placed.Error)

	out = env.ctrl.Dispatch(ctx, LoadOrders{})
	v := out.View.(view.OrdersView)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "Processing", v.Cards[0].StatusBadge)

	env.srv.Fail(http.MethodGet, "/api/orders/", http.StatusBadGateway, nil)
	out = env.ctrl.Dispatch(ctx, LoadOrders{})
	assert.Equal(t, view.OrdersUnavailable, out.Error)
}

func TestDispatch_LoadAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		env := newTestEnv(t, true)
		out := env.ctrl.Dispatch(ctx, LoadAccount{})
		require.False(t, out.Failed(), out.Error)
		assert.Equal(t, effect.PageAccount, out.Page)

		v := out.View.(view.AccountView)
		assert.Equal(t, "ann", v.Username)
		assert.Equal(t, "555-0100", v.Phone)
		assert.True(t, v.NoOrders)
		assert.Equal(t, 2, networkCalls(out.Effects))
	})

	t.Run("CallsShareRequestID", func(t *testing.T) {
		env := newTestEnv(t, true)
		out := env.ctrl.Dispatch(ctx, LoadAccount{})
		require.False(t, out.Failed(), out.Error)
		require.NotEmpty(t, out.RequestID)

		reqs := env.srv.Requests()
		require.Len(t, reqs, 2)
		for _, r := range reqs {
			assert.Equal(t, out.RequestID, r.RequestID, r.Path)
		}

		next := env.ctrl.Dispatch(ctx, LoadAccount{})
		assert.NotEqual(t, out.RequestID, next.RequestID)
	})

	t.Run("OrdersPreviewDegrades", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.srv.Fail(http.MethodGet, "/api/orders/", http.StatusInternalServerError, nil)

		out := env.ctrl.Dispatch(ctx, LoadAccount{})
		require.False(t, out.Failed(), out.Error)
		v := out.View.(view.AccountView)
		assert.Equal(t, view.RecentUnavailable, v.RecentError)
		assert.Equal(t, testEmail, v.Email)
	})

	t.Run("ProfileFailureLogsOut", func(t *testing.T) {
		env := newTestEnv(t, true)
		env.srv.Fail(http.MethodGet, "/api/auth/user/", http.StatusUnauthorized,
			map[string]any{"detail": "Given token not valid for any token type"})

		out := env.ctrl.Dispatch(ctx, LoadAccount{})
		assert.Equal(t, MsgProfileFailed, out.Error)
		assert.Equal(t, effect.PageLogin, out.Page)

		_, err := env.store.Load()
		assert.ErrorIs(t, err, auth.ErrNoTokens)
	})
}

func TestDispatch_Login(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)

	out := env.ctrl.Dispatch(ctx, Login{Credentials: account.Credentials{Email: " ", Password: "x"}})
	assert.Equal(t, "Please enter both email and password.", out.Error)
	assert.Empty(t, out.Effects)

	out = env.ctrl.Dispatch(ctx, Login{Credentials: account.Credentials{Email: testEmail, Password: "nope"}})
	assert.Equal(t, "No active account found with the given credentials", out.Error)
	assert.False(t, env.ctrl.gate.Authenticated())

	out = env.ctrl.Dispatch(ctx, Login{Credentials: account.Credentials{Email: " " + testEmail + " ", Password: testPassword}})
	require.False(t, out.Failed(), out.Error)
	assert.Equal(t, effect.PageHome, out.Page)
	assert.True(t, env.ctrl.gate.Authenticated())
	assert.Equal(t, view.NavView{Links: []string{"account", "logout"}}, out.View)

	for _, r := range env.srv.Requests() {
		assert.Empty(t, r.Authorization, "login must be sent without a bearer token")
	}

	out = env.ctrl.Dispatch(ctx, Logout{})
	assert.Equal(t, MsgLoggedOut, out.Notice)
	assert.Equal(t, effect.PageLogin, out.Page)
	assert.False(t, env.ctrl.gate.Authenticated())
}

func TestDispatch_Signup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, false)

	form := account.SignupForm{
		Username:    "bob",
		Email:       "bob@example.com",
		Password:    "longpassword",
		Password2:   "longpassword",
		AcceptTerms: true,
	}

	short := form
	short.Password, short.Password2 = "short", "short"
	out := env.ctrl.Dispatch(ctx, Signup{Form: short})
	assert.Equal(t, "Password must be at least 8 characters long.", out.Error)
	assert.Empty(t, env.srv.Requests())

	out = env.ctrl.Dispatch(ctx, Signup{Form: form})
	require.False(t, out.Failed(), out.Error)
	assert.Equal(t, effect.PageLogin, out.Page)

	out = env.ctrl.Dispatch(ctx, Signup{Form: form})
	assert.Equal(t, "user with this email already exists.", out.Error)
}

func TestDispatch_LoadBooks(t *testing.T) {
	env := newTestEnv(t, false)
	env.srv.AddBook("Dune", "Herbert", "5.00", "fiction")
	ctx := context.Background()

	out := env.ctrl.Dispatch(ctx, LoadBooks{Query: book.Query{Page: 1}})
	require.False(t, out.Failed(), out.Error)
	require.Len(t, out.View.(view.BooksView).Cards, 1)

	env.srv.Close()
	out = env.ctrl.Dispatch(ctx, LoadBooks{Query: book.Query{Page: 1}})
	assert.Equal(t, MsgNetwork, out.Error)
	v := out.View.(view.BooksView)
	assert.Empty(t, v.Cards)
	assert.Equal(t, MsgNetwork, v.Error)
}
