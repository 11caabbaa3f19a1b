// Package apitest provides an in-memory Bookverse REST backend for tests.
//
// The fake reproduces the HTTP contract the storefront client relies on:
// bearer authentication, the paginated catalog, the cart-items collection
// and order placement with its validation rules. Failures can be injected
// per request.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/order"
)

// PageSize is the catalog page size.
const PageSize = 9

// Request is a request observed by the fake.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

type user struct {
	id       int64
	username string
	email    string
	phone    string
	password string
}

type failure struct {
	status int
	body   any
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int64
	users    map[string]*user // by email
	tokens   map[string]string
	books    []book.Book
	carts    map[string][]cart.Item
	orders   map[string][]order.Order
	failures map[string][]failure
	requests []Request
	bareList bool
}

// New starts a fake backend closed at the end of the test.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		nextID:   1,
		users:    make(map[string]*user),
		tokens:   make(map[string]string),
		carts:    make(map[string][]cart.Item),
		orders:   make(map[string][]order.Order),
		failures: make(map[string][]failure),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root, ending in /api/.
func (s *Server) BaseURL() string {
	return s.URL + "/api/"
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe)

	api := r.Group("/api")
	api.POST("/auth/login/", s.login)
	api.POST("/auth/signup/", s.signup)
	api.GET("/books/", s.listBooks)

	authed := api.Group("", s.authenticate)
	authed.GET("/auth/user/", s.currentUser)
	authed.GET("/cart-items/", s.listCart)
	authed.POST("/cart-items/", s.addCartItem)
	authed.PATCH("/cart-items/:id/", s.updateCartItem)
	authed.DELETE("/cart-items/:id/", s.deleteCartItem)
	authed.GET("/orders/", s.listOrders)
	authed.POST("/orders/place_order/", s.placeOrder)

	return r
}

// observe records the request and serves injected failures.
func (s *Server) observe(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Query:         c.Request.URL.RawQuery,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
	})
	var f *failure
	if queue := s.failures[key]; len(queue) > 0 {
		f = &queue[0]
		s.failures[key] = queue[1:]
	}
	s.mu.Unlock()

	if f != nil {
		if f.body == nil {
			c.AbortWithStatus(f.status)
			return
		}
		c.AbortWithStatusJSON(f.status, f.body)
		return
	}
	c.Next()
}

// authenticate resolves the bearer token to a user email.
func (s *Server) authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	s.mu.Lock()
	email, found := s.tokens[token]
	s.mu.Unlock()

	if !found {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
		return
	}
	c.Set("email", email)
	c.Next()
}

// Fail makes the next request matching method and path (e.g.
// "/api/cart-items/1/") answer with status and body. Calls queue up.
func (s *Server) Fail(method, path string, status int, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Requests returns every request observed so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// ResetRequests forgets the observed requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// ServeBareBookList makes the catalog answer with a bare array instead of
// a paginated object.
func (s *Server) ServeBareBookList(bare bool) {
	s.mu.Lock()
	s.bareList = bare
	s.mu.Unlock()
}

// AddUser registers an account and returns a valid access token for it.
func (s *Server) AddUser(email, username, phone, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[email] = &user{id: s.id(), username: username, email: email, phone: phone, password: password}
	return s.issueToken(email)
}

// AddBook adds a catalog entry and returns it with its assigned id.
func (s *Server) AddBook(title, author, price, category string) book.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := book.Book{
		ID:          s.id(),
		Title:       title,
		Author:      author,
		Price:       decimal.RequireFromString(price),
		Description: title + " by " + author,
		Category:    category,
	}
	s.books = append(s.books, b)
	return b
}

// SeedCart puts a book into the cart of the user owning token.
func (s *Server) SeedCart(token string, bookID int64, quantity int) cart.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := s.tokens[token]
	item := cart.Item{ID: s.id(), Book: s.book(bookID), Quantity: quantity}
	s.carts[email] = append(s.carts[email], item)
	return item
}

// Cart returns the server-side cart of the user owning token.
func (s *Server) Cart(token string) []cart.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[s.tokens[token]]
	out := make([]cart.Item, len(items))
	copy(out, items)
	return out
}

// Orders returns the orders of the user owning token.
func (s *Server) Orders(token string) []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[s.tokens[token]]
	out := make([]order.Order, len(orders))
	copy(out, orders)
	return out
}

// SetOrderStatus moves an order along its lifecycle.
func (s *Server) SetOrderStatus(id int64, status order.Status, tracking string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, orders := range s.orders {
		for i := range orders {
			if orders[i].ID == id {
				s.orders[email][i].Status = status
				s.orders[email][i].TrackingNumber = tracking
			}
		}
	}
}

// id must be called with s.mu held.
func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// issueToken must be called with s.mu held.
func (s *Server) issueToken(email string) string {
	token := "access-" + email
	s.tokens[token] = email
	return token
}

// book must be called with s.mu held.
func (s *Server) book(id int64) book.Book {
	for _, b := range s.books {
		if b.ID == id {
			return b
		}
	}
	return book.Book{}
}
