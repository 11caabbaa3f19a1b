package apitest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/order"
)

// ExpectedDeliveryDays is how far ahead placed orders are promised.
const ExpectedDeliveryDays = 5

var notFound = gin.H{"detail": "Not found."}

func (s *Server) email(c *gin.Context) string {
	return c.GetString("email")
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access":  s.issueToken(u.email),
		"refresh": "refresh-" + u.email,
	})
}

func (s *Server) signup(c *gin.Context) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Password  string `json:"password"`
		Password2 string `json:"password2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Email]; exists {
		c.JSON(http.StatusBadRequest, gin.H{"email": []string{"user with this email already exists."}})
		return
	}
	if req.Password != req.Password2 {
		c.JSON(http.StatusBadRequest, gin.H{"password": []string{"Password fields didn't match."}})
		return
	}

	s.users[req.Email] = &user{
		id:       s.id(),
		username: req.Username,
		email:    req.Email,
		phone:    req.Phone,
		password: req.Password,
	}
	c.JSON(http.StatusCreated, gin.H{
		"email":    req.Email,
		"username": req.Username,
		"phone":    req.Phone,
	})
}

func (s *Server) currentUser(c *gin.Context) {
	s.mu.Lock()
	u := s.users[s.email(c)]
	s.mu.Unlock()

	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":    u.email,
		"username": u.username,
		"phone":    u.phone,
	})
}

func (s *Server) listBooks(c *gin.Context) {
	search := strings.ToLower(c.Query("search"))
	category := c.Query("category")

	s.mu.Lock()
	var matched []book.Book
	for _, b := range s.books {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Author), search) {
			continue
		}
		if category != "" && !strings.EqualFold(b.Category, category) {
			continue
		}
		matched = append(matched, b)
	}
	bare := s.bareList
	s.mu.Unlock()

	if bare {
		if matched == nil {
			matched = []book.Book{}
		}
		c.JSON(http.StatusOK, matched)
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
			return
		}
		page = n
	}
	start := (page - 1) * PageSize
	if start > 0 && start >= len(matched) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
		return
	}
	end := min(start+PageSize, len(matched))

	results := []book.Book{}
	if start < end {
		results = matched[start:end]
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(matched),
		"results": results,
	})
}

func (s *Server) listCart(c *gin.Context) {
	s.mu.Lock()
	items := append([]cart.Item{}, s.carts[s.email(c)]...)
	s.mu.Unlock()

	c.JSON(http.StatusOK, items)
}

func (s *Server) addCartItem(c *gin.Context) {
	var req struct {
		BookID   int64 `json:"book_id"`
		Quantity int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.book(req.BookID)
	if b.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"book_id": []string{`Invalid pk "` + strconv.FormatInt(req.BookID, 10) + `" - object does not exist.`},
		})
		return
	}

	email := s.email(c)
	for _, it := range s.carts[email] {
		if it.Book.ID == req.BookID {
			c.JSON(http.StatusBadRequest, gin.H{
				"non_field_errors": []string{"The fields user, book must make a unique set."},
			})
			return
		}
	}

	item := cart.Item{ID: s.id(), Book: b, Quantity: req.Quantity}
	s.carts[email] = append(s.carts[email], item)
	c.JSON(http.StatusCreated, item)
}

// cartIndex must be called with s.mu held.
func (s *Server) cartIndex(c *gin.Context) (string, int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return "", 0, false
	}
	email := s.email(c)
	for i, it := range s.carts[email] {
		if it.ID == id {
			return email, i, true
		}
	}
	return "", 0, false
}

func (s *Server) updateCartItem(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, i, ok := s.cartIndex(c)
	if !ok {
		c.JSON(http.StatusNotFound, notFound)
		return
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"quantity": []string{"Ensure this value is greater than or equal to 0."},
			})
			return
		}
		s.carts[email][i].Quantity = *req.Quantity
	}
	c.JSON(http.StatusOK, s.carts[email][i])
}

func (s *Server) deleteCartItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, i, ok := s.cartIndex(c)
	if !ok {
		c.JSON(http.StatusNotFound, notFound)
		return
	}
	items := s.carts[email]
	s.carts[email] = append(items[:i:i], items[i+1:]...)
	c.Status(http.StatusNoContent)
}

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	orders := s.orders[s.email(c)]
	// Newest first.
	out := make([]order.Order, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		out = append(out, orders[i])
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) placeOrder(c *gin.Context) {
	var req struct {
		FullName      string  `json:"shipping_full_name"`
		Phone         string  `json:"shipping_phone"`
		Address       string  `json:"shipping_address"`
		City          string  `json:"shipping_city"`
		State         string  `json:"shipping_state"`
		PostalCode    string  `json:"shipping_postal_code"`
		PaymentMethod *string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := s.email(c)
	items := s.carts[email]
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Cart is empty."})
		return
	}

	fields := []struct{ name, value string }{
		{"shipping_full_name", req.FullName},
		{"shipping_phone", req.Phone},
		{"shipping_address", req.Address},
		{"shipping_city", req.City},
		{"shipping_state", req.State},
		{"shipping_postal_code", req.PostalCode},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail":  "Please fill in all required shipping details.",
			"missing": missing,
		})
		return
	}

	payment := "COD"
	if req.PaymentMethod != nil {
		payment = strings.ToUpper(*req.PaymentMethod)
	}
	if payment != "COD" {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Currently only Cash on Delivery is available. Please choose COD.",
		})
		return
	}

	now := time.Now().UTC()
	o := order.Order{
		ID:                   s.id(),
		Status:               order.StatusProcessing,
		StatusDisplay:        "Processing",
		PaymentMethod:        payment,
		PaymentMethodDisplay: "Cash on Delivery",
		ShippingFullName:     strings.TrimSpace(req.FullName),
		ShippingPhone:        strings.TrimSpace(req.Phone),
		ShippingAddress:      strings.TrimSpace(req.Address),
		ShippingCity:         strings.TrimSpace(req.City),
		ShippingState:        strings.TrimSpace(req.State),
		ShippingPostalCode:   strings.TrimSpace(req.PostalCode),
		CreatedAt:            now,
		ExpectedDelivery:     now.AddDate(0, 0, ExpectedDeliveryDays).Format(time.DateOnly),
	}
	total := decimal.Zero
	for _, it := range items {
		line := order.Item{ID: s.id(), Book: it.Book, Quantity: it.Quantity, Price: it.Book.Price}
		total = total.Add(line.Subtotal())
		o.Items = append(o.Items, line)
	}
	o.TotalPrice = total

	s.orders[email] = append(s.orders[email], o)
	delete(s.carts, email)

	c.JSON(http.StatusCreated, o)
}
