package book

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is the backend page size. A page holding fewer results is
// the last one and says nothing about the page size.
const DefaultPageSize = 9

// Book represents a catalog item available for purchase.
type Book struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Price           decimal.Decimal `json:"price"`
	ISBN            string          `json:"ISBN,omitempty"`
	Image           string          `json:"image,omitempty"`
	Description     string          `json:"description,omitempty"`
	Category        string          `json:"category,omitempty"`
	CategoryDisplay string          `json:"category_display,omitempty"`
}

// Query filters a catalog listing. Zero values are omitted from the request.
type Query struct {
	Page     int
	Search   string
	Category string
}

// Page is a single page of catalog results.
type Page struct {
	Results []Book
	// Count is the total number of matching books across all pages.
	Count int
}

// PerPage returns the page size implied by the page contents. Only a page
// larger than DefaultPageSize can raise it.
func (p Page) PerPage() int {
	return max(len(p.Results), DefaultPageSize)
}

// TotalPages returns the number of pages needed to show Count books, at least 1.
func (p Page) TotalPages() int {
	per := p.PerPage()
	pages := (p.Count + per - 1) / per
	if pages < 1 {
		return 1
	}
	return pages
}

// Repository defines read operations for the catalog.
type Repository interface {
	List(ctx context.Context, q Query) (*Page, error)
}
