package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/bookverse-storefront/internal/domain/book"
)

var _ book.Repository = (*BookRepository)(nil)

// BookRepository implements book.Repository over GET books/.
type BookRepository struct {
	c *Client
}

// NewBookRepository returns a BookRepository that uses the given client.
func NewBookRepository(c *Client) *BookRepository {
	return &BookRepository{c: c}
}

// List fetches one catalog page. The API answers either with a paginated
// {results, count} object or a bare array; both are accepted.
func (r *BookRepository) List(ctx context.Context, q book.Query) (*book.Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	query := map[string]string{"page": strconv.Itoa(page)}
	if q.Search != "" {
		query["search"] = q.Search
	}
	if q.Category != "" {
		query["category"] = q.Category
	}

	resp, err := r.c.do(ctx, call{
		op:     "books.list",
		method: http.MethodGet,
		path:   "books/",
		query:  query,
	})
	if err != nil {
		return nil, err
	}

	p, err := decodeBookPage(resp.Body())
	if err != nil {
		return nil, errors.Wrap(err, "books.list: decode response")
	}
	return p, nil
}

func decodeBookPage(body []byte) (*book.Page, error) {
	d := jx.DecodeBytes(body)

	switch tt := d.Next(); tt {
	case jx.Array:
		results, err := decodeBooks(d)
		if err != nil {
			return nil, err
		}
		return &book.Page{Results: results, Count: len(results)}, nil

	case jx.Object:
		p := &book.Page{}
		hasCount := false
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "results":
				if d.Next() != jx.Array {
					return d.Skip()
				}
				results, err := decodeBooks(d)
				p.Results = results
				return err
			case "count":
				if d.Next() != jx.Number {
					return d.Skip()
				}
				n, err := d.Int()
				p.Count = n
				hasCount = err == nil
				return err
			default:
				return d.Skip()
			}
		})
		if err != nil {
			return nil, err
		}
		if !hasCount {
			p.Count = len(p.Results)
		}
		return p, nil

	default:
		return nil, errors.Errorf("unexpected %s payload", tt)
	}
}

func decodeBooks(d *jx.Decoder) ([]book.Book, error) {
	var out []book.Book
	err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		var b book.Book
		if err := json.Unmarshal(raw, &b); err != nil {
			return errors.Wrap(err, "decode book")
		}
		out = append(out, b)
		return nil
	})
	return out, err
}
