package view

import (
	"embed"
	"io"
	"strings"
	"text/template"

	"github.com/go-faster/errors"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Renderer writes a view model to w.
type Renderer interface {
	Render(w io.Writer, v any) error
}

// TextRenderer renders view models as plain text for the terminal.
type TextRenderer struct {
	tmpl *template.Template
}

var _ Renderer = (*TextRenderer)(nil)

// NewTextRenderer parses the embedded templates.
func NewTextRenderer() (*TextRenderer, error) {
	tmpl, err := template.New("view").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return nil, errors.Wrap(err, "parse templates")
	}
	return &TextRenderer{tmpl: tmpl}, nil
}

// Render writes v, which must be one of the view models of this package.
func (r *TextRenderer) Render(w io.Writer, v any) error {
	var name string
	switch v.(type) {
	case NavView:
		name = "nav"
	case BooksView:
		name = "books"
	case CartView:
		name = "cart"
	case OrdersView:
		name = "orders"
	case OrderCard:
		name = "order"
	case AccountView:
		name = "account"
	default:
		return errors.Errorf("no template for %T", v)
	}
	if err := r.tmpl.ExecuteTemplate(w, name, v); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}
	return nil
}
