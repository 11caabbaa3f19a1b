package app

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/bookverse-storefront/internal/controller"
	"github.com/xenking/bookverse-storefront/internal/domain/account"
	"github.com/xenking/bookverse-storefront/internal/domain/book"
	"github.com/xenking/bookverse-storefront/internal/domain/cart"
	"github.com/xenking/bookverse-storefront/internal/domain/checkout"
)

// ErrUsage is returned for unknown commands and malformed arguments.
var ErrUsage = errors.New("usage")

const usage = `Usage: bookverse [global flags] <command> [flags] [args]

Commands:
  login     --email E --password P
  signup    --username U --email E [--phone N] --password P --password2 P --accept-terms
  logout
  books     [--page N] [--search S] [--category C]
  cart
  add       <book-id>
  qty       <item-id> <quantity>
  rm        [--yes] <item-id>
  checkout  --name N --phone P --address A --city C --state S --postal-code Z [--payment COD]
  orders
  account
  nav
`

// prompter asks yes/no questions on the terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p prompter) confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// parseCommand maps command-line arguments to a controller action.
func parseCommand(args []string, p prompter) (controller.Action, error) {
	if len(args) == 0 {
		return nil, errors.Wrap(ErrUsage, "no command")
	}
	name, rest := args[0], args[1:]

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(p.out)

	switch name {
	case "login":
		var c account.Credentials
		fs.StringVar(&c.Email, "email", "", "account email")
		fs.StringVar(&c.Password, "password", "", "account password")
		if err := parseFlags(fs, rest, 0); err != nil {
			return nil, err
		}
		return controller.Login{Credentials: c}, nil

	case "signup":
		var f account.SignupForm
		fs.StringVar(&f.Username, "username", "", "display name")
		fs.StringVar(&f.Email, "email", "", "account email")
		fs.StringVar(&f.Phone, "phone", "", "phone number")
		fs.StringVar(&f.Password, "password", "", "password")
		fs.StringVar(&f.Password2, "password2", "", "password confirmation")
		fs.BoolVar(&f.AcceptTerms, "accept-terms", false, "accept the terms & conditions")
		if err := parseFlags(fs, rest, 0); err != nil {
			return nil, err
		}
		return controller.Signup{Form: f}, nil

	case "logout":
		return controller.Logout{}, parseFlags(fs, rest, 0)

	case "books":
		var q book.Query
		fs.IntVar(&q.Page, "page", 1, "page number")
		fs.StringVar(&q.Search, "search", "", "title or author")
		fs.StringVar(&q.Category, "category", "", "category")
		if err := parseFlags(fs, rest, 0); err != nil {
			return nil, err
		}
		q.Search = strings.TrimSpace(q.Search)
		return controller.LoadBooks{Query: q}, nil

	case "cart":
		return controller.LoadCart{}, parseFlags(fs, rest, 0)

	case "add":
		if err := parseFlags(fs, rest, 1); err != nil {
			return nil, err
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		return controller.AddToCart{BookID: id}, nil

	case "qty":
		if err := parseFlags(fs, rest, 2); err != nil {
			return nil, err
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		// Non-numeric input is treated as an invalid quantity.
		qty, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			qty = 0
		}
		return controller.ChangeQuantity{ItemID: id, Quantity: qty}, nil

	case "rm":
		yes := fs.Bool("yes", false, "skip the confirmation")
		if err := parseFlags(fs, rest, 1); err != nil {
			return nil, err
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		confirm := func(cart.Item) bool {
			return p.confirm("Remove this item from your cart?")
		}
		if *yes {
			confirm = cart.Always
		}
		return controller.RemoveItem{ItemID: id, Confirm: confirm}, nil

	case "checkout":
		var f checkout.ShippingForm
		fs.StringVar(&f.FullName, "name", "", "full name")
		fs.StringVar(&f.Phone, "phone", "", "phone number")
		fs.StringVar(&f.Address, "address", "", "street address")
		fs.StringVar(&f.City, "city", "", "city")
		fs.StringVar(&f.State, "state", "", "state")
		fs.StringVar(&f.PostalCode, "postal-code", "", "postal code")
		fs.StringVar(&f.PaymentMethod, "payment", checkout.PaymentCOD, "payment method")
		if err := parseFlags(fs, rest, 0); err != nil {
			return nil, err
		}
		return controller.PlaceOrder{Form: f}, nil

	case "orders":
		return controller.LoadOrders{}, parseFlags(fs, rest, 0)

	case "account":
		return controller.LoadAccount{}, parseFlags(fs, rest, 0)

	case "nav":
		return controller.ShowNav{}, parseFlags(fs, rest, 0)

	default:
		return nil, errors.Wrapf(ErrUsage, "unknown command %q", name)
	}
}

// parseFlags parses args and checks the number of positional arguments.
func parseFlags(fs *flag.FlagSet, args []string, positional int) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(ErrUsage, err.Error())
	}
	if fs.NArg() != positional {
		return errors.Wrapf(ErrUsage, "%s: expected %d argument(s), got %d", fs.Name(), positional, fs.NArg())
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Wrapf(ErrUsage, "invalid id %q", s)
	}
	return id, nil
}
