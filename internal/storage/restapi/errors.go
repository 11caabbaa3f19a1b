package restapi

import (
	"fmt"
	"strings"

	"github.com/go-faster/jx"
)

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	Op         string
	StatusCode int
	// Detail is the server-provided "detail" message.
	Detail string
	// Missing lists field names reported by order placement.
	Missing []string
	// Field and FieldMessage hold the first field-keyed validation error.
	Field        string
	FieldMessage string
}

func (e *HTTPError) Error() string {
	msg := e.Detail
	if msg == "" && e.Field != "" {
		msg = e.Field + ": " + e.FieldMessage
	}
	if msg == "" {
		return fmt.Sprintf("%s: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, msg)
}

// Message returns the text to show the user: the server detail verbatim,
// else the first field error, else fallback. Missing fields are appended.
func (e *HTTPError) Message(fallback string) string {
	msg := e.Detail
	if msg == "" {
		msg = e.FieldMessage
	}
	if msg == "" {
		msg = fallback
	}
	if len(e.Missing) > 0 {
		msg += " Missing: " + strings.Join(e.Missing, ", ")
	}
	return msg
}

// parseHTTPError extracts what it can from an error body. Keys are visited
// in document order so the first field error is the one the server wrote
// first. Malformed bodies produce an HTTPError with only the status.
func parseHTTPError(op string, status int, body []byte) *HTTPError {
	e := &HTTPError{Op: op, StatusCode: status}

	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return e
	}

	firstSeen := false
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "detail":
			msg, err := firstMessage(d)
			e.Detail = msg
			return err
		case "missing":
			missing, err := stringList(d)
			e.Missing = missing
			return err
		}
		if firstSeen {
			return d.Skip()
		}
		firstSeen = true
		msg, err := firstMessage(d)
		if msg != "" {
			e.Field = key
			e.FieldMessage = msg
		}
		return err
	})
	return e
}

// firstMessage reads a string, or the first string of an array, consuming
// the whole value.
func firstMessage(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Array:
		var msg string
		err := d.Arr(func(d *jx.Decoder) error {
			if msg == "" && d.Next() == jx.String {
				s, err := d.Str()
				msg = s
				return err
			}
			return d.Skip()
		})
		return msg, err
	default:
		return "", d.Skip()
	}
}

func stringList(d *jx.Decoder) ([]string, error) {
	if d.Next() != jx.Array {
		return nil, d.Skip()
	}
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.String {
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	})
	return out, err
}
