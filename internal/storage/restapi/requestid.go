package restapi

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier on every call.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

type requestIDKey struct{}

// WithRequestID tags every call made with ctx with id, so that the backend
// logs of one user action can be correlated. An id that cannot be sent as a
// header value is ignored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// NewRequestID returns a fresh identifier for WithRequestID.
func NewRequestID() string { return uuid.NewString() }

// requestID sets X-Request-ID from the context, falling back to a new id
// per call.
func requestID(_ *resty.Client, r *resty.Request) error {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	if !headerSafe(id) {
		id = NewRequestID()
	}
	r.SetHeader(RequestIDHeader, id)
	return nil
}

// headerSafe reports whether id is non-empty, short, and printable ASCII.
func headerSafe(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool { return r < ' ' || r > '~' }) < 0
}
