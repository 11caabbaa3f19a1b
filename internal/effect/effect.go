// Package effect records the side effects a dispatched user action produced.
//
// A Log is attached to a context with With. Lower layers call Record with
// the context they were handed: the REST client records network calls, the
// cart cache records state mutations and controllers record navigation.
// Record is a no-op on contexts without a Log.
package effect

import (
	"context"
	"fmt"
	"sync"
)

// Page identifies a navigation target.
type Page string

// Pages of the storefront.
const (
	PageHome    Page = "home"
	PageLogin   Page = "login"
	PageSignup  Page = "signup"
	PageBooks   Page = "books"
	PageCart    Page = "cart"
	PageOrders  Page = "orders"
	PageAccount Page = "account"
)

// Effect is one of NetworkCall, StateMutation or Navigation.
type Effect interface {
	fmt.Stringer
	effect()
}

// NetworkCall is an HTTP request issued to the backend.
type NetworkCall struct {
	Method string
	Path   string
}

func (NetworkCall) effect() {}

func (e NetworkCall) String() string { return "network " + e.Method + " " + e.Path }

// StateMutation is a change to client-held state.
type StateMutation struct {
	Kind string
}

func (StateMutation) effect() {}

func (e StateMutation) String() string { return "mutate " + e.Kind }

// Navigation is a move to another page.
type Navigation struct {
	To Page
}

func (Navigation) effect() {}

func (e Navigation) String() string { return "navigate " + string(e.To) }

// Log collects effects in the order they were recorded. Safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	effects []Effect
}

// Effects returns a copy of the recorded effects.
func (l *Log) Effects() []Effect {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Effect, len(l.effects))
	copy(out, l.effects)
	return out
}

// NetworkCalls returns only the recorded network calls.
func (l *Log) NetworkCalls() []NetworkCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []NetworkCall
	for _, e := range l.effects {
		if nc, ok := e.(NetworkCall); ok {
			out = append(out, nc)
		}
	}
	return out
}

func (l *Log) add(e Effect) {
	l.mu.Lock()
	l.effects = append(l.effects, e)
	l.mu.Unlock()
}

type logKey struct{}

// With returns a child context carrying a fresh Log.
func With(ctx context.Context) (context.Context, *Log) {
	l := &Log{}
	return context.WithValue(ctx, logKey{}, l), l
}

// From returns the Log attached to ctx, or nil.
func From(ctx context.Context) *Log {
	l, _ := ctx.Value(logKey{}).(*Log)
	return l
}

// Record appends e to the Log carried by ctx.
func Record(ctx context.Context, e Effect) {
	if l := From(ctx); l != nil {
		l.add(e)
	}
}
