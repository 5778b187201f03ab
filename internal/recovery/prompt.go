// Package recovery asks the user whether a previously saved draft should
// replace the current content of a field.
package recovery

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by prompts that cannot ask anyone.
// Callers treat it as a decline.
var ErrUnavailable = errors.New("recovery prompt unavailable")

// Request describes one recovery decision.
type Request struct {
	FieldID string
	Draft   string // stored content
	Current string // content the field had when it was registered
}

// Prompt obtains a yes/no decision from the user. Confirm blocks until the
// user answers or ctx is done.
type Prompt interface {
	Confirm(ctx context.Context, req Request) (bool, error)
}

// Static answers every request with the same value.
type Static bool

// Confirm implements Prompt.
func (s Static) Confirm(context.Context, Request) (bool, error) {
	return bool(s), nil
}

// Func adapts a function to Prompt.
type Func func(ctx context.Context, req Request) (bool, error)

// Confirm implements Prompt.
func (f Func) Confirm(ctx context.Context, req Request) (bool, error) {
	return f(ctx, req)
}

// Unavailable is the prompt used when no interactive surface exists.
type Unavailable struct{}

// Confirm implements Prompt. It always fails with ErrUnavailable.
func (Unavailable) Confirm(context.Context, Request) (bool, error) {
	return false, ErrUnavailable
}

// Message returns the confirmation text shown for req.
func Message(req Request) string {
	return "A saved draft was found for " + req.FieldID + ". Do you want to restore it?"
}
