package scrape

import (
	"context"
	"errors"
)

// ErrNavigate is returned when a page could not be loaded even after the
// policy's single retry.
var ErrNavigate = errors.New("navigate failed")

// Session is the authenticated browsing context every stage shares. It is
// created once at startup, passed to each stage and closed by its owner.
type Session interface {
	Navigate(ctx context.Context, url string) error
	PageSource(ctx context.Context) (string, error)
	// Find returns the inner text of every element matching a CSS selector.
	Find(ctx context.Context, selector string) ([]string, error)
	// Execute evaluates script and stores its result in out (nil to discard).
	Execute(ctx context.Context, script string, out any) error
}
