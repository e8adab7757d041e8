// Package browser abstracts a single browser tab behind a Session interface,
// so the extraction and resolution algorithms can be exercised against an
// in-memory fake as well as a real browser.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNavigation indicates a page failed to load: network failure,
	// invalid URL, or browser-process failure.
	ErrNavigation = errors.New("page navigation failed")

	// ErrElementNotFound indicates an expected selector never appeared in
	// the rendered DOM within the wait timeout.
	ErrElementNotFound = errors.New("element not found")
)

// Element is a handle to one rendered DOM element. Child lookups and text
// extraction never fail hard: the second return value reports absence, which
// callers treat as a partially rendered row.
type Element interface {
	// Child returns the first descendant matching the selector.
	Child(selector string) (Element, bool)

	// Children returns all descendants matching the selector, in DOM order.
	Children(selector string) []Element

	// Text returns the element's visible text.
	Text() (string, bool)

	// Attribute returns the value of the named attribute.
	Attribute(name string) (string, bool)

	// ScrollIntoView scrolls the element into the viewport. Rendering side
	// effects are racy; callers log failures and carry on.
	ScrollIntoView() error
}

// Session is one isolated browser tab, already navigated to its URL. A
// session owns exactly one page and must be closed by the caller on every
// path; Close is safe after failed operations.
type Session interface {
	// WaitElement blocks until the first element matching the selector
	// exists, or fails with ErrElementNotFound after the timeout.
	WaitElement(ctx context.Context, selector string, timeout time.Duration) (Element, error)

	// WaitElements blocks until at least one element matches, then returns
	// all current matches in DOM order.
	WaitElements(ctx context.Context, selector string, timeout time.Duration) ([]Element, error)

	// Elements returns all current matches without waiting. An error here
	// is session-level and distinct from an empty result.
	Elements(selector string) ([]Element, error)

	// Close releases the tab.
	Close() error
}

// Factory opens sessions. It is the seam through which the single shared
// browser process is threaded into extractors and the resolver.
type Factory interface {
	Open(ctx context.Context, url string) (Session, error)
}
