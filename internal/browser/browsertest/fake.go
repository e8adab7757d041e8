// Package browsertest provides in-memory fakes for the browser.Session seam,
// so extraction and resolution logic can be tested without a browser process.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tracklift/internal/browser"
)

// FakeElement is a scripted DOM node.
type FakeElement struct {
	// TextValue is returned by Text unless NoText is set.
	TextValue string
	NoText    bool
	// Attrs holds attribute name/value pairs.
	Attrs map[string]string
	// Kids maps a child selector to the nodes it matches, in order.
	Kids map[string][]browser.Element
	// ScrollErr is returned by ScrollIntoView.
	ScrollErr error
}

var _ browser.Element = (*FakeElement)(nil)

func (e *FakeElement) Child(selector string) (browser.Element, bool) {
	kids := e.Kids[selector]
	if len(kids) == 0 {
		return nil, false
	}
	return kids[0], true
}

func (e *FakeElement) Children(selector string) []browser.Element {
	return e.Kids[selector]
}

func (e *FakeElement) Text() (string, bool) {
	if e.NoText {
		return "", false
	}
	return e.TextValue, true
}

func (e *FakeElement) Attribute(name string) (string, bool) {
	value, ok := e.Attrs[name]
	return value, ok
}

func (e *FakeElement) ScrollIntoView() error {
	return e.ScrollErr
}

// TextElement builds a leaf node with visible text.
func TextElement(text string) *FakeElement {
	return &FakeElement{TextValue: text}
}

// Pass is the result of one Elements query against a FakeSession. A non-nil
// Err simulates a session-level query failure.
type Pass struct {
	Rows []browser.Element
	Err  error
}

// FakeSession replays scripted query results. Each Elements call consumes the
// next Pass; once exhausted, the final Pass repeats, simulating a page that
// has stopped rendering new rows.
type FakeSession struct {
	// Page maps selectors to elements returned by WaitElement.
	Page map[string]browser.Element
	// Passes is the Elements script.
	Passes []Pass
	// WaitErr, when set, fails every WaitElement/WaitElements call.
	WaitErr error
	// CloseErr is returned by Close.
	CloseErr error

	mu     sync.Mutex
	call   int
	closed bool
}

var _ browser.Session = (*FakeSession)(nil)

func (s *FakeSession) WaitElement(_ context.Context, selector string, _ time.Duration) (browser.Element, error) {
	if s.WaitErr != nil {
		return nil, s.WaitErr
	}
	if el, ok := s.Page[selector]; ok {
		return el, nil
	}
	if len(s.Passes) > 0 && len(s.Passes[0].Rows) > 0 {
		return s.Passes[0].Rows[0], nil
	}
	return nil, fmt.Errorf("%w: %q", browser.ErrElementNotFound, selector)
}

func (s *FakeSession) WaitElements(ctx context.Context, selector string, timeout time.Duration) ([]browser.Element, error) {
	if _, err := s.WaitElement(ctx, selector, timeout); err != nil {
		return nil, err
	}
	return s.Elements(selector)
}

func (s *FakeSession) Elements(string) ([]browser.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Passes) == 0 {
		return nil, nil
	}

	idx := s.call
	if idx >= len(s.Passes) {
		idx = len(s.Passes) - 1
	}
	s.call++

	pass := s.Passes[idx]
	return pass.Rows, pass.Err
}

func (s *FakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.CloseErr
}

// Closed reports whether Close was called.
func (s *FakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Calls reports how many Elements queries ran.
func (s *FakeSession) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.call
}

// FakeFactory hands out scripted sessions keyed by exact URL, so tests also
// verify the URLs components build.
type FakeFactory struct {
	// Sessions maps a URL to the session Open returns for it.
	Sessions map[string]*FakeSession
	// OpenErr, when set, fails every Open call.
	OpenErr error

	mu     sync.Mutex
	opened []string
}

var _ browser.Factory = (*FakeFactory)(nil)

func (f *FakeFactory) Open(_ context.Context, url string) (browser.Session, error) {
	f.mu.Lock()
	f.opened = append(f.opened, url)
	f.mu.Unlock()

	if f.OpenErr != nil {
		return nil, f.OpenErr
	}

	session, ok := f.Sessions[url]
	if !ok {
		return nil, fmt.Errorf("%w: no session scripted for %q", browser.ErrNavigation, url)
	}
	return session, nil
}

// Opened returns the URLs passed to Open, in order.
func (f *FakeFactory) Opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}
