package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// RodFactory opens sessions backed by a single shared Chromium process
// driven through go-rod. One factory owns one browser; each Open creates one
// page.
type RodFactory struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pacer    *Pacer
	logger   *zap.Logger
}

// NewRodFactory launches a browser process and connects to it. When headless
// is false the browser window is visible, which helps diagnose selector
// breakage after a site-layout change.
func NewRodFactory(headless bool, navPerMinute int, logger *zap.Logger) (*RodFactory, error) {
	l := launcher.New().Headless(headless)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodFactory{
		browser:  b,
		launcher: l,
		pacer:    NewPacer(navPerMinute),
		logger:   logger,
	}, nil
}

// Open navigates a fresh page to the URL and waits for the load event.
func (f *RodFactory) Open(ctx context.Context, rawURL string) (Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q: %v", ErrNavigation, rawURL, err)
	}

	if err := f.pacer.Wait(ctx, u.Hostname()); err != nil {
		return nil, err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{URL: rawURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNavigation, rawURL, err)
	}
	page = page.Context(ctx)

	if err := page.WaitLoad(); err != nil {
		if closeErr := page.Close(); closeErr != nil {
			f.logger.Warn("Failed to close page after load failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("%w: %q: %v", ErrNavigation, rawURL, err)
	}

	f.logger.Debug("Opened page", zap.String("url", rawURL))

	return &rodSession{page: page}, nil
}

// Close shuts down the browser process.
func (f *RodFactory) Close() error {
	err := f.browser.Close()
	f.launcher.Cleanup()
	return err
}

type rodSession struct {
	page *rod.Page
}

func (s *rodSession) WaitElement(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrElementNotFound, selector, err)
	}
	// Drop the wait deadline so later operations on the handle are not
	// bound by it.
	return &rodElement{el: el.CancelTimeout()}, nil
}

func (s *rodSession) WaitElements(ctx context.Context, selector string, timeout time.Duration) ([]Element, error) {
	// Elements does not wait, so block on the first match before querying
	// the full set.
	if _, err := s.WaitElement(ctx, selector, timeout); err != nil {
		return nil, err
	}
	return s.Elements(selector)
}

func (s *rodSession) Elements(selector string) ([]Element, error) {
	els, err := s.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, err)
	}

	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out, nil
}

func (s *rodSession) Close() error {
	return s.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Child(selector string) (Element, bool) {
	// NotFoundSleeper makes the lookup fail immediately instead of
	// retrying until the inherited deadline.
	child, err := e.el.Sleeper(rod.NotFoundSleeper).Element(selector)
	if err != nil {
		return nil, false
	}
	return &rodElement{el: child}, true
}

func (e *rodElement) Children(selector string) []Element {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil
	}

	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out
}

func (e *rodElement) Text() (string, bool) {
	text, err := e.el.Text()
	if err != nil {
		return "", false
	}
	return text, true
}

func (e *rodElement) Attribute(name string) (string, bool) {
	value, err := e.el.Attribute(name)
	if err != nil || value == nil {
		return "", false
	}
	return *value, true
}

func (e *rodElement) ScrollIntoView() error {
	return e.el.ScrollIntoView()
}
