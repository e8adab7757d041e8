// Package resolve maps track records to equivalent listings on another
// platform by scraping that platform's search results.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"tracklift/internal/browser"
	"tracklift/internal/store"
	"tracklift/pkg/fuzzy"
	"tracklift/pkg/platform"
	"tracklift/pkg/track"
)

// Apple Music search page structure.
const (
	appleSearchURL        = "https://music.apple.com/us/search?term="
	appleSongsSelector    = `div[aria-label="Songs"]`
	appleResultSelector   = "li"
	appleAnchorSelector   = "a"
	defaultResultsTimeout = 20 * time.Second
)

var (
	// ErrUnsupportedTarget indicates no search strategy exists for the
	// requested target platform.
	ErrUnsupportedTarget = errors.New("unsupported resolve target")

	// errNoMatch is resolver-local: a track whose search produced no
	// acceptable candidate is dropped with a warning, never fatally.
	errNoMatch = errors.New("no matching candidate")
)

// Recorder receives resolution metrics. *http.Metrics satisfies it.
type Recorder interface {
	RecordResolved(status string)
	ObserveResolveDuration(d time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordResolved(string)                {}
func (noopRecorder) ObserveResolveDuration(time.Duration) {}

// Resolver performs one search-and-match cycle per track against the target
// platform. Each track gets a fresh session, closed on every path; one
// track's scraping failure never aborts the rest of the playlist.
type Resolver struct {
	factory browser.Factory
	target  platform.Platform
	policy  MatchPolicy
	cache   *store.LinkCache // nil disables caching
	norm    *fuzzy.Normalizer
	timeout time.Duration
	metrics Recorder
	logger  *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache persists resolved links across runs.
func WithCache(cache *store.LinkCache) Option {
	return func(r *Resolver) { r.cache = cache }
}

// WithTimeout bounds the wait for the search results container.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMetrics wires a metrics recorder.
func WithMetrics(m Recorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// New creates a resolver against the target platform. Only Apple Music is
// currently supported as a target.
func New(factory browser.Factory, target platform.Platform, policy MatchPolicy, logger *zap.Logger, opts ...Option) (*Resolver, error) {
	if target != platform.Apple {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}

	r := &Resolver{
		factory: factory,
		target:  target,
		policy:  policy,
		norm:    fuzzy.NewNormalizer(),
		timeout: defaultResultsTimeout,
		metrics: noopRecorder{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns one link per matched track, in input order, with unmatched
// tracks omitted. It fails only on context cancellation; per-track failures
// are converted to omission plus a warning.
func (r *Resolver) Resolve(ctx context.Context, tracks []track.Track) ([]string, error) {
	links := make([]string, 0, len(tracks))

	for _, t := range tracks {
		start := time.Now()
		link, err := r.resolveOne(ctx, t)
		r.metrics.ObserveResolveDuration(time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			r.logger.Warn("No link found for track",
				zap.String("name", t.Name),
				zap.String("artist", t.Artist),
				zap.Error(err))
			r.metrics.RecordResolved("unmatched")
			continue
		}

		links = append(links, link)
		r.metrics.RecordResolved("matched")
	}

	return links, nil
}

func (r *Resolver) resolveOne(ctx context.Context, t track.Track) (string, error) {
	if r.cache != nil {
		if link, ok, err := r.cache.Get(t.Key(), r.target.String()); err != nil {
			r.logger.Warn("Link cache read failed", zap.Error(err))
		} else if ok {
			r.logger.Debug("Link cache hit", zap.String("name", t.Name))
			return link, nil
		}
	}

	session, err := r.factory.Open(ctx, r.searchURL(t))
	if err != nil {
		return "", fmt.Errorf("opening search page: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("Failed to close search session", zap.Error(err))
		}
	}()

	link, err := r.findSongLink(ctx, session, t)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Put(t.Key(), r.target.String(), link); err != nil {
			r.logger.Warn("Link cache write failed", zap.Error(err))
		}
	}

	return link, nil
}

// searchURL builds the target platform's search endpoint URL for a track.
func (r *Resolver) searchURL(t track.Track) string {
	return appleSearchURL + url.QueryEscape(t.Query())
}

// findSongLink scans the "Songs" section of the results page and returns the
// href of the first candidate accepted by the match policy.
func (r *Resolver) findSongLink(ctx context.Context, session browser.Session, t track.Track) (string, error) {
	songs, err := session.WaitElement(ctx, appleSongsSelector, r.timeout)
	if err != nil {
		return "", fmt.Errorf("waiting for songs section: %w", err)
	}

	for _, result := range songs.Children(appleResultSelector) {
		anchor, ok := result.Child(appleAnchorSelector)
		if !ok {
			continue
		}
		title, ok := anchor.Text()
		if !ok {
			continue
		}

		if !r.accept(result, title, t) {
			continue
		}

		href, ok := anchor.Attribute("href")
		if !ok {
			continue
		}
		return decodeHref(href), nil
	}

	return "", errNoMatch
}

// accept applies the match policy: the candidate title must equal the track
// name case-insensitively (or after normalization under MatchFuzzyTitle),
// and under MatchNameAndArtist the result row must also mention the artist.
func (r *Resolver) accept(result browser.Element, title string, t track.Track) bool {
	if r.policy == MatchFuzzyTitle {
		return r.norm.TitlesEqual(title, t.Name)
	}

	if !strings.EqualFold(strings.TrimSpace(title), t.Name) {
		return false
	}

	if r.policy == MatchNameAndArtist {
		rowText, ok := result.Text()
		if !ok {
			return false
		}
		return r.norm.ContainsArtist(rowText, t.Artist)
	}

	return true
}

// decodeHref percent-decodes a candidate link, keeping the raw href when it
// is not valid percent-encoding. Path decoding leaves literal "+" intact,
// which form decoding would turn into a space.
func decodeHref(href string) string {
	decoded, err := url.PathUnescape(href)
	if err != nil {
		return href
	}
	return decoded
}
