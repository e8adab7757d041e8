// Package extract implements the per-platform DOM extraction strategies that
// turn a rendered playlist page into an ordered sequence of track records.
package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tracklift/internal/browser"
	"tracklift/pkg/platform"
	"tracklift/pkg/track"
)

var (
	// ErrMalformedRow indicates the DOM shape violated the extractor's
	// structural assumption. Always fatal: it signals a site-layout change,
	// and continuing would silently mis-map fields.
	ErrMalformedRow = errors.New("malformed playlist row")

	// ErrConvergenceTimeout indicates the scroll loop hit its pass ceiling
	// before the page stopped producing new rows.
	ErrConvergenceTimeout = errors.New("scroll loop did not converge")

	// ErrUnsupportedPlatform indicates no extractor exists for the
	// classified platform.
	ErrUnsupportedPlatform = errors.New("no extractor for platform")
)

// Extractor pulls an ordered track listing out of one already-open page
// session. Implementations do not close the session; its owner does.
type Extractor interface {
	Platform() platform.Platform
	Extract(ctx context.Context, session browser.Session) ([]track.Track, error)
}

// Recorder receives extraction metrics. *http.Metrics satisfies it.
type Recorder interface {
	RecordExtracted(platform string, count int)
	RecordRowDropped()
	RecordScrollPass()
}

type noopRecorder struct{}

func (noopRecorder) RecordExtracted(string, int) {}
func (noopRecorder) RecordRowDropped()           {}
func (noopRecorder) RecordScrollPass()           {}

// ForPlatform returns the extractor matching the classified source platform.
func ForPlatform(p platform.Platform, cfg Config, metrics Recorder, logger *zap.Logger) (Extractor, error) {
	switch p {
	case platform.YouTube:
		return NewYouTube(cfg, metrics, logger), nil
	case platform.Spotify:
		return NewSpotify(cfg, metrics, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
}
