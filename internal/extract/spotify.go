package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tracklift/internal/browser"
	"tracklift/internal/store"
	"tracklift/pkg/platform"
	"tracklift/pkg/track"
)

// seenBloomFalsePositiveRate tunes the seen-set's Bloom prefilter.
const seenBloomFalsePositiveRate = 0.001

// Spotify extracts a playlist from Spotify's virtualized list view. Only a
// window of rows exists in the DOM at any time, so the extractor repeatedly
// scrolls the tail of the window into view and re-queries, accumulating
// unique rows until a pass yields nothing new.
type Spotify struct {
	cfg     Config
	metrics Recorder
	logger  *zap.Logger
}

func NewSpotify(cfg Config, metrics Recorder, logger *zap.Logger) *Spotify {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Spotify{cfg: cfg.withDefaults(), metrics: metrics, logger: logger}
}

func (e *Spotify) Platform() platform.Platform {
	return platform.Spotify
}

// Extract runs the scroll-convergence loop. The collected sequence is
// duplicate-free by construction and preserves first-seen order, which is the
// presentation order of the playlist.
func (e *Spotify) Extract(ctx context.Context, session browser.Session) ([]track.Track, error) {
	if _, err := session.WaitElement(ctx, spRowSelector, e.cfg.WaitTimeout); err != nil {
		return nil, fmt.Errorf("waiting for track rows: %w", err)
	}

	var collected []track.Track
	seen := store.NewSeenStore(e.cfg.SeenCapacity, seenBloomFalsePositiveRate)
	stale := 0

	for pass := 0; ; pass++ {
		if e.cfg.MaxPasses > 0 && pass >= e.cfg.MaxPasses {
			return nil, fmt.Errorf("%w: %d rows collected in %d passes",
				ErrConvergenceTimeout, len(collected), pass)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.metrics.RecordScrollPass()

		rows, err := session.Elements(spRowSelector)
		if err != nil {
			// Transient session failure: retry the pass. It counts
			// toward MaxPasses but not toward staleness.
			e.logger.Warn("Row query failed, retrying pass",
				zap.Int("pass", pass), zap.Error(err))
			continue
		}

		added := e.collectPass(rows, seen, &collected)

		e.logger.Debug("Scroll pass complete",
			zap.Int("pass", pass),
			zap.Int("rendered_rows", len(rows)),
			zap.Int("new_tracks", added),
			zap.Int("total", len(collected)))

		if added == 0 {
			stale++
			if stale >= e.cfg.StalePassLimit {
				break
			}
			continue
		}
		stale = 0
	}

	e.logger.Info("Extracted Spotify playlist", zap.Int("tracks", len(collected)))
	e.metrics.RecordExtracted(platform.Spotify.String(), len(collected))

	return collected, nil
}

// collectPass processes the rendered rows past the already-collected prefix
// and returns how many new unique tracks it appended.
func (e *Spotify) collectPass(rows []browser.Element, seen *store.SeenStore, collected *[]track.Track) int {
	added := 0

	for i := len(*collected); i < len(rows); i++ {
		row := rows[i]

		// Scrolling forces the virtualized list to render the next
		// window. Best-effort: a lagging render only delays the row to
		// a later pass.
		if err := row.ScrollIntoView(); err != nil {
			e.logger.Debug("Scroll into view failed", zap.Int("row", i), zap.Error(err))
		}

		t, ok := e.parseRow(row)
		if !ok {
			// Rows at the scroll boundary may be partially rendered.
			e.logger.Warn("Dropping partially rendered row", zap.Int("row", i))
			e.metrics.RecordRowDropped()
			continue
		}

		if seen.Has(t.Key()) {
			continue
		}
		seen.Add(t.Key())
		*collected = append(*collected, t)
		added++
	}

	return added
}

// parseRow extracts name and artist from a rendered row. Spotify's playlist
// rows carry no album column, so Album is always absent.
func (e *Spotify) parseRow(row browser.Element) (track.Track, bool) {
	nameEl, ok := row.Child(spNameSelector)
	if !ok {
		return track.Track{}, false
	}
	name, ok := nameEl.Text()
	if !ok {
		return track.Track{}, false
	}

	artistEl, ok := row.Child(spArtistSelector)
	if !ok {
		return track.Track{}, false
	}
	artist, ok := artistEl.Text()
	if !ok {
		return track.Track{}, false
	}

	t, err := track.New(name, artist, "")
	if err != nil {
		return track.Track{}, false
	}
	return t, true
}
