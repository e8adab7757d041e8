package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tracklift/internal/browser"
	"tracklift/pkg/platform"
	"tracklift/pkg/track"
)

// YouTube extracts a YouTube Music playlist in a single DOM query over the
// fully rendered page.
type YouTube struct {
	cfg     Config
	metrics Recorder
	logger  *zap.Logger
}

func NewYouTube(cfg Config, metrics Recorder, logger *zap.Logger) *YouTube {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &YouTube{cfg: cfg.withDefaults(), metrics: metrics, logger: logger}
}

func (e *YouTube) Platform() platform.Platform {
	return platform.YouTube
}

// Extract waits for the playlist rows and maps each to a track record. A row
// whose field count differs from the rendered contract is fatal: the page
// structure has changed and silently mis-mapping fields would be worse than
// failing.
func (e *YouTube) Extract(ctx context.Context, session browser.Session) ([]track.Track, error) {
	rows, err := session.WaitElements(ctx, ytRowSelector, e.cfg.WaitTimeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for playlist rows: %w", err)
	}

	tracks := make([]track.Track, 0, len(rows))
	for i, row := range rows {
		texts := fieldTexts(row)
		if len(texts) != ytFieldCount {
			return nil, fmt.Errorf("%w: row %d rendered %d fields, want %d",
				ErrMalformedRow, i, len(texts), ytFieldCount)
		}

		// Fields are name, artist, album, duration, trailing empty.
		// Duration and the trailing field are discarded.
		t, err := track.New(texts[0], texts[1], texts[2])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, i, err)
		}
		tracks = append(tracks, t)
	}

	e.logger.Info("Extracted YouTube Music playlist", zap.Int("tracks", len(tracks)))
	e.metrics.RecordExtracted(platform.YouTube.String(), len(tracks))

	return tracks, nil
}

// fieldTexts collects the visible text of every text-bearing field in a row,
// skipping fields whose text cannot be read.
func fieldTexts(row browser.Element) []string {
	fields := row.Children(ytFieldSelector)
	texts := make([]string, 0, len(fields))
	for _, field := range fields {
		if text, ok := field.Text(); ok {
			texts = append(texts, text)
		}
	}
	return texts
}
