package extract

import "time"

// Config tunes the extractors. Zero values are filled from the defaults.
type Config struct {
	// WaitTimeout bounds the initial wait for the playlist container.
	WaitTimeout time.Duration

	// StalePassLimit is how many consecutive zero-new-row passes the
	// Spotify loop tolerates before declaring convergence.
	StalePassLimit int

	// MaxPasses caps total scroll passes, including retried ones. Zero
	// means unbounded, which trades a liveness guarantee for completeness
	// on very large playlists.
	MaxPasses int

	// SeenCapacity sizes the scroll loop's dedup set.
	SeenCapacity int
}

// Default extractor tuning.
const (
	DefaultWaitTimeout    = 30 * time.Second
	DefaultStalePassLimit = 1
	DefaultMaxPasses      = 512
	DefaultSeenCapacity   = 20000
)

func (c Config) withDefaults() Config {
	if c.WaitTimeout <= 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.StalePassLimit <= 0 {
		c.StalePassLimit = DefaultStalePassLimit
	}
	if c.SeenCapacity <= 0 {
		c.SeenCapacity = DefaultSeenCapacity
	}
	return c
}
