package extract

// All extraction couples to third-party page structure through the selectors
// below and nowhere else. When a platform ships a new layout, this is the
// file to update.
const (
	// YouTube Music renders each playlist entry as one list-item custom
	// element holding exactly five formatted-string fields:
	// name, artist, album, duration, and a trailing empty field.
	ytRowSelector   = "ytmusic-responsive-list-item-renderer"
	ytFieldSelector = "yt-formatted-string"

	// Spotify's playlist view is virtualized; rows exist only while
	// scrolled into the render window.
	spRowSelector    = `div[data-testid="tracklist-row"]`
	spNameSelector   = `a[data-testid="internal-track-link"]`
	spArtistSelector = `span a[href^="/artist"]`
)

// ytFieldCount is the exact per-row field count YouTube Music renders.
const ytFieldCount = 5
