// Package track defines the platform-agnostic track record shared by all
// extractors and resolvers.
package track

import (
	"errors"
	"strings"
)

// keySeparator joins the identity fields of a track. The unit separator
// cannot appear in rendered page text, so keys never collide across fields.
const keySeparator = "\x1f"

var (
	// ErrEmptyName is returned when a track is constructed without a name.
	ErrEmptyName = errors.New("track name is empty")
	// ErrEmptyArtist is returned when a track is constructed without an artist.
	ErrEmptyArtist = errors.New("track artist is empty")
)

// Track is an immutable value object describing one track. Album is optional:
// an empty string means the source rendered no album, and the field is
// omitted from JSON output.
type Track struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// New builds a Track from raw extracted text. Name and artist must be
// non-empty after trimming; album may be empty.
func New(name, artist, album string) (Track, error) {
	name = strings.TrimSpace(name)
	artist = strings.TrimSpace(artist)
	album = strings.TrimSpace(album)

	if name == "" {
		return Track{}, ErrEmptyName
	}
	if artist == "" {
		return Track{}, ErrEmptyArtist
	}

	return Track{Name: name, Artist: artist, Album: album}, nil
}

// Key returns the structural identity of the track, used as the dedup key by
// the scroll-convergence loop and as the resolver cache key. Two tracks have
// the same key iff all three fields are equal.
func (t Track) Key() string {
	return t.Name + keySeparator + t.Artist + keySeparator + t.Album
}

// Equal reports structural equality over all three fields.
func (t Track) Equal(other Track) bool {
	return t == other
}

// Query returns the search string used when resolving the track against
// another platform's search endpoint.
func (t Track) Query() string {
	return t.Name + " - " + t.Artist
}

// Dedupe returns a new slice with duplicates removed, preserving first-seen
// order.
func Dedupe(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]Track, 0, len(tracks))

	for _, t := range tracks {
		key := t.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	return out
}
