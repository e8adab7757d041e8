// Package platform classifies streaming-platform URLs into a closed set of
// known services.
package platform

import (
	"fmt"
	"net/url"
	"strings"
)

// Platform identifies a supported music streaming service.
type Platform int

// Supported platforms. Unknown is the zero value so an unclassified input
// never masquerades as a real service.
const (
	Unknown Platform = iota
	YouTube
	Apple
	Spotify
)

// hostPlatforms is the exact-match allow-list of hosts. Anything outside this
// map classifies as Unknown.
var hostPlatforms = map[string]Platform{
	"music.youtube.com": YouTube,
	"music.apple.com":   Apple,
	"itunes.apple.com":  Apple,
	"open.spotify.com":  Spotify,
	"spotify.com":       Spotify,
}

func (p Platform) String() string {
	switch p {
	case YouTube:
		return "youtube"
	case Apple:
		return "apple"
	case Spotify:
		return "spotify"
	default:
		return "unknown"
	}
}

// FromURL classifies a raw URL by its host component. It is total: malformed
// URLs, empty hosts, and unrecognized hosts all map to Unknown.
func FromURL(rawURL string) Platform {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Unknown
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Unknown
	}

	if p, ok := hostPlatforms[host]; ok {
		return p
	}
	return Unknown
}

// Parse converts a platform name, as accepted on the command line, into a
// Platform. Unlike FromURL it rejects unknown input.
func Parse(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "youtube":
		return YouTube, nil
	case "apple":
		return Apple, nil
	case "spotify":
		return Spotify, nil
	default:
		return Unknown, fmt.Errorf("unknown platform: %q", name)
	}
}
