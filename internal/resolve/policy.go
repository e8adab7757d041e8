package resolve

import "fmt"

// MatchPolicy selects how strictly a search candidate must match a track.
type MatchPolicy int

const (
	// MatchNameOnly accepts the first candidate whose title equals the
	// track name case-insensitively. Precision suffers when different
	// artists share a track name.
	MatchNameOnly MatchPolicy = iota

	// MatchNameAndArtist additionally requires the candidate row to
	// mention the track's artist.
	MatchNameAndArtist

	// MatchFuzzyTitle compares titles after normalization, so featuring
	// credits, edition suffixes, and accents no longer block a match.
	MatchFuzzyTitle
)

func (p MatchPolicy) String() string {
	switch p {
	case MatchNameAndArtist:
		return "name-and-artist"
	case MatchFuzzyTitle:
		return "fuzzy-title"
	default:
		return "name-only"
	}
}

// ParseMatchPolicy converts the command-line policy name.
func ParseMatchPolicy(name string) (MatchPolicy, error) {
	switch name {
	case "name-only", "":
		return MatchNameOnly, nil
	case "name-and-artist":
		return MatchNameAndArtist, nil
	case "fuzzy-title":
		return MatchFuzzyTitle, nil
	default:
		return MatchNameOnly, fmt.Errorf("unknown match policy: %q (want name-only, name-and-artist, or fuzzy-title)", name)
	}
}
