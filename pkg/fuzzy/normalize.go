// Package fuzzy provides text normalization for comparing track metadata
// scraped from different platforms, which render the same track with
// inconsistent casing, punctuation, and decoration.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]?\s*`)
	versionRegex    = regexp.MustCompile(`(?i)\s*[\(\[]\s*(remaster|remastered|deluxe|extended|radio edit|live|acoustic|mono|stereo)[^\)\]]*[\)\]]\s*`)
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeTitle lowercases, strips accents and punctuation, and removes
// featuring credits and edition suffixes from a track title.
func (n *Normalizer) NormalizeTitle(title string) string {
	title = featRegex.ReplaceAllString(title, " ")
	title = versionRegex.ReplaceAllString(title, " ")

	return n.basicNormalize(title)
}

// NormalizeArtist lowercases, strips accents and punctuation, and folds
// common join words so "A and B" matches "A & B".
func (n *Normalizer) NormalizeArtist(artist string) string {
	artist = n.basicNormalize(artist)

	artist = strings.ReplaceAll(artist, " and ", " ")
	artist = strings.ReplaceAll(artist, " feat ", " ")
	artist = strings.ReplaceAll(artist, " ft ", " ")
	artist = whitespaceRegex.ReplaceAllString(artist, " ")

	return strings.TrimSpace(artist)
}

// TitlesEqual reports whether two titles are the same track name once
// normalized.
func (n *Normalizer) TitlesEqual(a, b string) bool {
	return n.NormalizeTitle(a) == n.NormalizeTitle(b)
}

// ContainsArtist reports whether the normalized candidate text mentions the
// normalized artist. Used to verify search candidates whose subtitle rows mix
// artist and album text.
func (n *Normalizer) ContainsArtist(candidateText, artist string) bool {
	artist = n.NormalizeArtist(artist)
	if artist == "" {
		return false
	}
	return strings.Contains(n.basicNormalize(candidateText), artist)
}

func (n *Normalizer) basicNormalize(text string) string {
	text = norm.NFKD.String(text)

	var result strings.Builder
	for _, r := range text {
		if !unicode.IsMark(r) {
			result.WriteRune(r)
		}
	}
	text = result.String()

	text = punctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")

	return strings.TrimSpace(strings.ToLower(text))
}
