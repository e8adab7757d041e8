package resolve

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"go.uber.org/zap"

	"tracklift/internal/browser"
	"tracklift/internal/browser/browsertest"
	"tracklift/pkg/platform"
	"tracklift/pkg/track"
)

// candidate builds one search result row: an li wrapping an anchor with the
// candidate title as visible text.
func candidate(title, href string) *browsertest.FakeElement {
	anchor := &browsertest.FakeElement{
		TextValue: title,
		Attrs:     map[string]string{"href": href},
	}
	return &browsertest.FakeElement{
		TextValue: title,
		Kids:      map[string][]browser.Element{appleAnchorSelector: {anchor}},
	}
}

func searchSession(candidates ...browser.Element) *browsertest.FakeSession {
	songs := &browsertest.FakeElement{
		Kids: map[string][]browser.Element{appleResultSelector: candidates},
	}
	return &browsertest.FakeSession{
		Page: map[string]browser.Element{appleSongsSelector: songs},
	}
}

func searchURLFor(t track.Track) string {
	return appleSearchURL + url.QueryEscape(t.Query())
}

func newTestResolver(t *testing.T, factory browser.Factory, policy MatchPolicy) *Resolver {
	t.Helper()
	r, err := New(factory, platform.Apple, policy, zap.NewNop())
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return r
}

func TestNew_UnsupportedTarget(t *testing.T) {
	for _, target := range []platform.Platform{platform.YouTube, platform.Spotify, platform.Unknown} {
		if _, err := New(&browsertest.FakeFactory{}, target, MatchNameOnly, zap.NewNop()); !errors.Is(err, ErrUnsupportedTarget) {
			t.Errorf("New(%v) error = %v, want ErrUnsupportedTarget", target, err)
		}
	}
}

func TestResolver_FirstCaseInsensitiveMatchWins(t *testing.T) {
	tr := track.Track{Name: "Song A", Artist: "Someone"}

	session := searchSession(
		candidate("Song A", "https://music.apple.com/song/1"),
		candidate("song a", "https://music.apple.com/song/2"),
		candidate("Song B", "https://music.apple.com/song/3"),
	)
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/1" {
		t.Errorf("Resolve() = %v, want the first rendered match", links)
	}
	if !session.Closed() {
		t.Error("Resolve() left the search session open")
	}
}

func TestResolver_CaseDiffersButStillMatches(t *testing.T) {
	tr := track.Track{Name: "Song A", Artist: "Someone"}

	session := searchSession(
		candidate("song a", "https://music.apple.com/song/2"),
	)
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/2" {
		t.Errorf("Resolve() = %v, want case-insensitive match", links)
	}
}

func TestResolver_UnmatchedTrackOmittedNotFatal(t *testing.T) {
	unmatched := track.Track{Name: "Nothing Here", Artist: "Nobody"}
	matched := track.Track{Name: "Foo", Artist: "Bar"}

	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{
			searchURLFor(unmatched): searchSession(
				candidate("Unrelated Song", "https://music.apple.com/song/9"),
			),
			searchURLFor(matched): searchSession(
				candidate("Foo", "https://music.apple.com/song/1"),
			),
		},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(
		context.Background(), []track.Track{unmatched, matched})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/1" {
		t.Errorf("Resolve() = %v, want only the later track's link", links)
	}
}

func TestResolver_SearchFailureDoesNotAbortRemaining(t *testing.T) {
	broken := track.Track{Name: "Breaks", Artist: "Navigation"}
	matched := track.Track{Name: "Foo", Artist: "Bar"}

	// No session scripted for the first track: Open fails with a
	// navigation error. The second track must still resolve.
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{
			searchURLFor(matched): searchSession(
				candidate("Foo", "https://music.apple.com/song/1"),
			),
		},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(
		context.Background(), []track.Track{broken, matched})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/1" {
		t.Errorf("Resolve() = %v, want the surviving track's link", links)
	}
}

func TestResolver_MissingSongsSectionOmitsTrack(t *testing.T) {
	tr := track.Track{Name: "Foo", Artist: "Bar"}

	session := &browsertest.FakeSession{WaitErr: browser.ErrElementNotFound}
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("Resolve() = %v, want no links", links)
	}
	if !session.Closed() {
		t.Error("Resolve() left the session open after a failed wait")
	}
}

func TestResolver_CloseFailureLoggedNotPropagated(t *testing.T) {
	tr := track.Track{Name: "Foo", Artist: "Bar"}

	session := searchSession(candidate("Foo", "https://music.apple.com/song/1"))
	session.CloseErr = errors.New("tab already gone")
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("Resolve() = %v, want 1 link despite close failure", links)
	}
}

func TestResolver_HrefPercentDecoded(t *testing.T) {
	tr := track.Track{Name: "Foo", Artist: "Bar"}

	session := searchSession(candidate("Foo", "https://music.apple.com/us/song/caf%C3%A9/1"))
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/us/song/café/1" {
		t.Errorf("Resolve() = %v, want percent-decoded link", links)
	}
}

func TestResolver_HrefLiteralPlusPreserved(t *testing.T) {
	tr := track.Track{Name: "Foo", Artist: "Bar"}

	session := searchSession(candidate("Foo", "https://music.apple.com/us/song/a+b/1"))
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/us/song/a+b/1" {
		t.Errorf("Resolve() = %v, want the href unchanged, plus sign intact", links)
	}
}

func TestResolver_NameAndArtistPolicy(t *testing.T) {
	tr := track.Track{Name: "Song A", Artist: "Right Artist"}

	wrongArtist := candidate("Song A", "https://music.apple.com/song/1")
	wrongArtist.TextValue = "Song A\nWrong Band — Some Album"
	rightArtist := candidate("Song A", "https://music.apple.com/song/2")
	rightArtist.TextValue = "Song A\nRight Artist — Some Album"

	session := searchSession(wrongArtist, rightArtist)
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameAndArtist).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/2" {
		t.Errorf("Resolve() = %v, want the artist-verified candidate", links)
	}
}

func TestResolver_FuzzyTitlePolicy(t *testing.T) {
	tr := track.Track{Name: "Song A", Artist: "Someone"}

	session := searchSession(
		candidate("Song B", "https://music.apple.com/song/1"),
		candidate("Song A (feat. Guest) [Remastered 2011]", "https://music.apple.com/song/2"),
	)
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchFuzzyTitle).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/2" {
		t.Errorf("Resolve() = %v, want the decorated title matched after normalization", links)
	}
}

func TestResolver_EndToEndSingleCandidate(t *testing.T) {
	tr := track.Track{Name: "Foo", Artist: "Bar"}

	session := searchSession(candidate("Foo", "https://music.apple.com/song/1"))
	factory := &browsertest.FakeFactory{
		Sessions: map[string]*browsertest.FakeSession{searchURLFor(tr): session},
	}

	links, err := newTestResolver(t, factory, MatchNameOnly).Resolve(context.Background(), []track.Track{tr})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(links) != 1 || links[0] != "https://music.apple.com/song/1" {
		t.Errorf("Resolve() = %v, want [https://music.apple.com/song/1]", links)
	}

	opened := factory.Opened()
	if len(opened) != 1 || opened[0] != "https://music.apple.com/us/search?term=Foo+-+Bar" {
		t.Errorf("Resolve() opened %v, want the encoded search URL", opened)
	}
}

func TestParseMatchPolicy(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  MatchPolicy
		wantError bool
	}{
		{name: "Default empty", input: "", expected: MatchNameOnly},
		{name: "Name only", input: "name-only", expected: MatchNameOnly},
		{name: "Name and artist", input: "name-and-artist", expected: MatchNameAndArtist},
		{name: "Fuzzy title", input: "fuzzy-title", expected: MatchFuzzyTitle},
		{name: "Unknown", input: "isrc", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMatchPolicy(tt.input)
			if tt.wantError {
				if err == nil {
					t.Error("ParseMatchPolicy() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMatchPolicy() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ParseMatchPolicy(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
