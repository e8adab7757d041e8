package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tracklift/pkg/track"
)

func TestSaveLoadPlaylistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")

	tracks := []track.Track{
		{Name: "Feel Good Inc.", Artist: "Gorillaz", Album: "Demon Days"},
		{Name: "Foo", Artist: "Bar"},
	}

	if err := SavePlaylist(path, tracks); err != nil {
		t.Fatalf("SavePlaylist() error: %v", err)
	}

	got, err := LoadPlaylist(path)
	if err != nil {
		t.Fatalf("LoadPlaylist() error: %v", err)
	}

	if len(got) != len(tracks) {
		t.Fatalf("LoadPlaylist() = %d tracks, want %d", len(got), len(tracks))
	}
	for i := range tracks {
		if got[i] != tracks[i] {
			t.Errorf("LoadPlaylist()[%d] = %+v, want %+v (order must survive persistence)", i, got[i], tracks[i])
		}
	}
}

func TestSavePlaylistOmitsAbsentAlbum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playlist.json")

	if err := SavePlaylist(path, []track.Track{{Name: "Foo", Artist: "Bar"}}); err != nil {
		t.Fatalf("SavePlaylist() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if strings.Contains(string(data), "album") {
		t.Errorf("absent album serialized: %s", data)
	}
}

func TestSavePlaylistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.json")

	if err := SavePlaylist(path, []track.Track{{Name: "Foo", Artist: "Bar"}}); err != nil {
		t.Fatalf("SavePlaylist() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the playlist", len(entries))
	}
}

func TestSavePlaylistMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "playlist.json")

	if err := SavePlaylist(path, nil); err == nil {
		t.Error("SavePlaylist() into missing directory succeeded")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("SavePlaylist() left a file behind on failure")
	}
}

func TestLoadPlaylistErrors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		if _, err := LoadPlaylist(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Error("LoadPlaylist() on missing file succeeded")
		}
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
		if _, err := LoadPlaylist(path); err == nil {
			t.Error("LoadPlaylist() on invalid JSON succeeded")
		}
	})

	t.Run("Empty artist rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "edited.json")
		body := `[{"name": "Foo", "artist": ""}]`
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
		if _, err := LoadPlaylist(path); !errors.Is(err, track.ErrEmptyArtist) {
			t.Errorf("LoadPlaylist() error = %v, want ErrEmptyArtist", err)
		}
	})
}

func TestLoadPlaylistTrimsEditedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edited.json")
	body := `[{"name": " Foo ", "artist": "Bar "}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	got, err := LoadPlaylist(path)
	if err != nil {
		t.Fatalf("LoadPlaylist() error: %v", err)
	}
	want := track.Track{Name: "Foo", Artist: "Bar"}
	if len(got) != 1 || got[0] != want {
		t.Errorf("LoadPlaylist() = %+v, want [%+v]", got, want)
	}
}
