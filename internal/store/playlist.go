package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tracklift/pkg/track"
)

// SavePlaylist writes the track sequence as an indented JSON array. The file
// is written to a temporary sibling and renamed into place, so the
// destination never holds partial JSON.
func SavePlaylist(path string, tracks []track.Track) error {
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write playlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close playlist file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to move playlist into place: %w", err)
	}

	return nil
}

// LoadPlaylist reads a track sequence previously written by SavePlaylist.
// Records are re-validated on the way in, so a hand-edited file cannot smuggle
// empty names or artists past the Track invariants.
func LoadPlaylist(path string) ([]track.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	var raw []track.Track
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse playlist %s: %w", path, err)
	}

	tracks := make([]track.Track, 0, len(raw))
	for i, r := range raw {
		t, err := track.New(r.Name, r.Artist, r.Album)
		if err != nil {
			return nil, fmt.Errorf("invalid track %d in playlist %s: %w", i, path, err)
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}
