// Package store holds the persistence pieces around the extraction core:
// the scroll loop's seen-set, playlist JSON files, and the resolver's link
// cache.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SeenStore is the Spotify scroll loop's dedup set, keyed by track identity.
// A Bloom filter front-ends the exact map so the common miss path during a
// scroll pass stays cheap; an LRU bounds memory for pathological playlists.
type SeenStore struct {
	keys    map[string]struct{}
	bloom   *bloom.BloomFilter
	lru     *lru.Cache[string, struct{}]
	mutex   sync.RWMutex
	maxKeys int
}

// NewSeenStore creates a seen-set sized for maxKeys track keys.
func NewSeenStore(maxKeys int, bloomFalsePositiveRate float64) *SeenStore {
	if maxKeys <= 0 {
		maxKeys = 1
	}
	lruCache, _ := lru.New[string, struct{}](maxKeys)

	return &SeenStore{
		keys:    make(map[string]struct{}),
		bloom:   bloom.NewWithEstimates(uint(maxKeys), bloomFalsePositiveRate),
		lru:     lruCache,
		maxKeys: maxKeys,
	}
}

// Has reports whether the key was added before.
func (s *SeenStore) Has(key string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.bloom.TestString(key) {
		return false
	}

	_, exists := s.keys[key]
	return exists
}

// Add records a key. Adding an existing key is a no-op.
func (s *SeenStore) Add(key string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.keys[key]; exists {
		return
	}

	s.keys[key] = struct{}{}
	s.bloom.AddString(key)
	s.lru.Add(key, struct{}{})

	if len(s.keys) > s.maxKeys {
		s.evictOldest()
	}
}

// Size returns the number of keys currently stored.
func (s *SeenStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.keys)
}

func (s *SeenStore) evictOldest() {
	oldestKey, _, ok := s.lru.GetOldest()
	if !ok {
		return
	}

	delete(s.keys, oldestKey)
	s.lru.Remove(oldestKey)
	// The Bloom filter cannot forget the evicted key; the resulting false
	// positives only make Has consult the exact map.
}
