// Package tilestore provides a bounded-memory cache over a container.Reader:
// decoded tiles are kept in an LRU list, evicting the least recently used
// entry once the configured capacity is exceeded. A capacity of 0 disables
// caching entirely — every Load reads straight through to the container.
package tilestore

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/azybler/tilerouter/internal/container"
	"github.com/azybler/tilerouter/internal/tileblob"
	"github.com/azybler/tilerouter/internal/tiles"
)

// Store is a private, per-Router tile cache. It is not shared across
// Router instances and is safe for concurrent use by a single Router's
// queries only insofar as its mutex serializes them.
type Store struct {
	reader   *container.Reader
	capacity int

	mu      sync.Mutex
	entries map[tiles.Key]*list.Element
	order   *list.List // front = most recently used
}

type cacheEntry struct {
	key  tiles.Key
	tile *tileblob.LandTile
}

// New wraps a container.Reader with an LRU cache of the given capacity.
// A capacity of 0 means "no caching": Load always reads through.
func New(reader *container.Reader, capacity int) *Store {
	return &Store{
		reader:   reader,
		capacity: capacity,
		entries:  make(map[tiles.Key]*list.Element),
		order:    list.New(),
	}
}

// Load returns the decoded tile for key, or nil if the container has no
// tile there. A container read or decode error is returned wrapped with
// the tile key (the caller surfaces it as a DATA_ERROR); a missing tile is
// nil, nil, not an error.
func (s *Store) Load(key tiles.Key) (*tileblob.LandTile, error) {
	s.mu.Lock()
	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		tile := el.Value.(*cacheEntry).tile
		s.mu.Unlock()
		return tile, nil
	}
	s.mu.Unlock()

	data, err := s.reader.LoadTile(key.Z, key.X, key.Y)
	if err != nil {
		return nil, fmt.Errorf("load tile %+v: %w", key, err)
	}
	if data == nil {
		return nil, nil
	}

	tile, err := tileblob.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode tile %+v: %w", key, err)
	}

	s.insert(key, tile)
	return tile, nil
}

func (s *Store) insert(key tiles.Key, tile *tileblob.LandTile) {
	if s.capacity <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*cacheEntry).tile = tile
		s.order.MoveToFront(el)
		return
	}

	if s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	el := s.order.PushFront(&cacheEntry{key: key, tile: tile})
	s.entries[key] = el
}

// Len returns the number of tiles currently cached, for tests and metrics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}
