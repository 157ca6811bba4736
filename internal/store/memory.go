package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/cityweather/internal/screen"
)

var (
	// ErrNotFound is returned when no screen exists for an ID.
	ErrNotFound = errors.New("screen not found")

	// ErrFull is returned by Save when the store is at capacity.
	ErrFull = errors.New("too many open screens")
)

// entry tracks a screen and when a client last touched it.
type entry struct {
	screen   *screen.Screen
	lastSeen time.Time
}

// MemoryStore is a concurrency-safe in-memory registry of open screens.
// Nothing survives a restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: screen ID
	data map[string]*entry

	maxScreens int // 0 = unlimited
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxScreens is <= 0, it is treated as unlimited.
func NewMemoryStore(maxScreens int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*entry),
		maxScreens: maxScreens,
		now:        time.Now,
	}
}

// Save registers a screen under its ID, replacing any screen with that ID.
func (s *MemoryStore) Save(sc *screen.Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sc.ID()]; !exists && s.maxScreens > 0 && len(s.data) >= s.maxScreens {
		return ErrFull
	}
	s.data[sc.ID()] = &entry{screen: sc, lastSeen: s.now()}
	return nil
}

// Get returns the screen for id and marks it as recently used.
func (s *MemoryStore) Get(id string) (*screen.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = s.now()
	return e.screen, nil
}

// Delete removes and returns the screen for id.
func (s *MemoryStore) Delete(id string) (*screen.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.data, id)
	return e.screen, nil
}

// PruneIdle removes screens not touched within maxIdle and returns them so
// the caller can close them.
func (s *MemoryStore) PruneIdle(maxIdle time.Duration) []*screen.Screen {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []*screen.Screen
	for id, e := range s.data {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e.screen)
			delete(s.data, id)
		}
	}
	return evicted
}

// Drain removes and returns every screen.
func (s *MemoryStore) Drain() []*screen.Screen {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*screen.Screen, 0, len(s.data))
	for id, e := range s.data {
		all = append(all, e.screen)
		delete(s.data, id)
	}
	return all
}

// Len returns the number of open screens.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
