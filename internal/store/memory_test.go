package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/cityweather/internal/screen"
)

func newScreen(id string) *screen.Screen {
	return screen.New(id, nil, nil, screen.Options{})
}

func TestSaveGetDelete(t *testing.T) {
	s := NewMemoryStore(0)

	sc := newScreen("a")
	if err := s.Save(sc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != sc {
		t.Fatalf("Get returned a different screen")
	}

	if _, err := s.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.Delete("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSaveRespectsCapacity(t *testing.T) {
	s := NewMemoryStore(2)

	for _, id := range []string{"a", "b"} {
		if err := s.Save(newScreen(id)); err != nil {
			t.Fatalf("Save(%s) failed: %v", id, err)
		}
	}
	if err := s.Save(newScreen("c")); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	// Replacing an existing ID does not need a free slot.
	if err := s.Save(newScreen("a")); err != nil {
		t.Fatalf("replacing a screen failed: %v", err)
	}
}

func TestPruneIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0)
	s.now = func() time.Time { return now }

	for _, id := range []string{"old", "fresh"} {
		if err := s.Save(newScreen(id)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	now = now.Add(20 * time.Minute)
	if _, err := s.Get("fresh"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	now = now.Add(15 * time.Minute)
	evicted := s.PruneIdle(30 * time.Minute)
	if len(evicted) != 1 || evicted[0].ID() != "old" {
		t.Fatalf("expected only 'old' to be evicted, got %d screens", len(evicted))
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 screen left, got %d", s.Len())
	}
}

func TestDrain(t *testing.T) {
	s := NewMemoryStore(0)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(newScreen(id)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	if got := len(s.Drain()); got != 3 {
		t.Fatalf("expected 3 drained screens, got %d", got)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store after drain")
	}
}
