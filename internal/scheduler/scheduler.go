package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/cityweather/internal/store"
)

const defaultInterval = 5 * time.Minute

// Scheduler periodically closes screens that clients stopped polling.
type Scheduler struct {
	scheduler *gocron.Scheduler
	screens   *store.MemoryStore
	interval  time.Duration
	idleTTL   time.Duration
}

// New creates a new Scheduler.
func New(screens *store.MemoryStore, interval, idleTTL time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		screens:   screens,
		interval:  interval,
		idleTTL:   idleTTL,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.idleTTL <= 0 {
		log.Println("scheduler: no idle TTL configured; screens are never evicted")
		return nil
	}

	interval := s.interval
	if interval < time.Second {
		interval = defaultInterval
	}

	if _, err := s.scheduler.Every(interval).Do(func() { s.Sweep() }); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Sweep evicts and closes every screen idle for longer than the TTL.
func (s *Scheduler) Sweep() int {
	evicted := s.screens.PruneIdle(s.idleTTL)
	for _, sc := range evicted {
		sc.Close()
	}
	if len(evicted) > 0 {
		log.Printf("scheduler: closed %d idle screens, %d still open", len(evicted), s.screens.Len())
	}
	return len(evicted)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
