// Package screen models one weather screen: the display state a front end
// renders, and the background work that refreshes it.
//
// A Screen's state is only mutated by its Run loop. Every submitted query
// gets a new generation, and results carrying an older generation are
// dropped, so a slow response can never overwrite a newer query's display.
package screen

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/i474232898/cityweather/internal/weather"
)

// ErrClosed is returned by Submit once the screen has stopped.
var ErrClosed = errors.New("screen closed")

// Fetcher runs fetch-and-map for a query.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (weather.Report, error)
}

// IconLoader produces the image bytes for an icon URL.
type IconLoader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// ErrorState is the visible error affordance shown after a failed query.
type ErrorState struct {
	Kind    weather.ErrorKind `json:"kind,omitempty"`
	Message string            `json:"message"`
}

// View is a point-in-time copy of what the screen displays.
type View struct {
	ID         string `json:"id"`
	Generation uint64 `json:"generation"`
	Loading    bool   `json:"loading"`
	Query      string `json:"query"`

	// Display is nil until the first query succeeds, and then keeps the last
	// successful render even when later queries fail.
	Display       *weather.RenderState `json:"display"`
	DisplayedIcon string               `json:"displayedIcon,omitempty"`
	Error         *ErrorState          `json:"error"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Options configures a Screen.
type Options struct {
	DefaultCity string
}

type submission struct {
	text  string
	reply chan uint64
}

type fetchResult struct {
	gen    uint64
	city   string
	report weather.Report
	err    error
}

type iconResult struct {
	gen  uint64
	url  string
	data []byte
	err  error
}

// Screen owns the display state of one weather screen.
type Screen struct {
	id      string
	fetcher Fetcher
	icons   IconLoader
	opts    Options

	submits     chan submission
	results     chan fetchResult
	iconResults chan iconResult
	quit        chan struct{}
	stopped     chan struct{}
	runOnce     sync.Once
	closeOnce   sync.Once

	mu   sync.RWMutex
	view View
	icon []byte

	// owned by the run loop
	displayGen  uint64
	cancelFetch context.CancelFunc
}

// New creates a Screen. It does nothing until Run is called.
func New(id string, fetcher Fetcher, icons IconLoader, opts Options) *Screen {
	return &Screen{
		id:          id,
		fetcher:     fetcher,
		icons:       icons,
		opts:        opts,
		submits:     make(chan submission),
		results:     make(chan fetchResult),
		iconResults: make(chan iconResult),
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
		view: View{
			ID:        id,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

func (s *Screen) ID() string {
	return s.id
}

// Run owns the screen state until ctx is done or Close is called. Only the
// first call does anything.
func (s *Screen) Run(ctx context.Context) {
	first := false
	s.runOnce.Do(func() { first = true })
	if !first {
		return
	}

	defer close(s.stopped)
	defer s.cancelInFlight()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case sub := <-s.submits:
			sub.reply <- s.start(ctx, sub.text)
		case res := <-s.results:
			s.applyFetch(ctx, res)
		case res := <-s.iconResults:
			s.applyIcon(res)
		}
	}
}

// Close stops the run loop and cancels any in-flight fetch.
func (s *Screen) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
}

// Done is closed once Run has returned.
func (s *Screen) Done() <-chan struct{} {
	return s.stopped
}

// Submit queues a query and returns its generation. Blank text queries the
// default city.
func (s *Screen) Submit(ctx context.Context, text string) (uint64, error) {
	sub := submission{text: text, reply: make(chan uint64, 1)}
	select {
	case s.submits <- sub:
	case <-s.quit:
		return 0, ErrClosed
	case <-s.stopped:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return <-sub.reply, nil
}

// View returns a copy of the current display state.
func (s *Screen) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.view
	if v.Display != nil {
		d := *v.Display
		v.Display = &d
	}
	if v.Error != nil {
		e := *v.Error
		v.Error = &e
	}
	return v
}

// Icon returns the URL and image bytes of the icon currently displayed.
// ok is false until an icon has loaded.
func (s *Screen) Icon() (url string, data []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.icon == nil {
		return "", nil, false
	}
	return s.view.DisplayedIcon, append([]byte(nil), s.icon...), true
}

func (s *Screen) start(ctx context.Context, text string) uint64 {
	city := weather.NormalizeCity(text, s.opts.DefaultCity)

	// A newer query supersedes whatever is still running.
	s.cancelInFlight()
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel

	s.mu.Lock()
	s.view.Generation++
	gen := s.view.Generation
	s.view.Loading = true
	s.view.Query = city
	s.mu.Unlock()

	go s.fetch(fetchCtx, gen, city)
	return gen
}

func (s *Screen) fetch(ctx context.Context, gen uint64, city string) {
	report, err := s.fetcher.Fetch(ctx, city)

	select {
	case s.results <- fetchResult{gen: gen, city: city, report: report, err: err}:
	case <-s.stopped:
	}
}

func (s *Screen) applyFetch(ctx context.Context, res fetchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if res.gen != s.view.Generation {
		log.Printf("DEBUG: screen %s: dropping stale result for %q (generation %d, current %d)",
			s.id, res.city, res.gen, s.view.Generation)
		return
	}
	s.cancelInFlight()

	s.view.Loading = false
	s.view.UpdatedAt = time.Now().UTC()

	if res.err != nil {
		log.Printf("ERROR: screen %s: fetching weather for %q failed: %v", s.id, res.city, res.err)
		s.view.Error = &ErrorState{
			Kind:    weather.KindOf(res.err),
			Message: res.err.Error(),
		}
		return
	}

	display := weather.Render(res.report)
	s.view.Display = &display
	s.view.Error = nil
	s.displayGen = res.gen

	if s.icons != nil && display.IconURL != "" {
		go s.loadIcon(ctx, res.gen, display.IconURL)
	}
}

func (s *Screen) loadIcon(ctx context.Context, gen uint64, url string) {
	data, err := s.icons.Load(ctx, url)

	select {
	case s.iconResults <- iconResult{gen: gen, url: url, data: data, err: err}:
	case <-s.stopped:
	}
}

// applyIcon switches the displayed icon. A failed load leaves the previous
// icon in place.
func (s *Screen) applyIcon(res iconResult) {
	if res.gen != s.displayGen {
		log.Printf("DEBUG: screen %s: dropping icon %s for replaced display", s.id, res.url)
		return
	}
	if res.err != nil {
		log.Printf("ERROR: screen %s: icon load failed: %v", s.id, res.err)
		return
	}

	s.mu.Lock()
	s.icon = res.data
	s.view.DisplayedIcon = res.url
	s.mu.Unlock()
}

func (s *Screen) cancelInFlight() {
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
}
