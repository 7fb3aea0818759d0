package pages

import (
	"context"
	"fmt"
	"sync"
	"time"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/journal"
	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/models"
	"thermo_dashboard/internal/poller"

	"github.com/google/uuid"
)

// Event types sent by the browser.
const (
	EventInput  = "input"
	EventChange = "change"
	EventClick  = "click"
)

// Backend is everything the pages read from or write to the device backend.
type Backend interface {
	poller.StatusSource
	Settings(ctx context.Context) (*models.ActuatorSettings, error)
	PatchSettings(ctx context.Context, patch models.SettingsPatch) (*models.ActuatorSettings, error)
	TemperatureHistory(ctx context.Context, q models.HistoryQuery) ([]models.RawReading, error)
}

// Deps are shared by every session.
type Deps struct {
	API          Backend
	Fmt          format.Formatter
	Log          *logger.Logger
	Recorder     journal.Recorder
	Intervals    map[string]time.Duration
	SaveCooldown time.Duration
}

// Interval returns the refresh interval for page, DefaultInterval if unset.
// Configured values are clamped when the configuration is loaded.
func (d Deps) Interval(page string) time.Duration {
	if v := d.Intervals[page]; v > 0 {
		return v
	}
	return DefaultInterval
}

// Event is one user interaction.
type Event struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// EventHandler reacts to an event on one element.
type EventHandler func(ctx context.Context, ev Event)

// Session is one open page: its document, its tasks, and its event handlers.
type Session struct {
	ID       string
	Page     string
	Title    string
	OpenedAt time.Time
	Doc      *dom.Document

	deps   Deps
	log    *logger.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	tasks    []*poller.Handle
	closers  []func()
	handlers map[string]EventHandler
	closed   bool
	wg       sync.WaitGroup
}

// Open builds the page document and runs its initializer. The returned
// session keeps running until Close; ctx only bounds initialization.
func Open(ctx context.Context, deps Deps, page string) (*Session, error) {
	r, ok := Lookup(page)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	id := uuid.NewString()
	log := deps.Log.Named("page").With("page", page, "session", id)
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		ID:       id,
		Page:     page,
		Title:    r.Title,
		OpenedAt: time.Now().UTC(),
		Doc:      dom.New(page, log, r.Elements()...),
		deps:     deps,
		log:      log,
		ctx:      sctx,
		cancel:   cancel,
		handlers: make(map[string]EventHandler),
	}
	journal.OrNop(deps.Recorder).Record(ctx, journal.Event(models.EventSessionOpened, page, "page opened", map[string]any{"session": id}))
	if err := r.Init(sctx, s); err != nil {
		s.Close()
		return nil, fmt.Errorf("init %s: %w", page, err)
	}
	log.Infow("session_opened")
	return s, nil
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context { return s.ctx }

// AddTask registers a running task to stop on Close.
func (s *Session) AddTask(h *poller.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		h.Stop()
		return
	}
	s.tasks = append(s.tasks, h)
}

// OnClose registers fn to run on Close after every task stopped.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// Handle registers the handler for events on element id.
func (s *Session) Handle(id string, h EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[id] = h
}

// Go runs fn in the background for the lifetime of the session.
func (s *Session) Go(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorw("session_worker_panic", "panic", r)
			}
		}()
		fn(s.ctx)
	}()
}

// Dispatch delivers a browser event. Events on elements without a handler
// are ignored. Handlers run on the caller's goroutine and must hand
// blocking work to Go.
func (s *Session) Dispatch(ev Event) {
	s.mu.Lock()
	h, ok := s.handlers[ev.ID]
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}
	if !ok {
		s.log.Warnw("event_unhandled", "type", ev.Type, "id", ev.ID)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("event_handler_panic", "id", ev.ID, "panic", r)
		}
	}()
	h(s.ctx, ev)
}

// Close stops every task and background worker. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	tasks := s.tasks
	closers := s.closers
	s.tasks, s.closers = nil, nil
	s.mu.Unlock()

	s.cancel()
	for _, t := range tasks {
		t.Stop()
	}
	s.wg.Wait()
	for _, fn := range closers {
		fn()
	}
	journal.OrNop(s.deps.Recorder).Record(context.Background(),
		journal.Event(models.EventSessionClosed, s.Page, "page closed", map[string]any{"session": s.ID}))
	s.log.Infow("session_closed")
}

// Info is the public view of a session.
type Info struct {
	ID       string    `json:"id"`
	Page     string    `json:"page"`
	OpenedAt time.Time `json:"opened_at"`
	Version  uint64    `json:"version"`
}

// Info summarises the session.
func (s *Session) Info() Info {
	return Info{ID: s.ID, Page: s.Page, OpenedAt: s.OpenedAt, Version: s.Doc.Version()}
}
