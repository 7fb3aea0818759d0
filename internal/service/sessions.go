package service

import (
	"context"
	"sort"
	"sync"

	"thermo_dashboard/internal/logger"
	"thermo_dashboard/internal/pages"
)

// SessionService owns every open page session.
type SessionService struct {
	deps pages.Deps
	log  *logger.Logger

	mu       sync.Mutex
	sessions map[string]*pages.Session
}

func NewSessionService(deps pages.Deps, log *logger.Logger) *SessionService {
	return &SessionService{
		deps:     deps,
		log:      log.Named("sessions"),
		sessions: make(map[string]*pages.Session),
	}
}

func (s *SessionService) Open(ctx context.Context, page string) (*pages.Session, error) {
	sess, err := pages.Open(ctx, s.deps, page)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	s.log.Debugw("session_registered", "id", sess.ID, "page", page, "open", n)
	return sess, nil
}

func (s *SessionService) Get(id string) (*pages.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Close stops and forgets the session. Unknown ids are ignored.
func (s *SessionService) Close(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.Close()
	}
}

// List returns every open session, oldest first.
func (s *SessionService) List() []pages.Info {
	s.mu.Lock()
	out := make([]pages.Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Info())
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out
}

// CloseAll stops every session; used on shutdown.
func (s *SessionService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*pages.Session)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, sess := range all {
		wg.Add(1)
		go func(sess *pages.Session) {
			defer wg.Done()
			sess.Close()
		}(sess)
	}
	wg.Wait()
}
