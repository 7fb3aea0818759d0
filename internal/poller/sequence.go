// Package poller runs recurring backend fetches for a page session.
package poller

import "sync"

// Sequence numbers requests and lets only the newest finished one apply.
// A response that completes after a newer one was applied is dropped.
type Sequence struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
	dropped uint64
}

// Next reserves a request number.
func (s *Sequence) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply runs fn if seq is newer than anything applied so far. fn runs under
// the sequence lock, so applies of one sequence never interleave.
func (s *Sequence) Apply(seq uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied {
		s.dropped++
		return false
	}
	s.applied = seq
	fn()
	return true
}

// Dropped reports how many stale results were discarded.
func (s *Sequence) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
