package dom

import (
	"sync"

	"thermo_dashboard/internal/logger"
)

// Document is the element tree of one page session.
// All mutation goes through Update, which notifies subscribers.
type Document struct {
	mu      sync.RWMutex
	page    string
	order   []string
	elems   map[string]*Element
	version uint64
	subs    map[*Subscription]struct{}
	log     *logger.Logger
}

// New builds a document for page from the given elements, in order.
func New(page string, log *logger.Logger, elems ...Element) *Document {
	d := &Document{
		page:  page,
		elems: make(map[string]*Element, len(elems)),
		subs:  make(map[*Subscription]struct{}),
		log:   log,
	}
	for i := range elems {
		e := elems[i].clone()
		if _, dup := d.elems[e.ID]; dup {
			continue
		}
		d.order = append(d.order, e.ID)
		d.elems[e.ID] = &e
	}
	return d
}

// Page returns the page identifier the document belongs to.
func (d *Document) Page() string { return d.page }

// Version increases with every successful Update.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Has reports whether id exists.
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elems[id]
	return ok
}

// Get returns a copy of element id.
func (d *Document) Get(id string) (Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.elems[id]
	if !ok {
		return Element{}, false
	}
	return e.clone(), true
}

// Snapshot returns copies of every element in document order.
func (d *Document) Snapshot() []Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Element, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.elems[id].clone())
	}
	return out
}

// Update mutates element id in place and publishes it.
// Missing elements are logged and reported as false, never created.
func (d *Document) Update(id string, fn func(e *Element)) bool {
	d.mu.Lock()
	e, ok := d.elems[id]
	if !ok {
		d.mu.Unlock()
		if d.log != nil {
			d.log.Warnw("element_not_found", "page", d.page, "id", id)
		}
		return false
	}
	fn(e)
	e.ID = id
	d.version++
	subs := make([]*Subscription, 0, len(d.subs))
	for s := range d.subs {
		subs = append(subs, s)
	}
	d.mu.Unlock()

	for _, s := range subs {
		s.mark(id)
	}
	return true
}

// SetText is a shorthand for replacing an element's text.
func (d *Document) SetText(id, text string) bool {
	return d.Update(id, func(e *Element) { e.Text = text })
}

// Subscribe registers for change notifications.
func (d *Document) Subscribe() *Subscription {
	s := &Subscription{
		doc:     d,
		pending: make(map[string]struct{}),
		notify:  make(chan struct{}, 1),
	}
	d.mu.Lock()
	d.subs[s] = struct{}{}
	d.mu.Unlock()
	return s
}

// Subscription coalesces changes: a slow reader only ever sees the latest
// state of each changed element, never a backlog.
type Subscription struct {
	doc     *Document
	mu      sync.Mutex
	pending map[string]struct{}
	order   []string
	notify  chan struct{}
	closed  bool
}

// C fires when at least one element changed since the last Drain.
func (s *Subscription) C() <-chan struct{} { return s.notify }

// Drain returns the current state of every element changed since the last call.
func (s *Subscription) Drain() []Element {
	s.mu.Lock()
	ids := s.order
	s.order = nil
	s.pending = make(map[string]struct{})
	s.mu.Unlock()

	out := make([]Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.doc.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Close unregisters the subscription.
func (s *Subscription) Close() {
	s.doc.mu.Lock()
	delete(s.doc.subs, s)
	s.doc.mu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Subscription) mark(id string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, ok := s.pending[id]; !ok {
		s.pending[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}
