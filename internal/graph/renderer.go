package graph

import (
	"sync"

	"thermo_dashboard/internal/dom"
)

// Renderer creates chart instances.
type Renderer interface {
	Create(spec ChartSpec) (Handle, error)
}

// Handle is a live chart instance. Destroy releases it; calling it twice is a no-op.
type Handle interface {
	Destroy()
}

// DocRenderer draws charts into a chart element of a document.
type DocRenderer struct {
	Doc *dom.Document
	ID  string

	mu   sync.Mutex
	live int
	gen  uint64
}

// Live reports how many chart instances have not been destroyed.
func (r *DocRenderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Create publishes spec as the element's chart config.
func (r *DocRenderer) Create(spec ChartSpec) (Handle, error) {
	cfg, err := spec.Config()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.live++
	r.mu.Unlock()

	r.Doc.Update(r.ID, func(e *dom.Element) { e.Chart = cfg })
	return &docChart{r: r, gen: gen}, nil
}

type docChart struct {
	r    *DocRenderer
	gen  uint64
	once sync.Once
}

func (c *docChart) Destroy() {
	c.once.Do(func() {
		c.r.mu.Lock()
		c.r.live--
		current := c.r.gen == c.gen
		c.r.mu.Unlock()
		if current {
			c.r.Doc.Update(c.r.ID, func(e *dom.Element) { e.Chart = nil })
		}
	})
}
