// Package dom holds the server-side document a page session renders into.
package dom

import (
	"encoding/json"
	"sort"
)

// Element kinds understood by the page templates.
const (
	KindContainer = "container"
	KindText      = "text"
	KindInput     = "input"
	KindTime      = "time"
	KindRange     = "range"
	KindButton    = "button"
	KindIndicator = "indicator"
	KindTable     = "table"
	KindSelect    = "select"
	KindChart     = "chart"
	KindList      = "list"
)

// Cell is one table cell.
type Cell struct {
	Text    string `json:"text"`
	ColSpan int    `json:"colspan,omitempty"`
	Class   string `json:"class,omitempty"`
}

// Row is one table row.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Option is one entry of a select element.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Element is the addressable unit of a document, keyed by its ID.
type Element struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Parent   string          `json:"parent,omitempty"`
	Label    string          `json:"label,omitempty"`
	Text     string          `json:"text,omitempty"`
	Value    string          `json:"value,omitempty"`
	Title    string          `json:"title,omitempty"`
	Classes  []string        `json:"classes,omitempty"`
	Hidden   bool            `json:"hidden,omitempty"`
	Disabled bool            `json:"disabled,omitempty"`
	Min      string          `json:"min,omitempty"`
	Max      string          `json:"max,omitempty"`
	Columns  []string        `json:"columns,omitempty"`
	Rows     []Row           `json:"rows,omitempty"`
	Options  []Option        `json:"options,omitempty"`
	Lines    []string        `json:"lines,omitempty"`
	Chart    json.RawMessage `json:"chart,omitempty"`
}

// HasClass reports whether the element carries class c.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass adds c if missing.
func (e *Element) AddClass(c string) {
	if e.HasClass(c) {
		return
	}
	e.Classes = append(e.Classes, c)
	sort.Strings(e.Classes)
}

// RemoveClass drops every class in cs.
func (e *Element) RemoveClass(cs ...string) {
	out := e.Classes[:0]
	for _, have := range e.Classes {
		keep := true
		for _, c := range cs {
			if have == c {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, have)
		}
	}
	e.Classes = out
}

// ToggleClass adds or removes c.
func (e *Element) ToggleClass(c string, on bool) {
	if on {
		e.AddClass(c)
		return
	}
	e.RemoveClass(c)
}

// clone returns a deep copy so callers never share slices with the document.
func (e *Element) clone() Element {
	out := *e
	out.Classes = append([]string(nil), e.Classes...)
	out.Columns = append([]string(nil), e.Columns...)
	out.Options = append([]Option(nil), e.Options...)
	out.Lines = append([]string(nil), e.Lines...)
	out.Chart = append(json.RawMessage(nil), e.Chart...)
	if e.Rows != nil {
		out.Rows = make([]Row, len(e.Rows))
		for i, r := range e.Rows {
			out.Rows[i] = Row{Cells: append([]Cell(nil), r.Cells...)}
		}
	}
	return out
}
