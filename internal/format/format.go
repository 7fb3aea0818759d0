// Package format turns backend values into display strings.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Placeholder is shown wherever a value is missing.
const Placeholder = "N/A"

// InvalidDate is shown for timestamps that cannot be parsed.
const InvalidDate = "Invalid Date"

// DisplayLayout mimics the en-US locale string of a browser Date.
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// zone-less layouts are interpreted in the formatter's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Formatter renders timestamps in a fixed location.
type Formatter struct {
	Loc    *time.Location
	Layout string
}

// New returns a formatter for loc; nil means time.Local.
func New(loc *time.Location) Formatter {
	if loc == nil {
		loc = time.Local
	}
	return Formatter{Loc: loc, Layout: DisplayLayout}
}

// Default formats in the process-local zone.
var Default = New(nil)

// Parse converts an ISO-8601 string to an instant.
func (f Formatter) Parse(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, iso); err == nil {
		return t, true
	}
	loc := f.location()
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, iso, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp renders an ISO-8601 string for display.
func (f Formatter) Timestamp(iso string) string {
	if strings.TrimSpace(iso) == "" {
		return Placeholder
	}
	t, ok := f.Parse(iso)
	if !ok {
		return InvalidDate
	}
	layout := f.Layout
	if layout == "" {
		layout = DisplayLayout
	}
	return t.In(f.location()).Format(layout)
}

func (f Formatter) location() *time.Location {
	if f.Loc == nil {
		return time.Local
	}
	return f.Loc
}

// Fixed formats v with a fixed number of decimals; nil, NaN and Inf yield the placeholder.
func Fixed(v *float64, places int) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', places, 64)
}

// Percent renders a [0,1] ratio as a percentage with one decimal place.
func Percent(ratio *float64) string {
	if ratio == nil {
		return Placeholder
	}
	pct := *ratio * 100
	s := Fixed(&pct, 1)
	if s == Placeholder {
		return s
	}
	return s + "%"
}

// Int renders an optional integer.
func Int(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}

// Text returns s or the placeholder when s is blank.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
