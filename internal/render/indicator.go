package render

import (
	"strings"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
)

// Indicator classes.
const (
	IndicatorOn      = "on"
	IndicatorOff     = "off"
	IndicatorUnknown = "unknown"
)

// SetIndicator sets the three-state class and the hover title of a status
// indicator. The title keeps its label, i.e. the part before the first colon.
func SetIndicator(doc *dom.Document, id string, v *bool) bool {
	class, state := IndicatorUnknown, "Unknown"
	if v != nil {
		if *v {
			class, state = IndicatorOn, "ON"
		} else {
			class, state = IndicatorOff, "OFF"
		}
	}
	return doc.Update(id, func(e *dom.Element) {
		e.RemoveClass(IndicatorOn, IndicatorOff, IndicatorUnknown)
		e.AddClass(class)
		label := e.Label
		if label == "" {
			label, _, _ = strings.Cut(e.Title, ":")
		}
		e.Title = label + ": " + state
	})
}

// SetSpeed shows a device-reported speed or the placeholder.
func SetSpeed(doc *dom.Document, id string, v *int) bool {
	return doc.SetText(id, format.Int(v))
}
