package render

import (
	"fmt"
	"strconv"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/models"
)

// SummaryLines builds the three homepage summary lines.
func SummaryLines(st models.Status) []string {
	temps := "No temp readings."
	if n := len(st.Temperatures); n > 0 {
		temps = fmt.Sprintf("%d temp readings.", n)
	}
	solar := "No PV data."
	if st.SolarData != nil {
		solar = "Latest PV data available."
	}
	settings := "Settings unavailable."
	if cs := st.CurrentSettings; cs != nil && cs.TemperatureSetpoint != nil {
		settings = "Current setpoint: " + strconv.FormatFloat(*cs.TemperatureSetpoint, 'f', -1, 64) + "°C"
	}
	return []string{temps, solar, settings}
}

// Summary renders the homepage status summary.
type Summary struct {
	Doc *dom.Document
	ID  string
}

// Loading marks the summary busy.
func (s *Summary) Loading() {
	s.Doc.Update(s.ID, func(e *dom.Element) { e.AddClass("loading") })
}

// Render replaces the summary lines.
func (s *Summary) Render(st models.Status) {
	lines := SummaryLines(st)
	s.Doc.Update(s.ID, func(e *dom.Element) {
		e.Lines = lines
		e.RemoveClass("loading", "error")
	})
}

// Fail replaces the summary with the error.
func (s *Summary) Fail(err error) {
	s.Doc.Update(s.ID, func(e *dom.Element) {
		e.Lines = []string{"Could not load summary: " + err.Error()}
		e.RemoveClass("loading")
		e.AddClass("error")
	})
}
