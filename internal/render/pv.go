package render

import (
	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/format"
	"thermo_dashboard/internal/models"
)

// Element IDs of the PV panel.
const (
	PVPanelVoltage   = "pv-panel-v"
	PVPanelCurrent   = "pv-panel-c"
	PVLoadVoltage    = "pv-load-v"
	PVLoadCurrent    = "pv-load-c"
	PVLoadPower      = "pv-load-p"
	PVBatteryVoltage = "pv-batt-v"
	PVBatteryCurrent = "pv-batt-c"
	PVSunlight       = "pv-sun"
	PVTimestamp      = "pv-timestamp"
)

// MsgNoPV is shown when the snapshot carries no solar data.
const MsgNoPV = "No PV data available."

// PVFieldIDs lists the PV field elements in display order.
var PVFieldIDs = []string{
	PVPanelVoltage, PVPanelCurrent, PVLoadVoltage, PVLoadCurrent,
	PVLoadPower, PVBatteryVoltage, PVBatteryCurrent, PVSunlight, PVTimestamp,
}

// PVFields maps telemetry to element text; nil telemetry gives placeholders.
func PVFields(s *models.SolarTelemetry, f format.Formatter) map[string]string {
	out := make(map[string]string, len(PVFieldIDs))
	if s == nil {
		for _, id := range PVFieldIDs {
			out[id] = format.Placeholder
		}
		return out
	}
	out[PVPanelVoltage] = format.Fixed(s.PanelVoltage, 2)
	out[PVPanelCurrent] = format.Fixed(s.PanelCurrent, 3)
	out[PVLoadVoltage] = format.Fixed(s.LoadVoltage, 2)
	out[PVLoadCurrent] = format.Fixed(s.LoadCurrent, 3)
	out[PVLoadPower] = format.Fixed(s.LoadPower, 2)
	out[PVBatteryVoltage] = format.Fixed(s.BatteryVoltage, 2)
	out[PVBatteryCurrent] = format.Fixed(s.BatteryCurrent, 3)
	out[PVSunlight] = format.Fixed(s.SunlightIntensity, 1)
	out[PVTimestamp] = f.Timestamp(s.Timestamp)
	return out
}

// PV renders the solar_data part of each status snapshot.
type PV struct {
	Doc       *dom.Document
	Container string
	Message   string
	Fmt       format.Formatter
}

// Loading marks the container busy.
func (p *PV) Loading() {
	p.Doc.Update(p.Container, func(e *dom.Element) { e.AddClass("loading") })
}

// Render writes every field independently.
func (p *PV) Render(st models.Status) {
	for id, text := range PVFields(st.SolarData, p.Fmt) {
		p.Doc.SetText(id, text)
	}
	msg := ""
	if st.SolarData == nil {
		msg = MsgNoPV
	}
	p.Doc.Update(p.Message, func(e *dom.Element) {
		e.Text = msg
		e.RemoveClass("error")
	})
	p.Doc.Update(p.Container, func(e *dom.Element) { e.RemoveClass("loading", "error") })
}

// Fail keeps the last values and shows err next to them.
func (p *PV) Fail(err error) {
	p.Doc.Update(p.Message, func(e *dom.Element) {
		e.Text = "Error loading PV data: " + err.Error()
		e.AddClass("error")
	})
	p.Doc.Update(p.Container, func(e *dom.Element) {
		e.RemoveClass("loading")
		e.AddClass("error")
	})
}
