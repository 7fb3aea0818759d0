// Package settings implements the actuator settings editor: initial load,
// non-destructive status refresh, and validated partial saves.
package settings

import (
	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/models"
)

// Element IDs of the settings page.
const (
	IDEditor        = "settings-editor"
	IDForm          = "settings-form"
	IDLoading       = "loading-message"
	IDLoadError     = "loading-error-message"
	IDUpdated       = "settings-updated"
	IDSetpoint      = "setpoint-input"
	IDTimerOn       = "timer-on-input"
	IDTimerOff      = "timer-off-input"
	IDFan4Speed     = "fan4-speed-input"
	IDFan4Value     = "fan4-speed-value"
	IDFan2Speed     = "fan2-speed-input"
	IDFan2Value     = "fan2-speed-value"
	IDFan1Display   = "fan1-speed-display"
	IDFan3Display   = "fan3-speed-display"
	IDSave          = "save-settings-button"
	IDSaveStatus    = "save-status-message"
	IDStatusRefresh = "status-refresh-message"
)

type indicator struct {
	id    string
	label string
	get   func(*models.ActuatorSettings) *bool
}

var indicators = []indicator{
	{"block1-fan1-status", "Fan 1", func(s *models.ActuatorSettings) *bool { return s.Fan1Status }},
	{"block1-fan4-status", "Fan 4", func(s *models.ActuatorSettings) *bool { return s.Fan4Status }},
	{"block1-pump1-status", "Pump 1", func(s *models.ActuatorSettings) *bool { return s.Pump1Status }},
	{"block1-peltier1-status", "Peltier 1", func(s *models.ActuatorSettings) *bool { return s.Peltier1Status }},
	{"block2-fan3-status", "Fan 3", func(s *models.ActuatorSettings) *bool { return s.Fan3Status }},
	{"block2-fan2-status", "Fan 2", func(s *models.ActuatorSettings) *bool { return s.Fan2Status }},
	{"block2-pump2-status", "Pump 2", func(s *models.ActuatorSettings) *bool { return s.Pump2Status }},
	{"block2-peltier2-status", "Peltier 2", func(s *models.ActuatorSettings) *bool { return s.Peltier2Status }},
}

// IndicatorIDs lists the status indicator elements.
func IndicatorIDs() []string {
	out := make([]string, len(indicators))
	for i, ind := range indicators {
		out[i] = ind.id
	}
	return out
}

// Elements is the document skeleton of the settings page.
func Elements() []dom.Element {
	els := []dom.Element{
		{ID: IDEditor, Kind: dom.KindContainer},
		{ID: IDLoading, Kind: dom.KindText, Parent: IDEditor, Text: "Loading settings data..."},
		{ID: IDLoadError, Kind: dom.KindText, Parent: IDEditor},
		{ID: IDForm, Kind: dom.KindContainer, Parent: IDEditor, Hidden: true},
		{ID: IDSetpoint, Kind: dom.KindInput, Parent: IDForm, Label: "Temperature setpoint (°C)", Min: "-50", Max: "150"},
		{ID: IDTimerOn, Kind: dom.KindTime, Parent: IDForm, Label: "AC timer on"},
		{ID: IDTimerOff, Kind: dom.KindTime, Parent: IDForm, Label: "AC timer off"},
		{ID: IDFan4Speed, Kind: dom.KindRange, Parent: IDForm, Label: "Fan 4 speed (%)", Min: "0", Max: "100", Value: "50"},
		{ID: IDFan4Value, Kind: dom.KindText, Parent: IDForm, Text: "50"},
		{ID: IDFan2Speed, Kind: dom.KindRange, Parent: IDForm, Label: "Fan 2 speed (%)", Min: "0", Max: "100", Value: "50"},
		{ID: IDFan2Value, Kind: dom.KindText, Parent: IDForm, Text: "50"},
		{ID: IDFan1Display, Kind: dom.KindText, Parent: IDForm, Label: "Fan 1 speed (%)", Text: "N/A"},
		{ID: IDFan3Display, Kind: dom.KindText, Parent: IDForm, Label: "Fan 3 speed (%)", Text: "N/A"},
	}
	for _, ind := range indicators {
		els = append(els, dom.Element{
			ID: ind.id, Kind: dom.KindIndicator, Parent: IDForm,
			Label: ind.label, Title: ind.label + ": Unknown", Classes: []string{"unknown"},
		})
	}
	return append(els,
		dom.Element{ID: IDStatusRefresh, Kind: dom.KindText, Parent: IDForm},
		dom.Element{ID: IDUpdated, Kind: dom.KindText, Parent: IDForm, Label: "Last updated", Text: "N/A"},
		dom.Element{ID: IDSave, Kind: dom.KindButton, Parent: IDForm, Text: "Save Settings"},
		dom.Element{ID: IDSaveStatus, Kind: dom.KindText, Parent: IDForm},
	)
}
