// Package pages maps page identifiers to their document skeleton and the
// initializer that starts the page's refresh tasks.
package pages

import (
	"context"
	"errors"
	"sort"
	"time"

	"thermo_dashboard/internal/dom"
	"thermo_dashboard/internal/graph"
	"thermo_dashboard/internal/render"
	"thermo_dashboard/internal/settings"
)

// Page identifiers.
const (
	Home              = "home"
	Temperatures      = "temperatures"
	Settings          = "settings"
	PVInfo            = "pv_info"
	TemperatureGraphs = "temperature_graphs"
)

// Element IDs owned by this package.
const (
	IDStatusSummary   = "status-summary"
	IDTemperatureData = "temperature-data"
	IDTempTableBody   = "temp-table-body"
	IDPVData          = "pv-data"
	IDPVMessage       = "pv-message"
)

// Interval bounds for recurring refreshes.
const (
	DefaultInterval = 3 * time.Second
	MinInterval     = time.Second
	MaxInterval     = 30 * time.Second
)

// ErrUnknownPage is returned for page identifiers without a route.
var ErrUnknownPage = errors.New("unknown page")

// Route describes one page.
type Route struct {
	ID       string
	Path     string
	Title    string
	Elements func() []dom.Element
	Init     func(ctx context.Context, s *Session) error
}

var routes = map[string]Route{
	Home:              {ID: Home, Path: "/", Title: "Home", Elements: homeElements, Init: initHome},
	Temperatures:      {ID: Temperatures, Path: "/temperatures", Title: "Temperatures", Elements: temperatureElements, Init: initTemperatures},
	Settings:          {ID: Settings, Path: "/settings", Title: "Settings", Elements: settings.Elements, Init: initSettings},
	PVInfo:            {ID: PVInfo, Path: "/pv_info", Title: "Solar PV", Elements: pvElements, Init: initPV},
	TemperatureGraphs: {ID: TemperatureGraphs, Path: "/temperature_graphs", Title: "Temperature Graphs", Elements: graph.Elements, Init: initGraphs},
}

// Lookup returns the route for a page identifier.
func Lookup(id string) (Route, bool) {
	r, ok := routes[id]
	return r, ok
}

// Routes lists every route ordered by path.
func Routes() []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ClampInterval applies the default and the allowed bounds.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	}
	return d
}

func homeElements() []dom.Element {
	return []dom.Element{
		{ID: IDStatusSummary, Kind: dom.KindList, Lines: []string{"Loading status..."}},
	}
}

func temperatureElements() []dom.Element {
	return []dom.Element{
		{ID: IDTemperatureData, Kind: dom.KindContainer},
		{
			ID: IDTempTableBody, Kind: dom.KindTable, Parent: IDTemperatureData,
			Columns: render.TemperatureColumns,
			Rows:    []dom.Row{{Cells: []dom.Cell{{Text: "Loading...", ColSpan: len(render.TemperatureColumns)}}}},
		},
	}
}

var pvLabels = map[string]string{
	render.PVPanelVoltage:   "Panel voltage (V)",
	render.PVPanelCurrent:   "Panel current (A)",
	render.PVLoadVoltage:    "Load voltage (V)",
	render.PVLoadCurrent:    "Load current (A)",
	render.PVLoadPower:      "Load power (W)",
	render.PVBatteryVoltage: "Battery voltage (V)",
	render.PVBatteryCurrent: "Battery current (A)",
	render.PVSunlight:       "Sunlight intensity",
	render.PVTimestamp:      "Last update",
}

func pvElements() []dom.Element {
	els := []dom.Element{{ID: IDPVData, Kind: dom.KindContainer}}
	for _, id := range render.PVFieldIDs {
		els = append(els, dom.Element{ID: id, Kind: dom.KindText, Parent: IDPVData, Label: pvLabels[id], Text: "N/A"})
	}
	return append(els, dom.Element{ID: IDPVMessage, Kind: dom.KindText, Parent: IDPVData})
}
